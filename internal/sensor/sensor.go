package sensor

import (
	"math"
	"strconv"
	"strings"
)

// Key identifies one of the physical quantities measured by the probe
// assembly.
type Key string

const (
	PH            Key = "ph"
	Turbidez      Key = "turbidez"
	TDS           Key = "tds"
	Temperatura   Key = "temperatura"
	Conductividad Key = "conductividad"
	ORP           Key = "orp"
)

// Keys lists every sensor key in canonical (storage/export column) order.
var Keys = []Key{PH, Turbidez, TDS, Temperatura, Conductividad, ORP}

// DisplayOrder is the gauge layout order of the dashboard. Positional
// array payloads are mapped index-for-index against this order.
var DisplayOrder = []Key{ORP, Conductividad, Turbidez, PH, Temperatura, TDS}

// names maps the human-readable sensor labels used on the wire and in
// exports to their keys. Lookups are case-insensitive.
var names = map[string]Key{
	"ph":            PH,
	"turbidez":      Turbidez,
	"tds":           TDS,
	"temperatura":   Temperatura,
	"conductividad": Conductividad,
	"orp":           ORP,
}

// propertyIDs maps the numeric property identifiers some firmware
// versions emit instead of names.
var propertyIDs = map[int]Key{
	1: PH,
	2: Turbidez,
	3: TDS,
	4: Temperatura,
	5: Conductividad,
	6: ORP,
}

// displayNames maps keys back to the labels used on gauges and reports.
var displayNames = map[Key]string{
	PH:            "pH",
	Turbidez:      "Turbidez",
	TDS:           "TDS",
	Temperatura:   "Temperatura",
	Conductividad: "Conductividad",
	ORP:           "ORP",
}

// units maps keys to their measurement units.
var units = map[Key]string{
	PH:            "",
	Turbidez:      "NTU",
	TDS:           "ppm",
	Temperatura:   "°C",
	Conductividad: "µS/cm",
	ORP:           "mV",
}

// KeyForName resolves a human-readable sensor label, case-insensitively.
func KeyForName(name string) (Key, bool) {
	k, ok := names[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// KeyForPropertyID resolves a numeric property identifier.
func KeyForPropertyID(id int) (Key, bool) {
	k, ok := propertyIDs[id]
	return k, ok
}

// DisplayName returns the gauge/report label for a key.
func (k Key) DisplayName() string { return displayNames[k] }

// Unit returns the measurement unit for a key.
func (k Key) Unit() string { return units[k] }

// Record is a canonical snapshot of sensor values extracted from one
// inbound message. A key absent from the map was not reported; a key
// present with a nil value was reported but carried no valid reading.
// Absence of a reading is always nil, never 0: zero is a legitimate
// physical value for some sensors.
type Record map[Key]*float64

// Coerce converts an arbitrary decoded JSON value into a finite float
// or nil. Non-finite numbers, non-numeric strings, and missing values
// all map to nil.
func Coerce(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return finite(float64(n))
	case int64:
		return finite(float64(n))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return finite(f)
	default:
		return nil
	}
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 { return &v }
