package history

import (
	"time"

	"github.com/fcaqualink/aqualink-monitor/internal/sensor"
)

// Record is one persisted history row: the canonical snapshot of every
// sensor at a point in time. A nil field means the sensor had no valid
// reading at that moment. An all-null row documents a dry period.
type Record struct {
	TS            time.Time `json:"ts"`
	PH            *float64  `json:"ph"`
	Turbidez      *float64  `json:"turbidez"`
	TDS           *float64  `json:"tds"`
	Temperatura   *float64  `json:"temperatura"`
	Conductividad *float64  `json:"conductividad"`
	ORP           *float64  `json:"orp"`
}

// NewRecord builds a row from a canonical record at the given instant.
// Keys absent from the record become nil fields.
func NewRecord(ts time.Time, rec sensor.Record) Record {
	r := Record{TS: ts}
	for key, v := range rec {
		r.Set(key, v)
	}
	return r
}

// Value returns the stored reading for a sensor key.
func (r *Record) Value(key sensor.Key) *float64 {
	switch key {
	case sensor.PH:
		return r.PH
	case sensor.Turbidez:
		return r.Turbidez
	case sensor.TDS:
		return r.TDS
	case sensor.Temperatura:
		return r.Temperatura
	case sensor.Conductividad:
		return r.Conductividad
	case sensor.ORP:
		return r.ORP
	default:
		return nil
	}
}

// Set stores a reading for a sensor key.
func (r *Record) Set(key sensor.Key, v *float64) {
	switch key {
	case sensor.PH:
		r.PH = v
	case sensor.Turbidez:
		r.Turbidez = v
	case sensor.TDS:
		r.TDS = v
	case sensor.Temperatura:
		r.Temperatura = v
	case sensor.Conductividad:
		r.Conductividad = v
	case sensor.ORP:
		r.ORP = v
	}
}
