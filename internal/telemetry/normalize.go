package telemetry

import (
	"encoding/json"
	"strings"

	"github.com/fcaqualink/aqualink-monitor/internal/sensor"
)

// Shape tags which recognized payload layout a message matched.
type Shape string

const (
	// ShapeSingle is a one-reading object: {"name":"pH","value":7.2} or
	// {"property_id":1,"value":7.2}.
	ShapeSingle Shape = "single"
	// ShapeObject is a generic object keyed by sensor name, possibly
	// using the temp/conduct field aliases.
	ShapeObject Shape = "object"
	// ShapeLabeledArray is an array of {name/Sensor/sensor, value/Valor/val}
	// objects.
	ShapeLabeledArray Shape = "labeled_array"
	// ShapePositional is a fixed-length numeric array mapped against the
	// gauge display order.
	ShapePositional Shape = "positional"
)

// Message is the normalized form of one inbound frame: the canonical
// record plus the explicit wet/dry status marker when the payload
// carried one.
type Message struct {
	Shape  Shape
	Record sensor.Record
	Status string
}

// Normalize converts one raw inbound frame into a Message, trying each
// recognized shape in priority order. It returns nil when the frame
// matches no shape or yields no usable fields; that is routine
// filtering, not an error.
func Normalize(raw []byte) *Message {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// Not JSON: plain-text frames carry nothing we can extract.
		return nil
	}

	switch v := decoded.(type) {
	case map[string]any:
		if msg := normalizeSingle(v); msg != nil {
			return msg
		}
		return normalizeObject(v)
	case []any:
		if len(v) > 0 {
			if _, ok := v[0].(map[string]any); ok {
				return normalizeLabeledArray(v)
			}
		}
		if len(v) == len(sensor.DisplayOrder) {
			return normalizePositional(v)
		}
		return nil
	default:
		return nil
	}
}

// normalizeSingle handles the one-reading-per-message layout. It only
// claims the message when an explicit value field travels with a
// recognizable name or property id.
func normalizeSingle(obj map[string]any) *Message {
	value, hasValue := obj["value"]
	if !hasValue {
		return nil
	}

	if name, ok := obj["name"].(string); ok && name != "" {
		key, known := sensor.KeyForName(name)
		if !known {
			return nil
		}
		return &Message{
			Shape:  ShapeSingle,
			Record: sensor.Record{key: sensor.Coerce(value)},
		}
	}

	pid, hasPID := obj["property_id"]
	if !hasPID {
		pid, hasPID = obj["propertyId"]
	}
	if hasPID {
		id := sensor.Coerce(pid)
		if id == nil {
			return nil
		}
		key, known := sensor.KeyForPropertyID(int(*id))
		if !known {
			return nil
		}
		return &Message{
			Shape:  ShapeSingle,
			Record: sensor.Record{key: sensor.Coerce(value)},
		}
	}

	return nil
}

// fieldAliases maps legacy firmware field names onto canonical keys.
// An alias only applies when the canonical field is absent.
var fieldAliases = map[string]sensor.Key{
	"temp":    sensor.Temperatura,
	"conduct": sensor.Conductividad,
}

// normalizeObject handles a generic object keyed by canonical sensor
// names. The explicit status field ("wet"/"dry") is preserved for the
// gate.
func normalizeObject(obj map[string]any) *Message {
	record := sensor.Record{}

	for _, key := range sensor.Keys {
		if v, present := obj[string(key)]; present {
			record[key] = sensor.Coerce(v)
		}
	}
	for alias, key := range fieldAliases {
		v, present := obj[alias]
		if !present || v == nil {
			continue
		}
		if _, canonical := record[key]; !canonical {
			record[key] = sensor.Coerce(v)
		}
	}

	status := ""
	if s, ok := obj["status"].(string); ok {
		status = strings.ToLower(strings.TrimSpace(s))
	}

	if len(record) == 0 && status == "" {
		return nil
	}

	return &Message{Shape: ShapeObject, Record: record, Status: status}
}

// normalizeLabeledArray folds an array of labeled readings into one
// record. Unrecognized labels are skipped.
func normalizeLabeledArray(items []any) *Message {
	record := sensor.Record{}

	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		label := ""
		for _, field := range []string{"name", "Sensor", "sensor"} {
			if s, ok := obj[field].(string); ok && s != "" {
				label = s
				break
			}
		}
		if label == "" {
			continue
		}

		key, known := sensor.KeyForName(label)
		if !known {
			continue
		}

		for _, field := range []string{"value", "Valor", "val"} {
			if v, present := obj[field]; present {
				record[key] = sensor.Coerce(v)
				break
			}
		}
	}

	if len(record) == 0 {
		return nil
	}

	return &Message{Shape: ShapeLabeledArray, Record: record}
}

// normalizePositional maps a fixed-length array index-for-index against
// the gauge display order.
func normalizePositional(items []any) *Message {
	record := sensor.Record{}
	for i, key := range sensor.DisplayOrder {
		record[key] = sensor.Coerce(items[i])
	}
	return &Message{Shape: ShapePositional, Record: record}
}
