package sensor

import "math"

// Quality is the water-quality label derived from a single reading.
type Quality string

const (
	Buena       Quality = "Buena"
	Regular     Quality = "Regular"
	Mala        Quality = "Mala"
	Desconocida Quality = "Desconocida"
)

// Classify derives the quality label for a reading. A nil or non-finite
// value is always Desconocida. The per-key ranges follow the drinking
// water reference bands used by the dashboard and its exports.
func Classify(key Key, value *float64) Quality {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return Desconocida
	}
	v := *value

	switch key {
	case PH:
		switch {
		case v >= 6.5 && v <= 8.5:
			return Buena
		case v >= 6.0 && v <= 9.0:
			return Regular
		default:
			return Mala
		}
	case ORP:
		switch {
		case v > 300:
			return Buena
		case v >= 100:
			return Regular
		default:
			return Mala
		}
	case Turbidez:
		switch {
		case v < 1:
			return Buena
		case v <= 5:
			return Regular
		default:
			return Mala
		}
	case Conductividad:
		switch {
		case v < 500:
			return Buena
		case v <= 1000:
			return Regular
		default:
			return Mala
		}
	case Temperatura:
		switch {
		case v >= 15 && v <= 30:
			return Buena
		case (v >= 10 && v < 15) || (v > 30 && v <= 35):
			return Regular
		default:
			return Mala
		}
	case TDS:
		switch {
		case v < 500:
			return Buena
		case v <= 1000:
			return Regular
		default:
			return Mala
		}
	default:
		return Desconocida
	}
}
