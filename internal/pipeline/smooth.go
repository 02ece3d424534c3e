package pipeline

import (
	"math"

	"github.com/fcaqualink/aqualink-monitor/internal/config"
	"github.com/fcaqualink/aqualink-monitor/internal/sensor"
)

// Smoother suppresses visual jitter on the displayed gauge values: a
// per-sensor dead-band discards changes below the sensor's noise floor,
// and surviving changes are blended in with an exponential moving
// average. Smoothing is presentation-only; the history store always
// receives the raw gated values.
type Smoother struct {
	alpha    float64
	deadband map[sensor.Key]float64

	values map[sensor.Key]float64
}

// NewSmoother creates a smoother with no prior state.
func NewSmoother(cfg config.SmoothingConfig) *Smoother {
	return &Smoother{
		alpha: cfg.Alpha,
		deadband: map[sensor.Key]float64{
			sensor.PH:            cfg.Deadband.PH,
			sensor.Turbidez:      cfg.Deadband.Turbidez,
			sensor.TDS:           cfg.Deadband.TDS,
			sensor.Temperatura:   cfg.Deadband.Temperatura,
			sensor.Conductividad: cfg.Deadband.Conductividad,
			sensor.ORP:           cfg.Deadband.ORP,
		},
		values: make(map[sensor.Key]float64),
	}
}

// Update feeds one raw gated reading into the filter. It returns the
// value to display and whether the display should change: a change
// smaller than the key's dead-band is discarded, anything larger moves
// the smoothed value toward the reading by the smoothing factor. The
// first reading for a key is adopted as-is.
func (s *Smoother) Update(key sensor.Key, incoming float64) (float64, bool) {
	prev, ok := s.values[key]
	if !ok {
		s.values[key] = incoming
		return incoming, true
	}

	if math.Abs(incoming-prev) < s.deadband[key] {
		return prev, false
	}

	next := prev + s.alpha*(incoming-prev)
	s.values[key] = next
	return next, true
}

// Forget clears the state for one key so the next reading is adopted
// fresh instead of being blended against a stale baseline.
func (s *Smoother) Forget(key sensor.Key) {
	delete(s.values, key)
}

// Reset clears all per-sensor state. Called when the gate forces a dry
// period.
func (s *Smoother) Reset() {
	s.values = make(map[sensor.Key]float64)
}
