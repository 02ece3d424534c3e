package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fcaqualink/aqualink-monitor/internal/config"
	"github.com/fcaqualink/aqualink-monitor/internal/sensor"
)

func smoothingConfig() config.SmoothingConfig {
	return config.SmoothingConfig{
		Alpha: 0.35,
		Deadband: config.DeadbandConfig{
			PH:            0.02,
			Turbidez:      0.2,
			TDS:           2,
			Temperatura:   0.1,
			Conductividad: 3,
			ORP:           3,
		},
	}
}

func TestSmootherAdoptsFirstReading(t *testing.T) {
	s := NewSmoother(smoothingConfig())

	v, changed := s.Update(sensor.PH, 7.0)
	assert.True(t, changed)
	assert.Equal(t, 7.0, v)
}

func TestSmootherDeadbandSuppressesJitter(t *testing.T) {
	s := NewSmoother(smoothingConfig())
	s.Update(sensor.PH, 7.00)

	v, changed := s.Update(sensor.PH, 7.01)
	assert.False(t, changed)
	assert.Equal(t, 7.00, v)
}

func TestSmootherBlendsRealChanges(t *testing.T) {
	s := NewSmoother(smoothingConfig())
	s.Update(sensor.PH, 7.00)

	v, changed := s.Update(sensor.PH, 7.05)
	assert.True(t, changed)
	assert.InDelta(t, 7.0175, v, 1e-9)
}

func TestSmootherConvergesTowardStableReading(t *testing.T) {
	s := NewSmoother(smoothingConfig())
	s.Update(sensor.Temperatura, 20.0)

	var v float64
	for i := 0; i < 50; i++ {
		v, _ = s.Update(sensor.Temperatura, 25.0)
	}
	assert.InDelta(t, 25.0, v, 0.15)
}

func TestSmootherDeadbandIsPerSensor(t *testing.T) {
	s := NewSmoother(smoothingConfig())
	s.Update(sensor.TDS, 300)
	s.Update(sensor.PH, 7.00)

	_, changed := s.Update(sensor.TDS, 301)
	assert.False(t, changed, "1 ppm is inside the TDS dead-band")

	_, changed = s.Update(sensor.PH, 7.03)
	assert.True(t, changed, "0.03 pH is outside the pH dead-band")
}

func TestSmootherForgetReadoptsNextReading(t *testing.T) {
	s := NewSmoother(smoothingConfig())
	s.Update(sensor.PH, 7.0)
	s.Forget(sensor.PH)

	v, changed := s.Update(sensor.PH, 8.0)
	assert.True(t, changed)
	assert.Equal(t, 8.0, v, "no blending against the forgotten baseline")
}

func TestSmootherResetClearsAllState(t *testing.T) {
	s := NewSmoother(smoothingConfig())
	s.Update(sensor.PH, 7.0)
	s.Update(sensor.Temperatura, 20.0)
	s.Reset()

	v, _ := s.Update(sensor.PH, 9.0)
	assert.Equal(t, 9.0, v)
	v, _ = s.Update(sensor.Temperatura, 30.0)
	assert.Equal(t, 30.0, v)
}
