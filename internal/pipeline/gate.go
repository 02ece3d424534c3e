package pipeline

import (
	"time"

	"github.com/fcaqualink/aqualink-monitor/internal/clock"
	"github.com/fcaqualink/aqualink-monitor/internal/config"
	"github.com/fcaqualink/aqualink-monitor/internal/sensor"
	"github.com/fcaqualink/aqualink-monitor/internal/telemetry"
)

// Gate decides whether the probe assembly is currently immersed.
// Sensors emit meaningless high-noise output when dry; the gate keeps
// that noise out of the display and marks it in the history. A
// hold-open window bridges brief gaps in the evidence so the decision
// does not flicker.
//
// The gate owns its hold timer exclusively; only Evaluate mutates it.
type Gate struct {
	cfg   config.GateConfig
	clock clock.Clock

	holdUntil time.Time
}

// NewGate creates a gate with no hold-open window active.
func NewGate(cfg config.GateConfig, clk clock.Clock) *Gate {
	return &Gate{cfg: cfg, clock: clk}
}

// Evaluate inspects one normalized message and returns true when its
// readings should pass through (wet) or false when they must be
// suppressed (dry).
//
// An explicit status field is authoritative. Absent that, plausibility
// checks on the reported values vote wet: turbidity below the
// still-immersed ceiling, pH inside the plausible aqueous band,
// conductivity or TDS above the noise floor. Any wet evidence renews
// the hold-open window; explicit dry evidence zeroes it immediately.
func (g *Gate) Evaluate(msg *telemetry.Message) bool {
	now := g.clock.Now()

	wet := false
	dry := false

	switch msg.Status {
	case "wet":
		wet = true
	case "dry":
		dry = true
	}

	if v := value(msg.Record, sensor.Turbidez); v != nil {
		if *v < g.cfg.TurbWetMaxNTU {
			wet = true
		}
		if *v >= g.cfg.TurbVeryDryNTU {
			dry = true
		}
	}
	if v := value(msg.Record, sensor.PH); v != nil && *v >= g.cfg.PHWetMin && *v <= g.cfg.PHWetMax {
		wet = true
	}
	if v := value(msg.Record, sensor.Conductividad); v != nil && *v > g.cfg.ConductWetMin {
		wet = true
	}
	if v := value(msg.Record, sensor.TDS); v != nil && *v > g.cfg.TDSWetMin {
		wet = true
	}

	if wet {
		g.holdUntil = now.Add(g.cfg.WetTTL)
	}
	if dry {
		g.holdUntil = time.Time{}
	}

	return wet || (!dry && now.Before(g.holdUntil))
}

func value(rec sensor.Record, key sensor.Key) *float64 {
	if v, ok := rec[key]; ok {
		return v
	}
	return nil
}
