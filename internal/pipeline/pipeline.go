package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fcaqualink/aqualink-monitor/internal/clock"
	"github.com/fcaqualink/aqualink-monitor/internal/config"
	"github.com/fcaqualink/aqualink-monitor/internal/history"
	"github.com/fcaqualink/aqualink-monitor/internal/sensor"
	"github.com/fcaqualink/aqualink-monitor/internal/telemetry"
)

// ProbeStatus is the pipeline's current wet/dry verdict.
type ProbeStatus string

const (
	ProbeWet ProbeStatus = "wet"
	ProbeDry ProbeStatus = "dry"
)

// DisplaySensor is one gauge on the dashboard: the smoothed value (nil
// while dry or never reported) and its quality classification.
type DisplaySensor struct {
	Key     sensor.Key     `json:"key"`
	Name    string         `json:"name"`
	Unit    string         `json:"unit"`
	Value   *float64       `json:"value"`
	Quality sensor.Quality `json:"quality"`
}

// Snapshot is the full dashboard state at one instant.
type Snapshot struct {
	Sensors   []DisplaySensor  `json:"sensors"`
	Probe     ProbeStatus      `json:"probe"`
	Feed      telemetry.Status `json:"feed"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Pipeline conditions the live feed: every inbound frame is normalized,
// gated for immersion, smoothed for display, and recorded raw in the
// rolling history. A single goroutine owns all mutation; readers get
// consistent state through Snapshot.
type Pipeline struct {
	logger   *zap.Logger
	clock    clock.Clock
	gate     *Gate
	smoother *Smoother
	store    *history.Store
	metrics  *Metrics

	mu        sync.RWMutex
	raw       sensor.Record
	display   map[sensor.Key]*float64
	probe     ProbeStatus
	feed      telemetry.Status
	updatedAt time.Time
}

// New creates a pipeline over the given history store.
func New(cfg *config.Config, store *history.Store, metrics *Metrics, clk clock.Clock, logger *zap.Logger) *Pipeline {
	raw := make(sensor.Record, len(sensor.Keys))
	display := make(map[sensor.Key]*float64, len(sensor.Keys))
	for _, key := range sensor.Keys {
		raw[key] = nil
		display[key] = nil
	}

	return &Pipeline{
		logger:   logger,
		clock:    clk,
		gate:     NewGate(cfg.Gate, clk),
		smoother: NewSmoother(cfg.Smoothing),
		store:    store,
		metrics:  metrics,
		raw:      raw,
		display:  display,
		probe:    ProbeDry,
		feed:     telemetry.StatusConnecting,
	}
}

// Run consumes the connector's channels until the context is cancelled
// or both channels close. It is the only goroutine that mutates state.
func (p *Pipeline) Run(ctx context.Context, messages <-chan []byte, statuses <-chan telemetry.Status) {
	for messages != nil || statuses != nil {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			p.handleFrame(data)
		case st, ok := <-statuses:
			if !ok {
				statuses = nil
				continue
			}
			p.setFeed(st)
		}
	}
}

// HandleFrame processes one raw frame. Exposed for tests; Run is the
// production entry point.
func (p *Pipeline) HandleFrame(data []byte) {
	p.handleFrame(data)
}

func (p *Pipeline) handleFrame(data []byte) {
	msg := telemetry.Normalize(data)
	if msg == nil {
		p.metrics.unmatchedTotal.Inc()
		p.logger.Debug("frame matched no payload shape", zap.ByteString("frame", data))
		return
	}
	p.metrics.messagesTotal.WithLabelValues(string(msg.Shape)).Inc()

	wet := p.gate.Evaluate(msg)

	p.mu.Lock()
	if wet {
		p.metrics.gateDecisions.WithLabelValues("wet").Inc()
		p.probe = ProbeWet
		p.applyWet(msg.Record)
	} else {
		p.metrics.gateDecisions.WithLabelValues("dry").Inc()
		p.probe = ProbeDry
		p.applyDry()
	}
	now := p.clock.Now()
	p.updatedAt = now
	rec := history.NewRecord(now, p.raw)
	p.mu.Unlock()

	n := p.store.Append(rec)
	p.metrics.historyAppends.Inc()
	p.metrics.historyRecords.Set(float64(n))
}

// applyWet folds the reported readings into the raw and display state.
// Keys the message does not mention keep their previous values; an
// explicit null clears both the raw value and the smoother baseline.
func (p *Pipeline) applyWet(rec sensor.Record) {
	for key, v := range rec {
		if v == nil {
			p.raw[key] = nil
			p.display[key] = nil
			p.smoother.Forget(key)
			continue
		}
		p.raw[key] = v

		smoothed, changed := p.smoother.Update(key, *v)
		if changed {
			p.metrics.displayUpdates.WithLabelValues(string(key)).Inc()
		}
		s := smoothed
		p.display[key] = &s
	}
}

// applyDry suppresses every sensor: the record documents the dry period
// with explicit nulls, and the smoother baselines are discarded so the
// next immersion starts fresh.
func (p *Pipeline) applyDry() {
	for _, key := range sensor.Keys {
		p.raw[key] = nil
		p.display[key] = nil
	}
	p.smoother.Reset()
}

func (p *Pipeline) setFeed(st telemetry.Status) {
	p.mu.Lock()
	p.feed = st
	p.mu.Unlock()

	p.logger.Info("telemetry feed status", zap.String("status", string(st)))
}

// Snapshot returns the current dashboard state, sensors in display
// order.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sensors := make([]DisplaySensor, 0, len(sensor.DisplayOrder))
	for _, key := range sensor.DisplayOrder {
		v := p.display[key]
		var copied *float64
		if v != nil {
			c := *v
			copied = &c
		}
		sensors = append(sensors, DisplaySensor{
			Key:     key,
			Name:    key.DisplayName(),
			Unit:    key.Unit(),
			Value:   copied,
			Quality: sensor.Classify(key, v),
		})
	}

	return Snapshot{
		Sensors:   sensors,
		Probe:     p.probe,
		Feed:      p.feed,
		UpdatedAt: p.updatedAt,
	}
}
