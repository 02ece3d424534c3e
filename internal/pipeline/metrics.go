package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects counters about the ingestion pipeline
type Metrics struct {
	messagesTotal  *prometheus.CounterVec
	unmatchedTotal prometheus.Counter
	gateDecisions  *prometheus.CounterVec
	historyAppends prometheus.Counter
	historyRecords prometheus.Gauge
	displayUpdates *prometheus.CounterVec
}

// NewMetrics registers the pipeline metrics against the registry
func NewMetrics(reg prometheus.Registerer) *Metrics {
	const namespace = "aqualink_monitor"

	messagesTotal := promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Total number of normalized telemetry messages by payload shape",
		},
		[]string{"shape"},
	)

	unmatchedTotal := promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unmatched_messages_total",
			Help:      "Total number of inbound frames that matched no payload shape",
		},
	)

	gateDecisions := promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Total number of wet/dry gate decisions by outcome",
		},
		[]string{"outcome"},
	)

	historyAppends := promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_appends_total",
			Help:      "Total number of records appended to the rolling history",
		},
	)

	historyRecords := promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_records",
			Help:      "Current number of records in the rolling history",
		},
	)

	displayUpdates := promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "display_updates_total",
			Help:      "Total number of displayed value changes by sensor",
		},
		[]string{"sensor"},
	)

	return &Metrics{
		messagesTotal:  messagesTotal,
		unmatchedTotal: unmatchedTotal,
		gateDecisions:  gateDecisions,
		historyAppends: historyAppends,
		historyRecords: historyRecords,
		displayUpdates: displayUpdates,
	}
}
