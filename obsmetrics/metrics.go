// Package obsmetrics exposes Prometheus metrics for node runtime
// activity: state, data-path throughput, and checkpoint behavior.
package obsmetrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects every counter/gauge a running node graph exposes,
// all namespaced "flowfabric".
type Metrics struct {
	state *prometheus.GaugeVec

	updates   *prometheus.CounterVec
	withdraws *prometheus.CounterVec
	drops     *prometheus.CounterVec

	checkpoints *prometheus.CounterVec
	fatals      *prometheus.CounterVec

	mu      sync.RWMutex
	enabled bool
}

// New registers every flowfabric metric with registry. Pass
// prometheus.DefaultRegisterer for the global registry, or a fresh
// prometheus.NewRegistry() for test isolation.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		enabled: true,
		state: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "flowfabric",
			Name:      "node_state",
			Help:      "Current lifecycle state of a node, one gauge point set to 1 for the active state value",
		}, []string{"node", "state"}),
		updates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowfabric",
			Name:      "updates_total",
			Help:      "Indicator updates processed by a node's infilters",
		}, []string{"node", "accepted"}),
		withdraws: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowfabric",
			Name:      "withdraws_total",
			Help:      "Indicator withdraws processed by a node",
		}, []string{"node"}),
		drops: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowfabric",
			Name:      "drops_total",
			Help:      "Updates dropped by a node's infilters or outfilters",
		}, []string{"node", "stage"}),
		checkpoints: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowfabric",
			Name:      "checkpoints_total",
			Help:      "Checkpoint barriers completed by a node",
		}, []string{"node"}),
		fatals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowfabric",
			Name:      "fatals_total",
			Help:      "Fatal errors raised by a node, halting it",
		}, []string{"node"}),
	}
}

// SetState records node's current lifecycle state, clearing the gauge
// point for any state it previously reported.
func (m *Metrics) SetState(node, previous, current string) {
	if !m.enabledNow() {
		return
	}
	if previous != "" {
		m.state.WithLabelValues(node, previous).Set(0)
	}
	m.state.WithLabelValues(node, current).Set(1)
}

// RecordUpdate increments the update counter for node, labeled by
// whether the infilters accepted it.
func (m *Metrics) RecordUpdate(node string, accepted bool) {
	if !m.enabledNow() {
		return
	}
	label := "false"
	if accepted {
		label = "true"
	}
	m.updates.WithLabelValues(node, label).Inc()
}

// RecordWithdraw increments the withdraw counter for node.
func (m *Metrics) RecordWithdraw(node string) {
	if !m.enabledNow() {
		return
	}
	m.withdraws.WithLabelValues(node).Inc()
}

// RecordDrop increments the drop counter for node at the given stage
// ("infilter" or "outfilter").
func (m *Metrics) RecordDrop(node, stage string) {
	if !m.enabledNow() {
		return
	}
	m.drops.WithLabelValues(node, stage).Inc()
}

// RecordCheckpoint increments the checkpoint counter for node.
func (m *Metrics) RecordCheckpoint(node string) {
	if !m.enabledNow() {
		return
	}
	m.checkpoints.WithLabelValues(node).Inc()
}

// RecordFatal increments the fatal counter for node.
func (m *Metrics) RecordFatal(node string) {
	if !m.enabledNow() {
		return
	}
	m.fatals.WithLabelValues(node).Inc()
}

// Disable stops all recording methods from touching the underlying
// collectors, without unregistering them.
func (m *Metrics) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}

// Enable re-enables recording after Disable.
func (m *Metrics) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
}

func (m *Metrics) enabledNow() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}
