// Package metrics exposes Prometheus counters for the node store and the
// type resolver registry.
//
// Each Metrics value owns its own prometheus.Registry, so stores opened in
// tests never share counters. All methods are safe on a nil *Metrics.
package metrics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Resolution outcomes.
const (
	OutcomeResolved = "resolved"
	OutcomeMismatch = "mismatch"
)

// Transaction outcomes.
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
	OutcomeFailed     = "failed"
)

// Metrics holds the arbor counters and the registry they are registered with.
type Metrics struct {
	Registry *prometheus.Registry

	NodesCreated    prometheus.Counter
	NodesRemoved    prometheus.Counter
	TypeResolutions *prometheus.CounterVec
	Transactions    *prometheus.CounterVec
}

// New creates counters registered on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		NodesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbor_nodes_created_total",
			Help: "Total number of nodes created",
		}),
		NodesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbor_nodes_removed_total",
			Help: "Total number of nodes removed, counting subtree roots only",
		}),
		TypeResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_type_resolutions_total",
				Help: "Typed view resolutions by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		Transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_transactions_total",
				Help: "Finished transactions by outcome",
			},
			[]string{"outcome"},
		),
	}
	m.Registry.MustRegister(m.NodesCreated, m.NodesRemoved, m.TypeResolutions, m.Transactions)
	return m
}

// NodeCreated counts one created node.
func (m *Metrics) NodeCreated() {
	if m == nil {
		return
	}
	m.NodesCreated.Inc()
}

// NodeRemoved counts one removed subtree.
func (m *Metrics) NodeRemoved() {
	if m == nil {
		return
	}
	m.NodesRemoved.Inc()
}

// Resolution counts a resolution attempt for kind.
func (m *Metrics) Resolution(kind, outcome string) {
	if m == nil {
		return
	}
	m.TypeResolutions.WithLabelValues(kind, outcome).Inc()
}

// Transaction counts a finished transaction.
func (m *Metrics) Transaction(outcome string) {
	if m == nil {
		return
	}
	m.Transactions.WithLabelValues(outcome).Inc()
}

// Snapshot gathers every counter into "name{label=value}" keys.
func (m *Metrics) Snapshot() (map[string]float64, error) {
	out := map[string]float64{}
	if m == nil {
		return out, nil
	}
	families, err := m.Registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			var labels []string
			for _, lp := range metric.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			key := mf.GetName()
			if len(labels) > 0 {
				key += "{" + strings.Join(labels, ",") + "}"
			}
			out[key] = metric.GetCounter().GetValue()
		}
	}
	return out, nil
}

// Format renders a snapshot as sorted "key value" lines.
func Format(snapshot map[string]float64) string {
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s %g\n", k, snapshot[k])
	}
	return b.String()
}
