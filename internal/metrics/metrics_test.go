package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.NodeCreated()
	m.NodeCreated()
	m.NodeRemoved()
	m.Resolution("table", OutcomeResolved)
	m.Resolution("table", OutcomeMismatch)
	m.Resolution("table", OutcomeResolved)
	m.Transaction(OutcomeCommitted)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NodesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodesRemoved))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TypeResolutions.WithLabelValues("table", OutcomeResolved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TypeResolutions.WithLabelValues("table", OutcomeMismatch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transactions.WithLabelValues(OutcomeCommitted)))
}

func TestMetrics_Independent(t *testing.T) {
	a, b := New(), New()
	a.NodeCreated()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.NodesCreated))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.NodeCreated()
	m.NodeRemoved()
	m.Resolution("k", OutcomeResolved)
	m.Transaction(OutcomeFailed)

	snap, err := m.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestSnapshot_Format(t *testing.T) {
	m := New()
	m.NodeCreated()
	m.Transaction(OutcomeRolledBack)

	snap, err := m.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1.0, snap["arbor_nodes_created_total"])
	assert.Equal(t, 1.0, snap["arbor_transactions_total{outcome=rolled_back}"])

	out := Format(snap)
	assert.Contains(t, out, "arbor_nodes_created_total 1\n")
	assert.Contains(t, out, "arbor_transactions_total{outcome=rolled_back} 1\n")
}
