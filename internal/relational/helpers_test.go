package relational

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/arbor/internal/logging"
	"github.com/roach88/arbor/internal/repo"
	"github.com/roach88/arbor/internal/store"
	"github.com/roach88/arbor/internal/testutil"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(
		filepath.Join(t.TempDir(), "relational.db"),
		store.WithIDGenerator(testutil.NewSequenceIDs("node")),
		store.WithLogger(logging.NewNop()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func beginTx(t *testing.T, s *store.Store) *repo.Transaction {
	t.Helper()
	tx, err := s.Begin(context.Background(), t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if !tx.State().Terminal() {
			_ = tx.Rollback()
		}
	})
	return tx
}

func rootOf(t *testing.T, s *store.Store, tx *repo.Transaction) repo.Node {
	t.Helper()
	root, err := s.Root(tx)
	require.NoError(t, err)
	return root
}

// newTestModel creates /models/<name>.
func newTestModel(t *testing.T, s *store.Store, tx *repo.Transaction, name string) *Model {
	t.Helper()
	m, err := CreateModel(tx, s, rootOf(t, s, tx), "models/"+name)
	require.NoError(t, err)
	return m
}

// newTestTable creates /models/m/<name>.
func newTestTable(t *testing.T, s *store.Store, tx *repo.Transaction, name string) *Table {
	t.Helper()
	tbl, err := newTestModel(t, s, tx, "m").AddTable(name)
	require.NoError(t, err)
	return tbl
}
