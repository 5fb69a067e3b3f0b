package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/arbor/internal/logging"
	"github.com/roach88/arbor/internal/repo"
	"github.com/roach88/arbor/internal/testutil"
)

// createTestStore creates a new store in a temp directory with
// deterministic node ids ("node-1", "node-2", ...).
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	opts = append([]Option{
		WithIDGenerator(testutil.NewSequenceIDs("node")),
		WithLogger(logging.NewNop()),
	}, opts...)
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// beginTx opens a transaction that is rolled back at cleanup unless the
// test finalizes it first. Cleanups run LIFO, so the rollback happens
// before the store closes.
func beginTx(t *testing.T, s *Store) *repo.Transaction {
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

// mustAdd adds a child and fails the test on error.
func mustAdd(t *testing.T, s *Store, tx *repo.Transaction, parent repo.Node, name, nodeType string) repo.Node {
	t.Helper()
	n, err := s.AddChild(tx, parent, name, nodeType)
	require.NoError(t, err)
	return n
}

// mustRoot returns the root node and fails the test on error.
func mustRoot(t *testing.T, s *Store, tx *repo.Transaction) repo.Node {
	t.Helper()
	root, err := s.Root(tx)
	require.NoError(t, err)
	return root
}
