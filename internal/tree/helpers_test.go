package tree

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/arbor/internal/repo"
	"github.com/roach88/arbor/internal/store"
	"github.com/roach88/arbor/internal/testutil"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(
		filepath.Join(t.TempDir(), "tree.db"),
		store.WithIDGenerator(testutil.NewSequenceIDs("node")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// beginTx returns a NOT_STARTED transaction rolled back at cleanup.
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
