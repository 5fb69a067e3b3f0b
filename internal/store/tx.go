package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/roach88/arbor/internal/metrics"
	"github.com/roach88/arbor/internal/repo"
)

// work is the store-side unit of work behind a repo.Transaction.
type work struct {
	store *Store
	tx    *sql.Tx
	id    string
	name  string
}

func (w *work) Commit() error {
	if err := w.tx.Commit(); err != nil {
		w.store.metrics.Transaction(metrics.OutcomeFailed)
		w.store.log.Debug("transaction commit failed", "tx", w.name, "id", w.id, "error", err)
		return err
	}
	w.store.metrics.Transaction(metrics.OutcomeCommitted)
	w.store.log.Debug("transaction committed", "tx", w.name, "id", w.id)
	return nil
}

func (w *work) Rollback() error {
	err := w.tx.Rollback()
	w.store.metrics.Transaction(metrics.OutcomeRolledBack)
	w.store.log.Debug("transaction rolled back", "tx", w.name, "id", w.id)
	return err
}

// Begin opens a SQL transaction and returns it as a NOT_STARTED
// repo.Transaction. The SQL transaction holds the store's only connection
// until Commit or Rollback, so a second Begin blocks until then.
func (s *Store) Begin(ctx context.Context, name string) (*repo.Transaction, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, repo.Wrap("begin", err)
	}
	id := uuid.Must(uuid.NewV7()).String()
	w := &work{store: s, tx: sqlTx, id: id, name: name}
	s.log.Debug("transaction started", "tx", name, "id", id)
	return repo.NewTransaction(ctx, id, name, w), nil
}

// sqlTx returns the SQL transaction behind tx after checking it is open
// and belongs to this store.
func (s *Store) sqlTx(tx *repo.Transaction, op string) (*sql.Tx, error) {
	if err := repo.CheckOpen(tx, op); err != nil {
		return nil, err
	}
	w, ok := tx.Work().(*work)
	if !ok || w.store != s {
		return nil, repo.Errorf(repo.CodeInvalidArgument, op, "transaction does not belong to this store")
	}
	return w.tx, nil
}
