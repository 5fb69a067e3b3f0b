package repo

import (
	"context"
	"sync"
)

// State is the lifecycle state of a Transaction.
type State int

const (
	StateNotStarted State = iota
	StateActive
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateActive:
		return "ACTIVE"
	case StateCommitted:
		return "COMMITTED"
	case StateRolledBack:
		return "ROLLED_BACK"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateRolledBack
}

// Work is the store-side unit of work behind a Transaction.
// Store adapters supply their own implementation.
type Work interface {
	Commit() error
	Rollback() error
}

// Transaction scopes every read and write issued against a Store.
//
// State machine: NOT_STARTED -> ACTIVE -> (COMMITTED | ROLLED_BACK).
// Reads and writes are allowed while the transaction is NOT_STARTED or
// ACTIVE. Display operations require NOT_STARTED. Commit and Rollback are
// allowed from either open state; a failed commit leaves the transaction
// ROLLED_BACK. Transactions do not nest.
//
// A Transaction is meant for a single caller. The mutex only keeps State
// reads consistent for observers such as metrics.
type Transaction struct {
	mu    sync.Mutex
	id    string
	name  string
	ctx   context.Context
	state State
	work  Work
}

// NewTransaction creates a NOT_STARTED transaction bound to ctx.
// work may be nil for transactions that only track state.
func NewTransaction(ctx context.Context, id, name string, work Work) *Transaction {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Transaction{
		id:    id,
		name:  name,
		ctx:   ctx,
		state: StateNotStarted,
		work:  work,
	}
}

// ID returns the transaction identifier.
func (tx *Transaction) ID() string { return tx.id }

// Name returns the caller-supplied transaction name.
func (tx *Transaction) Name() string { return tx.name }

// Context returns the context the transaction was created with.
func (tx *Transaction) Context() context.Context { return tx.ctx }

// Work returns the store-side unit of work.
func (tx *Transaction) Work() Work { return tx.work }

// State returns the current state.
func (tx *Transaction) State() State {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.state
}

// Begin moves the transaction from NOT_STARTED to ACTIVE.
func (tx *Transaction) Begin() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.state != StateNotStarted {
		return tx.stateError("begin", "transaction already %s", tx.state)
	}
	tx.state = StateActive
	return nil
}

// Commit finalizes the transaction.
func (tx *Transaction) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.state.Terminal() {
		return tx.stateError("commit", "transaction already %s", tx.state)
	}
	if tx.work != nil {
		if err := tx.work.Commit(); err != nil {
			tx.state = StateRolledBack
			return Wrap("commit", err)
		}
	}
	tx.state = StateCommitted
	return nil
}

// Rollback discards the transaction's work.
func (tx *Transaction) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.state.Terminal() {
		return tx.stateError("rollback", "transaction already %s", tx.state)
	}
	tx.state = StateRolledBack
	if tx.work != nil {
		if err := tx.work.Rollback(); err != nil {
			return Wrap("rollback", err)
		}
	}
	return nil
}

// CheckOpen fails with INVALID_STATE when the transaction is absent or finalized.
func CheckOpen(tx *Transaction, op string) error {
	if tx == nil {
		return Errorf(CodeInvalidArgument, op, "transaction is required")
	}
	if s := tx.State(); s.Terminal() {
		return tx.stateError(op, "transaction is %s", s)
	}
	return nil
}

// RequireNotStarted fails with INVALID_STATE unless the transaction is NOT_STARTED.
func RequireNotStarted(tx *Transaction, op string) error {
	if tx == nil {
		return Errorf(CodeInvalidArgument, op, "transaction is required")
	}
	if s := tx.State(); s != StateNotStarted {
		return tx.stateError(op, "transaction must be %s, is %s", StateNotStarted, s)
	}
	return nil
}

func (tx *Transaction) stateError(op, format string, args ...any) *Error {
	err := Errorf(CodeInvalidState, op, format, args...)
	if tx.name != "" {
		err.Message += " (tx=" + tx.name + ")"
	}
	return err
}
