package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/arbor/internal/logging"
	"github.com/roach88/arbor/internal/relational"
	"github.com/roach88/arbor/internal/repo"
	"github.com/roach88/arbor/internal/schema"
	"github.com/roach88/arbor/internal/store"
	"github.com/roach88/arbor/internal/testutil"
	"github.com/roach88/arbor/internal/tree"
	"github.com/roach88/arbor/internal/value"
)

// Harness executes scenario steps against one store transaction.
type Harness struct {
	store  *store.Store
	tx     *repo.Transaction
	logger *slog.Logger
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger for step logging. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) { c.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with
// sequential node ids so the dump is reproducible.
//
// Execution flow:
// 1. Load the node types (builtin plus scenario type files)
// 2. Execute setup steps, aborting on the first failure
// 3. Execute flow steps, checking expect clauses
// 4. Evaluate assertions and render the dump
// 5. Commit and snapshot the counters
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	reg, err := loadTypes(scenario.Types)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:",
		store.WithSchema(reg),
		store.WithIDGenerator(testutil.NewSequenceIDs("node")),
		store.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	tx, err := st.Begin(context.Background(), scenario.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if !tx.State().Terminal() {
			_ = tx.Rollback()
		}
	}()

	h := &Harness{store: st, tx: tx, logger: cfg.logger}
	result := NewResult()

	for i, step := range scenario.Setup {
		produced, err := h.execute(step)
		result.AddTrace(traceEvent("setup", step, produced, err))
		if err != nil {
			return nil, fmt.Errorf("setup step %d (%s %s): %w", i, step.Op, step.Path, err)
		}
	}

	for i, step := range scenario.Flow {
		produced, err := h.execute(step)
		result.AddTrace(traceEvent("flow", step, produced, err))
		if msg := checkExpect(step, produced, err); msg != "" {
			result.AddError(fmt.Sprintf("flow[%d] %s %s: %s", i, step.Op, step.Path, msg))
		}
		h.logger.Debug("flow step completed", "step", i, "op", step.Op, "path", step.Path, "error", err)
	}

	root, err := st.Root(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to load root: %w", err)
	}
	result.Dump, err = tree.Traverse(tx, st, root)
	if err != nil {
		return nil, fmt.Errorf("failed to render tree: %w", err)
	}

	actx := &AssertionContext{Store: st, Tx: tx, Dump: result.Dump}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	result.Metrics, err = st.Metrics().Snapshot()
	if err != nil {
		return nil, err
	}
	return result, nil
}

func loadTypes(paths []string) (*schema.Registry, error) {
	reg, err := schema.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load builtin types: %w", err)
	}
	for _, p := range paths {
		reg, err = schema.LoadFile(reg, p)
		if err != nil {
			return nil, fmt.Errorf("failed to load types %s: %w", p, err)
		}
	}
	return reg, nil
}

func traceEvent(phase string, step Step, produced string, err error) TraceEvent {
	ev := TraceEvent{Phase: phase, Op: step.Op, Path: step.Path, Outcome: OutcomeOK, Result: produced}
	if err != nil {
		ev.Outcome = OutcomeError
		ev.Code = string(repo.CodeOf(err))
		ev.Result = ""
	}
	return ev
}

// checkExpect returns a failure message, or "" when the outcome matches.
func checkExpect(step Step, produced string, err error) string {
	want := ""
	if step.Expect != nil {
		want = step.Expect.Error
	}
	switch {
	case want == "" && err != nil:
		return fmt.Sprintf("unexpected error: %v", err)
	case want != "" && err == nil:
		return fmt.Sprintf("expected %s, step succeeded", want)
	case want != "" && string(repo.CodeOf(err)) != want:
		return fmt.Sprintf("expected %s, got %v", want, err)
	}
	if step.Expect != nil && step.Expect.Path != "" && step.Expect.Path != produced {
		return fmt.Sprintf("expected path %s, got %s", step.Expect.Path, produced)
	}
	return ""
}

// execute runs one step and returns the path it produced, if any.
func (h *Harness) execute(step Step) (string, error) {
	switch step.Op {
	case OpMkpath:
		at, err := h.node(step.At)
		if err != nil {
			return "", err
		}
		n, err := tree.FindOrCreate(h.tx, h.store, at, step.Path, step.Type, step.FinalType)
		return n.Path, err

	case OpAddChild:
		parent, err := h.node(step.Path)
		if err != nil {
			return "", err
		}
		n, err := h.store.AddChild(h.tx, parent, step.Name, step.Type)
		return n.Path, err

	case OpAddMixin:
		n, err := h.node(step.Path)
		if err != nil {
			return "", err
		}
		_, err = h.store.AddDescriptor(h.tx, n, step.Type)
		return "", err

	case OpSetProperty:
		return "", h.setProperty(step)

	case OpRemoveProperty:
		n, err := h.node(step.Path)
		if err != nil {
			return "", err
		}
		return "", h.store.RemoveProperty(h.tx, n, step.Name)

	case OpRemove:
		n, err := h.node(step.Path)
		if err != nil {
			return "", err
		}
		return "", h.store.Remove(h.tx, n)

	case OpModel:
		at, err := h.node(step.At)
		if err != nil {
			return "", err
		}
		m, err := relational.CreateModel(h.tx, h.store, at, step.Path)
		if err != nil {
			return "", err
		}
		return m.Path(), nil

	case OpTable:
		m, err := h.model(step.Path)
		if err != nil {
			return "", err
		}
		t, err := m.AddTable(step.Name)
		if err != nil {
			return "", err
		}
		return t.Path(), nil

	case OpColumn:
		t, err := h.table(step.Path)
		if err != nil {
			return "", err
		}
		c, err := t.AddColumn(step.Name)
		if err != nil {
			return "", err
		}
		return c.Path(), nil

	case OpPrimaryKey:
		t, err := h.table(step.Path)
		if err != nil {
			return "", err
		}
		pk, err := t.SetPrimaryKey(step.Name)
		if err != nil {
			return "", err
		}
		return pk.Path(), h.constrain(t, pk.AddColumn, step.Columns)

	case OpForeignKey:
		t, err := h.table(step.Path)
		if err != nil {
			return "", err
		}
		ref, err := h.table(step.References)
		if err != nil {
			return "", err
		}
		fk, err := t.AddForeignKey(step.Name, ref)
		if err != nil {
			return "", err
		}
		return fk.Path(), h.constrain(t, fk.AddColumn, step.Columns)

	case OpOption:
		n, err := h.node(step.Path)
		if err != nil {
			return "", err
		}
		opt, err := relational.ObjectOf(h.tx, h.store, n).SetStatementOption(step.Name, step.Value)
		if err != nil || opt == nil {
			return "", err
		}
		return opt.Path(), nil
	}
	return "", repo.NewUnsupported("run step", fmt.Sprintf("unknown op %q", step.Op))
}

// node returns the node at an absolute path. "" is the root.
func (h *Harness) node(path string) (repo.Node, error) {
	if strings.TrimSpace(path) == "" {
		return h.store.Root(h.tx)
	}
	return h.store.Get(h.tx, path)
}

func (h *Harness) model(path string) (*relational.Model, error) {
	n, err := h.node(path)
	if err != nil {
		return nil, err
	}
	return relational.ModelResolver.ResolveNode(h.tx, h.store, n)
}

func (h *Harness) table(path string) (*relational.Table, error) {
	n, err := h.node(path)
	if err != nil {
		return nil, err
	}
	return relational.TableResolver.ResolveNode(h.tx, h.store, n)
}

// constrain adds the named columns of t through add.
func (h *Harness) constrain(t *relational.Table, add func(*relational.Column) error, names []string) error {
	for _, name := range names {
		cols, err := t.Columns(name)
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			return repo.NewNotFound("constrain", repo.Join(t.Path(), name), "column")
		}
		if err := add(cols[0]); err != nil {
			return err
		}
	}
	return nil
}

func (h *Harness) setProperty(step Step) error {
	const op = "set property"
	n, err := h.node(step.Path)
	if err != nil {
		return err
	}
	t, err := value.ParseType(step.Type)
	if err != nil {
		return &repo.Error{Code: repo.CodeInvalidArgument, Op: op, Message: err.Error(), Path: step.Path}
	}
	vals := make([]value.Value, 0, len(step.Values))
	for _, lex := range step.Values {
		v, err := h.parseValue(t, lex)
		if err != nil {
			return err
		}
		vals = append(vals, v)
	}
	return h.store.SetProperty(h.tx, n, step.Name, t, step.Multiple, vals...)
}

// parseValue parses a lexical value. References name their target by path.
func (h *Harness) parseValue(t value.Type, lex string) (value.Value, error) {
	if t == value.TypeReference {
		target, err := h.store.Get(h.tx, lex)
		if err != nil {
			return nil, err
		}
		return value.Reference(target.ID), nil
	}
	v, err := value.Parse(t, lex)
	if err != nil {
		return nil, repo.NewParseError("set property", lex, err)
	}
	return v, nil
}
