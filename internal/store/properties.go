package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/arbor/internal/repo"
	"github.com/roach88/arbor/internal/value"
)

// PropertyNames returns the node's property names, sorted.
func (s *Store) PropertyNames(tx *repo.Transaction, node repo.Node) ([]string, error) {
	const op = "property names"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return nil, err
	}
	ctx := tx.Context()
	if err := s.requireNode(ctx, q, op, node); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT name FROM properties WHERE node_id = ? ORDER BY name COLLATE BINARY ASC
	`, node.ID)
	if err != nil {
		return nil, repo.Wrap(op, fmt.Errorf("query property names: %w", err))
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, repo.Wrap(op, fmt.Errorf("scan property name: %w", err))
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, repo.Wrap(op, fmt.Errorf("iterate property names: %w", err))
	}
	return names, nil
}

// HasProperty reports whether the node has the named property.
func (s *Store) HasProperty(tx *repo.Transaction, node repo.Node, name string) (bool, error) {
	const op = "has property"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return false, err
	}
	ctx := tx.Context()
	if err := s.requireNode(ctx, q, op, node); err != nil {
		return false, err
	}
	var one int
	err = q.QueryRowContext(ctx, `
		SELECT 1 FROM properties WHERE node_id = ? AND name = ?
	`, node.ID, repo.NormalizeName(name)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, repo.Wrap(op, fmt.Errorf("check property: %w", err))
	}
	return true, nil
}

// Property returns the named property.
func (s *Store) Property(tx *repo.Transaction, node repo.Node, name string) (value.Property, error) {
	const op = "property"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return value.Property{}, err
	}
	name = repo.NormalizeName(name)
	if name == "" {
		return value.Property{}, repo.Errorf(repo.CodeInvalidArgument, op, "property name is required")
	}
	ctx := tx.Context()
	if err := s.requireNode(ctx, q, op, node); err != nil {
		return value.Property{}, err
	}

	var (
		typ      string
		multiple bool
		vals     string
	)
	err = q.QueryRowContext(ctx, `
		SELECT value_type, multiple, vals FROM properties WHERE node_id = ? AND name = ?
	`, node.ID, name).Scan(&typ, &multiple, &vals)
	if errors.Is(err, sql.ErrNoRows) {
		return value.Property{}, repo.NewNotFound(op, repo.Join(node.Path, name), "property")
	}
	if err != nil {
		return value.Property{}, repo.Wrap(op, fmt.Errorf("load property: %w", err))
	}
	return decodeProperty(op, node, name, typ, multiple, vals)
}

// Properties returns every property of node, sorted by name.
func (s *Store) Properties(tx *repo.Transaction, node repo.Node) ([]value.Property, error) {
	const op = "properties"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return nil, err
	}
	ctx := tx.Context()
	if err := s.requireNode(ctx, q, op, node); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT name, value_type, multiple, vals FROM properties
		WHERE node_id = ?
		ORDER BY name COLLATE BINARY ASC
	`, node.ID)
	if err != nil {
		return nil, repo.Wrap(op, fmt.Errorf("query properties: %w", err))
	}
	defer rows.Close()

	props := []value.Property{}
	for rows.Next() {
		var (
			name, typ, vals string
			multiple        bool
		)
		if err := rows.Scan(&name, &typ, &multiple, &vals); err != nil {
			return nil, repo.Wrap(op, fmt.Errorf("scan property: %w", err))
		}
		p, err := decodeProperty(op, node, name, typ, multiple, vals)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, repo.Wrap(op, fmt.Errorf("iterate properties: %w", err))
	}
	return props, nil
}

// SetProperty replaces the named property with vals. No values removes it.
//
// The write is validated before touching the store:
//   - a single-valued property takes exactly one value
//   - every value has the declared type
//   - on non-residual node types the property must be declared with the
//     same type and multiplicity
//   - reference targets exist
func (s *Store) SetProperty(tx *repo.Transaction, node repo.Node, name string, t value.Type, multiple bool, vals ...value.Value) error {
	const op = "set property"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return err
	}
	name = repo.NormalizeName(name)
	if err := repo.ValidateName(name); err != nil {
		return &repo.Error{Code: repo.CodeInvalidArgument, Op: op, Message: err.Error(), Path: node.Path}
	}
	if !t.Valid() {
		return repo.Errorf(repo.CodeInvalidArgument, op, "unknown value type %q", t)
	}
	if len(vals) == 0 {
		return s.RemoveProperty(tx, node, name)
	}
	if !multiple && len(vals) != 1 {
		return repo.Errorf(repo.CodeInvalidArgument, op, "single-valued property %s given %d values", name, len(vals))
	}
	if err := value.Check(t, vals); err != nil {
		return &repo.Error{Code: repo.CodeInvalidArgument, Op: op, Message: err.Error(), Path: repo.Join(node.Path, name)}
	}

	ctx := tx.Context()
	current, err := s.nodeByID(ctx, q, op, node.ID)
	if err != nil {
		return err
	}
	if err := s.checkDeclared(op, current, name, t, multiple); err != nil {
		return err
	}
	if t == value.TypeReference {
		if err := s.checkReferences(ctx, q, op, vals); err != nil {
			return err
		}
	}

	encoded, err := json.Marshal(lexical(vals))
	if err != nil {
		return repo.Wrap(op, fmt.Errorf("encode values: %w", err))
	}
	if _, err := q.ExecContext(ctx, `
		INSERT INTO properties (node_id, name, value_type, multiple, vals)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(node_id, name) DO UPDATE SET
			value_type = excluded.value_type,
			multiple = excluded.multiple,
			vals = excluded.vals
	`, node.ID, name, string(t), multiple, string(encoded)); err != nil {
		return repo.Wrap(op, fmt.Errorf("upsert property: %w", err))
	}
	return nil
}

// RemoveProperty deletes the named property. Absent properties are ignored.
func (s *Store) RemoveProperty(tx *repo.Transaction, node repo.Node, name string) error {
	const op = "remove property"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return err
	}
	ctx := tx.Context()
	if err := s.requireNode(ctx, q, op, node); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, `
		DELETE FROM properties WHERE node_id = ? AND name = ?
	`, node.ID, repo.NormalizeName(name)); err != nil {
		return repo.Wrap(op, fmt.Errorf("delete property: %w", err))
	}
	return nil
}

// checkDeclared validates a write against the node's types.
func (s *Store) checkDeclared(op string, node repo.Node, name string, t value.Type, multiple bool) error {
	pd, declared := s.schema.FindPropertyDescriptor(node.PrimaryType, node.Mixins, name)
	if !declared {
		if s.schema.IsResidual(node.PrimaryType, node.Mixins) {
			return nil
		}
		return &repo.Error{
			Code:     repo.CodeInvalidArgument,
			Op:       op,
			Message:  fmt.Sprintf("property %s is not declared", name),
			Path:     node.Path,
			NodeType: node.PrimaryType,
		}
	}
	if pd.Type != t || pd.Multiple != multiple {
		return &repo.Error{
			Code: repo.CodeInvalidArgument,
			Op:   op,
			Message: fmt.Sprintf("property %s is declared %s (multiple=%t) by %s, got %s (multiple=%t)",
				name, pd.Type, pd.Multiple, pd.DeclaringType, t, multiple),
			Path:     node.Path,
			NodeType: node.PrimaryType,
		}
	}
	return nil
}

// checkReferences verifies every reference target exists.
func (s *Store) checkReferences(ctx context.Context, q *sql.Tx, op string, vals []value.Value) error {
	for _, v := range vals {
		ref, ok := v.(value.ReferenceValue)
		if !ok {
			continue
		}
		var one int
		err := q.QueryRowContext(ctx, `SELECT 1 FROM nodes WHERE id = ?`, ref.ID()).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return repo.Errorf(repo.CodeInvalidArgument, op, "reference target %s not found", ref.ID())
		}
		if err != nil {
			return repo.Wrap(op, fmt.Errorf("check reference: %w", err))
		}
	}
	return nil
}

func lexical(vals []value.Value) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = value.Format(v)
	}
	return out
}

func decodeProperty(op string, node repo.Node, name, typ string, multiple bool, vals string) (value.Property, error) {
	t, err := value.ParseType(typ)
	if err != nil {
		return value.Property{}, repo.Wrap(op, err)
	}
	var lex []string
	if err := json.Unmarshal([]byte(vals), &lex); err != nil {
		return value.Property{}, repo.Wrap(op, fmt.Errorf("decode property %s: %w", name, err))
	}
	p := value.Property{
		Name:     name,
		Path:     repo.Join(node.Path, name),
		Type:     t,
		Multiple: multiple,
		Values:   make([]value.Value, 0, len(lex)),
	}
	for _, s := range lex {
		v, err := value.Parse(t, s)
		if err != nil {
			return value.Property{}, repo.Wrap(op, fmt.Errorf("decode property %s: %w", name, err))
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}
