package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/arbor/internal/repo"
)

// nodeRow is a nodes table row before its path is known.
type nodeRow struct {
	id          string
	parentID    string
	name        string
	primaryType string
}

// Root returns the root node.
func (s *Store) Root(tx *repo.Transaction) (repo.Node, error) {
	const op = "root"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return repo.Node{}, err
	}
	return s.nodeByID(tx.Context(), q, op, repo.RootID)
}

// Get returns the node at an absolute path.
// A leading slash is optional; "" and "/" address the root.
func (s *Store) Get(tx *repo.Transaction, path string) (repo.Node, error) {
	const op = "get"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return repo.Node{}, err
	}
	return s.nodeByPath(tx.Context(), q, op, path)
}

// Exists reports whether a node exists at an absolute path.
func (s *Store) Exists(tx *repo.Transaction, path string) (bool, error) {
	_, err := s.Get(tx, path)
	if repo.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetUsingID returns the node with the given identifier.
func (s *Store) GetUsingID(tx *repo.Transaction, id string) (repo.Node, error) {
	const op = "get using id"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return repo.Node{}, err
	}
	if id == "" {
		return repo.Node{}, repo.Errorf(repo.CodeInvalidArgument, op, "id is required")
	}
	return s.nodeByID(tx.Context(), q, op, id)
}

// HasRawChild reports whether a descendant at relPath exists under parent
// and, when nodeType is given, is of that type.
func (s *Store) HasRawChild(tx *repo.Transaction, parent repo.Node, relPath, nodeType string) (bool, error) {
	const op = "has raw child"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return false, err
	}
	if parent.IsZero() {
		return false, repo.Errorf(repo.CodeInvalidArgument, op, "parent is required")
	}
	if repo.TrimSlashes(relPath) == "" {
		return false, repo.Errorf(repo.CodeInvalidArgument, op, "relative path is required")
	}

	id, err := s.resolve(tx.Context(), q, op, parent.ID, repo.SplitPath(relPath))
	if repo.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if nodeType == "" {
		return true, nil
	}
	n, err := s.nodeByID(tx.Context(), q, op, id)
	if err != nil {
		return false, err
	}
	return n.IsType(nodeType), nil
}

// RawChildren returns the children of parent named name, in store order.
// "b[2]" selects only the second same-name sibling.
func (s *Store) RawChildren(tx *repo.Transaction, parent repo.Node, name string) ([]repo.Node, error) {
	const op = "raw children"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return nil, err
	}
	if parent.IsZero() {
		return nil, repo.Errorf(repo.CodeInvalidArgument, op, "parent is required")
	}
	name = repo.NormalizeName(name)
	bare, idx, err := repo.ParseSegment(name)
	if err != nil {
		return nil, &repo.Error{Code: repo.CodeInvalidArgument, Op: op, Message: err.Error()}
	}
	children, err := s.children(tx.Context(), q, op, parent)
	if err != nil {
		return nil, err
	}

	out := []repo.Node{}
	explicit := bare != name
	for _, c := range children {
		if c.Name != bare {
			continue
		}
		if explicit && c.Index != idx {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Children returns every child of parent in store order.
func (s *Store) Children(tx *repo.Transaction, parent repo.Node) ([]repo.Node, error) {
	const op = "children"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return nil, err
	}
	if parent.IsZero() {
		return nil, repo.Errorf(repo.CodeInvalidArgument, op, "parent is required")
	}
	return s.children(tx.Context(), q, op, parent)
}

// AddChild creates a new last child of parent.
// An empty nodeType creates an nt:unstructured node.
func (s *Store) AddChild(tx *repo.Transaction, parent repo.Node, name, nodeType string) (repo.Node, error) {
	const op = "add child"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return repo.Node{}, err
	}
	if parent.IsZero() {
		return repo.Node{}, repo.Errorf(repo.CodeInvalidArgument, op, "parent is required")
	}
	name = repo.NormalizeName(name)
	if err := repo.ValidateName(name); err != nil {
		return repo.Node{}, &repo.Error{Code: repo.CodeInvalidArgument, Op: op, Message: err.Error(), Path: parent.Path}
	}
	if nodeType == "" {
		nodeType = repo.DefaultNodeType
	}
	if s.schema.IsMixin(nodeType) {
		return repo.Node{}, repo.Errorf(repo.CodeInvalidArgument, op, "mixin %s cannot be a primary type", nodeType)
	}

	ctx := tx.Context()
	if err := s.requireNode(ctx, q, op, parent); err != nil {
		return repo.Node{}, err
	}

	var position int64
	if err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM nodes WHERE parent_id = ?`,
		parent.ID,
	).Scan(&position); err != nil {
		return repo.Node{}, repo.Wrap(op, fmt.Errorf("next position: %w", err))
	}

	id := s.ids.NewID()
	if _, err := q.ExecContext(ctx, `
		INSERT INTO nodes (id, parent_id, name, position, primary_type)
		VALUES (?, ?, ?, ?, ?)
	`, id, parent.ID, name, position, nodeType); err != nil {
		return repo.Node{}, repo.Wrap(op, fmt.Errorf("insert node: %w", err))
	}

	n, err := s.nodeByID(ctx, q, op, id)
	if err != nil {
		return repo.Node{}, err
	}
	s.metrics.NodeCreated()
	s.log.Debug("node created", "path", n.Path, "type", nodeType, "id", id)
	return n, nil
}

// AddDescriptor tags node with an auxiliary type. Adding a descriptor the
// node already carries is a no-op.
func (s *Store) AddDescriptor(tx *repo.Transaction, node repo.Node, descriptor string) (repo.Node, error) {
	const op = "add descriptor"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return repo.Node{}, err
	}
	if node.IsZero() {
		return repo.Node{}, repo.Errorf(repo.CodeInvalidArgument, op, "node is required")
	}
	if descriptor == "" {
		return repo.Node{}, repo.Errorf(repo.CodeInvalidArgument, op, "descriptor is required")
	}
	if nt, ok := s.schema.Lookup(descriptor); ok && !nt.Mixin {
		return repo.Node{}, repo.Errorf(repo.CodeInvalidArgument, op, "%s is not a mixin type", descriptor)
	}

	ctx := tx.Context()
	if err := s.requireNode(ctx, q, op, node); err != nil {
		return repo.Node{}, err
	}
	if _, err := q.ExecContext(ctx, `
		INSERT INTO node_mixins (node_id, mixin) VALUES (?, ?)
		ON CONFLICT(node_id, mixin) DO NOTHING
	`, node.ID, descriptor); err != nil {
		return repo.Node{}, repo.Wrap(op, fmt.Errorf("insert mixin: %w", err))
	}
	return s.nodeByID(ctx, q, op, node.ID)
}

// Remove deletes node. Foreign key cascades remove its properties,
// descriptors and subtree.
func (s *Store) Remove(tx *repo.Transaction, node repo.Node) error {
	const op = "remove"
	q, err := s.sqlTx(tx, op)
	if err != nil {
		return err
	}
	if node.IsZero() {
		return repo.Errorf(repo.CodeInvalidArgument, op, "node is required")
	}
	if node.ID == repo.RootID {
		return repo.Errorf(repo.CodeInvalidArgument, op, "the root node cannot be removed")
	}

	res, err := q.ExecContext(tx.Context(), `DELETE FROM nodes WHERE id = ?`, node.ID)
	if err != nil {
		return repo.Wrap(op, fmt.Errorf("delete node: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return repo.Wrap(op, err)
	}
	if n == 0 {
		return repo.NewNotFound(op, node.Path, "node")
	}
	s.metrics.NodeRemoved()
	s.log.Debug("node removed", "path", node.Path, "id", node.ID)
	return nil
}

// requireNode fails with NOT_FOUND when node no longer exists.
func (s *Store) requireNode(ctx context.Context, q *sql.Tx, op string, node repo.Node) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM nodes WHERE id = ?`, node.ID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return repo.NewNotFound(op, node.Path, "node")
	}
	if err != nil {
		return repo.Wrap(op, fmt.Errorf("check node: %w", err))
	}
	return nil
}

// nodeByPath walks an absolute path from the root.
func (s *Store) nodeByPath(ctx context.Context, q *sql.Tx, op, path string) (repo.Node, error) {
	id, err := s.resolve(ctx, q, op, repo.RootID, repo.SplitPath(path))
	if err != nil {
		if repo.IsNotFound(err) {
			return repo.Node{}, repo.NewNotFound(op, path, "node")
		}
		return repo.Node{}, err
	}
	return s.nodeByID(ctx, q, op, id)
}

// resolve walks segments from the node with id start and returns the id
// of the last one.
func (s *Store) resolve(ctx context.Context, q *sql.Tx, op, start string, segments []string) (string, error) {
	id := start
	for _, seg := range segments {
		name, idx, err := repo.ParseSegment(repo.NormalizeName(seg))
		if err != nil {
			return "", &repo.Error{Code: repo.CodeInvalidArgument, Op: op, Message: err.Error()}
		}
		var next string
		err = q.QueryRowContext(ctx, `
			SELECT id FROM nodes
			WHERE parent_id = ? AND name = ?
			ORDER BY position ASC
			LIMIT 1 OFFSET ?
		`, id, name, idx-1).Scan(&next)
		if errors.Is(err, sql.ErrNoRows) {
			return "", repo.NewNotFound(op, seg, "node")
		}
		if err != nil {
			return "", repo.Wrap(op, fmt.Errorf("resolve %q: %w", seg, err))
		}
		id = next
	}
	return id, nil
}

// nodeByID loads a node with its path and descriptors.
func (s *Store) nodeByID(ctx context.Context, q *sql.Tx, op, id string) (repo.Node, error) {
	var row nodeRow
	var parent sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT id, parent_id, name, primary_type FROM nodes WHERE id = ?
	`, id).Scan(&row.id, &parent, &row.name, &row.primaryType)
	if errors.Is(err, sql.ErrNoRows) {
		return repo.Node{}, &repo.Error{Code: repo.CodeNotFound, Op: op, Message: fmt.Sprintf("node %s not found", id)}
	}
	if err != nil {
		return repo.Node{}, repo.Wrap(op, fmt.Errorf("load node: %w", err))
	}
	row.parentID = parent.String

	path, index, err := s.pathOf(ctx, q, op, id)
	if err != nil {
		return repo.Node{}, err
	}
	mixins, err := s.mixins(ctx, q, op, id)
	if err != nil {
		return repo.Node{}, err
	}
	return repo.Node{
		ID:          row.id,
		ParentID:    row.parentID,
		Path:        path,
		Name:        row.name,
		Index:       index,
		PrimaryType: row.primaryType,
		Mixins:      mixins,
	}, nil
}

// pathOf computes the absolute path of a node from its parent chain.
// A segment's index is one more than the number of earlier same-name siblings.
func (s *Store) pathOf(ctx context.Context, q *sql.Tx, op, id string) (string, int, error) {
	rows, err := q.QueryContext(ctx, `
		WITH RECURSIVE chain(id, parent_id, name, position, depth) AS (
			SELECT id, parent_id, name, position, 0 FROM nodes WHERE id = ?
			UNION ALL
			SELECT n.id, n.parent_id, n.name, n.position, c.depth + 1
			FROM nodes n JOIN chain c ON n.id = c.parent_id
		)
		SELECT c.name, c.parent_id IS NULL,
			(SELECT COUNT(*) FROM nodes s
			 WHERE s.parent_id = c.parent_id AND s.name = c.name AND s.position < c.position) + 1
		FROM chain c
		ORDER BY c.depth DESC
	`, id)
	if err != nil {
		return "", 0, repo.Wrap(op, fmt.Errorf("query path: %w", err))
	}
	defer rows.Close()

	path := repo.RootPath
	index := 1
	for rows.Next() {
		var name string
		var isRoot bool
		if err := rows.Scan(&name, &isRoot, &index); err != nil {
			return "", 0, repo.Wrap(op, fmt.Errorf("scan path: %w", err))
		}
		if isRoot {
			continue
		}
		path = repo.Join(path, repo.FormatSegment(name, index))
	}
	if err := rows.Err(); err != nil {
		return "", 0, repo.Wrap(op, fmt.Errorf("iterate path: %w", err))
	}
	return path, index, nil
}

// mixins returns the sorted descriptors of a node.
func (s *Store) mixins(ctx context.Context, q *sql.Tx, op, id string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT mixin FROM node_mixins WHERE node_id = ? ORDER BY mixin COLLATE BINARY ASC
	`, id)
	if err != nil {
		return nil, repo.Wrap(op, fmt.Errorf("query mixins: %w", err))
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, repo.Wrap(op, fmt.Errorf("scan mixin: %w", err))
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, repo.Wrap(op, fmt.Errorf("iterate mixins: %w", err))
	}
	return out, nil
}

// children loads every child of parent in position order. Rows are read
// fully before descriptors are queried, so no two result sets are open.
func (s *Store) children(ctx context.Context, q *sql.Tx, op string, parent repo.Node) ([]repo.Node, error) {
	if err := s.requireNode(ctx, q, op, parent); err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, primary_type FROM nodes
		WHERE parent_id = ?
		ORDER BY position ASC
	`, parent.ID)
	if err != nil {
		return nil, repo.Wrap(op, fmt.Errorf("query children: %w", err))
	}

	var out []repo.Node
	seen := map[string]int{}
	for rows.Next() {
		var n repo.Node
		if err := rows.Scan(&n.ID, &n.Name, &n.PrimaryType); err != nil {
			rows.Close()
			return nil, repo.Wrap(op, fmt.Errorf("scan child: %w", err))
		}
		seen[n.Name]++
		n.Index = seen[n.Name]
		n.ParentID = parent.ID
		n.Path = repo.Join(parent.Path, repo.FormatSegment(n.Name, n.Index))
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, repo.Wrap(op, fmt.Errorf("iterate children: %w", err))
	}
	rows.Close()

	for i := range out {
		if out[i].Mixins, err = s.mixins(ctx, q, op, out[i].ID); err != nil {
			return nil, err
		}
	}
	if out == nil {
		out = []repo.Node{}
	}
	return out, nil
}
