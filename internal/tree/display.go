package tree

import (
	"fmt"
	"strings"

	"github.com/roach88/arbor/internal/repo"
	"github.com/roach88/arbor/internal/value"
)

// FindPathOfReference returns the path of the node with identifier id, or
// "" when no such node exists.
func FindPathOfReference(tx *repo.Transaction, s repo.Store, id string) (string, error) {
	const op = "find path of reference"
	if err := checkDisplay(op, tx, s); err != nil {
		return "", err
	}
	if id == "" {
		return "", repo.Errorf(repo.CodeInvalidArgument, op, "reference id is required")
	}
	n, err := s.GetUsingID(tx, id)
	if repo.IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return n.Path, nil
}

// DisplayValue renders the named property of node for humans.
// Multi-valued properties render as [v1,v2,...]. References show the target
// path when it resolves and the raw identifier otherwise. Binary values are
// never shown.
func DisplayValue(tx *repo.Transaction, s repo.Store, node repo.Node, name string) (string, error) {
	const op = "display value"
	if err := checkDisplay(op, tx, s); err != nil {
		return "", err
	}
	p, err := s.Property(tx, node, name)
	if err != nil {
		return "", err
	}

	parts := make([]string, len(p.Values))
	for i, v := range p.Values {
		parts[i] = displayOne(tx, s, v)
	}
	if p.Multiple {
		return "[" + strings.Join(parts, ",") + "]", nil
	}
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], nil
}

// DisplayNameAndValue renders "name=value". Rendering failures other than
// a wrong transaction state degrade to a marker naming the property path.
func DisplayNameAndValue(tx *repo.Transaction, s repo.Store, node repo.Node, name string) (string, error) {
	const op = "display name and value"
	if err := checkDisplay(op, tx, s); err != nil {
		return "", err
	}
	v, err := DisplayValue(tx, s, node, name)
	if err != nil {
		return fmt.Sprintf("%s= on deleted node %s", name, repo.Join(node.Path, name)), nil
	}
	return name + "=" + v, nil
}

func displayOne(tx *repo.Transaction, s repo.Store, v value.Value) string {
	switch val := v.(type) {
	case value.BinaryValue:
		return value.BinaryPlaceholder
	case value.ReferenceValue:
		path, err := FindPathOfReference(tx, s, val.ID())
		if err == nil && strings.TrimSpace(path) != "" {
			return path
		}
		return val.ID()
	default:
		return value.Format(v)
	}
}

func checkDisplay(op string, tx *repo.Transaction, s repo.Store) error {
	if err := repo.RequireNotStarted(tx, op); err != nil {
		return err
	}
	if s == nil {
		return repo.Errorf(repo.CodeInvalidArgument, op, "store is required")
	}
	return nil
}
