package tree

import (
	"strings"

	"github.com/roach88/arbor/internal/repo"
)

// FindOrCreate returns the node at path below parent, creating every
// missing segment.
//
// When defaultType is set and the whole path already resolves to a node of
// that type (primary or descriptor), that node is returned as is. The first
// matching same-name sibling of the last segment wins. Otherwise
// the path is walked segment by segment from parent: blank segments are
// skipped, an existing child is descended into (the first one in store
// order), and a missing one is created with its index suffix stripped.
// Created nodes get finalType on the last segment when given, else
// defaultType, else nt:unstructured.
//
// An empty path returns parent.
func FindOrCreate(tx *repo.Transaction, s repo.Store, parent repo.Node, path, defaultType, finalType string) (repo.Node, error) {
	const op = "find or create"
	if err := checkArgs(op, tx, s); err != nil {
		return repo.Node{}, err
	}
	if parent.IsZero() {
		return repo.Node{}, repo.Errorf(repo.CodeInvalidArgument, op, "parent is required")
	}

	rel := repo.TrimSlashes(path)
	if rel == "" {
		return parent, nil
	}

	if defaultType != "" {
		n, ok, err := findTyped(tx, s, parent, rel, defaultType)
		if err != nil {
			return repo.Node{}, err
		}
		if ok {
			return n, nil
		}
	}

	segments := strings.Split(rel, "/")
	last := -1
	for i, seg := range segments {
		segments[i] = strings.TrimSpace(seg)
		if segments[i] != "" {
			last = i
		}
	}

	current := parent
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		existing, err := s.RawChildren(tx, current, seg)
		if err != nil {
			return repo.Node{}, err
		}
		if len(existing) > 0 {
			current = existing[0]
			continue
		}

		nodeType := defaultType
		if i == last && finalType != "" {
			nodeType = finalType
		}
		current, err = s.AddChild(tx, current, repo.StripIndexes(seg), nodeType)
		if err != nil {
			return repo.Node{}, err
		}
	}
	return current, nil
}

// FindOrCreateChild finds or creates the single child name of parent,
// typed nodeType when created.
func FindOrCreateChild(tx *repo.Transaction, s repo.Store, parent repo.Node, name, nodeType string) (repo.Node, error) {
	return FindOrCreate(tx, s, parent, name, nodeType, nodeType)
}

// findTyped returns the first node at rel below parent that is of nodeType.
// Every same-name sibling of the last segment is considered.
func findTyped(tx *repo.Transaction, s repo.Store, parent repo.Node, rel, nodeType string) (repo.Node, bool, error) {
	segments := repo.SplitPath(rel)
	if len(segments) == 0 {
		return repo.Node{}, false, nil
	}

	dir := parent
	if len(segments) > 1 {
		dirPath := strings.Join(segments[:len(segments)-1], "/")
		ok, err := s.HasRawChild(tx, parent, dirPath, "")
		if err != nil || !ok {
			return repo.Node{}, false, err
		}
		if dir, err = s.Get(tx, repo.Join(parent.Path, dirPath)); err != nil {
			return repo.Node{}, false, err
		}
	}

	kids, err := s.RawChildren(tx, dir, segments[len(segments)-1])
	if err != nil {
		return repo.Node{}, false, err
	}
	for _, kid := range kids {
		if kid.IsType(nodeType) {
			return kid, true, nil
		}
	}
	return repo.Node{}, false, nil
}

func checkArgs(op string, tx *repo.Transaction, s repo.Store) error {
	if tx == nil {
		return repo.Errorf(repo.CodeInvalidArgument, op, "transaction is required")
	}
	if s == nil {
		return repo.Errorf(repo.CodeInvalidArgument, op, "store is required")
	}
	return nil
}
