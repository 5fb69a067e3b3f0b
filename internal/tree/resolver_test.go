package tree

import (
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arbor/internal/repo"
)

func TestFindOrCreate_CreatesMissingSegments(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	n, err := FindOrCreate(tx, s, root, "/models/m1/", "nt:unstructured", "rel:model")
	require.NoError(t, err)
	assert.Equal(t, "/models/m1", n.Path)
	assert.Equal(t, "rel:model", n.PrimaryType)

	models, err := s.Get(tx, "/models")
	require.NoError(t, err)
	assert.Equal(t, "nt:unstructured", models.PrimaryType)
}

func TestFindOrCreate_Idempotent(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	first, err := FindOrCreate(tx, s, root, "a/b/c", "", "rel:table")
	require.NoError(t, err)
	second, err := FindOrCreate(tx, s, root, "a/b/c", "", "rel:table")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3.0, promtest.ToFloat64(s.Metrics().NodesCreated))
}

func TestFindOrCreate_SkipsBlankSegments(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	n, err := FindOrCreate(tx, s, root, "/a//b/", "", "")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", n.Path)
	assert.Equal(t, repo.DefaultNodeType, n.PrimaryType)

	n, err = FindOrCreate(tx, s, root, " a / b ", "", "")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", n.Path)

	assert.Equal(t, 2.0, promtest.ToFloat64(s.Metrics().NodesCreated))
}

func TestFindOrCreate_StripsIndexOnCreate(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	n, err := FindOrCreate(tx, s, root, "a/b[2]", "", "")
	require.NoError(t, err)
	assert.Equal(t, "b", n.Name)
	assert.Equal(t, "/a/b", n.Path)
}

func TestFindOrCreate_DefaultTypeLookup(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	a, err := s.AddChild(tx, root, "a", "")
	require.NoError(t, err)
	table, err := s.AddChild(tx, a, "t", "rel:table")
	require.NoError(t, err)

	got, err := FindOrCreate(tx, s, root, "a/t", "rel:table", "")
	require.NoError(t, err)
	assert.Equal(t, table.ID, got.ID)

	tagged, err := s.AddChild(tx, a, "r", "")
	require.NoError(t, err)
	_, err = s.AddDescriptor(tx, tagged, "mix:referenceable")
	require.NoError(t, err)

	got, err = FindOrCreate(tx, s, root, "a/r", "mix:referenceable", "")
	require.NoError(t, err)
	assert.Equal(t, tagged.ID, got.ID)
}

func TestFindOrCreate_DefaultTypeMatchesLaterSibling(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	_, err := s.AddChild(tx, root, "x", "")
	require.NoError(t, err)
	table, err := s.AddChild(tx, root, "x", "rel:table")
	require.NoError(t, err)

	got, err := FindOrCreate(tx, s, root, "x", "rel:table", "")
	require.NoError(t, err)
	assert.Equal(t, table.ID, got.ID)
	assert.Equal(t, "/x[2]", got.Path)

	// Same below an intermediate segment.
	a, err := s.AddChild(tx, root, "a", "")
	require.NoError(t, err)
	_, err = s.AddChild(tx, a, "t", "")
	require.NoError(t, err)
	nested, err := s.AddChild(tx, a, "t", "rel:table")
	require.NoError(t, err)

	got, err = FindOrCreate(tx, s, root, "a/t", "rel:table", "")
	require.NoError(t, err)
	assert.Equal(t, nested.ID, got.ID)

	// No typed sibling falls back to the walk, which reuses the first one.
	got, err = FindOrCreate(tx, s, root, "a/t", "rel:model", "")
	require.NoError(t, err)
	assert.Equal(t, "/a/t", got.Path)
}

func TestFindOrCreate_DescendsFromCurrentNode(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	// A top-level "y" must not be mistaken for /x/y.
	_, err := s.AddChild(tx, root, "y", "")
	require.NoError(t, err)
	x, err := s.AddChild(tx, root, "x", "")
	require.NoError(t, err)

	n, err := FindOrCreate(tx, s, root, "x/y", "", "")
	require.NoError(t, err)
	assert.Equal(t, "/x/y", n.Path)
	assert.Equal(t, x.ID, n.ParentID)
}

func TestFindOrCreate_FirstSameNameSibling(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	first, err := s.AddChild(tx, root, "dup", "")
	require.NoError(t, err)
	_, err = s.AddChild(tx, root, "dup", "")
	require.NoError(t, err)

	n, err := FindOrCreate(tx, s, root, "dup/leaf", "", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, n.ParentID)
	assert.Equal(t, "/dup/leaf", n.Path)
}

func TestFindOrCreate_EmptyPathReturnsParent(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	for _, p := range []string{"", "/", "///"} {
		n, err := FindOrCreate(tx, s, root, p, "rel:table", "rel:table")
		require.NoError(t, err)
		assert.Equal(t, root.ID, n.ID)
	}
	assert.Equal(t, 0.0, promtest.ToFloat64(s.Metrics().NodesCreated))
}

func TestFindOrCreate_InvalidArguments(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	_, err := FindOrCreate(nil, s, root, "a", "", "")
	assert.True(t, repo.IsInvalidArgument(err))

	_, err = FindOrCreate(tx, nil, root, "a", "", "")
	assert.True(t, repo.IsInvalidArgument(err))

	_, err = FindOrCreate(tx, s, repo.Node{}, "a", "", "")
	assert.True(t, repo.IsInvalidArgument(err))
}

func TestFindOrCreateChild(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	n, err := FindOrCreateChild(tx, s, root, "orders", "rel:table")
	require.NoError(t, err)
	assert.Equal(t, "/orders", n.Path)
	assert.Equal(t, "rel:table", n.PrimaryType)

	again, err := FindOrCreateChild(tx, s, root, "orders", "rel:table")
	require.NoError(t, err)
	assert.Equal(t, n.ID, again.ID)
}
