package tree

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arbor/internal/repo"
	"github.com/roach88/arbor/internal/store"
	"github.com/roach88/arbor/internal/value"
)

// buildLibrary creates /library with two same-name book children.
func buildLibrary(t *testing.T, s *store.Store, tx *repo.Transaction) repo.Node {
	t.Helper()
	root := rootOf(t, s, tx)

	library, err := FindOrCreateChild(tx, s, root, "library", "")
	require.NoError(t, err)
	require.NoError(t, s.SetProperty(tx, library, "count", value.TypeLong, false, value.Long(3)))
	require.NoError(t, s.SetProperty(tx, library, "tags", value.TypeString, true, value.Strings("x", "y")...))

	book, err := s.AddChild(tx, library, "book", "")
	require.NoError(t, err)
	require.NoError(t, s.SetProperty(tx, book, "cover", value.TypeBinary, false, value.Binary([]byte{0xff, 0xd8})))
	require.NoError(t, s.SetProperty(tx, book, "related", value.TypeReference, true, value.Reference(library.ID)))

	second, err := s.AddChild(tx, library, "book", "")
	require.NoError(t, err)
	require.Equal(t, "/library/book[2]", second.Path)
	require.NoError(t, s.SetProperty(tx, second, "title", value.TypeString, false, value.String("Go")))

	return library
}

func TestTraverse_Library(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	library := buildLibrary(t, s, tx)

	out, err := Traverse(tx, s, library)
	require.NoError(t, err)

	want := "\n\t\t\tlibrary\n" +
		"\t\t\t\t@count=3\n" +
		"\t\t\t\t@tags=[x,y]\n" +
		"\t\t\t\tbook\n" +
		"\t\t\t\t\t@cover=*** binary value not shown ***\n" +
		"\t\t\t\t\t@related=[/library]\n" +
		"\t\t\t\tbook\n" +
		"\t\t\t\t\t@title=Go\n"
	assert.Equal(t, want, out)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "library", []byte(out))
}

func TestTraverse_FromRoot(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	buildLibrary(t, s, tx)

	out, err := Traverse(tx, s, rootOf(t, s, tx))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "root", []byte(out))
}

func TestTraverse_DoesNotModify(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	library := buildLibrary(t, s, tx)

	first, err := Traverse(tx, s, library)
	require.NoError(t, err)
	second, err := Traverse(tx, s, library)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, repo.StateNotStarted, tx.State())
}

func TestTraversalVisitor_Accumulates(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	a, err := FindOrCreate(tx, s, root, "a", "", "")
	require.NoError(t, err)
	c, err := FindOrCreate(tx, s, root, "b/c", "", "")
	require.NoError(t, err)

	v := NewTraversalVisitor(tx, s)
	require.NoError(t, v.Visit(a))
	require.NoError(t, v.Visit(c))
	assert.Equal(t, "\n\t\t\ta\n\t\t\t\tc\n", v.String())
}

func TestIndentFor(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/", 1},
		{"/a", 3},
		{"/a/b", 4},
		{"/a/b[2]/c", 5},
	}
	for _, tt := range tests {
		assert.Len(t, indentFor(tt.path), tt.want, "path %q", tt.path)
	}
}
