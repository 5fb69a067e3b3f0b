package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arbor/internal/repo"
	"github.com/roach88/arbor/internal/value"
)

func TestDisplayValue(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	target, err := s.AddChild(tx, root, "target", "")
	require.NoError(t, err)
	n, err := s.AddChild(tx, root, "n", "")
	require.NoError(t, err)

	require.NoError(t, s.SetProperty(tx, n, "single", value.TypeLong, false, value.Long(42)))
	require.NoError(t, s.SetProperty(tx, n, "multi", value.TypeString, true, value.Strings("x", "y")...))
	require.NoError(t, s.SetProperty(tx, n, "one", value.TypeString, true, value.String("only")))
	require.NoError(t, s.SetProperty(tx, n, "blob", value.TypeBinary, false, value.Binary([]byte("secret"))))
	require.NoError(t, s.SetProperty(tx, n, "blobs", value.TypeBinary, true,
		value.Binary([]byte("one")), value.Binary([]byte("two"))))
	require.NoError(t, s.SetProperty(tx, n, "ref", value.TypeReference, false, value.Reference(target.ID)))

	tests := []struct {
		prop string
		want string
	}{
		{"single", "42"},
		{"multi", "[x,y]"},
		{"one", "[only]"},
		{"blob", value.BinaryPlaceholder},
		{"blobs", "[" + value.BinaryPlaceholder + "," + value.BinaryPlaceholder + "]"},
		{"ref", "/target"},
	}
	for _, tt := range tests {
		t.Run(tt.prop, func(t *testing.T) {
			got, err := DisplayValue(tx, s, n, tt.prop)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	line, err := DisplayNameAndValue(tx, s, n, "multi")
	require.NoError(t, err)
	assert.Equal(t, "multi=[x,y]", line)

	line, err = DisplayNameAndValue(tx, s, n, "blobs")
	require.NoError(t, err)
	assert.Equal(t, "blobs=[*** binary value not shown ***,*** binary value not shown ***]", line)
}

func TestDisplayValue_DanglingReferenceShowsID(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	target, err := s.AddChild(tx, root, "target", "")
	require.NoError(t, err)
	n, err := s.AddChild(tx, root, "n", "")
	require.NoError(t, err)
	require.NoError(t, s.SetProperty(tx, n, "ref", value.TypeReference, true, value.Reference(target.ID)))
	require.NoError(t, s.Remove(tx, target))

	got, err := DisplayValue(tx, s, n, "ref")
	require.NoError(t, err)
	assert.Equal(t, "["+target.ID+"]", got)
}

func TestDisplayNameAndValue_DeletedNodeDegrades(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)

	n, err := s.AddChild(tx, root, "gone", "")
	require.NoError(t, err)
	require.NoError(t, s.SetProperty(tx, n, "p", value.TypeString, false, value.String("v")))
	require.NoError(t, s.Remove(tx, n))

	line, err := DisplayNameAndValue(tx, s, n, "p")
	require.NoError(t, err)
	assert.Equal(t, "p= on deleted node /gone/p", line)

	_, err = DisplayValue(tx, s, n, "p")
	assert.True(t, repo.IsNotFound(err))
}

func TestDisplay_RequiresNotStarted(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)
	n, err := s.AddChild(tx, root, "n", "")
	require.NoError(t, err)
	require.NoError(t, s.SetProperty(tx, n, "p", value.TypeString, false, value.String("v")))

	require.NoError(t, tx.Begin())

	_, err = DisplayValue(tx, s, n, "p")
	assert.True(t, repo.IsInvalidState(err))

	_, err = DisplayNameAndValue(tx, s, n, "p")
	assert.True(t, repo.IsInvalidState(err), "state failures are not degraded")

	_, err = FindPathOfReference(tx, s, n.ID)
	assert.True(t, repo.IsInvalidState(err))

	_, err = Traverse(tx, s, n)
	assert.True(t, repo.IsInvalidState(err))
}

func TestFindPathOfReference(t *testing.T) {
	s := openStore(t)
	tx := beginTx(t, s)
	root := rootOf(t, s, tx)
	n, err := FindOrCreate(tx, s, root, "a/b", "", "")
	require.NoError(t, err)

	path, err := FindPathOfReference(tx, s, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "/a/b", path)

	path, err = FindPathOfReference(tx, s, "unknown")
	require.NoError(t, err)
	assert.Empty(t, path)

	_, err = FindPathOfReference(tx, s, "")
	assert.True(t, repo.IsInvalidArgument(err))
}
