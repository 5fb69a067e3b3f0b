package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arbor/internal/value"
)

func TestDefault_BuiltinTypes(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	for _, name := range []string{
		"arbor:root", "nt:unstructured", "mix:referenceable",
		"rel:relational", "rel:model", "rel:table", "rel:column",
		"rel:primaryKey", "rel:foreignKey", "rel:statementOption",
	} {
		_, ok := r.Lookup(name)
		assert.True(t, ok, "missing builtin type %s", name)
	}

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, r, again)
}

func TestDefault_TableDescriptors(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	pd, ok := r.PropertyDescriptor("rel:table", "rel:cardinality")
	require.True(t, ok)
	assert.Equal(t, value.TypeLong, pd.Type)
	assert.True(t, pd.HasDefault)
	assert.Equal(t, "-1", pd.Default)
	assert.Equal(t, "rel:table", pd.DeclaringType)

	inherited, ok := r.PropertyDescriptor("rel:table", "rel:description")
	require.True(t, ok)
	assert.Equal(t, "rel:relational", inherited.DeclaringType)

	refs, ok := r.PropertyDescriptor("rel:foreignKey", "rel:tableElementRefs")
	require.True(t, ok)
	assert.True(t, refs.Multiple)
	assert.Equal(t, value.TypeReference, refs.Type)

	opt, ok := r.PropertyDescriptor("rel:statementOption", "rel:value")
	require.True(t, ok)
	assert.True(t, opt.Mandatory)
	assert.False(t, opt.Multiple)
}

func TestRegistry_PropertyDescriptorsIncludeInherited(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	var names []string
	for _, pd := range r.PropertyDescriptors("rel:column") {
		names = append(names, pd.Name)
	}
	assert.Equal(t, []string{
		"rel:datatype", "rel:defaultValue", "rel:description",
		"rel:length", "rel:nameInSource", "rel:nullable",
	}, names)
}

func TestRegistry_Residual(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	assert.True(t, r.IsResidual("nt:unstructured", nil))
	assert.True(t, r.IsResidual("arbor:root", nil))
	assert.True(t, r.IsResidual("legacy:unknown", nil))
	assert.False(t, r.IsResidual("rel:table", nil))
	assert.True(t, r.IsMixin("mix:referenceable"))
	assert.False(t, r.IsMixin("rel:table"))

	var nilReg *Registry
	assert.True(t, nilReg.IsResidual("rel:table", nil))
	assert.Empty(t, nilReg.Names())
}

func TestRegistry_FindPropertyDescriptorInMixins(t *testing.T) {
	r, err := NewRegistry(
		NodeType{Name: "app:base"},
		NodeType{Name: "app:tagged", Mixin: true, Properties: []PropertyDescriptor{
			{Name: "app:tags", Type: value.TypeString, Multiple: true},
		}},
	)
	require.NoError(t, err)

	_, ok := r.FindPropertyDescriptor("app:base", nil, "app:tags")
	assert.False(t, ok)

	pd, ok := r.FindPropertyDescriptor("app:base", []string{"app:tagged"}, "app:tags")
	require.True(t, ok)
	assert.Equal(t, "app:tagged", pd.DeclaringType)
}

func TestNewRegistry_Errors(t *testing.T) {
	_, err := NewRegistry(NodeType{Name: "a", Supertypes: []string{"missing"}})
	assert.ErrorContains(t, err, "unknown supertype")

	_, err = NewRegistry(
		NodeType{Name: "a", Supertypes: []string{"b"}},
		NodeType{Name: "b", Supertypes: []string{"a"}},
	)
	assert.ErrorContains(t, err, "inheritance cycle")

	_, err = NewRegistry(NodeType{Name: "a"}, NodeType{Name: "a"})
	assert.ErrorContains(t, err, "declared twice")

	_, err = NewRegistry(NodeType{})
	assert.Error(t, err)
}

func TestLoad_UserTypes(t *testing.T) {
	src := []byte(`
types: "app:book": {
	properties: {
		"app:title": {type: "string", mandatory: true}
		"app:pages": {type: "long", default: "0"}
		"app:authors": {type: "string", multiple: true}
	}
}
`)
	r, err := Load(src, "books.cue")
	require.NoError(t, err)

	nt, ok := r.Lookup("app:book")
	require.True(t, ok)
	assert.False(t, nt.Mixin)
	assert.False(t, nt.Residual)
	assert.Empty(t, nt.Supertypes)
	require.Len(t, nt.Properties, 3)
	assert.Equal(t, "app:authors", nt.Properties[0].Name)
	assert.True(t, nt.Properties[0].Multiple)
	assert.Equal(t, "app:pages", nt.Properties[1].Name)
	assert.Equal(t, "0", nt.Properties[1].Default)
}

func TestLoad_RejectsUnknownValueType(t *testing.T) {
	src := []byte(`types: "app:bad": properties: "x": type: "int"`)
	_, err := Load(src, "bad.cue")
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownField(t *testing.T) {
	src := []byte(`types: "app:bad": supertype: ["x"]`)
	_, err := Load(src, "bad.cue")
	assert.Error(t, err)
}

func TestLoad_RejectsBadDefault(t *testing.T) {
	src := []byte(`types: "app:bad": properties: "n": {type: "long", default: "many"}`)
	_, err := Load(src, "bad.cue")
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "app:bad.n", ce.Field)
}

func TestLoad_RequiresTypes(t *testing.T) {
	_, err := Load([]byte(`other: 1`), "empty.cue")
	assert.ErrorContains(t, err, "no node types declared")
}

func TestLoadFile_LayersOverBase(t *testing.T) {
	base, err := Default()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "extra.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
types: "app:view": {
	supertypes: ["rel:table"]
	properties: "app:definition": type: "string"
}
`), 0o644))

	r, err := LoadFile(base, path)
	require.NoError(t, err)

	_, ok := r.PropertyDescriptor("app:view", "rel:cardinality")
	assert.True(t, ok, "inherited from rel:table")
	_, ok = r.PropertyDescriptor("app:view", "app:definition")
	assert.True(t, ok)

	_, ok = base.Lookup("app:view")
	assert.False(t, ok, "base registry is not modified")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(nil, filepath.Join(t.TempDir(), "nope.cue"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	a, err := NewRegistry(NodeType{Name: "x", Residual: true})
	require.NoError(t, err)
	b, err := NewRegistry(NodeType{Name: "x"}, NodeType{Name: "y"})
	require.NoError(t, err)

	m, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, m.Names())
	assert.False(t, m.IsResidual("x", nil))
}
