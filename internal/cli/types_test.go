package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const auditTypes = `types: {
	"app:audited": {
		mixin: true
		properties: "app:auditor": type: "string"
	}
}
`

func TestTypes_ListsBuiltins(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "nt:unstructured [residual]\n")
	assert.Contains(t, out, "mix:referenceable [mixin]\n")
	assert.Contains(t, out, "rel:table < rel:relational\n")
}

func TestTypes_Named(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "types", "rel:statementOption", "rel:column")
	require.NoError(t, err)
	assert.Equal(t,
		"rel:statementOption\n"+
			"  rel:value string !\n"+
			"\n"+
			"rel:column < rel:relational\n"+
			"  rel:datatype string = string\n"+
			"  rel:defaultValue string\n"+
			"  rel:description string (rel:relational)\n"+
			"  rel:length long = 0\n"+
			"  rel:nameInSource string\n"+
			"  rel:nullable boolean = true\n",
		out)
}

func TestTypes_JSON(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "types", "rel:primaryKey", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   []TypeInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	info := resp.Data[0]
	assert.Equal(t, []string{"rel:relational"}, info.Supertypes)
	assert.Contains(t, info.Properties, PropertyInfo{
		Name:          "rel:tableElementRefs",
		Type:          "reference",
		Multiple:      true,
		DeclaringType: "rel:primaryKey",
	})
}

func TestTypes_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "audit.cue")
	require.NoError(t, os.WriteFile(path, []byte(auditTypes), 0644))

	out, _, err := execute(t, "types", "app:audited", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "app:audited [mixin]\n  app:auditor string\n", out)
}

func TestTypes_SchemaFromConfig(t *testing.T) {
	dir := isolate(t)
	schemaPath := filepath.Join(dir, "audit.cue")
	require.NoError(t, os.WriteFile(schemaPath, []byte(auditTypes), 0644))
	configPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("schema:\n  path: "+schemaPath+"\n"), 0644))

	out, _, err := execute(t, "types", "app:audited", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "app:auditor")
}

func TestTypes_Errors(t *testing.T) {
	t.Run("unknown_type", func(t *testing.T) {
		isolate(t)

		_, _, err := execute(t, "types", "rel:view")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown node type "rel:view"`)
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})

	t.Run("bad_file", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "broken.cue")
		require.NoError(t, os.WriteFile(path, []byte("types: {"), 0644))

		_, _, err := execute(t, "types", "--file", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid type file")
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})
}
