package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/arbor/internal/config"
	"github.com/roach88/arbor/internal/relational"
	"github.com/roach88/arbor/internal/store"
)

// isolate points every config search location at an empty temp dir and
// returns it.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Chdir(dir)
	return dir
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// seedSalesModel writes /models/sales with an orders table (id, pk_orders)
// and a customers table into the database at dbPath.
func seedSalesModel(t *testing.T, dbPath string) {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	tx, err := st.Begin(t.Context(), "seed")
	require.NoError(t, err)
	root, err := st.Root(tx)
	require.NoError(t, err)

	model, err := relational.CreateModel(tx, st, root, "models/sales")
	require.NoError(t, err)
	orders, err := model.AddTable("orders")
	require.NoError(t, err)
	id, err := orders.AddColumn("id")
	require.NoError(t, err)
	pk, err := orders.SetPrimaryKey("pk_orders")
	require.NoError(t, err)
	require.NoError(t, pk.AddColumn(id))
	_, err = model.AddTable("customers")
	require.NoError(t, err)

	require.NoError(t, tx.Commit())
}
