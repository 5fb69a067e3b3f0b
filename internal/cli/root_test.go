package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "arbor", cmd.Use)
	assert.Contains(t, cmd.Long, "typed relational views")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"tree", "mkpath", "resolve", "types", "check"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "db", "stats"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "flag --%s", name)
	}
}

func TestMkpathCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	mkpathCmd, _, err := cmd.Find([]string{"mkpath"})
	require.NoError(t, err)

	fromFlag := mkpathCmd.Flags().Lookup("from")
	require.NotNil(t, fromFlag)
	assert.Equal(t, "/", fromFlag.DefValue)
	assert.NotNil(t, mkpathCmd.Flags().Lookup("type"))
	assert.NotNil(t, mkpathCmd.Flags().Lookup("final-type"))
}

func TestInvalidFormat(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "types", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestArgumentValidation(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"mkpath_without_path", []string{"mkpath"}},
		{"resolve_without_path", []string{"resolve"}},
		{"tree_with_two_paths", []string{"tree", "/a", "/b"}},
		{"check_without_scenarios", []string{"check"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
