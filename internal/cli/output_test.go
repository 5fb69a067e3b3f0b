package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arbor/internal/repo"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain_error", errors.New("boom"), ExitFailure},
		{"exit_error", NewExitError(ExitCommandError, "bad flag"), ExitCommandError},
		{"wrapped_exit_error", WrapExitError(ExitFailure, "check", errors.New("x")), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDomainExit(t *testing.T) {
	notFound := domainExit("read", repo.NewNotFound("get", "/x", "node"))
	assert.Equal(t, ExitFailure, notFound.Code)
	assert.True(t, repo.IsNotFound(notFound))

	storeErr := domainExit("read", repo.Wrap("get", errors.New("disk I/O error")))
	assert.Equal(t, ExitCommandError, storeErr.Code)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", ErrorCode(domainExit("read", repo.NewNotFound("get", "/x", "node"))))
	assert.Equal(t, "E_COMMAND", ErrorCode(NewExitError(ExitCommandError, "no config")))
	assert.Equal(t, "E_FAILURE", ErrorCode(errors.New("boom")))
}

func TestExitError_Message(t *testing.T) {
	assert.Equal(t, "bad flag", NewExitError(ExitCommandError, "bad flag").Error())

	cause := errors.New("no such file")
	err := WrapExitError(ExitCommandError, "failed to load config", cause)
	assert.Equal(t, "failed to load config: no such file", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]string{"path": "/models"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"path": "/models"}, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("NOT_FOUND", "node not found", map[string]string{"path": "/x"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Success("/models/sales [rel:model]"))
	assert.Equal(t, "/models/sales [rel:model]\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, formatter.Error("TYPE_MISMATCH", "not a table", "/models"))
			assert.Contains(t, buf.String(), "Error [TYPE_MISMATCH]: not a table")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details: /models")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	t.Run("json_reports_and_returns", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}
		cause := domainExit("cannot read /x", repo.NewNotFound("get", "/x", "node"))

		err := formatter.Fail(cause)
		assert.Same(t, cause, err)

		var resp CLIResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("text_is_silent", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf}

		err := formatter.Fail(errors.New("boom"))
		assert.EqualError(t, err, "boom")
		assert.Empty(t, buf.String())
	})
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("loading %s", "audit.cue")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Contains(t, errOut.String(), "loading audit.cue")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}
