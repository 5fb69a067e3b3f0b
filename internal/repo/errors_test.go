package repo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	err := NewTypeMismatch("resolve", "/m/t", "nt:unstructured", "no resolver matched")
	assert.Equal(t, "resolve: TYPE_MISMATCH: no resolver matched (path=/m/t, type=nt:unstructured)", err.Error())

	err2 := NewNotFound("get", "/missing", "node")
	assert.Equal(t, "get: NOT_FOUND: node not found (path=/missing)", err2.Error())
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewNotFound("get", "/a", "node"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrTypeMismatch)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsInvalidState(err))
}

func TestError_Helpers(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{"invalid argument", Errorf(CodeInvalidArgument, "op", "bad"), IsInvalidArgument},
		{"invalid state", Errorf(CodeInvalidState, "op", "bad"), IsInvalidState},
		{"type mismatch", NewTypeMismatch("op", "/", "x", "m"), IsTypeMismatch},
		{"parse", NewParseError("op", "x", errors.New("boom")), IsParseError},
		{"unsupported", NewUnsupported("op", "scalar only"), IsUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.is(tt.err))
			assert.False(t, tt.is(errors.New("plain")))
			assert.False(t, tt.is(nil))
		})
	}
}

func TestWrap_OnlyOnce(t *testing.T) {
	cause := errors.New("disk full")

	wrapped := Wrap("add child", cause)
	assert.Equal(t, CodeStoreFailure, CodeOf(wrapped))
	assert.ErrorIs(t, wrapped, cause)

	again := Wrap("find or create", wrapped)
	assert.Same(t, wrapped, again)

	nf := NewNotFound("get", "/x", "node")
	assert.Same(t, error(nf), Wrap("outer", nf))

	assert.NoError(t, Wrap("op", nil))
}

func TestParseError_Unwraps(t *testing.T) {
	cause := errors.New("invalid syntax")
	err := NewParseError("long value", "abc", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `cannot parse "abc"`)
}

func TestCode_Valid(t *testing.T) {
	assert.True(t, CodeNotFound.Valid())
	assert.True(t, Code("UNSUPPORTED_OPERATION").Valid())
	assert.False(t, Code("not_found").Valid())
	assert.False(t, Code("").Valid())
}
