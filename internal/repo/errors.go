package repo

import (
	"errors"
	"fmt"
	"strings"
)

// Code categorizes repository errors.
type Code string

const (
	// CodeInvalidArgument indicates a required input was missing or malformed.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// CodeInvalidState indicates the transaction is in the wrong state for the call.
	CodeInvalidState Code = "INVALID_STATE"

	// CodeNotFound indicates a missing node, property or resolution target.
	CodeNotFound Code = "NOT_FOUND"

	// CodeTypeMismatch indicates no resolver matched the node.
	CodeTypeMismatch Code = "TYPE_MISMATCH"

	// CodeParseError indicates a malformed scalar conversion.
	CodeParseError Code = "PARSE_ERROR"

	// CodeUnsupported indicates an operation that does not apply to the view.
	CodeUnsupported Code = "UNSUPPORTED_OPERATION"

	// CodeStoreFailure wraps a failure from the underlying node store.
	CodeStoreFailure Code = "STORE_FAILURE"
)

// Valid reports whether c is one of the defined codes.
func (c Code) Valid() bool {
	switch c {
	case CodeInvalidArgument, CodeInvalidState, CodeNotFound, CodeTypeMismatch,
		CodeParseError, CodeUnsupported, CodeStoreFailure:
		return true
	}
	return false
}

// Error is the single domain error returned by repository operations.
//
// Error includes structured fields for diagnostics. Err carries the
// original cause when the error wraps a store or parse failure.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Op names the failing operation, e.g. "find or create".
	Op string

	// Message is a human-readable description.
	Message string

	// Path is the node or property path involved, if any.
	Path string

	// NodeType is the primary type of the node involved, if any.
	NodeType string

	// Err is the wrapped cause.
	Err error
}

// Sentinels for errors.Is. They match any *Error with the same Code.
var (
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument}
	ErrInvalidState    = &Error{Code: CodeInvalidState}
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrTypeMismatch    = &Error{Code: CodeTypeMismatch}
	ErrParse           = &Error{Code: CodeParseError}
	ErrUnsupported     = &Error{Code: CodeUnsupported}
	ErrStoreFailure    = &Error{Code: CodeStoreFailure}
)

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	switch {
	case e.Path != "" && e.NodeType != "":
		fmt.Fprintf(&b, " (path=%s, type=%s)", e.Path, e.NodeType)
	case e.Path != "":
		fmt.Fprintf(&b, " (path=%s)", e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors with the same Code, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Errorf creates an Error with a formatted message.
func Errorf(code Code, op, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewNotFound creates a NOT_FOUND error for the given path.
func NewNotFound(op, path, what string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Op:      op,
		Message: what + " not found",
		Path:    path,
	}
}

// NewTypeMismatch creates a TYPE_MISMATCH error carrying the node's path and type.
func NewTypeMismatch(op, path, nodeType, message string) *Error {
	return &Error{
		Code:     CodeTypeMismatch,
		Op:       op,
		Message:  message,
		Path:     path,
		NodeType: nodeType,
	}
}

// NewParseError creates a PARSE_ERROR wrapping the underlying parse failure.
func NewParseError(op, input string, err error) *Error {
	return &Error{
		Code:    CodeParseError,
		Op:      op,
		Message: fmt.Sprintf("cannot parse %q", input),
		Err:     err,
	}
}

// NewUnsupported creates an UNSUPPORTED_OPERATION error.
func NewUnsupported(op, message string) *Error {
	return &Error{
		Code:    CodeUnsupported,
		Op:      op,
		Message: message,
	}
}

// Wrap wraps a store failure exactly once.
// Errors that already are *Error are returned unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	return &Error{Code: CodeStoreFailure, Op: op, Err: err}
}

// CodeOf returns the Code of err, or "" if err is not an *Error.
func CodeOf(err error) Code {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsInvalidArgument returns true if err is an INVALID_ARGUMENT error.
func IsInvalidArgument(err error) bool { return CodeOf(err) == CodeInvalidArgument }

// IsInvalidState returns true if err is an INVALID_STATE error.
func IsInvalidState(err error) bool { return CodeOf(err) == CodeInvalidState }

// IsNotFound returns true if err is a NOT_FOUND error.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsTypeMismatch returns true if err is a TYPE_MISMATCH error.
func IsTypeMismatch(err error) bool { return CodeOf(err) == CodeTypeMismatch }

// IsParseError returns true if err is a PARSE_ERROR.
func IsParseError(err error) bool { return CodeOf(err) == CodeParseError }

// IsUnsupported returns true if err is an UNSUPPORTED_OPERATION error.
func IsUnsupported(err error) bool { return CodeOf(err) == CodeUnsupported }
