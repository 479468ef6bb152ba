package domain

import (
	"errors"
	"fmt"

	"github.com/aretw0/tandem/pkg/ast"
)

// Error kinds. Every Error wraps exactly one of these, so callers can branch
// with errors.Is(err, domain.ErrParse) and friends.
var (
	// ErrIO is returned when the virtual file system cannot read a file.
	ErrIO = errors.New("io error")

	// ErrParse is returned when a document or stylesheet is malformed.
	ErrParse = errors.New("parse error")

	// ErrResolution is returned when a uri, import, part or dependency cannot
	// be resolved.
	ErrResolution = errors.New("resolution error")

	// ErrSemantic is returned when a document is well formed but invalid,
	// such as <self/> at the top level.
	ErrSemantic = errors.New("semantic error")

	// ErrExpression is returned when an embedded expression fails to evaluate.
	ErrExpression = errors.New("expression error")

	// ErrSnapshotNotFound is returned by snapshot stores for unknown uris.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Error describes a failure tied to a document.
type Error struct {
	Kind     error
	URI      string
	Message  string
	Location *ast.Location
	Err      error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.URI != "" {
		msg = fmt.Sprintf("%s in %s", msg, e.URI)
	}
	if e.Location != nil {
		msg = fmt.Sprintf("%s at %d:%d", msg, e.Location.Start, e.Location.End)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds an Error without a location.
func NewError(kind error, uri, format string, args ...any) *Error {
	return &Error{Kind: kind, URI: uri, Message: fmt.Sprintf(format, args...)}
}

// At attaches a source location.
func (e *Error) At(loc ast.Location) *Error {
	e.Location = &loc
	return e
}

// Wrap attaches a cause.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// ErrorURI returns the uri of the first Error in err's chain.
func ErrorURI(err error) (string, bool) {
	var de *Error
	if errors.As(err, &de) && de.URI != "" {
		return de.URI, true
	}
	return "", false
}
