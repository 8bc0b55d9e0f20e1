package docstore

import (
	"errors"
	"fmt"
)

// Code classifies store failures.
type Code string

const (
	CodeNotFound         Code = "not-found"
	CodePermissionDenied Code = "permission-denied"
	CodeUnavailable      Code = "unavailable"
	CodeInternal         Code = "internal"
	CodeInvalidArgument  Code = "invalid-argument"
)

// Error is returned by every Client implementation.
type Error struct {
	Code Code
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("docstore %s %s: %s", e.Op, e.Path, e.Code)
	}
	return fmt.Sprintf("docstore %s %s: %s: %v", e.Op, e.Path, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, so errors.Is(err, &Error{Code: CodeNotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Op == "" || t.Op == e.Op) && (t.Path == "" || t.Path == e.Path)
}

func newError(code Code, op, path string, err error) *Error {
	return &Error{Code: code, Op: op, Path: path, Err: err}
}

// NotFound reports a missing document.
func NotFound(op, path, id string) *Error {
	return newError(CodeNotFound, op, path, fmt.Errorf("document %q does not exist", id))
}

// PermissionDenied reports a write or read the caller is not allowed to make.
func PermissionDenied(op, path string, err error) *Error {
	return newError(CodePermissionDenied, op, path, err)
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

func IsPermissionDenied(err error) bool { return CodeOf(err) == CodePermissionDenied }

// IsBenign reports errors a reader renders as an empty result instead of a failure:
// permission denied, unavailable and internal. These show up during sign-in
// transitions, when queries briefly run with stale credentials.
func IsBenign(err error) bool {
	switch CodeOf(err) {
	case CodePermissionDenied, CodeUnavailable, CodeInternal:
		return true
	}
	return false
}

// codeLabel is the metrics label for an operation result.
func codeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if c := CodeOf(err); c != "" {
		return string(c)
	}
	return "unknown"
}
