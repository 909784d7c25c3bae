// Package cmserr defines the error taxonomy shared by the content,
// git sync, and deployment packages. Callers branch on the Code of an
// error rather than on its message text.
package cmserr

import (
	"errors"
	"fmt"
)

// Code classifies an operation failure.
type Code string

const (
	// CodeAccessDenied means the path, table, or column is outside the
	// site's configured editable surface.
	CodeAccessDenied Code = "access_denied"

	// CodeNotFound means the addressed file, record, or task does not exist.
	CodeNotFound Code = "not_found"

	// CodeAlreadyExists means a create collided with an existing entity.
	CodeAlreadyExists Code = "already_exists"

	// CodeGitSync means a repository synchronization step failed.
	CodeGitSync Code = "git_sync"

	// CodeBuild means a site build step failed.
	CodeBuild Code = "build"

	// CodeValidation means the input or configuration is malformed.
	CodeValidation Code = "validation"

	// CodeInternal is the fallback for unexpected failures.
	CodeInternal Code = "internal"
)

// Error is a classified operation failure. Op names the operation that
// failed and Path the repo-relative path or resource key it addressed,
// when one applies.
type Error struct {
	Code Code
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Code, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Code)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code, so that
// errors.Is(err, &Error{Code: CodeNotFound}) works without identity.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New builds a classified error without a cause.
func New(code Code, op, path string) *Error {
	return &Error{Code: code, Op: op, Path: path}
}

// Wrap builds a classified error around a cause. A nil cause yields nil
// so call sites can wrap unconditionally.
func Wrap(code Code, op, path string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Path: path, Err: err}
}

// CodeOf extracts the classification of err, or CodeInternal when err
// carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsNotFound reports whether err is classified as not_found.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsAccessDenied reports whether err is classified as access_denied.
func IsAccessDenied(err error) bool {
	return CodeOf(err) == CodeAccessDenied
}

// IsValidation reports whether err is classified as validation.
func IsValidation(err error) bool {
	return CodeOf(err) == CodeValidation
}
