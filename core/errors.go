package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// DependencyError marks an I/O failure in an external collaborator (account
// lookup, storage). It is never retried here; callers decide what to do.
type DependencyError struct {
	Op  string
	Err error
}

func NewDependencyError(op string, err error) error {
	return &DependencyError{Op: op, Err: err}
}

func (e *DependencyError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func IsDependencyFailure(err error) bool {
	_, ok := errors.Cause(err).(*DependencyError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
