// Package fault separates per-file problems, which are logged and counted
// while the batch continues, from invariant violations, which stop the run.
package fault

import (
	"errors"
	"fmt"
)

// Kinds of recoverable per-file failure.
var (
	ErrPlan      = errors.New("planning failed")
	ErrDecode    = errors.New("decode failed")
	ErrEncode    = errors.New("encode failed")
	ErrReference = errors.New("reference file malformed")
	ErrReconcile = errors.New("reference counts do not reconcile")
	ErrValidate  = errors.New("output differs from reference")
	ErrSolve     = errors.New("double-dummy solver failed")
)

// ErrInvariant marks a fatal inconsistency between planner, cache and model.
var ErrInvariant = errors.New("invariant violated")

// FileError is a recoverable failure of one stage for one file.
type FileError struct {
	Path  string
	Stage string
	Kind  error
	Err   error
}

func (e *FileError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Stage != "" {
		msg = e.Stage + ": " + msg
	}
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// File builds a FileError; err may be nil.
func File(path, stage string, kind, err error) *FileError {
	return &FileError{Path: path, Stage: stage, Kind: kind, Err: err}
}

// InvariantError is fatal to the run.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return ErrInvariant.Error() + ": " + e.Msg }

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// Invariantf builds an InvariantError.
func Invariantf(format string, args ...any) error {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err must stop the whole batch.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvariant)
}
