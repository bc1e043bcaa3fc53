// Package apperr classifies pipeline failures into the kinds a workflow
// retry policy and a Job.error_text need to distinguish between, rather
// than relying on sentinel errors scattered across packages.
package apperr

import "fmt"

// Kind is one of the error taxonomy buckets named by the pipeline's
// error handling design: input errors are fatal and never retried,
// transient errors are retried by the workflow runtime, integrity
// errors are handled inline by the component that raised them,
// validation errors trigger a deterministic fallback rather than a
// job failure, invariant violations are fatal, and cancellation is a
// distinct terminal kind.
type Kind string

const (
	KindInput      Kind = "input"
	KindTransient  Kind = "transient"
	KindIntegrity  Kind = "integrity"
	KindValidation Kind = "validation"
	KindInvariant  Kind = "invariant"
	KindCancelled  Kind = "cancelled"
)

// StageError wraps an underlying error with the pipeline stage it
// occurred in and its taxonomy kind, so Job.error_text can identify
// where a failure happened and the workflow driver can decide whether
// to retry.
type StageError struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Retryable reports whether the workflow runtime should retry the
// activity that produced this error.
func (e *StageError) Retryable() bool {
	return e.Kind == KindTransient
}

// New wraps err as a StageError of the given kind and stage. Returns
// nil if err is nil, so callers can write `return apperr.New(...)` at
// the end of a function unconditionally.
func New(kind Kind, stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Kind: kind, Stage: stage, Err: err}
}

// Of extracts the *StageError from err, if any, via errors.As semantics
// implemented by hand to avoid importing "errors" for a single check.
func Of(err error) (*StageError, bool) {
	for err != nil {
		if se, ok := err.(*StageError); ok {
			return se, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
