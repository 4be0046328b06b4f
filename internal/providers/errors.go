package providers

import (
	"context"
	"errors"
	"fmt"
)

// InvocationErrorKind classifies collaborator failures.
type InvocationErrorKind string

const (
	InvocationTimeout     InvocationErrorKind = "timeout"
	InvocationRateLimited InvocationErrorKind = "rate_limited"
	InvocationTransport   InvocationErrorKind = "transport"
	InvocationAPI         InvocationErrorKind = "api"
)

// InvocationError means the model collaborator failed to produce any output.
// It is fatal to the current extraction session and is never retried by the
// validation protocol; callers apply their own backoff policy.
type InvocationError struct {
	Provider string
	Kind     InvocationErrorKind
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s invocation failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// NewInvocationError wraps a collaborator failure. Context expiry is
// always classified as a timeout regardless of the provided kind.
func NewInvocationError(provider string, kind InvocationErrorKind, err error) *InvocationError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = InvocationTimeout
	}
	return &InvocationError{Provider: provider, Kind: kind, Err: err}
}

// AsInvocationError unwraps err into an InvocationError if it is one.
func AsInvocationError(err error) (*InvocationError, bool) {
	var ie *InvocationError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
