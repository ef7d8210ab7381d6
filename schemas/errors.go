package schemas

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed taxonomy from spec.md §7. Each kind carries its own
// fallback-vs-terminate recovery policy, enforced by the pipeline, not by
// this type.
type ErrorKind string

const (
	ErrNoSuchModel         ErrorKind = "NoSuchModel"
	ErrNoEligibleProvider  ErrorKind = "NoEligibleProvider"
	ErrMissingCredentials  ErrorKind = "MissingCredentials"
	ErrUnsupportedOption   ErrorKind = "UnsupportedOption"
	ErrUnsupportedModel    ErrorKind = "UnsupportedModel"
	ErrProviderFailure     ErrorKind = "ProviderFailure"
	ErrGuardFailure        ErrorKind = "GuardFailure"
	ErrGuardTransportError ErrorKind = "GuardTransportError"
	ErrNoAvailableProvider ErrorKind = "NoAvailableProvider"
	ErrCancelled           ErrorKind = "Cancelled"
)

// Error is the sealed error type every component in this module returns.
// Credentials are never interpolated into Message or Cause (Testable
// Property 6) — callers must not format a Bag into either field.
type Error struct {
	Kind     ErrorKind
	Message  string
	Provider ProviderId // empty if not provider-specific
	Cause    error      // wrapped underlying error, if any
	Errors   []error    // for NoAvailableProvider: the per-candidate causes
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s (provider=%s)", e.Kind, e.Message, e.Provider)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a plain, non-provider-specific Error.
func New(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewProvider builds a provider-specific Error.
func NewProvider(kind ErrorKind, providerID ProviderId, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Provider: providerID, Cause: cause}
}

// NewProviderFailure wraps a back-end's own failure (spec.md
// ProviderFailure(providerId, cause)).
func NewProviderFailure(providerID ProviderId, cause error) *Error {
	msg := "provider request failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: ErrProviderFailure, Message: msg, Provider: providerID, Cause: cause}
}

// NewNoAvailableProvider aggregates every per-candidate failure once the
// plan is exhausted without success.
func NewNoAvailableProvider(errs []error) *Error {
	return &Error{Kind: ErrNoAvailableProvider, Message: "no available provider", Errors: errs}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
