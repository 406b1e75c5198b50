package models

import (
	"errors"
	"fmt"
)

// ProviderErrorKind categorizes a provider failure so the orchestrator can
// decide whether to cascade.
type ProviderErrorKind string

const (
	ErrKindTimeout     ProviderErrorKind = "timeout"
	ErrKindTransport   ProviderErrorKind = "transport"
	ErrKindEmptyResult ProviderErrorKind = "empty_result"
	ErrKindRateLimited ProviderErrorKind = "rate_limited"
)

// ProviderError is the only failure shape that crosses the gateway boundary.
// Provider implementations never let a raw transport fault escape.
type ProviderError struct {
	Provider ProviderID
	Kind     ProviderErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Kind)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError wraps err as a typed provider failure.
func NewProviderError(p ProviderID, kind ProviderErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: p, Kind: kind, Err: err}
}

// ErrAllProvidersExhausted signals that every provider in a strategy failed
// and the terminal fallback is about to run.
var ErrAllProvidersExhausted = errors.New("all providers exhausted")
