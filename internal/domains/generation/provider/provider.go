package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Provider is one external content-completion service. Implementations
// normalize their native error shapes into *Error so the orchestrator can
// decide fallback without knowing the provider.
type Provider interface {
	ID() string
	// Complete generates text for prompt, bounded by maxTokens.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	// CostPer1K is the configured price used for spend accounting.
	CostPer1K() decimal.Decimal
}

// ErrorKind classifies provider failures into the fallback taxonomy.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindRateLimited ErrorKind = "rate_limited"
	KindServer      ErrorKind = "server_error" // transient 5xx
	KindAuth        ErrorKind = "auth"         // missing/invalid credential
	KindBadRequest  ErrorKind = "bad_request"  // malformed request
	KindEmptyOutput ErrorKind = "empty_output" // provider returned nothing usable
)

// Error is the normalized provider failure.
type Error struct {
	ProviderID string
	Kind       ErrorKind
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.ProviderID, e.Kind, e.Err)
	}
	return fmt.Sprintf("provider %s: %s: %s", e.ProviderID, e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Recoverable reports whether the orchestrator may fall through to the next
// provider. Auth and malformed-request errors are permanent for the process.
func (e *Error) Recoverable() bool {
	switch e.Kind {
	case KindAuth, KindBadRequest:
		return false
	default:
		return true
	}
}

// AsProviderError unwraps err into *Error; unknown errors are wrapped as a
// recoverable server error so an unclassified failure never poisons a
// provider permanently.
func AsProviderError(providerID string, err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{ProviderID: providerID, Kind: KindTimeout, Err: err}
	}
	return &Error{ProviderID: providerID, Kind: KindServer, Err: err}
}
