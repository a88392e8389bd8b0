package service

import (
	"context"
	"time"

	"pressline-backend/internal/domains/generation/model"
	"pressline-backend/internal/domains/generation/provider"
)

// Orchestrator tries providers strictly in configured order and returns the
// first acceptable completion. Exhaustion surfaces as *model.ExhaustedError.
type Orchestrator interface {
	Generate(ctx context.Context, brief *model.Brief) (*model.Result, error)
}

// RankedProvider pairs a provider with its per-attempt timeout.
type RankedProvider struct {
	Provider provider.Provider
	Timeout  time.Duration
}

// Archiver stores raw provider output for audit. Implemented by the MinIO
// archive; nil disables archiving.
type Archiver interface {
	Store(ctx context.Context, providerID, key string, content []byte) (string, error)
}
