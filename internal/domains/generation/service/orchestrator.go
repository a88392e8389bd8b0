package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"pressline-backend/internal/domains/generation/model"
	"pressline-backend/internal/domains/generation/provider"
	"pressline-backend/pkg/logger"
)

const archiveTimeout = 10 * time.Second

type orchestrator struct {
	providers      []RankedProvider
	minLengthRatio float64
	archive        Archiver

	// Providers that returned a non-recoverable error (bad credential,
	// malformed request) are skipped for the remainder of the process.
	mu       sync.Mutex
	disabled map[string]string // provider id -> reason
}

func NewOrchestrator(providers []RankedProvider, minLengthRatio float64, archive Archiver) Orchestrator {
	return &orchestrator{
		providers:      providers,
		minLengthRatio: minLengthRatio,
		archive:        archive,
		disabled:       make(map[string]string),
	}
}

func (o *orchestrator) Generate(ctx context.Context, brief *model.Brief) (*model.Result, error) {
	prompt := brief.BuildPrompt()
	minWords := int(float64(brief.WordTarget) * o.minLengthRatio)

	attempts := make([]model.Attempt, 0, len(o.providers))

	for _, rp := range o.providers {
		id := rp.Provider.ID()

		if reason := o.disabledReason(id); reason != "" {
			attempts = append(attempts, model.Attempt{
				ProviderID: id,
				Outcome:    model.OutcomeSkipped,
				StartedAt:  time.Now(),
				FinishedAt: time.Now(),
				Detail:     reason,
			})
			continue
		}

		attempt := o.tryProvider(ctx, rp, prompt, brief.MaxTokens(), minWords)
		attempts = append(attempts, attempt.record)

		if attempt.record.Outcome == model.OutcomeSuccess {
			o.archiveContent(id, attempt.content)
			return &model.Result{
				Content:      attempt.content,
				ProviderUsed: id,
				Attempts:     attempts,
				Cost:         attempt.record.Cost,
			}, nil
		}
	}

	// No partial writes on exhaustion - the caller owns what happens next.
	return nil, &model.ExhaustedError{Attempts: attempts}
}

type attemptResult struct {
	record  model.Attempt
	content string
}

func (o *orchestrator) tryProvider(ctx context.Context, rp RankedProvider, prompt string, maxTokens, minWords int) attemptResult {
	id := rp.Provider.ID()
	started := time.Now()

	attemptCtx, cancel := context.WithTimeout(ctx, rp.Timeout)
	defer cancel()

	content, err := rp.Provider.Complete(attemptCtx, prompt, maxTokens)
	finished := time.Now()

	if err != nil {
		pe := provider.AsProviderError(id, err)

		if !pe.Recoverable() {
			o.disableProvider(id, string(pe.Kind))
		}

		logger.Warn("Provider attempt failed", map[string]interface{}{
			"provider":    id,
			"kind":        string(pe.Kind),
			"recoverable": pe.Recoverable(),
			"elapsed_ms":  finished.Sub(started).Milliseconds(),
		})

		return attemptResult{record: model.Attempt{
			ProviderID: id,
			Outcome:    outcomeForKind(pe.Kind),
			StartedAt:  started,
			FinishedAt: finished,
			Detail:     pe.Error(),
		}}
	}

	// Materially short output is a soft failure: record it and let the next
	// provider try, instead of publishing a stub article.
	if words := len(strings.Fields(content)); words < minWords {
		logger.Warn("Provider output below length floor", map[string]interface{}{
			"provider":  id,
			"words":     words,
			"min_words": minWords,
		})
		return attemptResult{record: model.Attempt{
			ProviderID: id,
			Outcome:    model.OutcomeTooShort,
			StartedAt:  started,
			FinishedAt: finished,
			Detail:     "output below minimum length",
		}}
	}

	return attemptResult{
		record: model.Attempt{
			ProviderID: id,
			Outcome:    model.OutcomeSuccess,
			StartedAt:  started,
			FinishedAt: finished,
			Cost:       estimateCost(rp.Provider.CostPer1K(), content),
		},
		content: content,
	}
}

func (o *orchestrator) disabledReason(id string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disabled[id]
}

func (o *orchestrator) disableProvider(id, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, already := o.disabled[id]; already {
		return
	}
	o.disabled[id] = reason
	logger.Error("Provider disabled for process lifetime: "+id+" ("+reason+")", nil)
}

// archiveContent stores the raw output best-effort; a failed archive write
// never fails the generation.
func (o *orchestrator) archiveContent(providerID, content string) {
	if o.archive == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	key := xid.New().String()
	if _, err := o.archive.Store(ctx, providerID, key, []byte(content)); err != nil {
		logger.Warn("Failed to archive generation", map[string]interface{}{
			"provider": providerID,
			"error":    err.Error(),
		})
	}
}

func outcomeForKind(kind provider.ErrorKind) model.Outcome {
	switch kind {
	case provider.KindTimeout:
		return model.OutcomeTimeout
	case provider.KindRateLimited:
		return model.OutcomeRateLimited
	default:
		return model.OutcomeError
	}
}

// estimateCost approximates token usage at four characters per token.
func estimateCost(costPer1K decimal.Decimal, content string) decimal.Decimal {
	tokens := int64(len(content) / 4)
	return costPer1K.Mul(decimal.NewFromInt(tokens)).Div(decimal.NewFromInt(1000))
}
