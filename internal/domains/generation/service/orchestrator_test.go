package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pressline-backend/internal/domains/generation/model"
	"pressline-backend/internal/domains/generation/provider"
)

// scriptedProvider returns its queued responses in order, repeating the last
// one when the queue runs dry.
type scriptedProvider struct {
	id        string
	cost      decimal.Decimal
	responses []scriptedResponse
	calls     int
}

type scriptedResponse struct {
	content string
	err     error
}

func (p *scriptedProvider) ID() string                 { return p.id }
func (p *scriptedProvider) CostPer1K() decimal.Decimal { return p.cost }

func (p *scriptedProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	idx := p.calls
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	p.calls++
	resp := p.responses[idx]
	return resp.content, resp.err
}

func providerErr(id string, kind provider.ErrorKind) error {
	return &provider.Error{ProviderID: id, Kind: kind, Detail: string(kind)}
}

func longArticle() string {
	return "Title Line\n" + strings.Repeat("word ", 500)
}

func ranked(providers ...*scriptedProvider) []RankedProvider {
	out := make([]RankedProvider, len(providers))
	for i, p := range providers {
		out[i] = RankedProvider{Provider: p, Timeout: time.Second}
	}
	return out
}

func testBrief() *model.Brief {
	return &model.Brief{Keyword: "x", AnchorText: "x", TargetURL: "https://t.example", WordTarget: 800}
}

func TestGenerate_FirstProviderWins(t *testing.T) {
	a := &scriptedProvider{id: "a", responses: []scriptedResponse{{content: longArticle()}}}
	b := &scriptedProvider{id: "b", responses: []scriptedResponse{{content: longArticle()}}}

	o := NewOrchestrator(ranked(a, b), 0.5, nil)

	result, err := o.Generate(context.Background(), testBrief())
	require.NoError(t, err)

	assert.Equal(t, "a", result.ProviderUsed)
	assert.Equal(t, 0, b.calls, "later providers are not consulted on success")
	require.Len(t, result.Attempts, 1)
	assert.Equal(t, model.OutcomeSuccess, result.Attempts[0].Outcome)
}

func TestGenerate_FallsThroughRecoverableFailures(t *testing.T) {
	a := &scriptedProvider{id: "a", responses: []scriptedResponse{{err: providerErr("a", provider.KindRateLimited)}}}
	b := &scriptedProvider{id: "b", responses: []scriptedResponse{{err: providerErr("b", provider.KindServer)}}}
	c := &scriptedProvider{id: "c", responses: []scriptedResponse{{content: longArticle()}}}

	o := NewOrchestrator(ranked(a, b, c), 0.5, nil)

	result, err := o.Generate(context.Background(), testBrief())
	require.NoError(t, err)

	assert.Equal(t, "c", result.ProviderUsed)
	require.Len(t, result.Attempts, 3)
	assert.Equal(t, model.OutcomeRateLimited, result.Attempts[0].Outcome)
	assert.Equal(t, model.OutcomeError, result.Attempts[1].Outcome)
	assert.Equal(t, model.OutcomeSuccess, result.Attempts[2].Outcome)
}

func TestGenerate_ShortOutputIsSoftFailure(t *testing.T) {
	a := &scriptedProvider{id: "a", responses: []scriptedResponse{{content: "too short"}}}
	b := &scriptedProvider{id: "b", responses: []scriptedResponse{{content: longArticle()}}}

	o := NewOrchestrator(ranked(a, b), 0.5, nil)

	result, err := o.Generate(context.Background(), testBrief())
	require.NoError(t, err)

	assert.Equal(t, "b", result.ProviderUsed)
	assert.Equal(t, model.OutcomeTooShort, result.Attempts[0].Outcome)
}

func TestGenerate_AuthFailureDisablesProviderForProcess(t *testing.T) {
	a := &scriptedProvider{id: "a", responses: []scriptedResponse{{err: providerErr("a", provider.KindAuth)}}}
	b := &scriptedProvider{id: "b", responses: []scriptedResponse{{content: longArticle()}}}

	o := NewOrchestrator(ranked(a, b), 0.5, nil)

	_, err := o.Generate(context.Background(), testBrief())
	require.NoError(t, err)
	assert.Equal(t, 1, a.calls)

	// Second run: a is not invoked again, recorded as skipped.
	result, err := o.Generate(context.Background(), testBrief())
	require.NoError(t, err)

	assert.Equal(t, 1, a.calls, "disabled provider must not be called again")
	require.Len(t, result.Attempts, 2)
	assert.Equal(t, model.OutcomeSkipped, result.Attempts[0].Outcome)
	assert.Equal(t, "b", result.ProviderUsed)
}

func TestGenerate_ExhaustionCarriesAttemptLog(t *testing.T) {
	a := &scriptedProvider{id: "a", responses: []scriptedResponse{{err: providerErr("a", provider.KindTimeout)}}}
	b := &scriptedProvider{id: "b", responses: []scriptedResponse{{err: providerErr("b", provider.KindRateLimited)}}}

	o := NewOrchestrator(ranked(a, b), 0.5, nil)

	_, err := o.Generate(context.Background(), testBrief())
	require.Error(t, err)

	var exhausted *model.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Len(t, exhausted.Attempts, 2)
	assert.Equal(t, model.OutcomeTimeout, exhausted.Attempts[0].Outcome)
	assert.Equal(t, model.OutcomeRateLimited, exhausted.Attempts[1].Outcome)
	assert.Contains(t, exhausted.Summary(), "a: timeout")
}

func TestGenerate_CostEstimatedFromContentLength(t *testing.T) {
	content := longArticle()
	a := &scriptedProvider{
		id:        "a",
		cost:      decimal.NewFromFloat(0.001),
		responses: []scriptedResponse{{content: content}},
	}

	o := NewOrchestrator(ranked(a), 0.5, nil)

	result, err := o.Generate(context.Background(), testBrief())
	require.NoError(t, err)

	tokens := int64(len(content) / 4)
	want := decimal.NewFromFloat(0.001).Mul(decimal.NewFromInt(tokens)).Div(decimal.NewFromInt(1000))
	assert.True(t, result.Cost.Equal(want), "cost %s != %s", result.Cost, want)
}
