package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Brief is the content request handed to the orchestrator.
type Brief struct {
	Keyword    string
	AnchorText string
	TargetURL  string
	WordTarget int
}

// BuildPrompt renders the provider prompt for a brief. All providers receive
// the same prompt; provider-specific formatting belongs in the clients.
func (b *Brief) BuildPrompt() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write an informative article of roughly %d words about %q.\n", b.WordTarget, b.Keyword)
	fmt.Fprintf(&sb, "Naturally include a link to %s using the exact anchor text %q.\n", b.TargetURL, b.AnchorText)
	sb.WriteString("Start with a short, descriptive title on the first line. Do not mention that the article was generated.")
	return sb.String()
}

// MaxTokens estimates the completion budget for the brief.
// Rough heuristic: ~1.5 tokens per word plus headroom for the title.
func (b *Brief) MaxTokens() int {
	return b.WordTarget*3/2 + 128
}

// Outcome classifies one provider invocation.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeTimeout     Outcome = "timeout"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeError       Outcome = "error"
	OutcomeTooShort    Outcome = "too_short"
	OutcomeSkipped     Outcome = "skipped" // provider disabled earlier in this process
)

// Attempt records one provider invocation. Ephemeral - carried on results
// and failures for diagnostics, never persisted.
type Attempt struct {
	ProviderID string          `json:"provider_id"`
	Outcome    Outcome         `json:"outcome"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Detail     string          `json:"detail,omitempty"`
	Cost       decimal.Decimal `json:"cost"`
}

// Result is a successful generation.
type Result struct {
	Content      string
	ProviderUsed string
	Attempts     []Attempt
	Cost         decimal.Decimal // cost of the winning attempt
}

// Title extracts the first line as the article title, with the remainder as
// the body.
func (r *Result) Title() (title, body string) {
	content := strings.TrimSpace(r.Content)
	if idx := strings.IndexByte(content, '\n'); idx > 0 {
		title = strings.TrimSpace(strings.Trim(content[:idx], "# "))
		body = strings.TrimSpace(content[idx+1:])
		return title, body
	}
	return content, content
}

// ExhaustedError is returned when every configured provider failed. It
// carries the full attempt log so the resume controller can build a
// user-facing summary.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	ids := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		ids[i] = fmt.Sprintf("%s:%s", a.ProviderID, a.Outcome)
	}
	return "all content providers exhausted: " + strings.Join(ids, ", ")
}

// Summary returns one human-readable line per attempt.
func (e *ExhaustedError) Summary() string {
	lines := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		line := fmt.Sprintf("%s: %s", a.ProviderID, a.Outcome)
		if a.Detail != "" {
			line += " (" + a.Detail + ")"
		}
		lines[i] = line
	}
	return strings.Join(lines, "; ")
}
