// Package analysis hands filtered log digests to a chat-completion model and
// reports the generated answer with token and cost accounting.
package analysis

import (
	"context"
	"errors"

	"github.com/crimson-sun/logsieve/internal/model"
)

// ErrDisabled is returned by Disabled.
var ErrDisabled = errors.New("analysis: no provider configured")

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request asks for a first analysis of a digest.
type Request struct {
	Query   string
	Digest  model.Digest
	History []Message
}

// FollowUpRequest asks a further question about an earlier analysis without
// resending the logs.
type FollowUpRequest struct {
	Query            string
	History          []Message
	PreviousAnalysis string
	LogSummary       string
}

// Result is the model's answer with usage accounting.
type Result struct {
	Response      string  `json:"response"`
	TokensUsed    int     `json:"tokens_used"`
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	EstimatedCost float64 `json:"estimated_cost"`
	Model         string  `json:"model"`
}

// Analyzer produces natural-language analyses of log digests.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (Result, error)
	FollowUp(ctx context.Context, req FollowUpRequest) (Result, error)
}

// Pricing is the per-million-token price of a model.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// DefaultPricing matches gpt-4o-mini list prices.
var DefaultPricing = Pricing{InputPerMillion: 0.15, OutputPerMillion: 0.60}

// Cost returns the price in USD of a call with the given token counts.
func (p Pricing) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1e6*p.InputPerMillion + float64(outputTokens)/1e6*p.OutputPerMillion
}

// Disabled is an Analyzer that always fails with ErrDisabled.
type Disabled struct{}

func (Disabled) Analyze(context.Context, Request) (Result, error) { return Result{}, ErrDisabled }

func (Disabled) FollowUp(context.Context, FollowUpRequest) (Result, error) {
	return Result{}, ErrDisabled
}
