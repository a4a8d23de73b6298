package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/crimson-sun/logsieve/internal/httpclient"
	"github.com/crimson-sun/logsieve/internal/metrics"
)

// Defaults for OpenAIConfig.
const (
	DefaultBaseURL           = "https://api.openai.com/v1"
	DefaultModel             = "gpt-4o-mini"
	DefaultMaxTokens         = 1500
	DefaultFollowUpMaxTokens = 800
)

var errNoChoices = errors.New("analysis: response has no choices")

// OpenAIConfig configures an OpenAI-compatible chat-completions client.
type OpenAIConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	MaxTokens         int
	FollowUpMaxTokens int
	Temperature       float64
	Pricing           Pricing
	Timeout           time.Duration
}

// OpenAI calls POST <base>/chat/completions.
type OpenAI struct {
	cfg    OpenAIConfig
	client *httpclient.Client
	logger zerolog.Logger
}

// Option configures an OpenAI client.
type Option func(*OpenAI)

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *OpenAI) { o.logger = l }
}

// WithHTTPOptions passes options to the underlying HTTP client.
func WithHTTPOptions(opts ...httpclient.Option) Option {
	return func(o *OpenAI) {
		o.client = httpclient.New(o.cfg.BaseURL, o.cfg.APIKey, append(o.httpOpts(), opts...)...)
	}
}

// NewOpenAI creates a client. Zero config fields take the package defaults.
func NewOpenAI(cfg OpenAIConfig, opts ...Option) *OpenAI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.FollowUpMaxTokens <= 0 {
		cfg.FollowUpMaxTokens = DefaultFollowUpMaxTokens
	}
	if cfg.Pricing == (Pricing{}) {
		cfg.Pricing = DefaultPricing
	}

	o := &OpenAI{cfg: cfg, logger: zerolog.Nop()}
	o.client = httpclient.New(cfg.BaseURL, cfg.APIKey, o.httpOpts()...)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *OpenAI) httpOpts() []httpclient.Option {
	if o.cfg.Timeout > 0 {
		return []httpclient.Option{httpclient.WithTimeout(o.cfg.Timeout)}
	}
	return nil
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Analyze asks the model to analyze a digest.
func (o *OpenAI) Analyze(ctx context.Context, req Request) (Result, error) {
	return o.complete(ctx, "analyze", analyzeMessages(req), o.cfg.MaxTokens)
}

// FollowUp answers a further question from the cached analysis.
func (o *OpenAI) FollowUp(ctx context.Context, req FollowUpRequest) (Result, error) {
	return o.complete(ctx, "followup", followUpMessages(req), o.cfg.FollowUpMaxTokens)
}

func (o *OpenAI) complete(ctx context.Context, kind string, msgs []Message, maxTokens int) (Result, error) {
	o.logger.Info().Str("kind", kind).Int("messages", len(msgs)).Msg("sending analysis request")

	var resp chatResponse
	err := o.client.PostJSON(ctx, "/chat/completions", chatRequest{
		Model:       o.cfg.Model,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: o.cfg.Temperature,
	}, &resp)
	if err == nil && len(resp.Choices) == 0 {
		err = errNoChoices
	}
	if err != nil {
		metrics.AnalysisRequests.WithLabelValues(o.cfg.Model, kind, "error").Inc()
		return Result{}, fmt.Errorf("analysis: %s failed: %w", kind, err)
	}

	in, out := resp.Usage.PromptTokens, resp.Usage.CompletionTokens
	res := Result{
		Response:      resp.Choices[0].Message.Content,
		TokensUsed:    resp.Usage.TotalTokens,
		InputTokens:   in,
		OutputTokens:  out,
		EstimatedCost: o.cfg.Pricing.Cost(in, out),
		Model:         o.cfg.Model,
	}

	metrics.AnalysisRequests.WithLabelValues(o.cfg.Model, kind, "ok").Inc()
	metrics.AnalysisTokens.WithLabelValues(o.cfg.Model, "input").Add(float64(in))
	metrics.AnalysisTokens.WithLabelValues(o.cfg.Model, "output").Add(float64(out))
	metrics.AnalysisCostUSD.WithLabelValues(o.cfg.Model).Add(res.EstimatedCost)

	o.logger.Info().
		Int("tokens", res.TokensUsed).
		Float64("cost_usd", res.EstimatedCost).
		Msg("analysis response received")
	return res, nil
}
