package pipeline

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/crimson-sun/logsieve/internal/analysis"
	"github.com/crimson-sun/logsieve/internal/config"
	"github.com/crimson-sun/logsieve/internal/engine"
	"github.com/crimson-sun/logsieve/internal/engine/compactor"
	"github.com/crimson-sun/logsieve/internal/engine/windower"
	"github.com/crimson-sun/logsieve/internal/loader"
	"github.com/crimson-sun/logsieve/internal/output"
	"github.com/crimson-sun/logsieve/internal/output/async"
	"github.com/crimson-sun/logsieve/internal/output/file"
	"github.com/crimson-sun/logsieve/internal/output/multi"
	"github.com/crimson-sun/logsieve/internal/output/stdout"
	"github.com/crimson-sun/logsieve/internal/output/webhook"
)

// Options controls which components FromConfig assembles.
type Options struct {
	Stdout io.Writer // when set, each digest is also printed here in the configured format
	Logger zerolog.Logger
}

// EngineConfig translates filter settings into an engine configuration.
func EngineConfig(f config.FilterConfig) (engine.Config, error) {
	overflow, err := windower.ParseOverflow(f.Overflow)
	if err != nil {
		return engine.Config{}, err
	}
	verbosity, err := compactor.ParseVerbosity(f.Verbosity)
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		MaxWindows:    f.MaxWindows,
		FallbackLimit: f.FallbackLimit,
		Windowing: windower.Config{
			Window:        f.Window(),
			MaxWindowSize: f.MaxWindowSize,
			Overflow:      overflow,
		},
		Verbosity:  verbosity,
		DigestLogs: f.DigestLogs,
	}, nil
}

// NewTokenCounter returns the counter used for digest token estimates: a
// tiktoken counter when an encoding is configured, else the heuristic.
func NewTokenCounter(f config.FilterConfig) compactor.TokenCounter {
	if f.TokenEncoding == "" {
		return compactor.Heuristic{}
	}
	return compactor.NewBPECounter(f.TokenEncoding)
}

// NewAnalyzer returns the configured analysis collaborator, or
// analysis.Disabled when none is configured.
func NewAnalyzer(a config.AnalysisConfig, logger zerolog.Logger) analysis.Analyzer {
	if !a.Enabled() {
		return analysis.Disabled{}
	}
	return analysis.NewOpenAI(analysis.OpenAIConfig{
		BaseURL:           a.BaseURL,
		APIKey:            a.APIKey,
		Model:             a.Model,
		MaxTokens:         a.MaxTokens,
		FollowUpMaxTokens: a.FollowUpMaxTokens,
		Temperature:       a.Temperature,
		Pricing: analysis.Pricing{
			InputPerMillion:  a.InputCostPerMillion,
			OutputPerMillion: a.OutputCostPerMillion,
		},
		Timeout: a.Timeout,
	}, analysis.WithLogger(logger))
}

// NewOutput assembles the configured digest outputs, printing to w when it is
// non-nil. It returns nil when nothing is configured. The webhook is wrapped
// in an async buffer so a slow endpoint does not hold up filtering.
func NewOutput(o config.OutputConfig, verbosity compactor.Verbosity, w io.Writer, logger zerolog.Logger) (output.Output, error) {
	var outs []output.Output
	if w != nil {
		format, err := output.ParseFormat(o.Format)
		if err != nil {
			return nil, err
		}
		outs = append(outs, stdout.New(format, verbosity, o.Pretty, stdout.WithWriter(w)))
	}
	if o.File != "" {
		f, err := file.New(o.File, verbosity, file.WithMaxSize(o.FileMaxSizeMB))
		if err != nil {
			return nil, err
		}
		outs = append(outs, f)
	}
	if o.WebhookURL != "" {
		wh := webhook.New(o.WebhookURL, webhook.WithVerbosity(verbosity), webhook.WithLogger(logger))
		outs = append(outs, async.New(wh, async.WithDropOnFull(), async.WithLogger(logger)))
	}
	switch len(outs) {
	case 0:
		return nil, nil
	case 1:
		return outs[0], nil
	default:
		return multi.New(outs...), nil
	}
}

// FromConfig assembles a Pipeline from configuration.
func FromConfig(cfg config.Config, opts Options) (*Pipeline, error) {
	ecfg, err := EngineConfig(cfg.Filter)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	out, err := NewOutput(cfg.Output, ecfg.Verbosity, opts.Stdout, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	pipeOpts := []Option{
		WithLogger(opts.Logger),
		WithAnalyzer(NewAnalyzer(cfg.Analysis, opts.Logger)),
	}
	if out != nil {
		pipeOpts = append(pipeOpts, WithOutput(out))
	}
	return New(
		loader.New(loader.WithLogger(opts.Logger)),
		engine.New(ecfg,
			engine.WithLogger(opts.Logger),
			engine.WithTokenCounter(NewTokenCounter(cfg.Filter)),
		),
		pipeOpts...,
	), nil
}
