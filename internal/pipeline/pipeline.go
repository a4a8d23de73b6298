// Package pipeline connects loading, filtering, analysis and output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/crimson-sun/logsieve/internal/analysis"
	"github.com/crimson-sun/logsieve/internal/engine"
	"github.com/crimson-sun/logsieve/internal/loader"
	"github.com/crimson-sun/logsieve/internal/model"
	"github.com/crimson-sun/logsieve/internal/output"
)

// ErrNoSource is returned when a request names neither files nor a reader.
var ErrNoSource = errors.New("pipeline: no log source")

// OutputError reports that a digest was built but could not be published.
type OutputError struct {
	Err error
}

func (e *OutputError) Error() string { return "pipeline output: " + e.Err.Error() }

func (e *OutputError) Unwrap() error { return e.Err }

// Request describes one filtering call. Exactly one of Paths or Source is used;
// Paths wins when both are set.
type Request struct {
	Paths      []string
	Source     io.Reader
	Query      string
	MaxWindows int // <= 0 uses the engine default
}

// Report is what one filtering call produced.
type Report struct {
	Digest   model.Digest
	Records  int
	Skipped  int
	Hot      int
	FellBack bool
}

// Pipeline runs load → filter → digest and publishes every digest to its
// output. Analysis is optional.
type Pipeline struct {
	loader   *loader.Loader
	engine   *engine.Engine
	analyzer analysis.Analyzer
	output   output.Output
	logger   zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAnalyzer sets the analysis collaborator. Default: analysis.Disabled.
func WithAnalyzer(a analysis.Analyzer) Option {
	return func(p *Pipeline) { p.analyzer = a }
}

// WithOutput sets where digests are published. Default: none.
func WithOutput(o output.Output) Option {
	return func(p *Pipeline) { p.output = o }
}

// WithLogger sets the pipeline logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a Pipeline from a loader and an engine.
func New(ld *loader.Loader, eng *engine.Engine, opts ...Option) *Pipeline {
	p := &Pipeline{
		loader:   ld,
		engine:   eng,
		analyzer: analysis.Disabled{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyzer returns the configured analysis collaborator.
func (p *Pipeline) Analyzer() analysis.Analyzer { return p.analyzer }

// Filter loads the request's source, filters it and publishes the digest.
// A publishing failure is returned as *OutputError together with the report.
func (p *Pipeline) Filter(ctx context.Context, req Request) (Report, error) {
	loaded, err := p.load(ctx, req)
	if err != nil {
		return Report{}, err
	}

	res := p.engine.Run(loaded.Entries, req.Query, req.MaxWindows)
	rep := Report{
		Digest:   p.engine.BuildDigest(res, len(loaded.Entries), req.Query),
		Records:  loaded.Records,
		Skipped:  loaded.Skipped,
		Hot:      res.Hot,
		FellBack: res.FellBack,
	}
	p.logger.Info().
		Int("records", rep.Records).
		Int("skipped", rep.Skipped).
		Int("windows", len(rep.Digest.Windows)).
		Float64("cost_reduction", rep.Digest.CostReductionPercentage).
		Msg("digest built")

	if err := p.publish(ctx, rep.Digest); err != nil {
		return rep, err
	}
	return rep, nil
}

// Analyze runs Filter and hands the digest to the analyzer along with any
// prior conversation. Publishing failures are logged, not returned.
func (p *Pipeline) Analyze(ctx context.Context, req Request, history []analysis.Message) (Report, analysis.Result, error) {
	rep, err := p.Filter(ctx, req)
	var outErr *OutputError
	switch {
	case errors.As(err, &outErr):
		p.logger.Warn().Err(err).Msg("digest output failed")
	case err != nil:
		return rep, analysis.Result{}, err
	}
	res, err := p.analyzer.Analyze(ctx, analysis.Request{
		Query:   req.Query,
		Digest:  rep.Digest,
		History: history,
	})
	if err != nil {
		return rep, analysis.Result{}, fmt.Errorf("pipeline: %w", err)
	}
	return rep, res, nil
}

// Close closes the output.
func (p *Pipeline) Close() error {
	if p.output == nil {
		return nil
	}
	return p.output.Close()
}

func (p *Pipeline) load(ctx context.Context, req Request) (loader.Result, error) {
	switch {
	case len(req.Paths) > 0:
		return p.loader.LoadFiles(ctx, req.Paths)
	case req.Source != nil:
		return p.loader.Load(req.Source)
	default:
		return loader.Result{}, ErrNoSource
	}
}

func (p *Pipeline) publish(ctx context.Context, d model.Digest) error {
	if p.output == nil {
		return nil
	}
	if err := p.output.Write(ctx, d); err != nil {
		return &OutputError{Err: err}
	}
	return nil
}
