package logsieve

import (
	"context"
	"fmt"
	"io"

	"github.com/crimson-sun/logsieve/internal/engine"
	"github.com/crimson-sun/logsieve/internal/engine/compactor"
	"github.com/crimson-sun/logsieve/internal/engine/windower"
	"github.com/crimson-sun/logsieve/internal/loader"
)

// Sieve loads and filters logs. Safe for concurrent use.
type Sieve struct {
	loader *loader.Loader
	engine *engine.Engine
}

// New creates a Sieve. It fails only on an unknown overflow policy or
// verbosity.
func New(opts ...Option) (*Sieve, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	overflow, err := windower.ParseOverflow(o.overflow)
	if err != nil {
		return nil, fmt.Errorf("logsieve: %w", err)
	}
	verbosity, err := compactor.ParseVerbosity(o.verbosity)
	if err != nil {
		return nil, fmt.Errorf("logsieve: %w", err)
	}

	var tokens compactor.TokenCounter = compactor.Heuristic{}
	if o.tokenEncoding != "" {
		tokens = compactor.NewBPECounter(o.tokenEncoding)
	}

	eng := engine.New(engine.Config{
		MaxWindows: o.maxWindows,
		Windowing: windower.Config{
			Window:        o.window,
			MaxWindowSize: o.maxWindowSize,
			Overflow:      overflow,
		},
		Verbosity:  verbosity,
		DigestLogs: o.digestLogs,
	}, engine.WithClock(o.now), engine.WithTokenCounter(tokens))

	return &Sieve{loader: loader.New(), engine: eng}, nil
}

// Load decodes a JSON array or NDJSON stream, gzip or zstd compressed or not.
// Malformed NDJSON lines are skipped.
func (s *Sieve) Load(r io.Reader) ([]Entry, error) {
	res, err := s.loader.Load(r)
	if err != nil {
		return nil, err
	}
	return res.Entries, nil
}

// LoadFile reads and decodes the file at path.
func (s *Sieve) LoadFile(path string) ([]Entry, error) {
	res, err := s.loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return res.Entries, nil
}

// LoadFiles reads several files concurrently and concatenates their entries
// in argument order.
func (s *Sieve) LoadFiles(ctx context.Context, paths ...string) ([]Entry, error) {
	res, err := s.loader.LoadFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	return res.Entries, nil
}

// Filter returns up to maxWindows windows relevant to query, best first.
// maxWindows <= 0 uses the configured default.
func (s *Sieve) Filter(entries []Entry, query string, maxWindows int) []Window {
	ws := s.engine.Filter(entries, query, maxWindows)
	out := make([]Window, len(ws))
	for i, w := range ws {
		out[i] = windowFromModel(w)
	}
	return out
}

// Digest filters entries and reduces the result to representative entries
// per window, with totals and a processing summary.
func (s *Sieve) Digest(entries []Entry, query string, maxWindows int) Digest {
	return s.engine.Digest(entries, query, maxWindows)
}

// Prompt renders a digest as the markdown context block given to a language
// model.
func Prompt(d Digest) string {
	return compactor.RenderContext(d)
}
