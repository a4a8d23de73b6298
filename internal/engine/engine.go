package engine

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/crimson-sun/logsieve/internal/engine/classifier"
	"github.com/crimson-sun/logsieve/internal/engine/compactor"
	"github.com/crimson-sun/logsieve/internal/engine/dedup"
	"github.com/crimson-sun/logsieve/internal/engine/query"
	"github.com/crimson-sun/logsieve/internal/engine/rules"
	"github.com/crimson-sun/logsieve/internal/engine/scorer"
	"github.com/crimson-sun/logsieve/internal/engine/windower"
	"github.com/crimson-sun/logsieve/internal/metrics"
	"github.com/crimson-sun/logsieve/internal/model"
)

// DefaultMaxWindows caps the windows returned by a filter call.
const DefaultMaxWindows = 20

// Config tunes the filtering stages. Zero fields take stage defaults.
type Config struct {
	MaxWindows    int
	FallbackLimit int
	Windowing     windower.Config
	Verbosity     compactor.Verbosity
	DigestLogs    int
}

// Result is the outcome of one filter call.
type Result struct {
	Windows  []model.Window
	Criteria model.Criteria
	Hot      int  // entries that survived the prefilter
	FellBack bool // no entry was hot; the severity fallback was used
}

// Engine orchestrates prefilter → window → dedup → score → rank.
// It keeps no state between calls and is safe for concurrent use.
type Engine struct {
	cfg       Config
	logger    zerolog.Logger
	windower  *windower.Windower
	parser    *query.Parser
	scorer    *scorer.Scorer
	compactor *compactor.Compactor
	tokens    compactor.TokenCounter
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	rules  *rules.Rules
	logger zerolog.Logger
	now    func() time.Time
	tokens compactor.TokenCounter
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the clock used for recency scoring.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRules replaces the built-in rule set.
func WithRules(r *rules.Rules) Option {
	return func(o *options) { o.rules = r }
}

// WithTokenCounter sets how digest prompts are measured.
func WithTokenCounter(c compactor.TokenCounter) Option {
	return func(o *options) { o.tokens = c }
}

// New creates an Engine.
func New(cfg Config, opts ...Option) *Engine {
	o := options{
		rules:  rules.Default(),
		logger: zerolog.Nop(),
		now:    time.Now,
		tokens: compactor.Heuristic{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.MaxWindows <= 0 {
		cfg.MaxWindows = DefaultMaxWindows
	}
	if cfg.FallbackLimit <= 0 {
		cfg.FallbackLimit = classifier.DefaultFallbackLimit
	}

	return &Engine{
		cfg:       cfg,
		logger:    o.logger,
		windower:  windower.New(cfg.Windowing),
		parser:    query.New(o.rules),
		scorer:    scorer.New(o.rules),
		compactor: compactor.New(cfg.Verbosity, cfg.DigestLogs),
		tokens:    o.tokens,
		now:       o.now,
	}
}

// Filter returns the most relevant windows for q, best first. maxWindows <= 0
// uses the configured cap.
func (e *Engine) Filter(entries []model.LogEntry, q string, maxWindows int) []model.Window {
	return e.Run(entries, q, maxWindows).Windows
}

// Run is Filter with the intermediate facts callers may want to report.
func (e *Engine) Run(entries []model.LogEntry, q string, maxWindows int) Result {
	start := time.Now()
	if maxWindows <= 0 {
		maxWindows = e.cfg.MaxWindows
	}

	hot, fellBack := classifier.Prefilter(entries, e.cfg.FallbackLimit)
	e.logger.Debug().
		Int("in", len(entries)).
		Int("out", len(hot)).
		Bool("fallback", fellBack).
		Msg("hot prefilter")

	windows := e.windower.Build(hot)
	dedup.DeduplicateAll(windows)
	e.logger.Debug().Int("windows", len(windows)).Msg("windows built")

	criteria := e.parser.Parse(q)
	now := e.now()
	for i := range windows {
		e.scorer.Score(&windows[i], criteria, now)
	}
	windows = Rank(windows, maxWindows)

	e.logger.Info().
		Int("entries", len(entries)).
		Int("hot", len(hot)).
		Int("selected", len(windows)).
		Msg("filter complete")

	metrics.FilterRuns.WithLabelValues(strconv.FormatBool(fellBack)).Inc()
	metrics.WindowsSelected.Add(float64(len(windows)))
	metrics.FilterDuration.Observe(time.Since(start).Seconds())

	return Result{
		Windows:  windows,
		Criteria: criteria,
		Hot:      len(hot),
		FellBack: fellBack,
	}
}

// Digest filters entries and reduces the result to the compact form handed
// to the analysis step.
func (e *Engine) Digest(entries []model.LogEntry, q string, maxWindows int) model.Digest {
	res := e.Run(entries, q, maxWindows)
	return e.BuildDigest(res, len(entries), q)
}

// BuildDigest compacts an existing filter result. totalLogs is the number of
// entries the result was computed from.
func (e *Engine) BuildDigest(res Result, totalLogs int, q string) model.Digest {
	d := e.compactor.Build(res.Windows, totalLogs)
	d.Query = q
	criteria := res.Criteria
	d.Criteria = &criteria
	d.EstimatedTokens = e.tokens.Count(compactor.RenderContext(d))
	return d
}
