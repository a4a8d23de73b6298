package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/logsieve/internal/analysis"
	"github.com/crimson-sun/logsieve/internal/config"
	"github.com/crimson-sun/logsieve/internal/pipeline"
)

type filterFlags struct {
	query      string
	maxWindows int
	format     string
	pretty     bool
	verbosity  string
	overflow   string
	tokens     string
	analyze    bool
}

func newFilterCmd(a *app) *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "filter [FILE...]",
		Short: "Filter log files down to the windows most relevant to a query",
		Long: `Filter reads JSON array or NDJSON log files (optionally gzip or zstd
compressed) and prints a compact digest of the most relevant windows.
Standard input is read when no file is given or "-" is the only argument;
"-" cannot be mixed with file names.`,
		Example: `  logsieve filter -q "checkout 500 errors" logs.ndjson
  zcat logs.ndjson.gz | logsieve filter -q "payment timeouts" --format prompt
  logsieve filter -q "why is login slow?" --analyze logs.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFilter(cmd, f, args)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.query, "query", "q", "", "free-text question about the logs")
	fl.IntVarP(&f.maxWindows, "max-windows", "n", 0, "maximum windows to return (default from config)")
	fl.StringVar(&f.format, "format", "", "output format: json, yaml or prompt")
	fl.BoolVar(&f.pretty, "pretty", false, "indent JSON output")
	fl.StringVar(&f.verbosity, "verbosity", "", "digest verbosity: minimal, standard or full")
	fl.StringVar(&f.overflow, "overflow", "", "oversized trace groups: split, time or drop")
	fl.StringVar(&f.tokens, "token-encoding", "", "tiktoken vocabulary for estimated_tokens, e.g. cl100k_base (default: word estimate)")
	fl.BoolVar(&f.analyze, "analyze", false, "send the digest to the configured analysis model and print its answer")
	return cmd
}

func (a *app) runFilter(cmd *cobra.Command, f filterFlags, args []string) error {
	if len(args) > 1 && slices.Contains(args, "-") {
		return errors.New(`"-" (standard input) cannot be combined with file arguments`)
	}

	cfg := a.cfg
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.pretty {
		cfg.Output.Pretty = true
	}
	if f.verbosity != "" {
		cfg.Filter.Verbosity = f.verbosity
	}
	if f.overflow != "" {
		cfg.Filter.Overflow = f.overflow
	}
	if f.tokens != "" {
		cfg.Filter.TokenEncoding = f.tokens
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	opts := pipeline.Options{Logger: a.logger}
	if !f.analyze {
		opts.Stdout = a.stdout
	}
	p, err := pipeline.FromConfig(cfg, opts)
	if err != nil {
		return err
	}
	defer p.Close()

	req := pipeline.Request{Query: f.query, MaxWindows: f.maxWindows}
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		req.Source = a.stdin
	} else {
		req.Paths = args
	}

	ctx := cmd.Context()
	if !f.analyze {
		rep, err := p.Filter(ctx, req)
		if err != nil {
			return err
		}
		if rep.Skipped > 0 {
			a.logger.Warn().Int("skipped", rep.Skipped).Msg("malformed records skipped")
		}
		return nil
	}

	_, res, err := p.Analyze(ctx, req, nil)
	if errors.Is(err, analysis.ErrDisabled) {
		return errors.New("--analyze needs LOGSIEVE_ANALYSIS__PROVIDER and an API key")
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, res.Response)
	a.logger.Info().
		Int("tokens", res.TokensUsed).
		Float64("cost_usd", res.EstimatedCost).
		Str("model", res.Model).
		Msg("analysis complete")
	return nil
}
