package logsieve

import "time"

type options struct {
	maxWindows    int
	maxWindowSize int
	window        time.Duration
	overflow      string
	verbosity     string
	digestLogs    int
	tokenEncoding string
	now           func() time.Time
}

// Option configures a Sieve.
type Option func(*options)

// WithMaxWindows sets how many windows Filter returns when the caller passes
// no limit. Default: 20.
func WithMaxWindows(n int) Option {
	return func(o *options) { o.maxWindows = n }
}

// WithMaxWindowSize caps the entries per window. Default: 40.
func WithMaxWindowSize(n int) Option {
	return func(o *options) { o.maxWindowSize = n }
}

// WithWindow sets the span of a time-based window, measured from its first
// entry. Default: 30s.
func WithWindow(d time.Duration) Option {
	return func(o *options) { o.window = d }
}

// WithOverflow sets the policy for trace groups larger than the window size:
// "split" (default), "time" or "drop".
func WithOverflow(policy string) Option {
	return func(o *options) { o.overflow = policy }
}

// WithVerbosity sets digest message truncation: "minimal" (120 runes),
// "standard" (200, default) or "full".
func WithVerbosity(v string) Option {
	return func(o *options) { o.verbosity = v }
}

// WithDigestLogs sets the representative entries kept per digest window.
// Default: 3.
func WithDigestLogs(n int) Option {
	return func(o *options) { o.digestLogs = n }
}

// WithTokenEncoding measures digests with the named tiktoken vocabulary,
// such as "cl100k_base" or "o200k_base". The vocabulary is fetched on first
// use; when it cannot be loaded the whitespace estimate is used. Default:
// the whitespace estimate.
func WithTokenEncoding(name string) Option {
	return func(o *options) { o.tokenEncoding = name }
}

// WithClock sets the clock used to judge how recent a window is.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func defaultOptions() options {
	return options{
		overflow:  "split",
		verbosity: "standard",
		now:       time.Now,
	}
}
