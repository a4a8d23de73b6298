package webhook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/crimson-sun/logsieve/internal/engine/compactor"
	"github.com/crimson-sun/logsieve/internal/httpclient"
	"github.com/crimson-sun/logsieve/internal/model"
	"github.com/crimson-sun/logsieve/internal/output"
)

const (
	defaultBatchSize     = 10
	defaultFlushInterval = 5 * time.Second
	defaultTimeout       = 10 * time.Second
)

// Option configures a webhook Output.
type Option func(*Output)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(o *Output) {
		for k, v := range h {
			o.httpOpts = append(o.httpOpts, httpclient.WithHeader(k, v))
		}
	}
}

// WithBatchSize sets the number of digests accumulated before a flush. Default: 10.
func WithBatchSize(n int) Option {
	return func(o *Output) { o.batchSize = n }
}

// WithFlushInterval sets the maximum time between flushes. Default: 5s.
func WithFlushInterval(d time.Duration) Option {
	return func(o *Output) { o.flushInterval = d }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *Output) { o.httpOpts = append(o.httpOpts, httpclient.WithTimeout(d)) }
}

// WithBackoff sets the delay before the first retry.
func WithBackoff(d time.Duration) Option {
	return func(o *Output) { o.httpOpts = append(o.httpOpts, httpclient.WithBackoff(d)) }
}

// WithVerbosity sets the field stripping applied before sending. Default: Standard.
func WithVerbosity(v compactor.Verbosity) Option {
	return func(o *Output) { o.verbosity = v }
}

// WithLogger sets the logger used by the default error callback.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Output) { o.log = l }
}

// WithOnError sets a callback invoked when a timer-triggered flush fails.
// Default: logs a warning.
func WithOnError(f func(error)) Option {
	return func(o *Output) { o.errFunc = f }
}

// Output POSTs batched digests to an HTTP endpoint as a JSON array.
// Digests accumulate in an internal buffer and are flushed when batchSize is
// reached or flushInterval elapses. 5xx responses are retried with
// exponential backoff.
type Output struct {
	client        *httpclient.Client
	httpOpts      []httpclient.Option
	batchSize     int
	flushInterval time.Duration
	verbosity     compactor.Verbosity
	log           zerolog.Logger
	errFunc       func(error)
	mu            sync.Mutex
	pending       []model.Digest
	timer         *time.Timer
}

// New creates a webhook output targeting the given URL.
func New(url string, opts ...Option) *Output {
	o := &Output{
		httpOpts:      []httpclient.Option{httpclient.WithTimeout(defaultTimeout)},
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		verbosity:     compactor.Standard,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.errFunc == nil {
		o.errFunc = func(err error) { o.log.Warn().Err(err).Msg("webhook flush failed") }
	}
	o.client = httpclient.New(url, "", o.httpOpts...)
	return o
}

// Write appends a digest to the batch. When batchSize is reached, the batch
// is flushed immediately. A timer is started on the first digest so the batch
// flushes even if batchSize is never reached.
func (o *Output) Write(ctx context.Context, d model.Digest) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.pending = append(o.pending, output.FormatDigest(d, o.verbosity))

	if len(o.pending) >= o.batchSize {
		return o.flushLocked(ctx)
	}

	if len(o.pending) == 1 {
		o.timer = time.AfterFunc(o.flushInterval, func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			if err := o.flushLocked(context.Background()); err != nil {
				o.errFunc(err)
			}
		})
	}
	return nil
}

// Close flushes any remaining digests and stops the timer.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	return o.flushLocked(context.Background())
}

// flushLocked sends the pending batch. Caller must hold o.mu.
func (o *Output) flushLocked(ctx context.Context) error {
	if len(o.pending) == 0 {
		return nil
	}
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}

	batch := o.pending
	o.pending = nil

	if err := o.client.PostJSON(ctx, "", batch, nil); err != nil {
		return fmt.Errorf("webhook: post %d digests: %w", len(batch), err)
	}
	return nil
}
