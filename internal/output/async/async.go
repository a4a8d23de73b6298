package async

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/crimson-sun/logsieve/internal/metrics"
	"github.com/crimson-sun/logsieve/internal/model"
	"github.com/crimson-sun/logsieve/internal/output"
)

const (
	defaultBufferSize   = 64
	defaultDrainTimeout = 5 * time.Second
)

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 64.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithDrainTimeout bounds how long Close waits for queued digests.
func WithDrainTimeout(d time.Duration) Option {
	return func(a *Async) { a.drainTimeout = d }
}

// WithLogger sets the logger for drops, drain timeouts and the default error
// callback.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Async) { a.log = l }
}

// WithOnError sets the callback invoked when the inner output's Write fails.
// Default: logs a warning.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Write return immediately, dropping the digest, when the
// buffer is full instead of blocking.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// Async decouples digest production from a slow output via a buffered
// channel. A background goroutine drains the channel to the wrapped output.
// Errors from the inner output go to errFunc, not to the caller.
type Async struct {
	inner        output.Output
	ch           chan model.Digest
	done         chan struct{}
	log          zerolog.Logger
	errFunc      func(error)
	bufSize      int
	drainTimeout time.Duration
	dropOnFull   bool
	closeOnce    sync.Once
}

// New wraps an output and starts the drain goroutine.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:        inner,
		log:          zerolog.Nop(),
		bufSize:      defaultBufferSize,
		drainTimeout: defaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.errFunc == nil {
		a.errFunc = func(err error) { a.log.Warn().Err(err).Msg("async output write failed") }
	}
	a.ch = make(chan model.Digest, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write queues the digest. It blocks while the buffer is full unless
// WithDropOnFull is set, in which case the digest is dropped. A blocked Write
// returns ctx.Err() if ctx ends first.
func (a *Async) Write(ctx context.Context, d model.Digest) error {
	if a.dropOnFull {
		select {
		case a.ch <- d:
		default:
			metrics.DigestsDropped.Inc()
			a.log.Warn().Str("query", d.Query).Msg("async output buffer full, dropping digest")
		}
		return nil
	}
	select {
	case a.ch <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting digests, waits for the queue to drain (bounded by the
// drain timeout) and closes the inner output. Write must not be called after
// Close.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		t := time.NewTimer(a.drainTimeout)
		defer t.Stop()
		select {
		case <-a.done:
		case <-t.C:
			a.log.Warn().Dur("timeout", a.drainTimeout).Msg("async output drain timed out")
		}
		err = a.inner.Close()
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for d := range a.ch {
		if err := a.inner.Write(context.Background(), d); err != nil {
			a.errFunc(err)
		}
	}
}
