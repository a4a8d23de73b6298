package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/crimson-sun/logsieve/internal/engine/compactor"
	"github.com/crimson-sun/logsieve/internal/model"
	"github.com/crimson-sun/logsieve/internal/output"
)

// Output writes serialized digests to stdout.
type Output struct {
	mu        sync.Mutex
	w         io.Writer
	format    output.Format
	verbosity compactor.Verbosity
	pretty    bool
}

// Option configures a stdout Output.
type Option func(*Output)

// WithWriter redirects output away from os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(o *Output) { o.w = w }
}

// New creates a new stdout Output with verbosity-aware field omission
// and optional pretty-printed JSON.
func New(format output.Format, verbosity compactor.Verbosity, pretty bool, opts ...Option) *Output {
	o := &Output{w: os.Stdout, format: format, verbosity: verbosity, pretty: pretty}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Output) Write(_ context.Context, d model.Digest) error {
	data, err := output.Marshal(output.FormatDigest(d, o.verbosity), o.format, o.pretty)
	if err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := o.w.Write(data); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
