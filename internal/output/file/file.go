package file

import (
	"context"
	"fmt"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/crimson-sun/logsieve/internal/engine/compactor"
	"github.com/crimson-sun/logsieve/internal/model"
	"github.com/crimson-sun/logsieve/internal/output"
)

// DefaultMaxSizeMB is the size at which the file is rotated.
const DefaultMaxSizeMB = 100

// Option configures a file Output.
type Option func(*Output)

// WithMaxSize sets the file size in megabytes at which rotation triggers.
func WithMaxSize(mb int) Option {
	return func(o *Output) { o.w.MaxSize = mb }
}

// WithMaxBackups caps the number of rotated files kept. 0 keeps all.
func WithMaxBackups(n int) Option {
	return func(o *Output) { o.w.MaxBackups = n }
}

// WithCompress gzips rotated files.
func WithCompress(on bool) Option {
	return func(o *Output) { o.w.Compress = on }
}

// Output appends one JSON digest per line to a size-rotated file.
type Output struct {
	mu        sync.Mutex
	w         *lumberjack.Logger
	verbosity compactor.Verbosity
}

// New creates a file output that writes NDJSON to the given path. The file is
// opened lazily on the first write.
func New(path string, verbosity compactor.Verbosity, opts ...Option) (*Output, error) {
	if path == "" {
		return nil, fmt.Errorf("file output: empty path")
	}
	o := &Output{
		w:         &lumberjack.Logger{Filename: path, MaxSize: DefaultMaxSizeMB},
		verbosity: verbosity,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Write appends the digest as a single line.
func (o *Output) Write(_ context.Context, d model.Digest) error {
	data, err := output.Marshal(output.FormatDigest(d, o.verbosity), output.JSON, false)
	if err != nil {
		return fmt.Errorf("file output: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := o.w.Write(data); err != nil {
		return fmt.Errorf("file output: write %s: %w", o.w.Filename, err)
	}
	return nil
}

// Rotate closes the current file and starts a new one.
func (o *Output) Rotate() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Rotate()
}

// Close closes the underlying file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Close()
}
