package multi

import (
	"context"
	"errors"
	"fmt"

	"github.com/crimson-sun/logsieve/internal/model"
	"github.com/crimson-sun/logsieve/internal/output"
)

// Multi fans a digest out to several outputs in order. A failing output does
// not stop delivery to the ones after it.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi over the given outputs. Nil entries are ignored.
func New(outputs ...output.Output) *Multi {
	m := &Multi{}
	for _, o := range outputs {
		if o != nil {
			m.outputs = append(m.outputs, o)
		}
	}
	return m
}

// Len reports how many outputs receive each digest.
func (m *Multi) Len() int { return len(m.outputs) }

// Write delivers the digest to every output and joins their errors.
func (m *Multi) Write(ctx context.Context, d model.Digest) error {
	var errs []error
	for i, o := range m.outputs {
		if err := o.Write(ctx, d); err != nil {
			errs = append(errs, fmt.Errorf("output %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every output and joins their errors.
func (m *Multi) Close() error {
	var errs []error
	for i, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, fmt.Errorf("output %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
