package output

import (
	"context"

	"github.com/crimson-sun/logsieve/internal/model"
)

// Output defines the interface for digest destinations.
type Output interface {
	Write(ctx context.Context, d model.Digest) error
	Close() error
}
