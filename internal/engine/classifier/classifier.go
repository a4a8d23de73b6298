// Package classifier decides which log entries are "hot", meaning likely to
// matter for incident analysis, and prefilters batches down to them.
package classifier

import (
	"github.com/crimson-sun/logsieve/internal/engine/rules"
	"github.com/crimson-sun/logsieve/internal/model"
)

// Thresholds for hot classification and for the low-signal fallback.
const (
	HotSeverity      = 70
	HotStatus        = 500
	FallbackSeverity = 30

	DefaultFallbackLimit = 200
)

// Classifier flags hot events using a shared rule set.
type Classifier struct {
	rules *rules.Rules
}

// New creates a Classifier.
func New(r *rules.Rules) *Classifier {
	return &Classifier{rules: r}
}

// IsHot reports whether the entry is WARN or above, a 5xx response, or
// mentions an error keyword in its body.
func (c *Classifier) IsHot(e model.LogEntry) bool {
	if e.SeverityNumber >= HotSeverity {
		return true
	}
	if e.Status >= HotStatus {
		return true
	}
	return c.rules.HasErrorText(e.Body)
}

// Prefilter keeps the entries flagged hot, in input order. When none are
// hot it falls back to the first limit entries with severity at least INFO,
// again in input order; fellBack reports that case. A limit <= 0 means
// DefaultFallbackLimit.
func Prefilter(entries []model.LogEntry, limit int) (kept []model.LogEntry, fellBack bool) {
	for _, e := range entries {
		if e.IsHot {
			kept = append(kept, e)
		}
	}
	if len(kept) > 0 {
		return kept, false
	}

	if limit <= 0 {
		limit = DefaultFallbackLimit
	}
	for _, e := range entries {
		if len(kept) == limit {
			break
		}
		if e.SeverityNumber >= FallbackSeverity {
			kept = append(kept, e)
		}
	}
	return kept, true
}
