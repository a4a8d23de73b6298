// Package compactor reduces ranked windows to the compact digest handed to
// the analysis step: a summary per window plus a few representative logs
// with bodies trimmed to the configured verbosity.
package compactor

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/crimson-sun/logsieve/internal/model"
)

// Verbosity controls how much of each message survives compaction.
type Verbosity int

const (
	Minimal  Verbosity = iota // messages cut to 120 runes
	Standard                  // messages cut to 200 runes
	Full                      // messages kept whole
)

// DefaultPerWindow is how many representative logs each window keeps.
const DefaultPerWindow = 3

const unknownSeverity = "UNKNOWN"

// ParseVerbosity maps a config value onto a Verbosity.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimal":
		return Minimal, nil
	case "", "standard":
		return Standard, nil
	case "full":
		return Full, nil
	default:
		return Standard, fmt.Errorf("unknown verbosity %q", s)
	}
}

func (v Verbosity) String() string {
	switch v {
	case Minimal:
		return "minimal"
	case Full:
		return "full"
	default:
		return "standard"
	}
}

// MessageLimit is the rune budget for one message; 0 means unlimited.
func (v Verbosity) MessageLimit() int {
	switch v {
	case Minimal:
		return 120
	case Full:
		return 0
	default:
		return 200
	}
}

// Compactor builds digests from scored windows.
type Compactor struct {
	Verbosity Verbosity
	PerWindow int
}

// New creates a Compactor with the given verbosity level. perWindow <= 0
// selects DefaultPerWindow.
func New(v Verbosity, perWindow int) *Compactor {
	if perWindow <= 0 {
		perWindow = DefaultPerWindow
	}
	return &Compactor{Verbosity: v, PerWindow: perWindow}
}

// Compact trims a message body to the verbosity budget.
func (c *Compactor) Compact(body string) string {
	if limit := c.Verbosity.MessageLimit(); limit > 0 {
		return truncate(body, limit)
	}
	return body
}

// Build reduces windows, already in rank order, to a digest. totalLogs is
// the number of entries loaded before filtering.
func (c *Compactor) Build(windows []model.Window, totalLogs int) model.Digest {
	d := model.Digest{
		TotalLogs: totalLogs,
		Windows:   make([]model.WindowDigest, 0, len(windows)),
	}
	for _, w := range windows {
		reps := c.representatives(w.Entries)
		wd := model.WindowDigest{
			Summary: w.Summary,
			Score:   w.Score(),
			TraceID: w.TraceID,
			Logs:    make([]model.LogDigest, 0, len(reps)),
		}
		for _, e := range reps {
			wd.Logs = append(wd.Logs, c.logDigest(e))
		}
		d.SelectedLogs += len(wd.Logs)
		d.Windows = append(d.Windows, wd)
	}

	d.CostReductionPercentage = CostReduction(d.SelectedLogs, totalLogs)
	d.ProcessingSummary = fmt.Sprintf("Filtered %d logs down to %d most relevant logs across %d windows",
		totalLogs, d.SelectedLogs, len(d.Windows))
	return d
}

// CostReduction is the share of loaded logs left out of the digest, as a
// percentage rounded to one decimal. It is 0 when nothing was loaded.
func CostReduction(selected, total int) float64 {
	if total == 0 {
		return 0
	}
	pct := (1 - float64(selected)/float64(total)) * 100
	return math.Round(pct*10) / 10
}

// representatives returns up to PerWindow entries by descending severity,
// ties in window order.
func (c *Compactor) representatives(entries []model.LogEntry) []model.LogEntry {
	sorted := make([]model.LogEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SeverityNumber > sorted[j].SeverityNumber
	})
	if len(sorted) > c.PerWindow {
		sorted = sorted[:c.PerWindow]
	}
	return sorted
}

func (c *Compactor) logDigest(e model.LogEntry) model.LogDigest {
	sev := e.SeverityText
	if sev == "" {
		sev = unknownSeverity
	}
	return model.LogDigest{
		Service:   e.ServiceName,
		Severity:  sev,
		Message:   c.Compact(e.Body),
		Status:    e.Status,
		Route:     e.Route,
		Method:    e.Method,
		Timestamp: e.TimestampRaw,
		TraceID:   e.TraceID,
	}
}

// truncate cuts s to at most maxRunes runes, appending "..." when it cuts.
func truncate(s string, maxRunes int) string {
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
