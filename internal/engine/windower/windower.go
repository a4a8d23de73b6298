// Package windower groups entries into analysis windows: first by trace id,
// then, for entries without one, by proximity in time.
package windower

import (
	"fmt"
	"sort"
	"time"

	"github.com/crimson-sun/logsieve/internal/model"
)

// Defaults for window construction.
const (
	DefaultWindow        = 30 * time.Second
	DefaultMaxWindowSize = 40
)

// Overflow decides what happens to a trace group larger than MaxWindowSize.
type Overflow int

const (
	// Split cuts the group into consecutive windows of at most MaxWindowSize
	// entries, in input order. Each keeps the trace id.
	Split Overflow = iota
	// TimeBased sends the group's entries to the time-based phase.
	TimeBased
	// Drop discards the group entirely.
	Drop
)

// ParseOverflow maps "split", "time" or "drop" to an Overflow policy.
func ParseOverflow(s string) (Overflow, error) {
	switch s {
	case "", "split":
		return Split, nil
	case "time":
		return TimeBased, nil
	case "drop":
		return Drop, nil
	default:
		return Split, fmt.Errorf("windower: unknown overflow policy %q", s)
	}
}

func (o Overflow) String() string {
	switch o {
	case TimeBased:
		return "time"
	case Drop:
		return "drop"
	default:
		return "split"
	}
}

// Config controls windowing.
type Config struct {
	Window        time.Duration // time span measured from a window's first entry
	MaxWindowSize int
	Overflow      Overflow
}

// Windower builds windows from prefiltered entries.
type Windower struct {
	cfg Config
}

// New creates a Windower, filling zero config fields with defaults.
func New(cfg Config) *Windower {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxWindowSize <= 0 {
		cfg.MaxWindowSize = DefaultMaxWindowSize
	}
	return &Windower{cfg: cfg}
}

// Build groups entries into windows. Trace windows come first, in order of
// each trace id's first appearance, followed by time windows in timestamp
// order. Entries keep their relative input order inside trace windows.
func (w *Windower) Build(entries []model.LogEntry) []model.Window {
	var (
		order    []string
		groups   = make(map[string][]int)
		untraced []int
	)
	for i, e := range entries {
		if e.TraceID == "" {
			untraced = append(untraced, i)
			continue
		}
		if _, seen := groups[e.TraceID]; !seen {
			order = append(order, e.TraceID)
		}
		groups[e.TraceID] = append(groups[e.TraceID], i)
	}

	var windows []model.Window
	for _, id := range order {
		idx := groups[id]
		if len(idx) <= w.cfg.MaxWindowSize {
			windows = append(windows, newWindow(entries, idx, id))
			continue
		}
		switch w.cfg.Overflow {
		case Split:
			for start := 0; start < len(idx); start += w.cfg.MaxWindowSize {
				end := min(start+w.cfg.MaxWindowSize, len(idx))
				windows = append(windows, newWindow(entries, idx[start:end], id))
			}
		case TimeBased:
			untraced = append(untraced, idx...)
		case Drop:
			// discarded, see Drop
		}
	}

	return append(windows, w.timeWindows(entries, untraced)...)
}

// timeWindows sorts the given entry indexes by timestamp (missing timestamps
// first, ties in input order) and scans them into windows anchored at their
// first entry.
func (w *Windower) timeWindows(entries []model.LogEntry, idx []int) []model.Window {
	sorted := append([]int(nil), idx...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return entries[sorted[a]].Timestamp.Before(entries[sorted[b]].Timestamp)
	})

	var windows []model.Window
	for i := 0; i < len(sorted); {
		anchor := entries[sorted[i]]
		j := i + 1
		for j < len(sorted) && j-i < w.cfg.MaxWindowSize {
			cur := entries[sorted[j]]
			if !anchor.HasTimestamp() || !cur.HasTimestamp() || cur.Timestamp.Sub(anchor.Timestamp) > w.cfg.Window {
				break
			}
			j++
		}
		windows = append(windows, newWindow(entries, sorted[i:j], ""))
		i = j
	}
	return windows
}

func newWindow(entries []model.LogEntry, idx []int, traceID string) model.Window {
	win := model.Window{
		Entries: make([]model.LogEntry, 0, len(idx)),
		TraceID: traceID,
	}
	for _, i := range idx {
		e := entries[i]
		win.Entries = append(win.Entries, e)
		if !e.HasTimestamp() {
			continue
		}
		if win.StartTime.IsZero() || e.Timestamp.Before(win.StartTime) {
			win.StartTime = e.Timestamp
		}
		if win.EndTime.IsZero() || e.Timestamp.After(win.EndTime) {
			win.EndTime = e.Timestamp
		}
	}
	return win
}
