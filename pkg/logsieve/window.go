package logsieve

import (
	"time"

	"github.com/crimson-sun/logsieve/internal/model"
)

// Entry is a normalized log record.
type Entry = model.LogEntry

// Digest is the compact form of a filter result handed to a language model.
type Digest = model.Digest

// Window is a group of related entries ranked by relevance.
// This is the stable public type; internal representations may evolve
// independently.
type Window struct {
	TraceID     string    `json:"trace_id,omitempty"`   // set for trace-based windows
	Start       time.Time `json:"start_time,omitempty"` // earliest entry timestamp
	End         time.Time `json:"end_time,omitempty"`   // latest entry timestamp
	Entries     []Entry   `json:"entries"`              // deduplicated, input order
	Templates   int       `json:"templates"`            // distinct message templates
	Importance  float64   `json:"importance_score"`
	PromptMatch float64   `json:"prompt_match_score"`
	Score       float64   `json:"score"` // Importance + PromptMatch, the ranking key
	Summary     string    `json:"summary"`
}

func windowFromModel(w model.Window) Window {
	return Window{
		TraceID:     w.TraceID,
		Start:       w.StartTime,
		End:         w.EndTime,
		Entries:     w.Entries,
		Templates:   len(w.TemplateCounts),
		Importance:  w.ImportanceScore,
		PromptMatch: w.PromptMatchScore,
		Score:       w.Score(),
		Summary:     w.Summary,
	}
}
