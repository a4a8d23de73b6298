package model

import "time"

// Window is a group of related log entries scored as one analysis unit.
// TraceID is set only for trace-based windows.
type Window struct {
	Entries          []LogEntry     `json:"entries"`
	TraceID          string         `json:"trace_id,omitempty"`
	StartTime        time.Time      `json:"start_time,omitempty"`
	EndTime          time.Time      `json:"end_time,omitempty"`
	TemplateCounts   map[string]int `json:"template_counts"`
	ImportanceScore  float64        `json:"importance_score"`
	PromptMatchScore float64        `json:"prompt_match_score"`
	Summary          string         `json:"summary"`
}

// Score is the ranking key: importance plus prompt match.
func (w Window) Score() float64 {
	return w.ImportanceScore + w.PromptMatchScore
}
