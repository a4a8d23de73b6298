package model

import "time"

// LogEntry is a normalized log record. Zero values mean "absent": an empty
// string, a zero SeverityNumber or Status, and a zero Timestamp.
type LogEntry struct {
	Timestamp      time.Time `json:"timestamp,omitempty"`
	TimestampRaw   string    `json:"timestamp_raw,omitempty"`
	SeverityText   string    `json:"severity_text,omitempty"`   // FATAL, ERROR, WARN, INFO, DEBUG
	SeverityNumber int       `json:"severity_number,omitempty"` // 0-100
	TraceID        string    `json:"trace_id,omitempty"`
	SpanID         string    `json:"span_id,omitempty"`
	Status         int       `json:"status,omitempty"` // HTTP status, 100-599
	Route          string    `json:"route,omitempty"`
	Method         string    `json:"method,omitempty"`
	Body           string    `json:"body"`
	ServiceName    string    `json:"service_name"`
	IsHot          bool      `json:"is_hot"`
	TemplateHash   string    `json:"template_hash"`
}

// HasTimestamp reports whether a timestamp could be parsed for the entry.
func (e LogEntry) HasTimestamp() bool {
	return !e.Timestamp.IsZero()
}
