// Package rules holds the compiled, read-only rule tables shared by every
// filtering stage. A *Rules value is never mutated after construction and is
// safe for concurrent use.
package rules

import (
	"regexp"
	"strings"
	"sync"
)

// Severity is a canonical severity level with its numeric weight.
type Severity struct {
	Number int
	Text   string
}

// TemplatePattern replaces every match of Pattern whose edges satisfy Bound
// with Placeholder.
type TemplatePattern struct {
	Pattern     *regexp.Regexp
	Placeholder string
	Bound       Bound
}

// ServiceKeywords maps a canonical service tag to the query words that imply it.
type ServiceKeywords struct {
	Tag      string
	Keywords []string
}

// Rules is the full set of matching rules used by normalization, hot-event
// classification, template hashing and query parsing.
type Rules struct {
	Severities map[string]Severity
	Methods    []string

	ErrorPattern  *regexp.Regexp
	StatusPattern *regexp.Regexp
	RoutePattern  *regexp.Regexp
	MethodPattern *regexp.Regexp
	TracePattern  *regexp.Regexp

	Templates []TemplatePattern

	Services        []ServiceKeywords
	ErrorKeywords   []string
	RecencyKeywords []string
	StopWords       map[string]struct{}
}

var (
	defaultOnce  sync.Once
	defaultRules *Rules
)

// Default returns the process-wide built-in rule set. It is compiled once.
func Default() *Rules {
	defaultOnce.Do(func() {
		defaultRules = build()
	})
	return defaultRules
}

// LookupSeverity resolves a textual severity (any case, surrounding
// whitespace ignored) through the synonym table.
func (r *Rules) LookupSeverity(text string) (Severity, bool) {
	sev, ok := r.Severities[strings.ToUpper(strings.TrimSpace(text))]
	return sev, ok
}

// BucketSeverity maps a numeric severity onto its canonical text.
func BucketSeverity(n int) string {
	switch {
	case n >= 90:
		return "ERROR"
	case n >= 70:
		return "WARN"
	case n >= 30:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// IsMethod reports whether m (already upper-cased) is a standard HTTP verb.
func (r *Rules) IsMethod(m string) bool {
	for _, v := range r.Methods {
		if v == m {
			return true
		}
	}
	return false
}

// HasErrorText reports whether s contains an error keyword.
func (r *Rules) HasErrorText(s string) bool {
	return r.ErrorPattern.MatchString(s)
}

// IsStopWord reports whether w is ignored as a free query keyword.
func (r *Rules) IsStopWord(w string) bool {
	_, ok := r.StopWords[w]
	return ok
}
