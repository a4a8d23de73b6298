// Package normalizer turns heterogeneous raw records into canonical log
// entries. Extraction is defensive: a missing or mistyped field degrades to
// an absent value and never fails the record.
package normalizer

import (
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"github.com/crimson-sun/logsieve/internal/engine/classifier"
	"github.com/crimson-sun/logsieve/internal/engine/rules"
	"github.com/crimson-sun/logsieve/internal/model"
)

const defaultService = "unknown"

// Normalizer extracts canonical fields from raw records. It holds no mutable
// state and is safe for concurrent use.
type Normalizer struct {
	rules *rules.Rules
	hot   *classifier.Classifier
}

// New creates a Normalizer backed by the given rule set.
func New(r *rules.Rules) *Normalizer {
	return &Normalizer{rules: r, hot: classifier.New(r)}
}

// Normalize converts one raw record into a LogEntry. The record is not
// modified.
func (n *Normalizer) Normalize(raw *fastjson.Value) model.LogEntry {
	var e model.LogEntry

	e.TimestampRaw, e.Timestamp = n.timestamp(raw)
	e.SeverityText, e.SeverityNumber = n.severity(raw)
	e.Body = n.body(raw)
	e.TraceID = n.traceID(raw, e.Body)
	e.SpanID = n.spanID(raw)
	e.Status = n.status(raw, e.Body)
	e.Route = n.route(raw, e.Body)
	e.Method = n.method(raw, e.Body)
	e.ServiceName = n.service(raw)
	e.IsHot = n.hot.IsHot(e)
	e.TemplateHash = n.rules.TemplateHash(e.Body)

	return e
}

func (n *Normalizer) timestamp(raw *fastjson.Value) (string, time.Time) {
	for _, p := range timestampPaths {
		v := lookup(raw, p)
		if v == nil {
			continue
		}
		if ts, ok := parseTimestamp(v); ok {
			return render(v), ts
		}
	}
	return "", time.Time{}
}

func (n *Normalizer) severity(raw *fastjson.Value) (string, int) {
	for _, p := range severityPaths {
		v := lookup(raw, p)
		if s, ok := str(v); ok {
			if sev, ok := n.rules.LookupSeverity(s); ok {
				return sev.Text, sev.Number
			}
			continue
		}
		if num, ok := integer(v); ok {
			return rules.BucketSeverity(num), num
		}
	}
	return "", 0
}

func (n *Normalizer) traceID(raw *fastjson.Value, body string) string {
	for _, p := range tracePaths {
		v := lookup(raw, p)
		if s, ok := str(v); ok && runeLen(s) > 8 {
			return s
		}
	}
	if m := n.rules.TracePattern.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}

func (n *Normalizer) spanID(raw *fastjson.Value) string {
	for _, p := range spanPaths {
		if s, ok := str(lookup(raw, p)); ok && s != "" {
			return s
		}
	}
	return ""
}

func (n *Normalizer) status(raw *fastjson.Value, body string) int {
	for _, p := range statusPaths {
		v := lookup(raw, p)
		if code, ok := integer(v); ok && validStatus(code) {
			return code
		}
		if s, ok := str(v); ok && isDigits(s) {
			if code, err := strconv.Atoi(s); err == nil && validStatus(code) {
				return code
			}
		}
	}
	if m := n.rules.StatusPattern.FindStringSubmatch(body); m != nil {
		for _, g := range m[1:] {
			if !isDigits(g) {
				continue
			}
			if code, err := strconv.Atoi(g); err == nil && validStatus(code) {
				return code
			}
		}
	}
	return 0
}

func (n *Normalizer) route(raw *fastjson.Value, body string) string {
	for _, p := range routePaths {
		if s, ok := str(lookup(raw, p)); ok && strings.HasPrefix(s, "/") {
			return s
		}
	}
	if m := n.rules.RoutePattern.FindStringSubmatch(body); m != nil {
		for _, g := range m[1:] {
			if strings.HasPrefix(g, "/") {
				return g
			}
		}
	}
	return ""
}

func (n *Normalizer) method(raw *fastjson.Value, body string) string {
	for _, p := range methodPaths {
		if s, ok := str(lookup(raw, p)); ok && s != "" {
			if m := strings.ToUpper(s); n.rules.IsMethod(m) {
				return m
			}
		}
	}
	if m := n.rules.MethodPattern.FindStringSubmatch(body); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// body returns the first non-empty message field, or the whole record
// rendered as JSON so that the body is never empty.
func (n *Normalizer) body(raw *fastjson.Value) string {
	for _, p := range bodyPaths {
		if v := lookup(raw, p); truthy(v) {
			return render(v)
		}
	}
	return render(raw)
}

func (n *Normalizer) service(raw *fastjson.Value) string {
	for _, p := range servicePaths {
		if s, ok := str(lookup(raw, p)); ok && s != "" {
			return strings.ToLower(s)
		}
	}
	return defaultService
}

func validStatus(code int) bool {
	return code >= 100 && code <= 599
}
