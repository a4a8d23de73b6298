package normalizer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/valyala/fastjson"
)

// Candidate field paths per semantic field, tried in order. A path descends
// nested objects key by key.
var (
	timestampPaths = []string{
		"timestamp", "@timestamp", "time", "ts", "datetime",
		"fields.timestamp", "attributes.timestamp",
	}
	severityPaths = []string{
		"fields.severity_text", "severity_text", "severity", "level",
		"fields.severity_number", "severity_number", "levelname",
	}
	tracePaths = []string{
		"fields.trace_id", "trace_id", "traceId", "traceid",
		"attributes.trace_id", "spans.trace_id", "context.trace_id",
	}
	spanPaths = []string{
		"fields.span_id", "span_id", "spanId", "spanid",
		"attributes.span_id",
	}
	statusPaths = []string{
		"status", "status_code", "http.status_code", "response.status",
		"attributes.http.status_code", "fields.status",
	}
	routePaths = []string{
		"route", "path", "endpoint", "url", "uri",
		"http.route", "http.target", "attributes.http.route",
	}
	methodPaths = []string{
		"method", "http.method", "request.method",
		"attributes.http.method",
	}
	bodyPaths = []string{
		"body", "message", "msg", "text", "log",
		"attributes.message", "fields.message",
	}
	servicePaths = []string{
		"resource_attributes.service.name",
		"service.name", "service_name", "serviceName",
		"resource_attributes.k8s.deployment.name",
		"resource_attributes.k8s.container.name",
		"k8s.deployment.name", "k8s.container.name",
		"container_name", "app", "component",
	}
)

// lookup resolves a dotted path against v. It returns nil unless every
// segment exists and every intermediate value is an object. When an object
// repeats a key, the last occurrence wins. It never panics.
func lookup(v *fastjson.Value, path string) *fastjson.Value {
	cur := v
	for _, key := range strings.Split(path, ".") {
		if cur == nil || cur.Type() != fastjson.TypeObject {
			return nil
		}
		cur = lastField(cur, key)
	}
	if cur == nil || cur.Type() == fastjson.TypeNull {
		return nil
	}
	return cur
}

// lastField returns the value of the last key in object v equal to key.
func lastField(v *fastjson.Value, key string) *fastjson.Value {
	o, err := v.Object()
	if err != nil {
		return nil
	}
	var found *fastjson.Value
	o.Visit(func(k []byte, val *fastjson.Value) {
		if string(k) == key {
			found = val
		}
	})
	return found
}

// truthy reports whether v is a non-empty, non-zero, non-false value.
func truthy(v *fastjson.Value) bool {
	if v == nil {
		return false
	}
	switch v.Type() {
	case fastjson.TypeString:
		return len(v.GetStringBytes()) > 0
	case fastjson.TypeNumber:
		f, ok := number(v)
		return ok && f != 0
	case fastjson.TypeArray:
		return len(v.GetArray()) > 0
	case fastjson.TypeObject:
		o, _ := v.Object()
		return o != nil && o.Len() > 0
	case fastjson.TypeTrue:
		return true
	default:
		return false
	}
}

// str returns v's string payload when v is a JSON string.
func str(v *fastjson.Value) (string, bool) {
	if v == nil || v.Type() != fastjson.TypeString {
		return "", false
	}
	return string(v.GetStringBytes()), true
}

// number returns v as a float when v is a JSON number.
func number(v *fastjson.Value) (float64, bool) {
	if v == nil || v.Type() != fastjson.TypeNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.String(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// integer returns v as an int when v is a JSON number written without a
// fraction or exponent.
func integer(v *fastjson.Value) (int, bool) {
	if v == nil || v.Type() != fastjson.TypeNumber {
		return 0, false
	}
	raw := v.String()
	if strings.ContainsAny(raw, ".eE") {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// render returns the textual form of v: the payload for strings, compact
// JSON for everything else.
func render(v *fastjson.Value) string {
	if s, ok := str(v); ok {
		return s
	}
	if v == nil {
		return "null"
	}
	return v.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
