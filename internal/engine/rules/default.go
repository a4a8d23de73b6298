package rules

import "regexp"

// build compiles the built-in rule tables.
func build() *Rules {
	return &Rules{
		Severities: map[string]Severity{
			"FATAL":       {100, "FATAL"},
			"EMERGENCY":   {100, "FATAL"},
			"PANIC":       {100, "FATAL"},
			"ERROR":       {90, "ERROR"},
			"ERR":         {90, "ERROR"},
			"CRITICAL":    {85, "ERROR"},
			"WARN":        {70, "WARN"},
			"WARNING":     {70, "WARN"},
			"ALERT":       {75, "WARN"},
			"INFO":        {30, "INFO"},
			"INFORMATION": {30, "INFO"},
			"NOTICE":      {35, "INFO"},
			"DEBUG":       {10, "DEBUG"},
			"TRACE":       {5, "DEBUG"},
			"VERBOSE":     {8, "DEBUG"},
		},
		Methods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},

		ErrorPattern:  guardWords(`(?i)`, `(error|exception|failed?|failure|crash|timeout|refused|denied|unavailable|unreachable|panic|fatal|critical|alert|emergency|abort|kill|interrupt)`),
		StatusPattern: regexp.MustCompile(`(?i)(?:^|` + nonWord + `)(status[:\s]*([45]\d{2})|HTTP[/\s]*([45]\d{2})|([45]\d{2})(?:` + nonWord + `|$))`),
		RoutePattern:  regexp.MustCompile(`(?i)(?:GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS)\s+([/\w\-.:]+)|(?:route|path|endpoint)[:\s]*([/\w\-.:]+)`),
		MethodPattern: guardWords(`(?i)`, `(GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS)`),
		TracePattern:  regexp.MustCompile(`(?i)trace[_-]?id[:\s=]*([a-f0-9]{16,64})`),

		// Order matters: each substitution sees the output of the previous one.
		// Word edges follow Unicode letters and digits, so "café123" is one word.
		Templates: []TemplatePattern{
			{regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`), "UUID", Word},
			{regexp.MustCompile(`\p{Nd}+`), "NUM", Word},
			{regexp.MustCompile(`"[^"]*"`), "STR", Anywhere},
			{regexp.MustCompile(`'[^']*'`), "STR", Anywhere},
			{regexp.MustCompile(`(?i)[0-9a-f]{16,64}`), "HASH", Word},
			{regexp.MustCompile(`\p{Nd}{4}-\p{Nd}{2}-\p{Nd}{2}[T\s]\p{Nd}{2}:\p{Nd}{2}:\p{Nd}{2}`), "TIMESTAMP", WordStart},
		},

		Services: []ServiceKeywords{
			{"cart", []string{"cart", "shopping", "basket", "checkout"}},
			{"payment", []string{"payment", "billing", "transaction", "charge"}},
			{"auth", []string{"auth", "login", "token", "session", "permission"}},
			{"database", []string{"db", "database", "sql", "connection", "query"}},
			{"api", []string{"api", "endpoint", "request", "response", "http"}},
		},
		ErrorKeywords:   []string{"error", "exception", "failed", "failure", "crash", "timeout", "refused"},
		RecencyKeywords: []string{"recent", "latest", "current", "now", "today"},
		StopWords: set(
			"the", "is", "are", "was", "were", "a", "an", "and", "or", "but",
			"in", "on", "at", "to", "for", "of", "with", "by",
		),
	}
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
