package compactor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crimson-sun/logsieve/internal/model"
)

const traceIDPrefix = 16

// RenderContext renders a digest as the markdown block handed to the
// analysis model.
func RenderContext(d model.Digest) string {
	lines := []string{"**Processing Summary:** " + d.ProcessingSummary, ""}

	for i, w := range d.Windows {
		lines = append(lines, fmt.Sprintf("**Window %d: %s**", i+1, w.Summary))
		for j, l := range w.Logs {
			header := fmt.Sprintf("  Log %d:", j+1)
			if info := logInfo(l); len(info) > 0 {
				header += " " + strings.Join(info, " | ")
			}
			lines = append(lines, header, "    Message: "+l.Message, "")
		}
	}
	return strings.Join(lines, "\n")
}

func logInfo(l model.LogDigest) []string {
	var info []string
	if l.Service != "" && l.Service != "unknown" {
		info = append(info, "Service: "+l.Service)
	}
	if l.Severity != "" {
		info = append(info, "Severity: "+l.Severity)
	}
	switch {
	case l.Method != "" && l.Route != "":
		info = append(info, "HTTP: "+l.Method+" "+l.Route)
	case l.Route != "":
		info = append(info, "Route: "+l.Route)
	}
	if l.Status != 0 {
		info = append(info, "Status: "+strconv.Itoa(l.Status))
	}
	if l.TraceID != "" {
		info = append(info, "Trace: "+prefix(l.TraceID, traceIDPrefix)+"...")
	}
	return info
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
