package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crimson-sun/logsieve/internal/model"
)

func TestSummaryEmpty(t *testing.T) {
	assert.Equal(t, "Empty window", newScorer().Summary(model.Window{}))
}

func TestSummaryFallback(t *testing.T) {
	w := model.Window{
		Entries: []model.LogEntry{
			entry("a", func(e *model.LogEntry) { e.ServiceName = "cart" }),
			entry("b", func(e *model.LogEntry) { e.ServiceName = "auth" }),
		},
		TemplateCounts: map[string]int{"a": 1, "b": 1},
	}
	assert.Equal(t, "2 log entries", newScorer().Summary(w))
}

func TestSummaryAllParts(t *testing.T) {
	mk := func(hash string, status int, route, body string) model.LogEntry {
		return entry(hash, func(e *model.LogEntry) {
			e.ServiceName = "payment"
			e.Status = status
			e.Route = route
			e.Body = body
		})
	}
	w := model.Window{
		Entries: []model.LogEntry{
			mk("a", 500, "/pay", "charge failed"),
			mk("b", 200, "/pay", "ok"),
			mk("c", 404, "/missing", "not here"),
			mk("d", 500, "/pay", "gateway error"),
		},
		TemplateCounts: map[string]int{"a": 3, "b": 1, "c": 1, "d": 2},
	}
	assert.Equal(t,
		"payment service; 2 errors; status: 500 (2x), 404 (1x); route: /pay (3x); 3 repeated patterns",
		newScorer().Summary(w))
}

func TestSummaryStatusTopThreeThenFiltered(t *testing.T) {
	var entries []model.LogEntry
	add := func(status, n int) {
		for i := 0; i < n; i++ {
			entries = append(entries, entry("x", func(e *model.LogEntry) { e.Status = status }))
		}
	}
	add(200, 5)
	add(503, 3)
	add(301, 2)
	add(404, 1)
	w := model.Window{Entries: entries, TemplateCounts: map[string]int{"x": len(entries)}}

	// 404 is fourth most common, so it never makes the cut.
	assert.Equal(t, "unknown service; status: 503 (3x); 10 repeated patterns", newScorer().Summary(w))
}

func TestSummaryTiesKeepFirstSeenOrder(t *testing.T) {
	w := model.Window{
		Entries: []model.LogEntry{
			entry("a", func(e *model.LogEntry) { e.Status = 502; e.ServiceName = "a" }),
			entry("b", func(e *model.LogEntry) { e.Status = 401; e.ServiceName = "b" }),
		},
		TemplateCounts: map[string]int{"a": 1, "b": 1},
	}
	assert.Equal(t, "status: 502 (1x), 401 (1x)", newScorer().Summary(w))
}

func TestCounterMostCommon(t *testing.T) {
	c := newCounter[string]()
	for _, k := range []string{"b", "a", "b", "c", "a", "d"} {
		c.add(k)
	}
	top := c.mostCommon(3)
	assert.Equal(t, []tally[string]{{"b", 2}, {"a", 2}, {"c", 1}}, top)
	assert.Len(t, c.mostCommon(10), 4)
}
