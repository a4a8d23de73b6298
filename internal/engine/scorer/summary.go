package scorer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/crimson-sun/logsieve/internal/engine/dedup"
	"github.com/crimson-sun/logsieve/internal/model"
)

const (
	emptySummary   = "Empty window"
	maxStatusParts = 3
	minClientError = 400
)

// Summary describes w in a single line: dominant service, error count,
// failing status codes, hottest route and repeated templates. Parts that do
// not apply are left out.
func (s *Scorer) Summary(w model.Window) string {
	if len(w.Entries) == 0 {
		return emptySummary
	}

	var (
		services = newCounter[string]()
		statuses = newCounter[int]()
		routes   = newCounter[string]()
		errCount int
	)
	for _, e := range w.Entries {
		services.add(e.ServiceName)
		if e.Status != 0 {
			statuses.add(e.Status)
		}
		if e.Route != "" {
			routes.add(e.Route)
		}
		if s.rules.HasErrorText(e.Body) {
			errCount++
		}
	}

	var parts []string
	if top := services.mostCommon(1); len(top) > 0 && top[0].n > 1 {
		parts = append(parts, top[0].key+" service")
	}
	if errCount > 0 {
		parts = append(parts, strconv.Itoa(errCount)+" errors")
	}

	var codes []string
	for _, st := range statuses.mostCommon(maxStatusParts) {
		if st.key >= minClientError {
			codes = append(codes, fmt.Sprintf("%d (%dx)", st.key, st.n))
		}
	}
	if len(codes) > 0 {
		parts = append(parts, "status: "+strings.Join(codes, ", "))
	}

	if top := routes.mostCommon(1); len(top) > 0 && top[0].n > 1 {
		parts = append(parts, fmt.Sprintf("route: %s (%dx)", top[0].key, top[0].n))
	}
	if n := dedup.Repeated(w); n > 0 {
		parts = append(parts, strconv.Itoa(n)+" repeated patterns")
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%d log entries", len(w.Entries))
	}
	return strings.Join(parts, "; ")
}

type tally[K comparable] struct {
	key K
	n   int
}

// counter counts keys and remembers first-seen order so ties rank
// deterministically.
type counter[K comparable] struct {
	index map[K]int
	items []tally[K]
}

func newCounter[K comparable]() *counter[K] {
	return &counter[K]{index: make(map[K]int)}
}

func (c *counter[K]) add(k K) {
	if i, ok := c.index[k]; ok {
		c.items[i].n++
		return
	}
	c.index[k] = len(c.items)
	c.items = append(c.items, tally[K]{key: k, n: 1})
}

// mostCommon returns up to n keys by descending count, ties in first-seen
// order.
func (c *counter[K]) mostCommon(n int) []tally[K] {
	out := make([]tally[K], len(c.items))
	copy(out, c.items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].n > out[j].n })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
