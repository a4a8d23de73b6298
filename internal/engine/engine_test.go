package engine

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"

	"github.com/crimson-sun/logsieve/internal/engine/normalizer"
	"github.com/crimson-sun/logsieve/internal/engine/rules"
	"github.com/crimson-sun/logsieve/internal/engine/testdata"
	"github.com/crimson-sun/logsieve/internal/engine/windower"
	"github.com/crimson-sun/logsieve/internal/model"
)

// Far enough after the sample capture that no window earns a recency bonus.
var testNow = time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)

func newTestEngine(cfg Config) *Engine {
	return New(cfg, WithClock(func() time.Time { return testNow }))
}

func normalize(t *testing.T, lines ...string) []model.LogEntry {
	t.Helper()
	n := normalizer.New(rules.Default())
	var p fastjson.Parser
	entries := make([]model.LogEntry, 0, len(lines))
	for _, l := range lines {
		v, err := p.Parse(l)
		require.NoError(t, err, l)
		entries = append(entries, n.Normalize(v))
	}
	return entries
}

func sampleEntries(t *testing.T) []model.LogEntry {
	t.Helper()
	var lines []string
	for _, l := range testdata.SampleLines() {
		lines = append(lines, string(l))
	}
	return normalize(t, lines...)
}

func traceGroup(n int, distinct bool) []string {
	lines := make([]string, n)
	for i := range lines {
		body := "stage reached"
		if distinct {
			body = "stage " + strings.Repeat("x", i+1) + " reached"
		}
		lines[i] = fmt.Sprintf(`{"trace_id":"t-1","severity_number":90,"body":%q}`, body)
	}
	return lines
}

func TestFilterSingleTemplateTrace(t *testing.T) {
	eng := newTestEngine(Config{Windowing: windower.Config{MaxWindowSize: 64}})
	windows := eng.Filter(normalize(t, traceGroup(45, false)...), "", 0)

	require.Len(t, windows, 1)
	w := windows[0]
	assert.Equal(t, "t-1", w.TraceID)
	assert.Len(t, w.Entries, 1)
	assert.Equal(t, 45, w.TemplateCounts[w.Entries[0].TemplateHash])
	// 0.5*90 once, rarity floor of 1.
	assert.InDelta(t, 46.0, w.ImportanceScore, 1e-9)
	assert.Equal(t, "44 repeated patterns", w.Summary)
}

func TestFilterDistinctTemplateTrace(t *testing.T) {
	eng := newTestEngine(Config{Windowing: windower.Config{MaxWindowSize: 64}})
	windows := eng.Filter(normalize(t, traceGroup(45, true)...), "", 0)

	require.Len(t, windows, 1)
	assert.Len(t, windows[0].Entries, 45)
	// 45 * (0.5*90 + rarity 9)
	assert.InDelta(t, 2430.0, windows[0].ImportanceScore, 1e-9)
}

func TestFilterOversizedTraceSplits(t *testing.T) {
	eng := newTestEngine(Config{})
	windows := eng.Filter(normalize(t, traceGroup(45, true)...), "", 0)

	require.Len(t, windows, 2)
	assert.Len(t, windows[0].Entries, 40)
	assert.Len(t, windows[1].Entries, 5)
	assert.Equal(t, "t-1", windows[1].TraceID)
	assert.Greater(t, windows[0].Score(), windows[1].Score())
}

func TestFilterOversizedTraceDropped(t *testing.T) {
	eng := newTestEngine(Config{Windowing: windower.Config{Overflow: windower.Drop}})
	windows := eng.Filter(normalize(t, traceGroup(41, true)...), "", 0)
	assert.Empty(t, windows)
}

func TestFilterPromptMatch(t *testing.T) {
	entries := normalize(t,
		`{"body":"GET /checkout 500 upstream","status":500,"method":"GET","route":"/checkout","service_name":"cart"}`,
		`{"trace_id":"other","level":"warn","body":"disk at 91%","service_name":"node"}`,
	)
	res := newTestEngine(Config{}).Run(entries, "GET /checkout 500 errors", 0)

	require.Len(t, res.Windows, 2)
	top := res.Windows[0]
	assert.Empty(t, top.TraceID)
	assert.GreaterOrEqual(t, top.PromptMatchScore, 70.0)
	// service 30 + route 25 + method 20 + status 25 + keywords get/checkout/500
	assert.InDelta(t, 115.0, top.PromptMatchScore, 1e-9)
	assert.Equal(t, []string{"cart"}, res.Criteria.Services)
	assert.True(t, res.Criteria.ErrorIndicators)
}

func TestFilterEmpty(t *testing.T) {
	eng := newTestEngine(Config{})
	assert.Empty(t, eng.Filter(nil, "what broke", 0))

	d := eng.Digest(nil, "what broke", 0)
	assert.Zero(t, d.TotalLogs)
	assert.Zero(t, d.CostReductionPercentage)
	assert.Empty(t, d.Windows)
}

func TestFilterFallbackWhenNothingHot(t *testing.T) {
	entries := normalize(t,
		`{"level":"info","body":"user signed in"}`,
		`{"level":"debug","body":"cache warm"}`,
	)
	res := newTestEngine(Config{}).Run(entries, "", 0)

	assert.True(t, res.FellBack)
	assert.Equal(t, 1, res.Hot)
	require.Len(t, res.Windows, 1)
	assert.Equal(t, "user signed in", res.Windows[0].Entries[0].Body)
}

func TestFilterSampleCorpus(t *testing.T) {
	entries := sampleEntries(t)
	require.Len(t, entries, testdata.SampleRecords)

	res := newTestEngine(Config{}).Run(entries, "cart service errors and timeouts", 0)
	assert.False(t, res.FellBack)
	assert.Equal(t, testdata.SampleHot, res.Hot)
	require.Len(t, res.Windows, 4)

	top := res.Windows[0]
	assert.Equal(t, testdata.CheckoutTrace, top.TraceID)
	assert.InDelta(t, 306.0, top.ImportanceScore, 1e-9)
	assert.InDelta(t, 35.0, top.PromptMatchScore, 1e-9)
	assert.Equal(t, testdata.LoginTrace, res.Windows[2].TraceID)

	for i := 1; i < len(res.Windows); i++ {
		assert.GreaterOrEqual(t, res.Windows[i-1].Score(), res.Windows[i].Score())
	}
}

func TestFilterMaxWindows(t *testing.T) {
	entries := sampleEntries(t)
	eng := newTestEngine(Config{MaxWindows: 3})

	assert.Len(t, eng.Filter(entries, "", 0), 3)
	assert.Len(t, eng.Filter(entries, "", 1), 1)
}

func TestFilterIsDeterministic(t *testing.T) {
	eng := newTestEngine(Config{})
	a := eng.Filter(sampleEntries(t), "payment timeout", 0)
	b := eng.Filter(sampleEntries(t), "payment timeout", 0)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("runs differ (-first +second):\n%s", diff)
	}
}

func TestDigestSampleCorpus(t *testing.T) {
	entries := sampleEntries(t)
	d := newTestEngine(Config{}).Digest(entries, "cart service errors and timeouts", 0)

	assert.Equal(t, "cart service errors and timeouts", d.Query)
	assert.Equal(t, testdata.SampleRecords, d.TotalLogs)
	require.NotNil(t, d.Criteria)
	assert.Equal(t, []string{"cart"}, d.Criteria.Services)
	require.Len(t, d.Windows, 4)
	assert.Len(t, d.Windows[0].Logs, 3)
	assert.Equal(t, "ERROR", d.Windows[0].Logs[0].Severity)
	assert.Positive(t, d.EstimatedTokens)
	assert.Contains(t, d.ProcessingSummary, fmt.Sprintf("Filtered %d logs down to %d", d.TotalLogs, d.SelectedLogs))
}

func TestRunSamplesClockOnce(t *testing.T) {
	end := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return end.Add(time.Duration(calls) * time.Hour)
	}
	entries := normalize(t,
		`{"trace_id":"a","severity_number":90,"body":"stage reached","timestamp":"2025-09-01T12:00:00Z"}`,
		`{"trace_id":"b","severity_number":90,"body":"stage reached","timestamp":"2025-09-01T12:00:00Z"}`,
		`{"trace_id":"c","severity_number":90,"body":"stage reached","timestamp":"2025-09-01T12:00:00Z"}`,
	)
	windows := New(Config{}, WithClock(clock)).Filter(entries, "", 0)

	require.Len(t, windows, 3)
	assert.Equal(t, 1, calls)
	// 0.5*90 + rarity 9 + recency 10-1
	for _, w := range windows {
		assert.InDelta(t, 63.0, w.ImportanceScore, 1e-9, w.TraceID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, []string{windows[0].TraceID, windows[1].TraceID, windows[2].TraceID})
}

type fixedCounter int

func (c fixedCounter) Count(string) int { return int(c) }

func TestDigestUsesTokenCounter(t *testing.T) {
	eng := New(Config{},
		WithClock(func() time.Time { return testNow }),
		WithTokenCounter(fixedCounter(4242)),
	)
	d := eng.Digest(sampleEntries(t), "checkout errors", 0)
	assert.Equal(t, 4242, d.EstimatedTokens)
}

func TestRankStable(t *testing.T) {
	windows := []model.Window{
		{Summary: "a", ImportanceScore: 5},
		{Summary: "b", ImportanceScore: 7},
		{Summary: "c", ImportanceScore: 2, PromptMatchScore: 3},
		{Summary: "d", ImportanceScore: 1},
	}
	got := Rank(windows, 3)
	var order []string
	for _, w := range got {
		order = append(order, w.Summary)
	}
	assert.Equal(t, []string{"b", "a", "c"}, order)
}
