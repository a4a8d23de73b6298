package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/logsieve/internal/engine/compactor"
	"github.com/crimson-sun/logsieve/internal/model"
)

func baseDigest() model.Digest {
	return model.Digest{
		Query:                   "payment errors",
		ProcessingSummary:       "Filtered 10 logs down to 1 most relevant logs across 1 windows",
		TotalLogs:               10,
		SelectedLogs:            1,
		CostReductionPercentage: 90,
		Criteria:                &model.Criteria{Services: []string{"payment"}, ErrorIndicators: true},
		Windows: []model.WindowDigest{{
			Summary: "payment service; 1 errors",
			Score:   104,
			TraceID: "4bf92f3577b34da6",
			Logs: []model.LogDigest{{
				Service:   "payment",
				Severity:  "ERROR",
				Message:   "charge failed",
				Status:    502,
				Timestamp: "2025-08-30T10:00:05Z",
				TraceID:   "4bf92f3577b34da6",
			}},
		}},
	}
}

func TestFormatDigestMinimal(t *testing.T) {
	orig := baseDigest()
	d := FormatDigest(orig, compactor.Minimal)

	assert.Nil(t, d.Criteria, "criteria are dropped at Minimal")
	l := d.Windows[0].Logs[0]
	assert.Empty(t, l.TraceID)
	assert.Empty(t, l.Timestamp)
	assert.Equal(t, "charge failed", l.Message)
	assert.NotEmpty(t, d.Windows[0].Summary)
	assert.NotEmpty(t, orig.Windows[0].Logs[0].TraceID, "FormatDigest must not mutate its input")
}

func TestFormatDigestStandard(t *testing.T) {
	d := FormatDigest(baseDigest(), compactor.Standard)
	assert.NotNil(t, d.Criteria)
	assert.NotEmpty(t, d.Windows[0].Logs[0].TraceID)
}

func TestMarshalJSON(t *testing.T) {
	data, err := Marshal(baseDigest(), JSON, false)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"), "compact JSON is a single line")

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{"query", "processing_summary", "total_logs", "selected_logs", "cost_reduction_percentage", "windows"} {
		assert.Contains(t, m, key)
	}
}

func TestMarshalJSONPretty(t *testing.T) {
	data, err := Marshal(baseDigest(), JSON, true)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"query\"")
}

func TestMarshalYAML(t *testing.T) {
	data, err := Marshal(baseDigest(), YAML, false)
	require.NoError(t, err)

	var back model.Digest
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, 502, back.Windows[0].Logs[0].Status)
	assert.Equal(t, "payment errors", back.Query)
}

func TestMarshalPrompt(t *testing.T) {
	data, err := Marshal(baseDigest(), Prompt, false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "**Processing Summary:** Filtered 10 logs"), string(data))
	assert.Contains(t, string(data), "Trace: 4bf92f3577b34da6...")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": JSON, "": JSON, "YAML": YAML, "prompt": Prompt} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}
