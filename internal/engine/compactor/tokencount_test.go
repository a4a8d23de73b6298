package compactor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \t\n  ", 0},
		{"single word", "hello", 2},     // 1 * 1.3 = 1.3 → 2
		{"two words", "hello world", 3}, // 2 * 1.3 = 2.6 → 3
		{"paragraph", strings.TrimSpace(strings.Repeat("word ", 500)), 650},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateTokens(tt.in))
		})
	}
}

func TestHeuristicCounter(t *testing.T) {
	var c TokenCounter = Heuristic{}
	assert.Equal(t, 3, c.Count("hello world"))
}

func TestBPECounterUnknownEncodingFallsBack(t *testing.T) {
	c := NewBPECounter("no_such_encoding")
	assert.False(t, c.Available())
	assert.Equal(t, 3, c.Count("hello world"), "heuristic count")
}

func TestBPECounterEncodes(t *testing.T) {
	c := NewBPECounter("")
	if !c.Available() {
		t.Skip("tiktoken vocabulary unavailable (network or cache miss)")
	}
	assert.Equal(t, 2, c.Count("hello world"))
	assert.Zero(t, c.Count(""))
}
