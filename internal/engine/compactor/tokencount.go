package compactor

import (
	"math"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE vocabulary used for token counts.
const DefaultEncoding = "cl100k_base"

// TokenCounter counts model tokens in a piece of text.
type TokenCounter interface {
	Count(s string) int
}

// EstimateTokens returns an approximate token count using a whitespace heuristic.
// Splits on whitespace, applies a 1.3x subword expansion factor (rounded up).
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	words := len(strings.Fields(s))
	return int(math.Ceil(float64(words) * 1.3))
}

// Heuristic is a TokenCounter backed by EstimateTokens.
type Heuristic struct{}

func (Heuristic) Count(s string) int { return EstimateTokens(s) }

// BPECounter counts tokens with a tiktoken encoding. The vocabulary is loaded
// lazily on first use; when it cannot be loaded (no network and no cache)
// every count falls back to EstimateTokens.
type BPECounter struct {
	encoding string

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewBPECounter creates a counter for the named encoding. An empty name
// selects DefaultEncoding.
func NewBPECounter(encoding string) *BPECounter {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &BPECounter{encoding: encoding}
}

func (b *BPECounter) load() {
	enc, err := tiktoken.GetEncoding(b.encoding)
	if err != nil {
		return
	}
	b.enc = enc
}

// Available reports whether the BPE vocabulary loaded.
func (b *BPECounter) Available() bool {
	b.once.Do(b.load)
	return b.enc != nil
}

func (b *BPECounter) Count(s string) int {
	if s == "" {
		return 0
	}
	if !b.Available() {
		return EstimateTokens(s)
	}
	return len(b.enc.EncodeOrdinary(s))
}
