// Package testdata embeds a small storefront log capture used by engine and
// facade tests.
package testdata

import (
	"bytes"
	_ "embed"
)

//go:embed sample_logs.ndjson
var sampleLogs []byte

// Sample corpus facts that tests assert against.
const (
	SampleRecords = 24
	SampleHot     = 13
	CheckoutTrace = "4bf92f3577b34da6a3ce929d0e0e4736"
	LoginTrace    = "a3ce929d0e0e47364bf92f3577b34da6"
)

// SampleLogs returns a copy of the embedded NDJSON corpus.
func SampleLogs() []byte {
	return bytes.Clone(sampleLogs)
}

// SampleLines returns the corpus split into non-empty lines.
func SampleLines() [][]byte {
	var lines [][]byte
	for _, l := range bytes.Split(sampleLogs, []byte("\n")) {
		if len(bytes.TrimSpace(l)) > 0 {
			lines = append(lines, l)
		}
	}
	return lines
}
