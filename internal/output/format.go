package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/logsieve/internal/engine/compactor"
	"github.com/crimson-sun/logsieve/internal/model"
)

// Format is a digest serialization.
type Format int

const (
	JSON   Format = iota // one JSON document per digest
	YAML                 // one YAML document per digest
	Prompt               // the markdown context handed to the analysis model
)

// ParseFormat maps "json", "yaml" or "prompt" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "prompt", "markdown":
		return Prompt, nil
	default:
		return JSON, fmt.Errorf("unknown output format %q", s)
	}
}

func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case Prompt:
		return "prompt"
	default:
		return "json"
	}
}

// FormatDigest returns a copy of the digest with fields stripped according to
// verbosity. At Minimal the query criteria and per-log trace ids and
// timestamps are dropped. At Standard/Full all fields are preserved.
func FormatDigest(d model.Digest, verbosity compactor.Verbosity) model.Digest {
	if verbosity != compactor.Minimal {
		return d
	}
	d.Criteria = nil
	windows := make([]model.WindowDigest, len(d.Windows))
	for i, w := range d.Windows {
		logs := make([]model.LogDigest, len(w.Logs))
		for j, l := range w.Logs {
			l.TraceID = ""
			l.Timestamp = ""
			logs[j] = l
		}
		w.Logs = logs
		windows[i] = w
	}
	d.Windows = windows
	return d
}

// Marshal serializes a digest. The result always ends in a newline. pretty
// only affects JSON.
func Marshal(d model.Digest, f Format, pretty bool) ([]byte, error) {
	switch f {
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return nil, fmt.Errorf("output: yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("output: yaml: %w", err)
		}
		return buf.Bytes(), nil
	case Prompt:
		return []byte(compactor.RenderContext(d) + "\n"), nil
	default:
		var (
			data []byte
			err  error
		)
		if pretty {
			data, err = json.MarshalIndent(d, "", "  ")
		} else {
			data, err = json.Marshal(d)
		}
		if err != nil {
			return nil, fmt.Errorf("output: json: %w", err)
		}
		return append(data, '\n'), nil
	}
}
