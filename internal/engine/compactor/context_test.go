package compactor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crimson-sun/logsieve/internal/model"
)

func TestRenderContext(t *testing.T) {
	d := model.Digest{
		ProcessingSummary: "Filtered 10 logs down to 2 most relevant logs across 1 windows",
		Windows: []model.WindowDigest{{
			Summary: "payment service; 1 errors",
			Logs: []model.LogDigest{
				{
					Service:  "payment",
					Severity: "ERROR",
					Message:  "charge failed",
					Status:   502,
					Route:    "/charge",
					Method:   "POST",
					TraceID:  "4bf92f3577b34da6a3ce929d0e0e4736",
				},
				{Service: "unknown", Severity: "UNKNOWN", Message: "bare", Route: "/healthz"},
			},
		}},
	}

	want := "**Processing Summary:** Filtered 10 logs down to 2 most relevant logs across 1 windows\n" +
		"\n" +
		"**Window 1: payment service; 1 errors**\n" +
		"  Log 1: Service: payment | Severity: ERROR | HTTP: POST /charge | Status: 502 | Trace: 4bf92f3577b34da6...\n" +
		"    Message: charge failed\n" +
		"\n" +
		"  Log 2: Severity: UNKNOWN | Route: /healthz\n" +
		"    Message: bare\n"
	assert.Equal(t, want, RenderContext(d))
}

func TestRenderContextBareLog(t *testing.T) {
	d := model.Digest{Windows: []model.WindowDigest{{Summary: "x", Logs: []model.LogDigest{{Message: "m"}}}}}
	assert.Equal(t, "**Processing Summary:** \n\n**Window 1: x**\n  Log 1:\n    Message: m\n", RenderContext(d))
}
