package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/logsieve/internal/httpclient"
	"github.com/crimson-sun/logsieve/internal/model"
)

const completion = `{
  "model": "gpt-4o-mini",
  "choices": [{"message": {"role": "assistant", "content": "## Summary\nPayments are timing out."}}],
  "usage": {"prompt_tokens": 1000, "completion_tokens": 500, "total_tokens": 1500}
}`

type captured struct {
	path string
	auth string
	req  chatRequest
}

func fakeServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.path = r.URL.Path
		c.auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&c.req))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func sampleDigest() model.Digest {
	return model.Digest{
		ProcessingSummary: "Filtered 100 logs down to 1 most relevant logs across 1 windows",
		Windows: []model.WindowDigest{{
			Summary: "payment service; 1 errors",
			Logs:    []model.LogDigest{{Service: "payment", Severity: "ERROR", Message: "charge timeout"}},
		}},
	}
}

func TestAnalyze(t *testing.T) {
	srv, got := fakeServer(t, http.StatusOK, completion)
	client := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test", Temperature: 0.1})

	history := []Message{{Role: RoleUser, Content: "earlier"}, {Role: RoleAssistant, Content: "answer"}}
	res, err := client.Analyze(context.Background(), Request{
		Query:   "why are payments failing",
		Digest:  sampleDigest(),
		History: history,
	})
	require.NoError(t, err)

	assert.Equal(t, "/chat/completions", got.path)
	assert.Equal(t, "Bearer sk-test", got.auth)
	assert.Equal(t, DefaultModel, got.req.Model)
	assert.Equal(t, DefaultMaxTokens, got.req.MaxTokens)
	assert.InDelta(t, 0.1, got.req.Temperature, 1e-9)

	msgs := got.req.Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, SystemPrompt, msgs[0].Content)
	assert.Equal(t, history, msgs[1:3])
	assert.Equal(t, RoleUser, msgs[3].Role)
	assert.True(t, strings.HasPrefix(msgs[3].Content, "**User Query:** why are payments failing\n\n**Filtered Log Data:**\n**Processing Summary:** Filtered 100"))
	assert.Contains(t, msgs[3].Content, "**Window 1: payment service; 1 errors**")
	assert.True(t, strings.HasSuffix(msgs[3].Content, "help me understand what's happening with my system."))

	assert.Equal(t, "## Summary\nPayments are timing out.", res.Response)
	assert.Equal(t, 1500, res.TokensUsed)
	assert.Equal(t, 1000, res.InputTokens)
	assert.Equal(t, 500, res.OutputTokens)
	// 1000/1e6*0.15 + 500/1e6*0.60
	assert.InDelta(t, 0.00045, res.EstimatedCost, 1e-12)
	assert.Equal(t, DefaultModel, res.Model)
}

func TestFollowUp(t *testing.T) {
	srv, got := fakeServer(t, http.StatusOK, completion)
	client := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, APIKey: "k", Model: "small-model"})

	_, err := client.FollowUp(context.Background(), FollowUpRequest{
		Query:            "which service first?",
		History:          []Message{{Role: RoleUser, Content: "q1"}},
		PreviousAnalysis: "payments time out",
		LogSummary:       "Filtered 100 logs",
	})
	require.NoError(t, err)

	assert.Equal(t, "small-model", got.req.Model)
	assert.Equal(t, DefaultFollowUpMaxTokens, got.req.MaxTokens)
	msgs := got.req.Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.True(t, strings.HasPrefix(msgs[1].Content, "**Previous Log Analysis:**\npayments time out\n\n**Log Summary:** Filtered 100 logs"))
	assert.Equal(t, "q1", msgs[2].Content)
	assert.Equal(t, Message{Role: RoleUser, Content: "which service first?"}, msgs[3])
}

func TestAnalyzeAPIError(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusUnauthorized, `{"error":{"message":"bad key"}}`)
	client := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, APIKey: "bad"})

	_, err := client.Analyze(context.Background(), Request{Query: "q"})
	var apiErr *httpclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestAnalyzeNoChoices(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusOK, `{"choices":[],"usage":{}}`)
	client := NewOpenAI(OpenAIConfig{BaseURL: srv.URL},
		WithHTTPOptions(httpclient.WithBackoff(time.Millisecond)))

	_, err := client.Analyze(context.Background(), Request{Query: "q"})
	assert.ErrorIs(t, err, errNoChoices)
}

func TestPricingCost(t *testing.T) {
	p := Pricing{InputPerMillion: 2, OutputPerMillion: 8}
	assert.InDelta(t, 2.0+8.0, p.Cost(1_000_000, 1_000_000), 1e-9)
	assert.Zero(t, DefaultPricing.Cost(0, 0))
}

func TestDisabled(t *testing.T) {
	var a Analyzer = Disabled{}
	_, err := a.Analyze(context.Background(), Request{})
	assert.True(t, errors.Is(err, ErrDisabled))
	_, err = a.FollowUp(context.Background(), FollowUpRequest{})
	assert.ErrorIs(t, err, ErrDisabled)
}
