package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/crimson-sun/logsieve/internal/analysis"
	"github.com/crimson-sun/logsieve/internal/engine/compactor"
	"github.com/crimson-sun/logsieve/internal/pipeline"
)

var allowedExtensions = []string{".json", ".ndjson", ".json.gz", ".ndjson.gz", ".json.zst", ".ndjson.zst"}

// AnalysisResponse is the body of POST /analyze-logs.
type AnalysisResponse struct {
	Query                   string  `json:"query"`
	Response                string  `json:"response"`
	TotalLogsProcessed      int     `json:"total_logs_processed"`
	CostReductionPercentage float64 `json:"cost_reduction_percentage"`
	ProcessingSummary       string  `json:"processing_summary"`
	LLMTokensUsed           int     `json:"llm_tokens_used"`
	LLMCost                 float64 `json:"llm_cost"`
	ConversationID          string  `json:"conversation_id"`
}

func (s *Server) root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Log Analysis API is running",
		"version": Version,
	})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":        "healthy",
		"filter_system": "initialized",
		"conversations": s.convs.len(),
		"endpoints":     []string{"/", "/filter", "/analyze-logs", "/health", "/metrics"},
	})
}

// filter handles POST /filter: multipart file + query, optional max_windows.
func (s *Server) filter(c echo.Context) error {
	query := c.FormValue("query")
	maxWindows := 0
	if v := c.FormValue("max_windows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return badRequest(c, "max_windows must be a positive integer")
		}
		maxWindows = n
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "missing log file")
	}
	if !allowedFile(fh.Filename) {
		return badRequest(c, "Only .json and .ndjson files are supported")
	}
	f, err := fh.Open()
	if err != nil {
		return internalError(c, fmt.Sprintf("Error reading upload: %v", err))
	}
	defer f.Close()

	rep, err := s.pipe.Filter(c.Request().Context(), pipeline.Request{
		Source:     f,
		Query:      query,
		MaxWindows: maxWindows,
	})
	if err != nil && !isOutputError(err) {
		return internalError(c, fmt.Sprintf("Error processing logs: %v", err))
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("digest output failed")
	}
	return c.JSON(http.StatusOK, rep.Digest)
}

// analyzeLogs handles POST /analyze-logs. The first request of a conversation
// filters the uploaded logs and analyzes the digest; later requests reuse the
// cached digest and ask a follow-up question.
func (s *Server) analyzeLogs(c echo.Context) error {
	query := c.FormValue("query")
	if strings.TrimSpace(query) == "" {
		return badRequest(c, "query is required")
	}
	id := c.FormValue("conversation_id")
	if id == "" {
		id = newID()
	}

	conv, analyzed := s.convs.snapshot(id)
	ctx := c.Request().Context()

	var res analysis.Result
	if !analyzed {
		fh, err := c.FormFile("file")
		if err != nil {
			return badRequest(c, "missing log file")
		}
		if !allowedFile(fh.Filename) {
			return badRequest(c, "Only .json and .ndjson files are supported")
		}
		f, err := fh.Open()
		if err != nil {
			return internalError(c, fmt.Sprintf("Error reading upload: %v", err))
		}
		defer f.Close()

		var rep pipeline.Report
		rep, res, err = s.pipe.Analyze(ctx, pipeline.Request{
			Source:     f,
			Query:      query,
			MaxWindows: s.cfg.ServerWindows,
		}, conv.history)
		if errors.Is(err, analysis.ErrDisabled) {
			res, err = analysis.Result{Response: compactor.RenderContext(rep.Digest)}, nil
		}
		if err != nil {
			return internalError(c, fmt.Sprintf("Error processing logs: %v", err))
		}
		s.convs.setAnalyzed(id, rep.Digest, res.Response)
		conv.digest = rep.Digest
	} else {
		var err error
		res, err = s.pipe.Analyzer().FollowUp(ctx, analysis.FollowUpRequest{
			Query:            query,
			History:          conv.history,
			PreviousAnalysis: conv.initial,
			LogSummary:       conv.digest.ProcessingSummary,
		})
		if errors.Is(err, analysis.ErrDisabled) {
			res, err = analysis.Result{Response: conv.initial}, nil
		}
		if err != nil {
			return internalError(c, fmt.Sprintf("Error processing logs: %v", err))
		}
	}
	s.convs.appendExchange(id, query, res.Response)

	s.logger.Info().
		Str("conversation", id).
		Bool("follow_up", analyzed).
		Int("tokens", res.TokensUsed).
		Float64("cost", res.EstimatedCost).
		Msg("analysis complete")

	return c.JSON(http.StatusOK, AnalysisResponse{
		Query:                   query,
		Response:                res.Response,
		TotalLogsProcessed:      conv.digest.TotalLogs,
		CostReductionPercentage: conv.digest.CostReductionPercentage,
		ProcessingSummary:       conv.digest.ProcessingSummary,
		LLMTokensUsed:           res.TokensUsed,
		LLMCost:                 math.Round(res.EstimatedCost*1e4) / 1e4,
		ConversationID:          id,
	})
}

func (s *Server) deleteConversation(c echo.Context) error {
	if !s.convs.delete(c.Param("id")) {
		return notFound(c, "unknown conversation")
	}
	return c.NoContent(http.StatusNoContent)
}

func allowedFile(name string) bool {
	name = strings.ToLower(name)
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func isOutputError(err error) bool {
	var oe *pipeline.OutputError
	return errors.As(err, &oe)
}
