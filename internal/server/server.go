// Package server is the HTTP ingress: log upload, filtering and conversational
// analysis on top of a pipeline.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/crimson-sun/logsieve/internal/config"
	"github.com/crimson-sun/logsieve/internal/metrics"
	"github.com/crimson-sun/logsieve/internal/pipeline"
)

// Version is reported by GET /.
const Version = "1.0.0"

const shutdownTimeout = 10 * time.Second

// Server holds the Echo app and its dependencies.
type Server struct {
	Echo   *echo.Echo
	cfg    config.ServerConfig
	pipe   *pipeline.Pipeline
	convs  *conversations
	logger zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New builds the Echo server and registers routes. historyLimit caps the
// messages kept per conversation.
func New(cfg config.ServerConfig, pipe *pipeline.Pipeline, historyLimit int, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		pipe:   pipe,
		convs:  newConversations(historyLimit),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogMethod:  true,
		LogURI:     true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(v.Status)).Inc()
			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Err(v.Error).
				Msg("request")
			return nil
		},
	}))
	if len(cfg.CORSAllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowCredentials: true,
		}))
	}
	if cfg.MaxUploadBytes > 0 {
		e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes, 10) + "B"))
	}

	e.GET("/", s.root)
	e.GET("/health", s.health)
	e.POST("/filter", s.filter)
	e.POST("/analyze-logs", s.analyzeLogs)
	e.DELETE("/conversations/:id", s.deleteConversation)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.Echo = e
	return s
}

// Start serves on the configured address. It blocks until ctx is cancelled,
// then shuts down gracefully and closes the pipeline.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("server listening")
		errCh <- s.Echo.Start(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and closes the
// pipeline outputs.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	return errors.Join(err, s.pipe.Close())
}
