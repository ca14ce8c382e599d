// FILE: logseer/src/internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"logseer/src/internal/config"
	"logseer/src/internal/monitor"
	"logseer/src/internal/storage"
	"logseer/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/valyala/fasthttp"
)

// Default trailing window for GET /analyses
const defaultQueryHours = 24

// Server exposes the read-only query surface over HTTP:
//
//	GET  /status          monitor state
//	GET  /analyses        recent analyses for one source
//	GET  /alerts          unresolved alerts
//	POST /alerts/resolve  mark an alert resolved
type Server struct {
	config      *config.APIConfig
	store       *storage.Store
	monitor     *monitor.Monitor
	auth        *Authenticator
	rateLimiter *RateLimiter
	logger      *log.Logger
	server      *fasthttp.Server
}

// NewServer wires the query API. The monitor may be nil in one-shot modes.
func NewServer(cfg *config.APIConfig, store *storage.Store, mon *monitor.Monitor, logger *log.Logger) (*Server, error) {
	auth, err := NewAuthenticator(cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	return &Server{
		config:      cfg,
		store:       store,
		monitor:     mon,
		auth:        auth,
		rateLimiter: NewRateLimiter(cfg.RateLimit),
		logger:      logger,
	}, nil
}

// Start runs the server until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.server = &fasthttp.Server{
		Name:         fmt.Sprintf("LogSeer/%s", version.Short()),
		Handler:      s.handleRequest,
		Logger:       compat.NewFastHTTPAdapter(s.logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("msg", "API server started",
			"component", "api",
			"host", s.config.Host,
			"port", s.config.Port,
			"auth", s.auth != nil)
		if err := s.server.ListenAndServe(addr); err != nil {
			errChan <- err
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.server.ShutdownWithContext(shutdownCtx)
		s.rateLimiter.Stop()
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("API server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func (s *Server) handleRequest(ctx *fasthttp.RequestCtx) {
	ip := ctx.RemoteIP().String()

	if !s.rateLimiter.Allow(ip) {
		s.writeError(ctx, fasthttp.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	if s.auth != nil {
		authHeader := string(ctx.Request.Header.Peek("Authorization"))
		if err := s.auth.Authenticate(authHeader); err != nil {
			s.logger.Warn("msg", "API auth failed",
				"component", "api",
				"remote", ip,
				"error", err)
			ctx.Response.Header.Set("WWW-Authenticate", "Bearer")
			s.writeError(ctx, fasthttp.StatusUnauthorized, "unauthorized")
			return
		}
	}

	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case method == fasthttp.MethodGet && path == "/status":
		s.handleStatus(ctx)
	case method == fasthttp.MethodGet && path == "/analyses":
		s.handleAnalyses(ctx)
	case method == fasthttp.MethodGet && path == "/alerts":
		s.handleAlerts(ctx)
	case method == fasthttp.MethodPost && path == "/alerts/resolve":
		s.handleResolve(ctx)
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

func (s *Server) handleStatus(ctx *fasthttp.RequestCtx) {
	status := map[string]any{
		"version": version.Short(),
		"time":    time.Now().UTC(),
	}
	if s.monitor != nil {
		status["monitor"] = s.monitor.Stats()
	}
	s.writeJSON(ctx, fasthttp.StatusOK, status)
}

func (s *Server) handleAnalyses(ctx *fasthttp.RequestCtx) {
	source := string(ctx.QueryArgs().Peek("source"))
	if source == "" {
		s.writeError(ctx, fasthttp.StatusBadRequest, "source parameter required")
		return
	}

	hours := defaultQueryHours
	if raw := string(ctx.QueryArgs().Peek("hours")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(ctx, fasthttp.StatusBadRequest, "invalid hours parameter")
			return
		}
		hours = parsed
	}

	records, err := s.store.RecentAnalyses(ctx, source, time.Duration(hours)*time.Hour)
	if err != nil {
		s.logger.Error("msg", "Failed to query analyses",
			"component", "api",
			"error", err)
		s.writeError(ctx, fasthttp.StatusInternalServerError, "query failed")
		return
	}

	s.writeJSON(ctx, fasthttp.StatusOK, map[string]any{
		"source":   source,
		"hours":    hours,
		"analyses": records,
	})
}

func (s *Server) handleAlerts(ctx *fasthttp.RequestCtx) {
	records, err := s.store.UnresolvedAlerts(ctx)
	if err != nil {
		s.logger.Error("msg", "Failed to query alerts",
			"component", "api",
			"error", err)
		s.writeError(ctx, fasthttp.StatusInternalServerError, "query failed")
		return
	}

	s.writeJSON(ctx, fasthttp.StatusOK, map[string]any{
		"alerts": records,
	})
}

func (s *Server) handleResolve(ctx *fasthttp.RequestCtx) {
	raw := string(ctx.QueryArgs().Peek("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		s.writeError(ctx, fasthttp.StatusBadRequest, "invalid id parameter")
		return
	}

	if err := s.store.ResolveAlert(ctx, id); err != nil {
		s.writeError(ctx, fasthttp.StatusNotFound, err.Error())
		return
	}

	s.logger.Info("msg", "Alert resolved",
		"component", "api",
		"alert_id", id)

	s.writeJSON(ctx, fasthttp.StatusOK, map[string]any{
		"resolved": id,
	})
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.writeError(ctx, fasthttp.StatusInternalServerError, "encoding failed")
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(fmt.Sprintf(`{"error":%q}`, message))
}
