// Package control serves a small local HTTP API for driving the scheduler.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"keep-connect/internal/application"
	"keep-connect/internal/domain"
)

type Controller interface {
	Start(interval domain.Interval) error
	Stop()
	Status() string
	State() application.State
	Interval() domain.Interval
}

type StatusResponse struct {
	State     application.State `json:"state"`
	Running   bool              `json:"running"`
	Status    string            `json:"status"`
	Interval  int               `json:"interval"`
	Intervals []domain.Interval `json:"intervals"`
}

type Server struct {
	addr            string
	server          *http.Server
	controller      Controller
	defaultInterval domain.Interval
	logger          *slog.Logger
	mu              sync.Mutex
	running         bool
	mux             *http.ServeMux
	rateLimiter     *RateLimiter
	authToken       string
}

func NewServer(addr, authToken string, controller Controller, defaultInterval domain.Interval, logger *slog.Logger) *Server {
	s := &Server{
		addr:            addr,
		controller:      controller,
		defaultInterval: defaultInterval,
		logger:          logger,
		mux:             http.NewServeMux(),
		rateLimiter:     NewRateLimiter(30, time.Minute), // 30 requests per minute per IP
		authToken:       authToken,
	}
	s.mux.HandleFunc("POST /start", s.rateLimiter.Middleware(s.requireToken(s.handleStart)))
	s.mux.HandleFunc("POST /stop", s.rateLimiter.Middleware(s.requireToken(s.handleStop)))
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	return s
}

func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Info("control server starting", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("control server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := s.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	s.running = false
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}

		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		if token != s.authToken {
			s.logger.Warn("unauthorized control request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	interval := s.defaultInterval
	if v := r.URL.Query().Get("interval"); v != "" {
		parsed, err := domain.ParseInterval(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		interval = parsed
	}

	if s.controller.State() == application.StateRunning {
		writeJSON(w, http.StatusConflict, map[string]any{
			"status":   "already_running",
			"interval": s.controller.Interval().Seconds(),
		})
		return
	}

	if err := s.controller.Start(interval); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, application.ErrInvalidInterval) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	s.logger.Info("playback started via control API", "interval", interval.Seconds())
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":   "started",
		"interval": interval.Seconds(),
	})
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.controller.Stop()
	s.logger.Info("playback stopped via control API")
	writeJSON(w, http.StatusOK, map[string]any{"status": "stopped"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	state := s.controller.State()
	writeJSON(w, http.StatusOK, StatusResponse{
		State:     state,
		Running:   state == application.StateRunning,
		Status:    s.controller.Status(),
		Interval:  s.controller.Interval().Seconds(),
		Intervals: domain.Intervals,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]any{
		"status":    status,
		"running":   running,
		"scheduler": s.controller.State(),
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
