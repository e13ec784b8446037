// Package server exposes the extraction pipeline and availability engine
// over HTTP. It owns no scheduling logic itself: handlers decode requests,
// call into the core packages and shape the responses.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"planbuddy/internal/extract"
	"planbuddy/internal/gcal"
)

// CalendarService is the slice of the Google Calendar client the handlers
// need. The availability engine never talks to it directly; the server
// fetches events and hands them over.
type CalendarService interface {
	IsAuthenticated() bool
	GetAuthURL() string
	ExchangeCode(ctx context.Context, code string) error
	ListEventsInRange(calendarID string, timeMin, timeMax time.Time, loc *time.Location) ([]gcal.EventDetails, error)
	CreateEvent(calendarID string, input gcal.EventInput) (string, error)
	ListCalendars() ([]gcal.CalendarInfo, error)
}

type Server struct {
	pipeline        *extract.Pipeline
	calendar        CalendarService
	calendarID      string
	defaultTimezone string
	logger          zerolog.Logger
	httpSrv         *http.Server
	port            int
}

// Config holds everything the server needs; all fields are fixed at startup.
type Config struct {
	Pipeline        *extract.Pipeline
	Calendar        CalendarService
	CalendarID      string
	DefaultTimezone string
	Port            int
	Logger          zerolog.Logger
}

func New(cfg Config) *Server {
	s := &Server{
		pipeline:        cfg.Pipeline,
		calendar:        cfg.Calendar,
		calendarID:      cfg.CalendarID,
		defaultTimezone: cfg.DefaultTimezone,
		logger:          cfg.Logger,
		port:            cfg.Port,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.corsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealthCheck)

	// Scheduling API
	mux.HandleFunc("POST /api/plan", s.handlePlan)
	mux.HandleFunc("POST /api/availability", s.handleAvailability)

	// Google Calendar auth
	mux.HandleFunc("GET /api/gcal/auth-url", s.handleAuthURL)
	mux.HandleFunc("GET /api/gcal/oauth-callback", s.handleOAuthCallback)
	mux.HandleFunc("GET /api/gcal/calendars", s.handleListCalendars)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Int("port", s.port).Msg("HTTP server listening")
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
