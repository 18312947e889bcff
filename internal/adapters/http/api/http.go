// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/gradpulse/internal/pages"
	"github.com/okian/gradpulse/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Pages() []pages.Page
	Render(ctx context.Context, id string, req pages.Request) (pages.Output, error)
	ChartPNG(ctx context.Context, id string, req pages.Request, w io.Writer) error
	Ready(ctx context.Context) bool
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	healthHandler *HealthHandler
	pagesHandler  *PagesHandler
	log           logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		healthHandler: NewHealthHandler(deps),
		pagesHandler:  NewPagesHandler(deps, log),
		log:           log,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /healthz", s.wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.HandleMetrics())
	mux.Handle("GET /pages", s.wrap(s.pagesHandler.HandleList, "pages"))
	mux.Handle("GET /pages/{id}", s.wrap(s.pagesHandler.HandleGet, "page"))
	mux.Handle("GET /pages/{id}/chart.png", s.wrap(s.pagesHandler.HandleChart, "chart"))
}

func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.Handler {
	return RequestID(MetricsMiddleware(h, endpoint))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
