package api

import (
	"bytes"
	"net/http"

	"github.com/okian/gradpulse/internal/pages"
	"github.com/okian/gradpulse/pkg/logger"
)

// PagesHandler serves page listings, page outputs and chart images.
type PagesHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewPagesHandler creates a new pages handler.
func NewPagesHandler(deps Dependencies, log logger.Logger) *PagesHandler {
	return &PagesHandler{deps: deps, log: log}
}

// HandleList handles GET /pages.
func (h *PagesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Pages())
}

// HandleGet handles GET /pages/{id}.
func (h *PagesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	req, err := pages.ParseQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, id, err)
		return
	}
	out, err := h.deps.Render(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleChart handles GET /pages/{id}/chart.png.
func (h *PagesHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	req, err := pages.ParseQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, id, err)
		return
	}
	var buf bytes.Buffer
	if err := h.deps.ChartPNG(r.Context(), id, req, &buf); err != nil {
		h.fail(w, r, id, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *PagesHandler) fail(w http.ResponseWriter, r *http.Request, id string, err error) {
	status, code := statusOf(err)
	fields := []logger.Field{
		logger.String("page", id),
		logger.String("requestId", RequestIDFrom(r.Context())),
		logger.Int("status", status),
		logger.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.log.Error(r.Context(), "page request failed", fields...)
	} else {
		h.log.Debug(r.Context(), "page request rejected", fields...)
	}
	writeError(w, status, code, err)
}
