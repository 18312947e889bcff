package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/gradpulse/internal/adapters/dataset"
	"github.com/okian/gradpulse/internal/adapters/render"
	"github.com/okian/gradpulse/internal/domain/chart"
	"github.com/okian/gradpulse/internal/domain/schema"
	"github.com/okian/gradpulse/internal/pages"
)

// statusOf maps a service error to its HTTP status and error code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, pages.ErrInvalidParam):
		return http.StatusBadRequest, "invalid_param"
	case errors.Is(err, pages.ErrUnknownPage):
		return http.StatusNotFound, "unknown_page"
	case errors.Is(err, pages.ErrNoChart), errors.Is(err, chart.ErrEmptyTable):
		return http.StatusNotFound, "no_chart"
	case errors.Is(err, render.ErrUnsupportedKind):
		return http.StatusUnsupportedMediaType, "unsupported_chart"
	case errors.Is(err, schema.ErrMissingColumn):
		return http.StatusInternalServerError, "schema_error"
	case errors.Is(err, pages.ErrSheetUnavailable),
		errors.Is(err, dataset.ErrSheetNotFound),
		errors.Is(err, dataset.ErrEmptySheet),
		errors.Is(err, dataset.ErrDataFileNotFound):
		return http.StatusServiceUnavailable, "data_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "canceled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
