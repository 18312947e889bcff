// Package service binds the dataset loader, the page registry and the chart
// renderer into the operations the HTTP API and the report CLI call.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/okian/gradpulse/internal/adapters/dataset"
	"github.com/okian/gradpulse/internal/adapters/render"
	"github.com/okian/gradpulse/internal/domain/schema"
	"github.com/okian/gradpulse/internal/pages"
	"github.com/okian/gradpulse/pkg/logger"
	"github.com/okian/gradpulse/pkg/metrics"
)

// Loader serves the decoded workbook sheets.
type Loader interface {
	Employment(ctx context.Context) (*dataset.Employment, error)
	Titles(ctx context.Context) (*dataset.Titles, error)
}

// prewarmer is implemented by loaders that can read everything up front.
type prewarmer interface {
	Prewarm(ctx context.Context) error
}

// Service renders dashboard pages over a shared, read-only dataset.
type Service struct {
	startMu sync.Mutex
	mu      sync.RWMutex
	started bool

	loader   Loader
	registry *pages.Registry
	renderer *render.Renderer
	settings pages.Settings

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLoader sets the dataset loader.
func WithLoader(l Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithSettings sets the page settings. Ignored when WithRegistry is given.
func WithSettings(st pages.Settings) Option {
	return func(s *Service) { s.settings = st }
}

// WithRegistry sets a prepared page registry.
func WithRegistry(r *pages.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithRenderer sets the PNG renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// New constructs a Service. Without WithLoader it reads the default workbook
// path of the dataset package's loader.
func New(opts ...Option) *Service {
	s := &Service{settings: pages.DefaultSettings()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.registry == nil {
		s.registry = pages.NewRegistry(s.settings)
	}
	if s.renderer == nil {
		s.renderer = render.New()
	}
	if s.loader == nil {
		s.loader = dataset.NewLoader("data/empleabilidad.xlsx", dataset.WithLogger(s.logger))
	}
	return s
}

// Start prewarms the dataset when the loader supports it. A missing data file
// fails Start; a missing titles sheet does not. Ready stays false, without
// blocking, until the prewarm completes.
func (s *Service) Start(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	if s.Ready(ctx) {
		return nil
	}
	if p, ok := s.loader.(prewarmer); ok {
		if err := p.Prewarm(ctx); err != nil {
			return fmt.Errorf("service.Start: %w", err)
		}
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	s.logger.Info(ctx, "dashboard service started", logger.Int("pages", len(s.registry.List())))
	return nil
}

// Stop marks the service as not ready.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

// Ready reports whether Start completed.
func (s *Service) Ready(context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Pages lists the registered pages in menu order.
func (s *Service) Pages() []pages.Page {
	return s.registry.List()
}

// Render runs page id for req.
func (s *Service) Render(ctx context.Context, id string, req pages.Request) (pages.Output, error) {
	const op = "service.Render"

	start := time.Now()
	out, err := s.render(ctx, id, req)
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordPageRender(id, outcome(err))
		s.logger.Warn(ctx, "page render failed",
			logger.String("page", id),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
		return pages.Output{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RecordPageRender(id, "ok")
	metrics.RecordPageLatency(id, float64(elapsed.Microseconds())/1000)
	if out.Empty {
		metrics.RecordEmptyResult(id)
	}
	s.logger.Debug(ctx, "page rendered",
		logger.String("page", id),
		logger.Bool("empty", out.Empty),
		logger.Duration("elapsed", elapsed))
	return out, nil
}

func (s *Service) render(ctx context.Context, id string, req pages.Request) (pages.Output, error) {
	p, ok := s.registry.Get(id)
	if !ok {
		return pages.Output{}, fmt.Errorf("%w: %s", pages.ErrUnknownPage, id)
	}
	ds, err := s.dataset(ctx, p.Sheet)
	if err != nil {
		return pages.Output{}, err
	}
	return s.registry.Render(ds, id, req)
}

// dataset loads only the sheet the page reads.
func (s *Service) dataset(ctx context.Context, sheet pages.Sheet) (pages.Dataset, error) {
	var ds pages.Dataset
	if sheet == pages.SheetTitles {
		t, err := s.loader.Titles(ctx)
		switch {
		case errors.Is(err, dataset.ErrSheetNotFound):
			return ds, nil
		case err != nil:
			return ds, err
		}
		ds.Titles, ds.TitlesHeader, ds.HasTitles = t.Records, t.Header, true
		return ds, nil
	}
	e, err := s.loader.Employment(ctx)
	if err != nil {
		return ds, err
	}
	ds.Employment, ds.EmploymentHeader = e.Records, e.Header
	return ds, nil
}

// ChartPNG renders page id and draws its chart to w.
func (s *Service) ChartPNG(ctx context.Context, id string, req pages.Request, w io.Writer) error {
	const op = "service.ChartPNG"

	out, err := s.Render(ctx, id, req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if out.Chart == nil {
		return fmt.Errorf("%s: %w: %s", op, pages.ErrNoChart, id)
	}
	if err := s.renderer.PNG(w, *out.Chart); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, pages.ErrUnknownPage):
		return "unknown_page"
	case errors.Is(err, pages.ErrInvalidParam):
		return "invalid_param"
	case errors.Is(err, pages.ErrSheetUnavailable), errors.Is(err, dataset.ErrSheetNotFound):
		return "sheet_unavailable"
	case errors.Is(err, dataset.ErrDataFileNotFound):
		return "data_unavailable"
	case errors.Is(err, schema.ErrMissingColumn):
		return "missing_column"
	default:
		return "error"
	}
}
