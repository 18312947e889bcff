// Package dataset loads the employability workbook once per process and
// serves the decoded records to every page.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/gradpulse/internal/domain/model"
	"github.com/okian/gradpulse/internal/domain/schema"
	"github.com/okian/gradpulse/pkg/logger"
	"github.com/okian/gradpulse/pkg/metrics"
)

// Default sheet names.
const (
	DefaultEmploymentSheet = "Empleabilidad"
	DefaultTitlesSheet     = "Titulos"
)

// Table is one raw sheet: the header row and the data rows below it.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string
}

// Employment is the decoded employment sheet.
type Employment struct {
	Records []model.GraduateRecord
	Header  schema.Header
}

// Titles is the decoded titles sheet.
type Titles struct {
	Records []model.TitleRecord
	Header  schema.Header
}

// Loader memoizes sheets read from a Source. Every sheet is read at most once
// successfully; the cached values are never mutated afterwards.
type Loader struct {
	source          Source
	employmentSheet string
	titlesSheet     string
	log             logger.Logger

	mu         sync.Mutex
	tables     map[string]*Table
	employment *Employment
	titles     *Titles
}

// NewLoader returns a loader reading the workbook at path.
func NewLoader(path string, opts ...Option) *Loader {
	l := &Loader{
		source:          NewExcelSource(path),
		employmentSheet: DefaultEmploymentSheet,
		titlesSheet:     DefaultTitlesSheet,
		log:             logger.Nop(),
		tables:          make(map[string]*Table),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the raw rows of sheet, reading them on first use.
func (l *Loader) Load(ctx context.Context, sheet string) (*Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx, sheet)
}

func (l *Loader) load(ctx context.Context, sheet string) (*Table, error) {
	const op = "dataset.Loader.Load"

	if t, ok := l.tables[sheet]; ok {
		return t, nil
	}

	start := time.Now()
	rows, err := l.source.Rows(ctx, sheet)
	if err != nil {
		metrics.RecordDatasetLoadError(sheet, reason(err))
		l.log.Error(ctx, "failed to read sheet",
			logger.String("workbook", l.source.Name()),
			logger.String("sheet", sheet),
			logger.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(rows) == 0 {
		metrics.RecordDatasetLoadError(sheet, "empty")
		return nil, fmt.Errorf("%s: %w: %s", op, ErrEmptySheet, sheet)
	}

	t := &Table{Sheet: sheet, Header: rows[0], Rows: rows[1:]}
	l.tables[sheet] = t

	elapsed := time.Since(start)
	metrics.RecordDatasetLoad(sheet, float64(elapsed.Milliseconds()), len(t.Rows))
	l.log.Info(ctx, "sheet loaded",
		logger.String("workbook", l.source.Name()),
		logger.String("sheet", sheet),
		logger.Int("rows", len(t.Rows)),
		logger.Duration("elapsed", elapsed))
	return t, nil
}

// Employment returns the decoded employment sheet.
func (l *Loader) Employment(ctx context.Context) (*Employment, error) {
	const op = "dataset.Loader.Employment"

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.employment != nil {
		return l.employment, nil
	}
	t, err := l.load(ctx, l.employmentSheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	records, header := DecodeEmployment(t)
	l.employment = &Employment{Records: records, Header: header}
	return l.employment, nil
}

// Titles returns the decoded titles sheet.
func (l *Loader) Titles(ctx context.Context) (*Titles, error) {
	const op = "dataset.Loader.Titles"

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.titles != nil {
		return l.titles, nil
	}
	t, err := l.load(ctx, l.titlesSheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	records, header := DecodeTitles(t)
	l.titles = &Titles{Records: records, Header: header}
	return l.titles, nil
}

// Prewarm reads the employment sheet, and the titles sheet when present, so
// the first request does not pay for the read. A missing titles sheet is
// logged and tolerated.
func (l *Loader) Prewarm(ctx context.Context) error {
	const op = "dataset.Loader.Prewarm"

	if _, err := l.Employment(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := l.Titles(ctx); err != nil {
		if !errors.Is(err, ErrSheetNotFound) {
			return fmt.Errorf("%s: %w", op, err)
		}
		l.log.Warn(ctx, "titles sheet unavailable, postgraduate pages disabled",
			logger.String("sheet", l.titlesSheet))
	}
	return nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrDataFileNotFound):
		return "file_not_found"
	case errors.Is(err, ErrSheetNotFound):
		return "sheet_not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "read_error"
	}
}
