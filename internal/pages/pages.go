// Package pages holds the dashboard pages. Each page is a pure function of the
// dataset and the request: it filters, aggregates and returns a chart spec with
// its insight text. Nothing is kept between calls.
package pages

import (
	"errors"
	"fmt"

	"github.com/okian/gradpulse/internal/domain/chart"
	"github.com/okian/gradpulse/internal/domain/filter"
	"github.com/okian/gradpulse/internal/domain/model"
	"github.com/okian/gradpulse/internal/domain/schema"
)

var (
	// ErrUnknownPage is returned for an id that is not registered.
	ErrUnknownPage = errors.New("unknown page")
	// ErrInvalidParam is returned for a page parameter outside its domain.
	ErrInvalidParam = errors.New("invalid parameter")
	// ErrSheetUnavailable is returned when the page's sheet was not loaded.
	ErrSheetUnavailable = errors.New("sheet unavailable")
	// ErrNoChart is returned when a chart image is asked of a table-only output.
	ErrNoChart = errors.New("page has no chart")
)

// NoDataNotice is shown when the filters leave nothing to aggregate.
const NoDataNotice = "No hay datos disponibles para los filtros seleccionados."

// Sheet names the workbook sheet a page reads.
type Sheet int

const (
	SheetEmployment Sheet = iota
	SheetTitles
)

func (s Sheet) String() string {
	if s == SheetTitles {
		return "titles"
	}
	return "employment"
}

// Dataset is the decoded workbook. Pages only read it.
type Dataset struct {
	Employment       []model.GraduateRecord
	EmploymentHeader schema.Header
	Titles           []model.TitleRecord
	TitlesHeader     schema.Header
	HasTitles        bool
}

// MaxCriticalThreshold bounds the critical programs threshold, in percent.
const MaxCriticalThreshold = 90

// Settings are the deployment-level knobs pages read.
type Settings struct {
	HomeInstitution      string
	TopN                 int
	TopTitles            int
	RotationWindowMonths int
	// CriticalThreshold is a percent in [0, MaxCriticalThreshold]; nil means
	// the default.
	CriticalThreshold *int
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	threshold := 60
	return Settings{
		HomeInstitution:      "UNIVERSIDAD DE LAS AMERICAS",
		TopN:                 10,
		TopTitles:            15,
		RotationWindowMonths: 12,
		CriticalThreshold:    &threshold,
	}
}


// Param describes a page parameter besides the filter dimensions.
type Param struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Default string   `json:"default,omitempty"`
	Choices []string `json:"choices,omitempty"`
}

// Request is one interaction: the previous selection and the page parameters.
type Request struct {
	Selection filter.Selection
	Params    map[string]string
}

// Table is a small display table; cells are already formatted.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Append adds a row.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Output is everything a page shows.
type Output struct {
	Page         string                        `json:"page"`
	Title        string                        `json:"title"`
	Selection    filter.Selection              `json:"selection"`
	Options      map[filter.Dimension][]string `json:"options"`
	Params       map[string]string             `json:"params,omitempty"`
	ParamOptions map[string][]string           `json:"param_options,omitempty"`
	Empty        bool                          `json:"empty"`
	Notice       string                        `json:"notice,omitempty"`
	Chart        *chart.Spec                   `json:"chart,omitempty"`
	Insights     []string                      `json:"insights,omitempty"`
	Table        *Table                        `json:"table,omitempty"`
}

type renderFunc func(ds Dataset, req Request, s Settings) (Output, error)

// Page is one dashboard page.
type Page struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Sheet      Sheet              `json:"-"`
	Dimensions []filter.Dimension `json:"dimensions"`
	Requires   []schema.Field     `json:"-"`
	Params     []Param            `json:"params,omitempty"`

	render renderFunc
}

// Registry holds the pages in menu order.
type Registry struct {
	settings Settings
	pages    []Page
	byID     map[string]int
}

// NewRegistry registers every page with the given settings. Zero settings
// fields fall back to DefaultSettings.
func NewRegistry(s Settings) *Registry {
	def := DefaultSettings()
	if s.HomeInstitution == "" {
		s.HomeInstitution = def.HomeInstitution
	}
	if s.TopN <= 0 {
		s.TopN = def.TopN
	}
	if s.TopTitles <= 0 {
		s.TopTitles = def.TopTitles
	}
	if s.RotationWindowMonths <= 0 {
		s.RotationWindowMonths = def.RotationWindowMonths
	}
	threshold := *def.CriticalThreshold
	if s.CriticalThreshold != nil {
		threshold = min(max(*s.CriticalThreshold, 0), MaxCriticalThreshold)
	}
	s.CriticalThreshold = &threshold

	r := &Registry{settings: s, byID: make(map[string]int)}
	for _, p := range catalogue(s) {
		r.byID[p.ID] = len(r.pages)
		r.pages = append(r.pages, p)
	}
	return r
}

// List returns the pages in menu order.
func (r *Registry) List() []Page {
	out := make([]Page, len(r.pages))
	copy(out, r.pages)
	return out
}

// Get looks a page up by id.
func (r *Registry) Get(id string) (Page, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Page{}, false
	}
	return r.pages[i], true
}

// Render runs page id over ds.
func (r *Registry) Render(ds Dataset, id string, req Request) (Output, error) {
	const op = "pages.Render"

	p, ok := r.Get(id)
	if !ok {
		return Output{}, fmt.Errorf("%s: %w: %s", op, ErrUnknownPage, id)
	}

	header := ds.EmploymentHeader
	if p.Sheet == SheetTitles {
		if !ds.HasTitles {
			return Output{}, fmt.Errorf("%s: %s: %w: %s", op, id, ErrSheetUnavailable, p.Sheet)
		}
		header = ds.TitlesHeader
	}
	if err := header.Require(p.Requires...); err != nil {
		return Output{}, fmt.Errorf("%s: %s: %w", op, id, err)
	}

	out, err := p.render(ds, req, r.settings)
	if err != nil {
		return Output{}, fmt.Errorf("%s: %s: %w", op, id, err)
	}
	out.Page = p.ID
	if out.Title == "" {
		out.Title = p.Title
	}
	if out.Empty {
		out.Chart = nil
		if out.Notice == "" {
			out.Notice = NoDataNotice
		}
	}
	return out, nil
}
