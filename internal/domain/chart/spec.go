// Package chart maps summary tables onto declarative chart specifications.
// It performs no aggregation: every number in a Spec comes from the table.
package chart

import "errors"

var (
	ErrEmptyTable  = errors.New("empty table")
	ErrUnknownKind = errors.New("unknown chart kind")
	ErrEncoding    = errors.New("invalid encoding")
)

// Kind is the chart type.
type Kind string

const (
	Bar           Kind = "bar"
	GroupedBar    Kind = "grouped_bar"
	StackedBar    Kind = "stacked_bar"
	Line          Kind = "line"
	Box           Kind = "box"
	Histogram     Kind = "histogram"
	HorizontalBar Kind = "hbar"
	Sankey        Kind = "sankey"
)

// Palette is the default series colour cycle.
var Palette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Row is one summary row: categorical dimensions, numeric measures and, for
// box plots, the raw samples of the row.
type Row struct {
	Dims    map[string]string
	Values  map[string]float64
	Samples []float64
}

// Table is an ordered list of rows.
type Table struct {
	Rows []Row
}

// Add appends a row.
func (t *Table) Add(dims map[string]string, values map[string]float64) {
	t.Rows = append(t.Rows, Row{Dims: dims, Values: values})
}

// AddSamples appends a box-plot row.
func (t *Table) AddSamples(dims map[string]string, samples []float64) {
	t.Rows = append(t.Rows, Row{Dims: dims, Samples: samples})
}

// Len returns the row count.
func (t Table) Len() int { return len(t.Rows) }

// Encoding binds table columns to visual channels.
type Encoding struct {
	X     string // category dimension
	Y     string // value measure
	Color string // optional series dimension
	Text  string // optional measure shown as point label

	Source string // sankey source dimension
	Target string // sankey target dimension

	Percent       bool // values are percentages
	TextPercent   bool // point labels carry a % suffix even when Y is a count
	Title         string
	XLabel        string
	YLabel        string
	TickAngle     int
	CategoryOrder []string
}

// Point is one category value of a series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text,omitempty"`
}

// Series is one trace.
type Series struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// BoxSeries is the sample set of one box.
type BoxSeries struct {
	Label   string    `json:"label"`
	Samples []float64 `json:"samples"`
}

// Link is a weighted edge between two node indexes.
type Link struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Value  float64 `json:"value"`
}

// Flow is a Sankey diagram.
type Flow struct {
	Nodes []string `json:"nodes"`
	Links []Link   `json:"links"`
}

// Layout holds presentation options.
type Layout struct {
	Title       string   `json:"title"`
	XLabel      string   `json:"x_label,omitempty"`
	YLabel      string   `json:"y_label,omitempty"`
	TickAngle   int      `json:"tick_angle,omitempty"`
	BarMode     string   `json:"bar_mode,omitempty"`
	Orientation string   `json:"orientation,omitempty"`
	Markers     bool     `json:"markers,omitempty"`
	PercentAxis bool     `json:"percent_axis,omitempty"`
	BarGap      *float64 `json:"bar_gap,omitempty"`
	ShowLegend  bool     `json:"show_legend"`
	Categories  []string `json:"categories,omitempty"`
}

// Spec is a declarative chart.
type Spec struct {
	Kind   Kind        `json:"kind"`
	Layout Layout      `json:"layout"`
	Series []Series    `json:"series,omitempty"`
	Boxes  []BoxSeries `json:"boxes,omitempty"`
	Flow   *Flow       `json:"flow,omitempty"`
}
