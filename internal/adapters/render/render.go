// Package render draws chart specs as PNG images with go-chart. Kinds without
// a go-chart counterpart are served as JSON only.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/gradpulse/internal/domain/chart"
	"github.com/okian/gradpulse/pkg/metrics"
)

// ErrUnsupportedKind is returned for kinds that have no PNG rendering.
var ErrUnsupportedKind = errors.New("chart kind has no PNG rendering")

const (
	defaultWidth  = 1024
	defaultHeight = 512
)

// Renderer draws specs at a fixed canvas size.
type Renderer struct {
	width  int
	height int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize sets the canvas size in pixels. Non-positive values keep the
// defaults.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// New returns a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{width: defaultWidth, height: defaultHeight}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Supports reports whether kind can be drawn as PNG.
func Supports(kind chart.Kind) bool {
	switch kind {
	case chart.Bar, chart.GroupedBar, chart.StackedBar, chart.HorizontalBar, chart.Histogram, chart.Line:
		return true
	default:
		return false
	}
}

// PNG writes spec to w.
func (r *Renderer) PNG(w io.Writer, spec chart.Spec) error {
	const op = "render.PNG"

	if !Supports(spec.Kind) {
		metrics.RecordChartRender(string(spec.Kind), "unsupported")
		return fmt.Errorf("%s: %w: %s", op, ErrUnsupportedKind, spec.Kind)
	}

	var err error
	switch {
	case spec.Kind == chart.Line && len(spec.Layout.Categories) < 2:
		// go-chart takes the x range from the ticks; one category has none to span.
		err = r.bars(w, spec)
	case spec.Kind == chart.Line:
		err = r.line(w, spec)
	case spec.Kind == chart.StackedBar:
		err = r.stacked(w, spec)
	default:
		err = r.bars(w, spec)
	}
	if err != nil {
		metrics.RecordChartRender(string(spec.Kind), "error")
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.RecordChartRender(string(spec.Kind), "ok")
	return nil
}

// bars draws bar, grouped, horizontal and histogram specs as one vertical bar
// chart. Grouped series become adjacent bars labelled "category · series".
func (r *Renderer) bars(w io.Writer, spec chart.Spec) error {
	var values []gochart.Value
	multi := len(spec.Series) > 1
	for i, s := range spec.Series {
		style := fill(colorOf(s, i))
		for _, p := range s.Points {
			label := p.Label
			if multi {
				label = p.Label + " · " + s.Name
			}
			values = append(values, gochart.Value{Value: p.Value, Label: label, Style: style})
		}
	}
	if len(values) == 0 {
		return chart.ErrEmptyTable
	}

	bc := gochart.BarChart{
		Title:      spec.Layout.Title,
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.Style{TextRotationDegrees: rotation(spec.Layout)},
		YAxis: gochart.YAxis{
			Name:           spec.Layout.YLabel,
			ValueFormatter: formatter(spec.Layout.PercentAxis),
			Range:          valueRange(values),
		},
		Bars: values,
	}
	if spec.Layout.BarGap != nil {
		bc.BarSpacing = 1
	}
	return bc.Render(gochart.PNG, w)
}

func (r *Renderer) stacked(w io.Writer, spec chart.Spec) error {
	bars := make([]gochart.StackedBar, 0, len(spec.Layout.Categories))
	for ci, cat := range spec.Layout.Categories {
		sb := gochart.StackedBar{Name: cat}
		for si, s := range spec.Series {
			// go-chart normalises each bar by its total; zero segments only add noise.
			if ci >= len(s.Points) || s.Points[ci].Value <= 0 {
				continue
			}
			sb.Values = append(sb.Values, gochart.Value{
				Value: s.Points[ci].Value,
				Label: s.Name,
				Style: fill(colorOf(s, si)),
			})
		}
		if len(sb.Values) > 0 {
			bars = append(bars, sb)
		}
	}
	if len(bars) == 0 {
		return chart.ErrEmptyTable
	}
	sbc := gochart.StackedBarChart{
		Title:      spec.Layout.Title,
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Bars:       bars,
	}
	return sbc.Render(gochart.PNG, w)
}

func (r *Renderer) line(w io.Writer, spec chart.Spec) error {
	cats := spec.Layout.Categories
	index := make(map[string]float64, len(cats))
	ticks := make([]gochart.Tick, 0, len(cats))
	for i, c := range cats {
		index[c] = float64(i)
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: c})
	}

	var series []gochart.Series
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, s := range spec.Series {
		cs := gochart.ContinuousSeries{Name: s.Name, Style: stroke(colorOf(s, i), spec.Layout.Markers)}
		for _, p := range s.Points {
			cs.XValues = append(cs.XValues, index[p.Label])
			cs.YValues = append(cs.YValues, p.Value)
			lo, hi = math.Min(lo, p.Value), math.Max(hi, p.Value)
		}
		if len(cs.XValues) > 0 {
			series = append(series, cs)
		}
	}
	if len(series) == 0 {
		return chart.ErrEmptyTable
	}

	ch := gochart.Chart{
		Title:      spec.Layout.Title,
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  spec.Layout.XLabel,
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(len(cats)) - 0.5},
			Ticks: ticks,
			Style: gochart.Style{TextRotationDegrees: rotation(spec.Layout)},
		},
		YAxis: gochart.YAxis{
			Name:           spec.Layout.YLabel,
			ValueFormatter: formatter(spec.Layout.PercentAxis),
			Range:          padded(lo, hi),
		},
		Series: series,
	}
	if spec.Layout.ShowLegend {
		ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	}
	return ch.Render(gochart.PNG, w)
}

func colorOf(s chart.Series, i int) drawing.Color {
	hex := s.Color
	if hex == "" {
		hex = chart.Palette[i%len(chart.Palette)]
	}
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func fill(c drawing.Color) gochart.Style {
	return gochart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1}
}

func stroke(c drawing.Color, markers bool) gochart.Style {
	st := gochart.Style{StrokeColor: c, StrokeWidth: 2}
	if markers {
		st.DotColor = c
		st.DotWidth = 4
	}
	return st
}

func rotation(l chart.Layout) float64 {
	if l.TickAngle != 0 {
		return math.Abs(float64(l.TickAngle))
	}
	if len(l.Categories) > 6 {
		return 45
	}
	return 0
}

func formatter(percent bool) gochart.ValueFormatter {
	return func(v interface{}) string {
		f, ok := v.(float64)
		if !ok {
			return fmt.Sprint(v)
		}
		s := strconv.FormatFloat(f, 'f', 1, 64)
		if percent {
			return s + "%"
		}
		return s
	}
}

// valueRange anchors bars at zero and keeps a non-empty range when every
// value is equal.
func valueRange(values []gochart.Value) *gochart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo, hi = math.Min(lo, v.Value), math.Max(hi, v.Value)
	}
	return padded(lo, hi)
}

func padded(lo, hi float64) *gochart.ContinuousRange {
	if lo == hi {
		return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.05
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
