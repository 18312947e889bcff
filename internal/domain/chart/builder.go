package chart

import (
	"fmt"
	"slices"
	"strconv"
)

// ToChart maps a summary table onto a chart of the given kind.
func ToChart(t Table, kind Kind, enc Encoding) (Spec, error) {
	if t.Len() == 0 {
		return Spec{}, ErrEmptyTable
	}
	spec := Spec{
		Kind: kind,
		Layout: Layout{
			Title:       enc.Title,
			XLabel:      enc.XLabel,
			YLabel:      enc.YLabel,
			TickAngle:   enc.TickAngle,
			PercentAxis: enc.Percent,
		},
	}

	switch kind {
	case Bar, GroupedBar, StackedBar, Line, HorizontalBar, Histogram:
		if enc.X == "" || enc.Y == "" {
			return Spec{}, fmt.Errorf("%w: %s needs x and y", ErrEncoding, kind)
		}
		spec.Layout.Categories = categories(t, enc.X, enc.CategoryOrder)
		spec.Series = series(t, enc, spec.Layout.Categories, kind == StackedBar)
		spec.Layout.ShowLegend = enc.Color != ""
	case Box:
		if enc.X == "" {
			return Spec{}, fmt.Errorf("%w: box needs x", ErrEncoding)
		}
		spec.Layout.Categories = categories(t, enc.X, enc.CategoryOrder)
		spec.Boxes = boxes(t, enc.X, spec.Layout.Categories)
	case Sankey:
		if enc.Source == "" || enc.Target == "" || enc.Y == "" {
			return Spec{}, fmt.Errorf("%w: sankey needs source, target and weight", ErrEncoding)
		}
		spec.Flow = flow(t, enc)
	default:
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	switch kind {
	case GroupedBar:
		spec.Layout.BarMode = "group"
	case StackedBar:
		spec.Layout.BarMode = "stack"
	case Line:
		spec.Layout.Markers = true
	case HorizontalBar:
		spec.Layout.Orientation = "h"
	case Histogram:
		gap := 0.0
		spec.Layout.BarGap = &gap
	}
	return spec, nil
}

// categories lists the X values: the requested order first, then unseen values
// in order of appearance.
func categories(t Table, x string, order []string) []string {
	present := make(map[string]bool)
	for _, r := range t.Rows {
		present[r.Dims[x]] = true
	}
	out := make([]string, 0, len(present))
	for _, c := range order {
		if present[c] && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	for _, r := range t.Rows {
		if c := r.Dims[x]; !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func series(t Table, enc Encoding, cats []string, fill bool) []Series {
	var names []string
	values := make(map[string]map[string]Point)
	for _, r := range t.Rows {
		name := ""
		if enc.Color != "" {
			name = r.Dims[enc.Color]
		}
		if _, ok := values[name]; !ok {
			names = append(names, name)
			values[name] = make(map[string]Point)
		}
		p := Point{Label: r.Dims[enc.X], Value: r.Values[enc.Y]}
		if enc.Text != "" {
			p.Text = formatText(r.Values[enc.Text], enc.Percent || enc.TextPercent)
		}
		values[name][p.Label] = p
	}

	out := make([]Series, 0, len(names))
	for i, name := range names {
		s := Series{Name: name, Color: Palette[i%len(Palette)]}
		if name == "" {
			s.Name = enc.YLabel
		}
		for _, c := range cats {
			p, ok := values[name][c]
			if !ok {
				if !fill {
					continue
				}
				p = Point{Label: c}
			}
			s.Points = append(s.Points, p)
		}
		out = append(out, s)
	}
	return out
}

func boxes(t Table, x string, cats []string) []BoxSeries {
	samples := make(map[string][]float64)
	for _, r := range t.Rows {
		samples[r.Dims[x]] = append(samples[r.Dims[x]], r.Samples...)
	}
	out := make([]BoxSeries, 0, len(cats))
	for _, c := range cats {
		out = append(out, BoxSeries{Label: c, Samples: samples[c]})
	}
	return out
}

func flow(t Table, enc Encoding) *Flow {
	f := &Flow{}
	index := make(map[string]int)
	node := func(label string) int {
		if i, ok := index[label]; ok {
			return i
		}
		index[label] = len(f.Nodes)
		f.Nodes = append(f.Nodes, label)
		return index[label]
	}
	for _, r := range t.Rows {
		f.Links = append(f.Links, Link{
			Source: node(r.Dims[enc.Source]),
			Target: node(r.Dims[enc.Target]),
			Value:  r.Values[enc.Y],
		})
	}
	return f
}

func formatText(v float64, percent bool) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if percent {
		return s + "%"
	}
	return s
}
