package pages

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/gradpulse/internal/domain/aggregate"
	"github.com/okian/gradpulse/internal/domain/chart"
	"github.com/okian/gradpulse/internal/domain/filter"
	"github.com/okian/gradpulse/internal/domain/model"
	"github.com/okian/gradpulse/internal/domain/narrate"
)

// Dimension sets shared by most employment pages.
var (
	allDims = []filter.Dimension{
		filter.Level, filter.OfferType, filter.Faculty, filter.Program, filter.Cohort, filter.FormalEmployment,
	}
	cohortlessDims = []filter.Dimension{
		filter.Level, filter.OfferType, filter.Faculty, filter.Program, filter.FormalEmployment,
	}
)

func graduateValue(r model.GraduateRecord, d filter.Dimension) string {
	switch d {
	case filter.Level:
		return r.Level
	case filter.OfferType:
		return r.OfferType
	case filter.Faculty:
		return r.Faculty
	case filter.Program:
		return r.Program
	case filter.Cohort:
		return r.Cohort
	case filter.FormalEmployment:
		return r.Formality.String()
	default:
		return ""
	}
}

func graduateID(r model.GraduateRecord) string { return r.GraduateID }

func employed(r model.GraduateRecord) bool { return r.Employed() }

func periodKey(r model.GraduateRecord) string {
	p, ok := r.Period()
	if !ok {
		return ""
	}
	return p.String()
}

func inCalendar(rows []model.GraduateRecord) []model.GraduateRecord {
	return where(rows, func(r model.GraduateRecord) bool {
		_, ok := r.Period()
		return ok
	})
}

func where[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func without(dims []filter.Dimension, drop filter.Dimension) []filter.Dimension {
	return slices.DeleteFunc(slices.Clone(dims), func(d filter.Dimension) bool { return d == drop })
}

// begin copies the filter outcome into a fresh output.
func begin[T any](res filter.Result[T]) Output {
	return Output{
		Selection: res.Selection,
		Options:   res.Options,
		Empty:     res.Empty(),
	}
}

func (o *Output) setParam(name, value string, options []string) {
	if o.Params == nil {
		o.Params = make(map[string]string)
	}
	o.Params[name] = value
	if options != nil {
		if o.ParamOptions == nil {
			o.ParamOptions = make(map[string][]string)
		}
		o.ParamOptions[name] = options
	}
}

func (o *Output) insight(template string, values narrate.Values) {
	o.Insights = append(o.Insights, narrate.Must(template, values))
}

func (o *Output) setChart(t chart.Table, kind chart.Kind, enc chart.Encoding) error {
	spec, err := chart.ToChart(t, kind, enc)
	if err != nil {
		return err
	}
	o.Chart = &spec
	return nil
}

// choice reads a parameter restricted to a fixed set of values.
func choice(req Request, name, def string, choices []string) (string, error) {
	v := strings.TrimSpace(req.Params[name])
	if v == "" {
		return def, nil
	}
	if !slices.Contains(choices, v) {
		return "", fmt.Errorf("%w: %s=%q, want one of %s", ErrInvalidParam, name, v, strings.Join(choices, ", "))
	}
	return v, nil
}

// dataChoice reads a parameter whose values come from the data. A value that
// is not offered falls back to def, like a stale filter selection.
func dataChoice(req Request, name, def string, options []string) string {
	v := strings.TrimSpace(req.Params[name])
	if v == "" || !slices.Contains(options, v) {
		return def
	}
	return v
}

// intParam reads an integer parameter within [lo, hi].
func intParam(req Request, name string, def, lo, hi int) (int, error) {
	v := strings.TrimSpace(req.Params[name])
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%w: %s=%q, want an integer in [%d, %d]", ErrInvalidParam, name, v, lo, hi)
	}
	return n, nil
}

// subject names the population the selection describes, for insight text.
func subject(sel filter.Selection) string {
	s := "los egresados"
	switch {
	case sel.IsSet(filter.Program):
		s = "los egresados de " + sel.Get(filter.Program)
	case sel.IsSet(filter.Faculty):
		s = "los egresados de la facultad " + sel.Get(filter.Faculty)
	}
	if sel.IsSet(filter.Cohort) {
		s += " de la cohorte " + sel.Get(filter.Cohort)
	}
	return s
}

func pct(rate float64) float64 { return aggregate.RoundTo(rate*100, 2) }

// rateTable renders rates as a chart table under dimension key, in percent.
func rateTable(rates []aggregate.Rate, key string, invert bool) chart.Table {
	var t chart.Table
	for _, r := range rates {
		v := r.Rate
		if invert {
			v = 1 - v
		}
		t.Add(map[string]string{key: r.Group}, map[string]float64{"rate": pct(v)})
	}
	return t
}

func rateRows(rates []aggregate.Rate, heading string, invert bool) *Table {
	label := "Tasa"
	if invert {
		label = "Tasa de desempleo"
	}
	t := &Table{Columns: []string{heading, "Empleados", "Graduados", label}}
	for _, r := range rates {
		v := r.Rate
		if invert {
			v = 1 - v
		}
		t.Append(r.Group, narrate.Count(r.Numerator), narrate.Count(r.Denominator), narrate.Ratio(v, 1))
	}
	return t
}

func shareRows(shares []aggregate.Share, heading, count string) *Table {
	t := &Table{Columns: []string{heading, count, "%"}}
	for _, s := range shares {
		t.Append(s.Label, narrate.Count(s.Count), narrate.Percent(s.Percent, 2))
	}
	return t
}

func shareTable(shares []aggregate.Share, key string) chart.Table {
	var t chart.Table
	for _, s := range shares {
		t.Add(map[string]string{key: s.Label}, map[string]float64{"count": float64(s.Count), "percent": s.Percent})
	}
	return t
}

// extremes returns the highest and lowest rate, ties to the first.
func extremes(rates []aggregate.Rate) (hi, lo aggregate.Rate) {
	hi, lo = rates[0], rates[0]
	for _, r := range rates[1:] {
		if r.Rate > hi.Rate {
			hi = r
		}
		if r.Rate < lo.Rate {
			lo = r
		}
	}
	return hi, lo
}

func latestCohort(rows []model.GraduateRecord) string {
	best := ""
	bestN := -1
	for _, r := range rows {
		if n, err := strconv.Atoi(r.Cohort); err == nil && n > bestN {
			best, bestN = r.Cohort, n
		}
	}
	return best
}

func cohorts(rows []model.GraduateRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		if r.Cohort != "" {
			seen[r.Cohort] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b string) int {
		ai, aerr := strconv.Atoi(a)
		bi, berr := strconv.Atoi(b)
		if aerr == nil && berr == nil {
			return ai - bi
		}
		return strings.Compare(a, b)
	})
	return out
}
