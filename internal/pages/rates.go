package pages

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/gradpulse/internal/domain/aggregate"
	"github.com/okian/gradpulse/internal/domain/chart"
	"github.com/okian/gradpulse/internal/domain/classify"
	"github.com/okian/gradpulse/internal/domain/filter"
	"github.com/okian/gradpulse/internal/domain/model"
	"github.com/okian/gradpulse/internal/domain/narrate"
	"github.com/okian/gradpulse/internal/domain/schema"
)

var rateFields = []schema.Field{
	schema.GraduateID, schema.Cohort, schema.ObsYear, schema.ObsMonth, schema.Salary, schema.EmployerTaxID,
}

var chartChoices = []string{"line", "bar"}

func employabilityPeriod() Page {
	return Page{
		ID:         "employability-period",
		Title:      "Tasa de Empleabilidad por Trimestre",
		Dimensions: allDims,
		Requires:   rateFields,
		render: func(ds Dataset, req Request, _ Settings) (Output, error) {
			res := filter.Apply(inCalendar(ds.Employment), graduateValue, allDims, req.Selection)
			out := begin(res)
			if out.Empty {
				return out, nil
			}

			rates := aggregate.RateByGroup(res.Rows, aggregate.Keys[model.GraduateRecord]{Group: periodKey, Entity: graduateID}, employed)
			err := out.setChart(rateTable(rates, "period", false), chart.Line, chart.Encoding{
				X: "period", Y: "rate", Text: "rate", Percent: true,
				Title: "Tasa de Empleabilidad", XLabel: "Periodo", YLabel: "Tasa de empleo", TickAngle: -45,
			})
			if err != nil {
				return Output{}, err
			}
			out.Table = rateRows(rates, "Periodo", false)

			first, last := rates[0], rates[len(rates)-1]
			out.insight("La tasa de empleabilidad de {who} pasó de {first} en {p1} a {last} en {p2}.", narrate.Values{
				"who": subject(res.Selection), "first": narrate.Ratio(first.Rate, 1), "p1": first.Group,
				"last": narrate.Ratio(last.Rate, 1), "p2": last.Group,
			})
			hi, _ := extremes(rates)
			out.insight("El periodo con mayor empleabilidad es {p} ({rate}).", narrate.Values{
				"p": hi.Group, "rate": narrate.Ratio(hi.Rate, 1),
			})
			return out, nil
		},
	}
}

func occupationCohortPeriod() Page {
	dims := []filter.Dimension{
		filter.Level, filter.OfferType, filter.Faculty, filter.Program, filter.CohortMulti, filter.FormalEmployment,
	}
	return Page{
		ID:         "occupation-cohort-period",
		Title:      "Tasa de Ocupación Laboral por Cohorte",
		Dimensions: dims,
		Requires:   rateFields,
		render: func(ds Dataset, req Request, _ Settings) (Output, error) {
			res := filter.Apply(inCalendar(ds.Employment), graduateValue, dims, req.Selection)
			out := begin(res)
			if out.Empty {
				return out, nil
			}

			// Each cohort's denominator is fixed across periods.
			totals := aggregate.CountDistinct(res.Rows, aggregate.Keys[model.GraduateRecord]{
				Group: func(r model.GraduateRecord) string { return r.Cohort }, Entity: graduateID,
			}, nil)
			type cell struct{ period, cohort string }
			hits := make(map[cell]map[string]struct{})
			for _, r := range res.Rows {
				if !r.Employed() {
					continue
				}
				k := cell{periodKey(r), r.Cohort}
				if hits[k] == nil {
					hits[k] = make(map[string]struct{})
				}
				hits[k][r.GraduateID] = struct{}{}
			}
			keys := make([]cell, 0, len(hits))
			for k := range hits {
				keys = append(keys, k)
			}
			slices.SortFunc(keys, func(a, b cell) int {
				return cmp.Or(cmp.Compare(a.cohort, b.cohort), cmp.Compare(a.period, b.period))
			})

			multi := len(res.Selection.Cohorts) > 1
			var t chart.Table
			out.Table = &Table{Columns: []string{"Cohorte", "Periodo", "Empleados", "Graduados", "Tasa"}}
			latest := make(map[string]aggregate.Rate)
			for _, k := range keys {
				total := totals[k.cohort]
				if total == 0 {
					continue
				}
				rate := float64(len(hits[k])) / float64(total)
				row := map[string]string{"period": k.period}
				if multi {
					row["cohort"] = k.cohort
				}
				t.Add(row, map[string]float64{"rate": pct(rate)})
				out.Table.Append(k.cohort, k.period, narrate.Count(len(hits[k])), narrate.Count(total), narrate.Ratio(rate, 1))
				latest[k.cohort] = aggregate.Rate{Group: k.period, Rate: rate}
			}
			if t.Len() == 0 {
				out.Empty = true
				return out, nil
			}

			enc := chart.Encoding{
				X: "period", Y: "rate", Percent: true,
				Title: "Tasa de Empleabilidad", XLabel: "Periodo", YLabel: "Tasa de empleo", TickAngle: -45,
			}
			if multi {
				enc.Color = "cohort"
				enc.Title = "Tasa de Empleabilidad por Cohorte"
			}
			enc.CategoryOrder = periodOrder(t)
			if err := out.setChart(t, chart.Line, enc); err != nil {
				return Output{}, err
			}

			for _, c := range res.Selection.Cohorts {
				l, ok := latest[c]
				if !ok {
					continue
				}
				out.insight("La cohorte {c} alcanza una tasa de ocupación de {rate} en {p}.", narrate.Values{
					"c": c, "rate": narrate.Ratio(l.Rate, 1), "p": l.Group,
				})
			}
			return out, nil
		},
	}
}

// periodOrder lists the period labels of t chronologically.
func periodOrder(t chart.Table) []string {
	var out []string
	for _, r := range t.Rows {
		if p := r.Dims["period"]; !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}

// cohortRates computes employment per cohort where the numerator honours the
// formality filter and the denominator does not.
func cohortRates(ds Dataset, req Request) (Output, []aggregate.Rate) {
	res := filter.Apply(ds.Employment, graduateValue, cohortlessDims, req.Selection)
	out := begin(res)
	if out.Empty {
		return out, nil
	}
	den := filter.Apply(ds.Employment, graduateValue, without(cohortlessDims, filter.FormalEmployment), res.Selection)
	rates := aggregate.RateByGroupSplit(res.Rows, den.Rows, aggregate.Keys[model.GraduateRecord]{
		Group: func(r model.GraduateRecord) string { return r.Cohort }, Entity: graduateID,
	}, employed)
	if len(rates) == 0 {
		out.Empty = true
	}
	return out, rates
}

func employabilityCohort() Page {
	return Page{
		ID:         "employability-cohort",
		Title:      "Tasa de Ocupación por Cohorte",
		Dimensions: cohortlessDims,
		Requires:   rateFields,
		Params:     []Param{{Name: "chart", Label: "Tipo de gráfico", Default: "line", Choices: chartChoices}},
		render: func(ds Dataset, req Request, _ Settings) (Output, error) {
			kind, err := choice(req, "chart", "line", chartChoices)
			if err != nil {
				return Output{}, err
			}
			out, rates := cohortRates(ds, req)
			out.setParam("chart", kind, chartChoices)
			if out.Empty {
				return out, nil
			}

			enc := chart.Encoding{
				X: "cohort", Y: "rate", Text: "rate", Percent: true,
				Title: "Tasa de ocupación por cohorte", XLabel: "Año de graduación", YLabel: "Tasa de empleo",
			}
			if err := out.setChart(rateTable(rates, "cohort", false), chartKind(kind), enc); err != nil {
				return Output{}, err
			}
			out.Table = rateRows(rates, "Cohorte", false)

			hi, lo := extremes(rates)
			out.insight("La cohorte {hi} registra la mayor tasa de ocupación ({hr}) y la cohorte {lo} la menor ({lr}).", narrate.Values{
				"hi": hi.Group, "hr": narrate.Ratio(hi.Rate, 1), "lo": lo.Group, "lr": narrate.Ratio(lo.Rate, 1),
			})
			return out, nil
		},
	}
}

func unemploymentRisk() Page {
	return Page{
		ID:         "unemployment-risk",
		Title:      "Riesgo de Desempleo",
		Dimensions: cohortlessDims,
		Requires:   rateFields,
		Params:     []Param{{Name: "chart", Label: "Tipo de gráfico", Default: "line", Choices: chartChoices}},
		render: func(ds Dataset, req Request, _ Settings) (Output, error) {
			kind, err := choice(req, "chart", "line", chartChoices)
			if err != nil {
				return Output{}, err
			}
			out, rates := cohortRates(ds, req)
			out.setParam("chart", kind, chartChoices)
			if out.Empty {
				return out, nil
			}

			enc := chart.Encoding{
				X: "cohort", Y: "rate", Text: "rate", Percent: true,
				Title: "Tasa de desempleo por cohorte", XLabel: "Año de graduación", YLabel: "Tasa de desempleo",
			}
			if err := out.setChart(rateTable(rates, "cohort", true), chartKind(kind), enc); err != nil {
				return Output{}, err
			}
			out.Table = rateRows(rates, "Cohorte", true)

			// Highest risk is the lowest employment rate.
			_, lo := extremes(rates)
			out.insight("La cohorte {c} presenta el mayor riesgo: {rate} de sus graduados no registra empleo formal.", narrate.Values{
				"c": lo.Group, "rate": narrate.Ratio(1-lo.Rate, 1),
			})
			return out, nil
		},
	}
}

func chartKind(v string) chart.Kind {
	if v == "bar" {
		return chart.Bar
	}
	return chart.Line
}

func programRanking() Page {
	return Page{
		ID:         "program-ranking",
		Title:      "Ranking de Carreras por Empleabilidad",
		Dimensions: allDims,
		Requires:   append(slices.Clone(rateFields), schema.Program),
		Params:     []Param{{Name: "period", Label: "Periodo", Default: filter.AllMasculine}},
		render: func(ds Dataset, req Request, _ Settings) (Output, error) {
			res := filter.Apply(inCalendar(ds.Employment), graduateValue, allDims, req.Selection)
			out := begin(res)

			periods := distinct(res.Rows, periodKey)
			period := dataChoice(req, "period", filter.AllMasculine, periods)
			out.setParam("period", period, append([]string{filter.AllMasculine}, periods...))
			rows := res.Rows
			if !filter.IsAll(period) {
				rows = where(rows, func(r model.GraduateRecord) bool { return periodKey(r) == period })
			}
			rates := aggregate.RateByGroup(rows, aggregate.Keys[model.GraduateRecord]{
				Group: func(r model.GraduateRecord) string { return r.Program }, Entity: graduateID,
			}, employed)
			if len(rates) == 0 {
				out.Empty = true
				return out, nil
			}
			slices.SortStableFunc(rates, func(a, b aggregate.Rate) int { return cmp.Compare(b.Rate, a.Rate) })

			err := out.setChart(rateTable(rates, "program", false), chart.Bar, chart.Encoding{
				X: "program", Y: "rate", Text: "rate", Percent: true,
				Title: "Ranking de Carreras por Empleabilidad", XLabel: "Carrera", YLabel: "Tasa de empleo", TickAngle: -45,
			})
			if err != nil {
				return Output{}, err
			}
			out.Table = rateRows(rates, "Carrera", false)

			top, bottom := rates[0], rates[len(rates)-1]
			out.insight("{top} lidera el ranking con {tr} de empleabilidad; {bottom} cierra con {br}.", narrate.Values{
				"top": top.Group, "tr": narrate.Ratio(top.Rate, 1), "bottom": bottom.Group, "br": narrate.Ratio(bottom.Rate, 1),
			})
			return out, nil
		},
	}
}

// criticalProgram is a program flagged by low or declining employment.
type criticalProgram struct {
	Program string
	MinRate float64
	Slope   float64
	Type    string
}

func criticalPrograms(s Settings) Page {
	dims := []filter.Dimension{filter.Level, filter.OfferType, filter.Faculty}
	return Page{
		ID:         "critical-programs",
		Title:      "Carreras en Estado Crítico de Empleabilidad",
		Dimensions: dims,
		Requires:   append(slices.Clone(rateFields), schema.Program),
		Params:     []Param{{Name: "threshold", Label: "Umbral de alerta (%)", Default: strconv.Itoa(*s.CriticalThreshold)}},
		render: func(ds Dataset, req Request, s Settings) (Output, error) {
			threshold, err := intParam(req, "threshold", *s.CriticalThreshold, 0, MaxCriticalThreshold)
			if err != nil {
				return Output{}, err
			}
			res := filter.Apply(inCalendar(ds.Employment), graduateValue, dims, req.Selection)
			out := begin(res)
			out.setParam("threshold", strconv.Itoa(threshold), nil)
			if out.Empty {
				return out, nil
			}

			rates := aggregate.RateByGroup(res.Rows, aggregate.Keys[model.GraduateRecord]{
				Group:  func(r model.GraduateRecord) string { return r.Program + "|" + periodKey(r) },
				Entity: graduateID,
			}, employed)
			// Group keys sort by program then period, so each program's rates
			// arrive in chronological order.
			series := make(map[string][]float64)
			var programs []string
			for _, r := range rates {
				program, _, _ := strings.Cut(r.Group, "|")
				if _, ok := series[program]; !ok {
					programs = append(programs, program)
				}
				series[program] = append(series[program], r.Rate)
			}

			limit := float64(threshold) / 100
			var flagged []criticalProgram
			for _, p := range programs {
				ys := series[p]
				slope, ok := aggregate.Slope(ys)
				if !ok {
					slope = 0
				}
				kind, critical := classify.CriticalType(slices.Min(ys) < limit, slope < 0)
				if !critical {
					continue
				}
				flagged = append(flagged, criticalProgram{Program: p, MinRate: slices.Min(ys), Slope: slope, Type: kind})
			}
			if len(flagged) == 0 {
				out.Notice = "No se encontraron carreras críticas con los filtros y umbral actuales."
				return out, nil
			}
			slices.SortStableFunc(flagged, func(a, b criticalProgram) int { return cmp.Compare(a.MinRate, b.MinRate) })

			var t chart.Table
			out.Table = &Table{Columns: []string{"Carrera", "Tasa mínima", "Pendiente", "Tipo"}}
			both := 0
			for _, f := range flagged {
				t.Add(map[string]string{"program": f.Program, "type": f.Type}, map[string]float64{"rate": pct(f.MinRate)})
				out.Table.Append(f.Program, narrate.Ratio(f.MinRate, 1), narrate.Decimal(f.Slope, 2), f.Type)
				if f.Type == classify.CriticalBoth {
					both++
				}
			}
			err = out.setChart(t, chart.HorizontalBar, chart.Encoding{
				X: "program", Y: "rate", Color: "type", Text: "rate", Percent: true,
				Title: "Tasa mínima de carreras en alerta", XLabel: "Carrera", YLabel: "Tasa mínima",
			})
			if err != nil {
				return Output{}, err
			}
			out.insight("{n} carreras presentan alerta con un umbral de {t}; {both} combinan tasa baja y tendencia descendente.", narrate.Values{
				"n": narrate.Count(len(flagged)), "t": narrate.Percent(float64(threshold), 0), "both": narrate.Count(both),
			})
			return out, nil
		},
	}
}

func distinct[T any](rows []T, key func(T) string) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		if k := key(r); k != "" {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
