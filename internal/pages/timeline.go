package pages

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"github.com/okian/gradpulse/internal/domain/aggregate"
	"github.com/okian/gradpulse/internal/domain/chart"
	"github.com/okian/gradpulse/internal/domain/dedupe"
	"github.com/okian/gradpulse/internal/domain/filter"
	"github.com/okian/gradpulse/internal/domain/model"
	"github.com/okian/gradpulse/internal/domain/narrate"
	"github.com/okian/gradpulse/internal/domain/schema"
)

// jobRow is a per-graduate or per-job row derived from the employment sheet.
// It keeps the source record so the usual dimensions still apply.
type jobRow struct {
	model.GraduateRecord
	Months int
	Stage  jobStage
}

type jobStage int

const (
	stageNone jobStage = iota
	stageBefore
	stageAfter
)

func jobValue(r jobRow, d filter.Dimension) string { return graduateValue(r.GraduateRecord, d) }

func byAffiliation(a, b model.GraduateRecord) int {
	return cmp.Or(cmp.Compare(a.GraduateID, b.GraduateID), a.AffiliationStart.Compare(b.AffiliationStart))
}

// firstJobs reduces rows to one per graduate. The first job is the earliest
// affiliation on or after graduation, or else the latest one before it.
func firstJobs(rows []model.GraduateRecord) []jobRow {
	type acc struct {
		base          model.GraduateRecord
		after, before *model.GraduateRecord
	}
	byID := make(map[string]*acc)
	var order []string
	for _, r := range rows {
		if r.GraduationDate.IsZero() {
			continue
		}
		a := byID[r.GraduateID]
		if a == nil {
			a = &acc{base: r}
			byID[r.GraduateID] = a
			order = append(order, r.GraduateID)
		}
		if r.AffiliationStart.IsZero() {
			continue
		}
		if !r.AffiliationStart.Before(r.GraduationDate) {
			if a.after == nil || r.AffiliationStart.Before(a.after.AffiliationStart) {
				a.after = &r
			}
		} else if a.before == nil || r.AffiliationStart.After(a.before.AffiliationStart) {
			a.before = &r
		}
	}

	out := make([]jobRow, 0, len(order))
	for _, id := range order {
		a := byID[id]
		switch {
		case a.after != nil:
			m, _ := aggregate.MonthsBetween(a.after.GraduationDate, a.after.AffiliationStart)
			out = append(out, jobRow{GraduateRecord: *a.after, Months: m, Stage: stageAfter})
		case a.before != nil:
			out = append(out, jobRow{GraduateRecord: *a.before, Stage: stageBefore})
		default:
			out = append(out, jobRow{GraduateRecord: a.base, Stage: stageNone})
		}
	}
	return out
}

func firstJob() Page {
	dims := []filter.Dimension{filter.Level, filter.OfferType, filter.Faculty, filter.Program, filter.FormalEmployment}
	return Page{
		ID:         "first-job",
		Title:      "Tiempo hasta el Primer Empleo",
		Dimensions: dims,
		Requires:   []schema.Field{schema.GraduateID, schema.Cohort, schema.AffiliationStart, schema.GraduationDate},
		Params:     []Param{{Name: "cohort", Label: "Cohorte"}},
		render: func(ds Dataset, req Request, _ Settings) (Output, error) {
			options := cohorts(ds.Employment)
			cohort := dataChoice(req, "cohort", latestCohort(ds.Employment), options)
			rows := firstJobs(where(ds.Employment, func(r model.GraduateRecord) bool { return r.Cohort == cohort }))

			res := filter.Apply(rows, jobValue, dims, req.Selection)
			out := begin(res)
			out.setParam("cohort", cohort, options)
			if out.Empty {
				return out, nil
			}
			total := filter.Apply(rows, jobValue, without(dims, filter.FormalEmployment), res.Selection)

			var months []int
			counts := make(map[jobStage]int)
			for _, r := range res.Rows {
				counts[r.Stage]++
				if r.Stage == stageAfter {
					months = append(months, r.Months)
				}
			}
			out.Table = &Table{Columns: []string{"Indicador", "Graduados"}}
			out.Table.Append("Total de graduados", narrate.Count(len(total.Rows)))
			out.Table.Append("Empleo antes de graduarse", narrate.Count(counts[stageBefore]))
			out.Table.Append("Empleo después de graduarse", narrate.Count(counts[stageAfter]))
			out.Table.Append("Sin empleo registrado", narrate.Count(counts[stageNone]))

			buckets := aggregate.MonthHistogram(months)
			if len(buckets) == 0 {
				out.Notice = "Ningún graduado de la selección registra un primer empleo posterior a la graduación."
				return out, nil
			}
			var t chart.Table
			for _, b := range buckets {
				t.Add(map[string]string{"months": b.Label}, map[string]float64{"count": float64(b.Count), "percent": b.Percent})
			}
			err := out.setChart(t, chart.Bar, chart.Encoding{
				X: "months", Y: "count", Text: "percent", TextPercent: true,
				Title: "Meses hasta el primer empleo, cohorte " + cohort, XLabel: "Meses después de la graduación",
				YLabel: "Número de graduados",
			})
			if err != nil {
				return Output{}, err
			}

			mode, _ := aggregate.Mode(buckets)
			who := "un egresado"
			switch sel := res.Selection; {
			case sel.IsSet(filter.Program):
				who = "un egresado de la carrera " + sel.Get(filter.Program)
			case sel.IsSet(filter.Faculty):
				who = "un egresado de la facultad " + sel.Get(filter.Faculty)
			}
			out.insight("A {who} le toma en promedio {m} conseguir empleo después de graduarse.", narrate.Values{
				"who": who, "m": narrate.Months(mode.Months),
			})
			return out, nil
		},
	}
}

var transitionLabels = map[aggregate.TransitionKind]string{
	aggregate.StaysA:  "Permanece Formal",
	aggregate.StaysB:  "Permanece No Formal",
	aggregate.AToB:    "Pasa a No Formal",
	aggregate.BToA:    "Pasa a Formal",
	aggregate.Unknown: "Desconocido",
}

func formalTransitions() Page {
	return Page{
		ID:         "formal-transitions",
		Title:      "Transiciones entre Empleo Formal y No Formal",
		Dimensions: allDims,
		Requires:   []schema.Field{schema.GraduateID, schema.ObsYear, schema.ObsMonth, schema.Formality},
		Params:     []Param{{Name: "year", Label: "Año"}},
		render: func(ds Dataset, req Request, _ Settings) (Output, error) {
			rows := dedupe.HighestSalaryPerMonth(inCalendar(ds.Employment))
			res := filter.Apply(rows, graduateValue, allDims, req.Selection)
			out := begin(res)

			years := distinct(res.Rows, func(r model.GraduateRecord) string { return strconv.Itoa(r.ObsYear) })
			def := ""
			if len(years) > 0 {
				def = years[len(years)-1]
			}
			year := dataChoice(req, "year", def, years)
			out.setParam("year", year, years)
			if out.Empty {
				return out, nil
			}

			states := make(map[string]map[string]aggregate.State)
			seen := make(map[string]bool)
			for _, r := range res.Rows {
				if strconv.Itoa(r.ObsYear) != year {
					continue
				}
				p, _ := r.Period()
				q := model.QuarterLabel(p.Quarter)
				seen[q] = true
				if states[r.GraduateID] == nil {
					states[r.GraduateID] = make(map[string]aggregate.State)
				}
				st := aggregate.StateB
				if r.Formality.IsFormal() {
					st = aggregate.StateA
				}
				states[r.GraduateID][q] = st
			}
			var periods []string
			for q := 1; q <= 4; q++ {
				if l := model.QuarterLabel(q); seen[l] {
					periods = append(periods, l)
				}
			}
			if len(periods) < 2 {
				out.Empty = true
				out.Notice = "No hay suficientes datos para calcular las transiciones."
				return out, nil
			}

			counts := aggregate.TransitionPivot(states, periods)
			var t chart.Table
			out.Table = &Table{Columns: []string{"Transición", "Tipo", "Graduados", "%"}}
			for _, c := range counts {
				label := transitionLabels[c.Kind]
				t.Add(map[string]string{"pair": c.Pair(), "kind": label},
					map[string]float64{"count": float64(c.Count), "percent": c.Percent})
				out.Table.Append(c.Pair(), label, narrate.Count(c.Count), narrate.Percent(c.Percent, 2))
			}
			err := out.setChart(t, chart.StackedBar, chart.Encoding{
				X: "pair", Y: "count", Color: "kind", Text: "percent", TextPercent: true,
				Title: "Transiciones de empleo " + year, XLabel: "Transición", YLabel: "Número de graduados",
			})
			if err != nil {
				return Output{}, err
			}

			last := counts[len(counts)-len(aggregate.TransitionKinds):]
			for _, c := range last {
				if c.Kind == aggregate.AToB {
					out.insight("Entre {from} y {to} de {year}, {pct} de los graduados con estado conocido pasó de empleo formal a no formal.", narrate.Values{
						"from": c.From, "to": c.To, "year": year, "pct": narrate.Percent(c.Percent, 1),
					})
				}
			}
			return out, nil
		},
	}
}

// jobSpans measures how long each graduate stayed with each employer: the
// whole months between consecutive affiliation records with the same
// employer. The last record of every employer closes with zero months.
func jobSpans(rows []model.GraduateRecord) []jobRow {
	dated := where(rows, func(r model.GraduateRecord) bool {
		return r.GraduateID != "" && r.EmployerName != "" && !r.AffiliationStart.IsZero()
	})
	slices.SortStableFunc(dated, func(a, b model.GraduateRecord) int {
		return cmp.Or(cmp.Compare(a.GraduateID, b.GraduateID), cmp.Compare(a.EmployerName, b.EmployerName),
			a.AffiliationStart.Compare(b.AffiliationStart))
	})

	var out []jobRow
	for i := 0; i < len(dated); {
		j := i
		for j < len(dated) && dated[j].GraduateID == dated[i].GraduateID && dated[j].EmployerName == dated[i].EmployerName {
			j++
		}
		for k := i; k < j-1; k++ {
			if m, ok := aggregate.MonthsBetween(dated[k].AffiliationStart, dated[k+1].AffiliationStart); ok && m > 0 {
				out = append(out, jobRow{GraduateRecord: dated[k], Months: m})
			}
		}
		out = append(out, jobRow{GraduateRecord: dated[j-1]})
		i = j
	}
	return out
}

func jobDuration() Page {
	return Page{
		ID:         "job-duration",
		Title:      "Duración del Empleo",
		Dimensions: allDims,
		Requires:   []schema.Field{schema.GraduateID, schema.EmployerName, schema.AffiliationStart},
		render: func(ds Dataset, req Request, _ Settings) (Output, error) {
			res := filter.Apply(jobSpans(ds.Employment), jobValue, allDims, req.Selection)
			out := begin(res)
			if out.Empty {
				return out, nil
			}

			values := make([]float64, 0, len(res.Rows))
			ended := make(map[int]int)
			closed := 0
			for _, r := range res.Rows {
				values = append(values, float64(r.Months))
				if r.Months > 0 {
					ended[r.Months]++
					closed++
				}
			}
			var t chart.Table
			for _, b := range aggregate.Histogram(values, 20) {
				t.Add(map[string]string{"bin": b.Label}, map[string]float64{"percent": b.Percent})
			}
			err := out.setChart(t, chart.Histogram, chart.Encoding{
				X: "bin", Y: "percent", Text: "percent", Percent: true,
				Title: "Distribución de duración de empleos", XLabel: "Meses", YLabel: "Porcentaje de empleos",
			})
			if err != nil {
				return Output{}, err
			}
			if sum, ok := aggregate.Describe(values); ok {
				out.Table = &Table{Columns: []string{"Empleos", "Media (meses)", "Mediana (meses)", "Máximo (meses)"}}
				out.Table.Append(narrate.Count(sum.Count), narrate.Decimal(sum.Mean, 1), narrate.Decimal(sum.Median, 1), narrate.Decimal(sum.Max, 0))
			}

			if closed == 0 {
				return out, nil
			}
			top := 0
			for m, n := range ended {
				if n > ended[top] || (n == ended[top] && m < top) {
					top = m
				}
			}
			out.insight("Los empleos que terminan a los {m} concentran el mayor porcentaje de salidas ({pct}), un punto crítico de rotación.", narrate.Values{
				"m": narrate.Months(top), "pct": narrate.Percent(100*float64(ended[top])/float64(closed), 1),
			})
			return out, nil
		},
	}
}

func sortedByAffiliation(rows []model.GraduateRecord) []model.GraduateRecord {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, byAffiliation)
	return out
}

func monthsWithin(start, end time.Time, window int) bool {
	m, ok := aggregate.MonthsBetween(start, end)
	return ok && m <= window
}
