package pages

import (
	"cmp"
	"slices"

	"github.com/okian/gradpulse/internal/domain/aggregate"
	"github.com/okian/gradpulse/internal/domain/chart"
	"github.com/okian/gradpulse/internal/domain/filter"
	"github.com/okian/gradpulse/internal/domain/model"
	"github.com/okian/gradpulse/internal/domain/narrate"
	"github.com/okian/gradpulse/internal/domain/schema"
)

// rotated reports, per graduate, whether they joined a different employer
// within window months of their first affiliation. The program is taken from
// the first affiliation.
func rotated(rows []model.GraduateRecord, window int) []jobRow {
	dated := sortedByAffiliation(where(rows, func(r model.GraduateRecord) bool {
		return r.EmployerName != "" && !r.AffiliationStart.IsZero()
	}))

	var out []jobRow
	for i := 0; i < len(dated); {
		first := dated[i]
		j := i + 1
		moved := false
		for ; j < len(dated) && dated[j].GraduateID == first.GraduateID; j++ {
			if !moved && dated[j].EmployerName != first.EmployerName &&
				monthsWithin(first.AffiliationStart, dated[j].AffiliationStart, window) {
				moved = true
			}
		}
		row := jobRow{GraduateRecord: first}
		if moved {
			row.Stage = stageAfter
		}
		out = append(out, row)
		i = j
	}
	return out
}

func rotation() Page {
	return Page{
		ID:         "rotation",
		Title:      "Índice de Rotación",
		Dimensions: cohortlessDims,
		Requires:   []schema.Field{schema.GraduateID, schema.Cohort, schema.Program, schema.EmployerName, schema.AffiliationStart},
		Params:     []Param{{Name: "cohort", Label: "Cohorte"}},
		render: func(ds Dataset, req Request, s Settings) (Output, error) {
			options := cohorts(ds.Employment)
			cohort := dataChoice(req, "cohort", latestCohort(ds.Employment), options)
			rows := where(ds.Employment, func(r model.GraduateRecord) bool { return r.Cohort == cohort })

			res := filter.Apply(rows, graduateValue, cohortlessDims, req.Selection)
			out := begin(res)
			out.setParam("cohort", cohort, options)
			if out.Empty {
				return out, nil
			}

			people := rotated(res.Rows, s.RotationWindowMonths)
			moved := func(r jobRow) bool { return r.Stage == stageAfter }
			rates := aggregate.RateByGroup(people, aggregate.Keys[jobRow]{
				Group:  func(r jobRow) string { return r.Program },
				Entity: func(r jobRow) string { return r.GraduateID },
			}, moved)
			if len(rates) == 0 {
				out.Empty = true
				return out, nil
			}
			slices.SortStableFunc(rates, func(a, b aggregate.Rate) int { return cmp.Compare(b.Rate, a.Rate) })

			err := out.setChart(rateTable(rates, "program", false), chart.Bar, chart.Encoding{
				X: "program", Y: "rate", Text: "rate", Percent: true,
				Title: "Índice de rotación por carrera", XLabel: "Carrera", YLabel: "Tasa de rotación", TickAngle: -45,
			})
			if err != nil {
				return Output{}, err
			}
			out.Table = &Table{Columns: []string{"Carrera", "Con rotación", "Graduados", "Tasa de rotación"}}
			for _, r := range rates {
				out.Table.Append(r.Group, narrate.Count(r.Numerator), narrate.Count(r.Denominator), narrate.Ratio(r.Rate, 1))
			}

			overall, _ := aggregate.Overall(people, func(r jobRow) string { return r.GraduateID }, moved)
			scope := ""
			sel := res.Selection
			switch {
			case sel.IsSet(filter.Program) && sel.IsSet(filter.Faculty):
				scope = " para la carrera " + sel.Get(filter.Program) + " y la facultad " + sel.Get(filter.Faculty)
			case sel.IsSet(filter.Program):
				scope = " para la carrera " + sel.Get(filter.Program)
			case sel.IsSet(filter.Faculty):
				scope = " para la facultad " + sel.Get(filter.Faculty)
			}
			out.insight("El índice de rotación{scope} de la cohorte {c} es de {pct}.", narrate.Values{
				"scope": scope, "c": cohort, "pct": narrate.Ratio(overall.Rate, 1),
			})
			return out, nil
		},
	}
}

// sectorMove is one change of economic sector between consecutive
// affiliations of a graduate. It carries the record of the new affiliation.
type sectorMove struct {
	model.GraduateRecord
	From string
}

func sectorMoves(rows []model.GraduateRecord) []sectorMove {
	dated := sortedByAffiliation(where(rows, func(r model.GraduateRecord) bool {
		return r.Sector != "" && !r.AffiliationStart.IsZero()
	}))
	var out []sectorMove
	for i := 1; i < len(dated); i++ {
		prev, cur := dated[i-1], dated[i]
		if prev.GraduateID == cur.GraduateID && prev.Sector != cur.Sector {
			out = append(out, sectorMove{GraduateRecord: cur, From: prev.Sector})
		}
	}
	return out
}

type flowCount struct {
	from, to string
	n        int
}

func sectorMobility() Page {
	return Page{
		ID:         "sector-mobility",
		Title:      "Movilidad Intersectorial",
		Dimensions: allDims,
		Requires:   []schema.Field{schema.GraduateID, schema.Sector, schema.AffiliationStart},
		render: func(ds Dataset, req Request, _ Settings) (Output, error) {
			res := filter.Apply(sectorMoves(ds.Employment), func(r sectorMove, d filter.Dimension) string {
				return graduateValue(r.GraduateRecord, d)
			}, allDims, req.Selection)
			out := begin(res)
			if out.Empty {
				out.Notice = "No se registran cambios de sector con los filtros seleccionados."
				return out, nil
			}

			counts := make(map[[2]string]int)
			for _, m := range res.Rows {
				counts[[2]string{m.From, m.Sector}]++
			}
			flows := make([]flowCount, 0, len(counts))
			for k, n := range counts {
				flows = append(flows, flowCount{from: k[0], to: k[1], n: n})
			}
			slices.SortFunc(flows, func(a, b flowCount) int {
				return cmp.Or(cmp.Compare(b.n, a.n), cmp.Compare(a.from, b.from), cmp.Compare(a.to, b.to))
			})

			var t chart.Table
			out.Table = &Table{Columns: []string{"Sector de origen", "Sector de destino", "Cambios"}}
			for _, f := range flows {
				t.Add(map[string]string{"from": f.from, "to": f.to}, map[string]float64{"count": float64(f.n)})
				out.Table.Append(f.from, f.to, narrate.Count(f.n))
			}
			err := out.setChart(t, chart.Sankey, chart.Encoding{
				Source: "from", Target: "to", Y: "count", Title: "Movilidad entre sectores económicos",
			})
			if err != nil {
				return Output{}, err
			}
			top := flows[0]
			out.insight("El cambio de sector más frecuente es de {from} a {to}, con {n} casos.", narrate.Values{
				"from": top.from, "to": top.to, "n": narrate.Count(top.n),
			})
			return out, nil
		},
	}
}
