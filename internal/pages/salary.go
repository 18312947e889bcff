package pages

import (
	"slices"

	"github.com/okian/gradpulse/internal/domain/aggregate"
	"github.com/okian/gradpulse/internal/domain/chart"
	"github.com/okian/gradpulse/internal/domain/dedupe"
	"github.com/okian/gradpulse/internal/domain/filter"
	"github.com/okian/gradpulse/internal/domain/model"
	"github.com/okian/gradpulse/internal/domain/narrate"
	"github.com/okian/gradpulse/internal/domain/schema"
)

func salaryDistribution() Page {
	return Page{
		ID:         "salary",
		Title:      "Distribución Salarial por Trimestre",
		Dimensions: allDims,
		Requires:   []schema.Field{schema.GraduateID, schema.ObsYear, schema.ObsMonth, schema.Salary},
		render: func(ds Dataset, req Request, _ Settings) (Output, error) {
			paid := where(ds.Employment, func(r model.GraduateRecord) bool {
				_, ok := r.Period()
				return ok && r.Employed() && r.Salary != nil
			})
			// Filter before collapsing to one row per graduate and quarter, so
			// a lower paid job still counts under its own formality.
			res := filter.Apply(paid, graduateValue, allDims, req.Selection)
			out := begin(res)
			if out.Empty {
				return out, nil
			}

			byPeriod := make(map[string][]float64)
			for _, r := range dedupe.HighestSalaryPerPeriod(res.Rows) {
				k := periodKey(r)
				byPeriod[k] = append(byPeriod[k], *r.Salary)
			}
			periods := make([]string, 0, len(byPeriod))
			for p := range byPeriod {
				periods = append(periods, p)
			}
			slices.Sort(periods)

			var t chart.Table
			out.Table = &Table{Columns: []string{"Periodo", "N", "Media", "Desv. estándar", "Mínimo", "Q1", "Mediana", "Q3", "Máximo"}}
			means := make([]float64, 0, len(periods))
			for _, p := range periods {
				samples := byPeriod[p]
				t.AddSamples(map[string]string{"period": p}, samples)
				sum, _ := aggregate.Describe(samples)
				means = append(means, sum.Mean)
				out.Table.Append(p, narrate.Count(sum.Count), narrate.Money(sum.Mean), narrate.Money(sum.Std),
					narrate.Money(sum.Min), narrate.Money(sum.Q1), narrate.Money(sum.Median), narrate.Money(sum.Q3), narrate.Money(sum.Max))
			}
			err := out.setChart(t, chart.Box, chart.Encoding{
				X: "period", Title: "Distribución salarial por trimestre", XLabel: "Periodo", YLabel: "Salario (USD)",
			})
			if err != nil {
				return Output{}, err
			}

			// The yearly figure is the mean of the quarterly means.
			mean, _ := aggregate.Mean(means)
			out.insight("El salario promedio anual de {who} es de {money} mensuales.", narrate.Values{
				"who": subject(res.Selection), "money": narrate.Money(mean),
			})
			return out, nil
		},
	}
}
