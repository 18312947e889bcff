package pages

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/gradpulse/internal/domain/aggregate"
	"github.com/okian/gradpulse/internal/domain/chart"
	"github.com/okian/gradpulse/internal/domain/classify"
	"github.com/okian/gradpulse/internal/domain/dedupe"
	"github.com/okian/gradpulse/internal/domain/filter"
	"github.com/okian/gradpulse/internal/domain/model"
	"github.com/okian/gradpulse/internal/domain/narrate"
	"github.com/okian/gradpulse/internal/domain/schema"
)

// unknownTitle replaces an empty job title.
const unknownTitle = "SIN INFORMACIÓN"

func sectors() Page {
	return Page{
		ID:         "sectors",
		Title:      "Distribución por Sector Económico",
		Dimensions: allDims,
		Requires:   []schema.Field{schema.GraduateID, schema.ObsYear, schema.ObsMonth, schema.Sector},
		render: func(ds Dataset, req Request, s Settings) (Output, error) {
			rows := where(ds.Employment, func(r model.GraduateRecord) bool { return r.Employed() && r.Sector != "" })
			res := filter.Apply(dedupe.LatestPerGraduate(rows), graduateValue, allDims, req.Selection)
			out := begin(res)
			if out.Empty {
				return out, nil
			}

			values := make([]string, 0, len(res.Rows))
			for _, r := range res.Rows {
				values = append(values, r.Sector)
			}
			// Shares stay relative to every employed graduate, not to the ranked sectors.
			shares := aggregate.TopN(values, s.TopN)
			err := out.setChart(shareTable(shares, "sector"), chart.HorizontalBar, chart.Encoding{
				X: "sector", Y: "count", Text: "percent", TextPercent: true,
				Title: "Graduados por sector económico", XLabel: "Sector", YLabel: "Número de graduados",
			})
			if err != nil {
				return Output{}, err
			}
			out.Table = shareRows(shares, "Sector", "Graduados")

			top := shares[0]
			out.insight("El sector {s} concentra {pct} de {who} con empleo formal.", narrate.Values{
				"s": top.Label, "pct": narrate.Percent(top.Percent, 1), "who": subject(res.Selection),
			})
			return out, nil
		},
	}
}

var quarterChoices = []string{filter.AllMasculine, "Q1", "Q2", "Q3", "Q4"}

var sizeRemarks = map[string]string{
	"Grande":       "Aunque las grandes empresas lideran, también hay presencia relevante en otros tamaños.",
	"Microempresa": "A pesar de su predominio, muchos graduados también se desempeñan en empresas de mayor tamaño.",
	"Pequeña":      "Las pequeñas empresas destacan como principal empleador, aunque no son la única opción.",
	"Mediana":      "Las empresas medianas son la opción dominante, pero existe reparto significativo en extremos.",
}

func companySize() Page {
	return Page{
		ID:         "company-size",
		Title:      "Tamaño de Empresa",
		Dimensions: allDims,
		Requires:   []schema.Field{schema.GraduateID, schema.ObsYear, schema.ObsMonth, schema.Headcount},
		Params:     []Param{{Name: "quarter", Label: "Trimestre", Default: filter.AllMasculine, Choices: quarterChoices}},
		render: func(ds Dataset, req Request, _ Settings) (Output, error) {
			quarter, err := choice(req, "quarter", filter.AllMasculine, quarterChoices)
			if err != nil {
				return Output{}, err
			}
			rows := where(ds.Employment, func(r model.GraduateRecord) bool { return r.Employed() && r.Headcount != nil })
			res := filter.Apply(rows, graduateValue, allDims, req.Selection)
			out := begin(res)
			out.setParam("quarter", quarter, quarterChoices)

			picked := res.Rows
			if !filter.IsAll(quarter) {
				picked = where(picked, func(r model.GraduateRecord) bool {
					p, ok := r.Period()
					return ok && model.QuarterLabel(p.Quarter) == quarter
				})
			}
			picked = dedupe.LatestPerGraduate(picked)
			if len(picked) == 0 {
				out.Empty = true
				return out, nil
			}

			counts := make(map[string]int)
			for _, r := range picked {
				counts[classify.CompanySize(*r.Headcount)]++
			}
			shares := where(aggregate.Ordered(aggregate.TopNCounts(counts, 0), classify.SizeOrder),
				func(s aggregate.Share) bool { return s.Count > 0 })

			err = out.setChart(shareTable(shares, "size"), chart.Bar, chart.Encoding{
				X: "size", Y: "count", Text: "percent", TextPercent: true,
				Title: "Distribución de graduados por tamaño de empresa", XLabel: "Tamaño de empresa", YLabel: "Número de graduados",
			})
			if err != nil {
				return Output{}, err
			}
			out.Table = shareRows(shares, "Tamaño de empresa", "Graduados")

			top := slices.MaxFunc(shares, func(a, b aggregate.Share) int {
				// Earlier buckets win ties.
				if c := cmp.Compare(a.Count, b.Count); c != 0 {
					return c
				}
				return cmp.Compare(slices.Index(classify.SizeOrder, b.Label), slices.Index(classify.SizeOrder, a.Label))
			})
			kind, _, _ := strings.Cut(top.Label, " (")
			text := narrate.Must("{n} de cada {t} graduados con empleo formal trabaja en {kind}.", narrate.Values{
				"n": narrate.Count(top.Count), "t": narrate.Count(len(picked)), "kind": strings.ToLower(kind),
			})
			if remark := sizeRemarks[kind]; remark != "" {
				text += " " + remark
			}
			out.Insights = append(out.Insights, text)
			return out, nil
		},
	}
}

func employers() Page {
	return Page{
		ID:         "employers",
		Title:      "Empresas que más Contratan Graduados",
		Dimensions: allDims,
		Requires:   []schema.Field{schema.GraduateID, schema.EmployerName},
		Params: []Param{
			{Name: "sector", Label: "Sector económico", Default: filter.AllMasculine},
			{Name: "min_headcount", Label: "Tamaño mínimo de empresa"},
			{Name: "max_headcount", Label: "Tamaño máximo de empresa"},
		},
		render: func(ds Dataset, req Request, s Settings) (Output, error) {
			res := filter.Apply(ds.Employment, graduateValue, allDims, req.Selection)
			out := begin(res)

			sectorOptions := distinct(res.Rows, func(r model.GraduateRecord) string { return r.Sector })
			sector := dataChoice(req, "sector", filter.AllMasculine, sectorOptions)
			out.setParam("sector", sector, append([]string{filter.AllMasculine}, sectorOptions...))
			rows := res.Rows
			if !filter.IsAll(sector) {
				rows = where(rows, func(r model.GraduateRecord) bool { return r.Sector == sector })
			}

			lo, hi := headcountRange(rows)
			minHC, err := intParam(req, "min_headcount", lo, 0, math.MaxInt32)
			if err != nil {
				return Output{}, err
			}
			maxHC, err := intParam(req, "max_headcount", hi, 0, math.MaxInt32)
			if err != nil {
				return Output{}, err
			}
			out.setParam("min_headcount", strconv.Itoa(minHC), nil)
			out.setParam("max_headcount", strconv.Itoa(maxHC), nil)

			hired := make(map[string]map[string]struct{})
			for _, r := range rows {
				hc := r.Headcount
				n := 0.0
				if hc != nil {
					n = *hc
				}
				if r.EmployerName == "" || n < float64(minHC) || n > float64(maxHC) {
					continue
				}
				if hired[r.EmployerName] == nil {
					hired[r.EmployerName] = make(map[string]struct{})
				}
				hired[r.EmployerName][r.GraduateID] = struct{}{}
			}
			counts := make(map[string]int, len(hired))
			for name, ids := range hired {
				counts[name] = len(ids)
			}
			shares := aggregate.TopNCounts(counts, s.TopN)
			if len(shares) == 0 {
				out.Empty = true
				return out, nil
			}

			err = out.setChart(shareTable(shares, "employer"), chart.Bar, chart.Encoding{
				X: "employer", Y: "count", Text: "count",
				Title: "Top " + strconv.Itoa(s.TopN) + " empresas que contratan graduados", XLabel: "Empresa",
				YLabel: "Número de graduados contratados", TickAngle: -45,
			})
			if err != nil {
				return Output{}, err
			}
			out.Table = shareRows(shares, "Empresa", "Graduados")
			out.insight("{e} es la empresa que más graduados contrata ({n}).", narrate.Values{
				"e": shares[0].Label, "n": narrate.Count(shares[0].Count),
			})
			return out, nil
		},
	}
}

// headcountRange returns the whole-number headcount bounds of rows, a missing
// headcount counting as zero.
func headcountRange(rows []model.GraduateRecord) (lo, hi int) {
	if len(rows) == 0 {
		return 0, 0
	}
	lo, hi = math.MaxInt32, 0
	for _, r := range rows {
		n := 0
		if r.Headcount != nil {
			n = int(*r.Headcount)
		}
		lo, hi = min(lo, n), max(hi, n)
	}
	return lo, hi
}

type titleStat struct {
	title    string
	count    int
	salaries []float64
}

func jobTitles() Page {
	return Page{
		ID:         "job-titles",
		Title:      "Cargos Ocupados por Graduados",
		Dimensions: allDims,
		Requires:   []schema.Field{schema.GraduateID, schema.JobTitle},
		render: func(ds Dataset, req Request, s Settings) (Output, error) {
			res := filter.Apply(ds.Employment, graduateValue, allDims, req.Selection)
			out := begin(res)

			byTitle := make(map[string]*titleStat)
			for _, r := range res.Rows {
				if !r.Employed() {
					continue
				}
				title := strings.TrimSpace(r.JobTitle)
				if title == "" {
					title = unknownTitle
				}
				st := byTitle[title]
				if st == nil {
					st = &titleStat{title: title}
					byTitle[title] = st
				}
				st.count++
				if r.Salary != nil {
					st.salaries = append(st.salaries, *r.Salary)
				}
			}
			if len(byTitle) == 0 {
				out.Empty = true
				return out, nil
			}
			stats := make([]*titleStat, 0, len(byTitle))
			for _, st := range byTitle {
				stats = append(stats, st)
			}
			slices.SortFunc(stats, func(a, b *titleStat) int {
				return cmp.Or(cmp.Compare(b.count, a.count), cmp.Compare(a.title, b.title))
			})
			if len(stats) > s.TopTitles {
				stats = stats[:s.TopTitles]
			}

			var t chart.Table
			out.Table = &Table{Columns: []string{"Cargo", "Graduados", "Salario promedio"}}
			for _, st := range stats {
				mean, ok := aggregate.Mean(st.salaries)
				money := "-"
				if ok {
					money = narrate.Money(mean)
				}
				t.Add(map[string]string{"title": st.title}, map[string]float64{"count": float64(st.count), "salary": aggregate.RoundTo(mean, 2)})
				out.Table.Append(st.title, narrate.Count(st.count), money)
			}
			err := out.setChart(t, chart.Bar, chart.Encoding{
				X: "title", Y: "count", Text: "count",
				Title: "Top " + strconv.Itoa(s.TopTitles) + " cargos ocupados por graduados", XLabel: "Cargo",
				YLabel: "Número de graduados", TickAngle: -45,
			})
			if err != nil {
				return Output{}, err
			}
			out.insight("El cargo más frecuente es {t}, con {n} registros.", narrate.Values{
				"t": stats[0].title, "n": narrate.Count(stats[0].count),
			})
			return out, nil
		},
	}
}

type saturationCell struct {
	program, cohort string
	graduates       map[string]struct{}
	formal          map[string]struct{}
	rows, paid      int
	salaries        []float64
}

func saturation() Page {
	return Page{
		ID:         "saturation",
		Title:      "Saturación del Mercado Laboral",
		Dimensions: allDims,
		Requires:   []schema.Field{schema.GraduateID, schema.Program, schema.Cohort, schema.Salary, schema.Formality},
		render: func(ds Dataset, req Request, _ Settings) (Output, error) {
			res := filter.Apply(ds.Employment, graduateValue, allDims, req.Selection)
			out := begin(res)
			if out.Empty {
				return out, nil
			}

			cells := make(map[string]*saturationCell)
			var order []string
			for _, r := range res.Rows {
				k := r.Program + "|" + r.Cohort
				c := cells[k]
				if c == nil {
					c = &saturationCell{program: r.Program, cohort: r.Cohort,
						graduates: make(map[string]struct{}), formal: make(map[string]struct{})}
					cells[k] = c
					order = append(order, k)
				}
				c.graduates[r.GraduateID] = struct{}{}
				if r.Formality.IsFormal() {
					c.formal[r.GraduateID] = struct{}{}
				}
				c.rows++
				if r.Salary != nil {
					c.paid++
					c.salaries = append(c.salaries, *r.Salary)
				}
			}
			slices.Sort(order)

			out.Table = &Table{Columns: []string{
				"Carrera", "Cohorte", "Graduados", "Con salario (%)", "Salario promedio", "Formales", "No formales", "Alerta",
			}}
			alerts := make(map[string]int)
			for _, k := range order {
				c := cells[k]
				n := len(c.graduates)
				nonFormal := n - len(c.formal)
				alert := classify.SaturationAlert(n, float64(nonFormal)/float64(n))
				alerts[alert]++
				money := "-"
				if mean, ok := aggregate.Mean(c.salaries); ok {
					money = narrate.Money(mean)
				}
				out.Table.Append(c.program, c.cohort, narrate.Count(n),
					narrate.Percent(100*float64(c.paid)/float64(c.rows), 1), money,
					narrate.Count(len(c.formal)), narrate.Count(nonFormal), alert)
			}
			out.insight("{high} combinaciones de carrera y cohorte presentan saturación alta y {medium} saturación media.", narrate.Values{
				"high": narrate.Count(alerts[classify.AlertHigh]), "medium": narrate.Count(alerts[classify.AlertMedium]),
			})
			return out, nil
		},
	}
}
