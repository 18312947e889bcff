package pages

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/okian/gradpulse/internal/domain/aggregate"
	"github.com/okian/gradpulse/internal/domain/chart"
	"github.com/okian/gradpulse/internal/domain/filter"
	"github.com/okian/gradpulse/internal/domain/model"
	"github.com/okian/gradpulse/internal/domain/narrate"
	"github.com/okian/gradpulse/internal/domain/schema"
)

var titleFields = []schema.Field{schema.PersonID, schema.Institution, schema.TitleLevel}

const daysPerYear = 365.25

func titleValue(r model.TitleRecord, d filter.Dimension) string {
	switch d {
	case filter.Institution:
		return r.Institution
	case filter.Faculty:
		return r.Faculty
	case filter.Program:
		return r.Program
	default:
		return ""
	}
}

// undergradValue hides faculty and program values that are placeholders or
// belong to postgraduate units, so they are never offered as options.
func undergradValue(r model.TitleRecord, d filter.Dimension) string {
	v := titleValue(r, d)
	if d != filter.Faculty && d != filter.Program {
		return v
	}
	low := strings.ToLower(v)
	if strings.Contains(low, "posgrado") || low == "sin registro" {
		return ""
	}
	return v
}

type personSet map[string]struct{}

func (s personSet) add(id string) { s[id] = struct{}{} }

func (s personSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s personSet) intersect(o personSet) personSet {
	out := make(personSet)
	for id := range s {
		if o.has(id) {
			out.add(id)
		}
	}
	return out
}

func isHome(s Settings) func(model.TitleRecord) bool {
	return func(r model.TitleRecord) bool { return r.Institution == s.HomeInstitution }
}

// registrations collects each person's registration dates of the given
// credential, sorted ascending.
func registrations(rows []model.TitleRecord, c model.Credential, keep func(model.TitleRecord) bool) map[string][]time.Time {
	out := make(map[string][]time.Time)
	for _, r := range rows {
		if r.Credential != c || r.RegisteredAt.IsZero() || (keep != nil && !keep(r)) {
			continue
		}
		out[r.PersonID] = append(out[r.PersonID], r.RegisteredAt)
	}
	for id := range out {
		slices.SortFunc(out[id], func(a, b time.Time) int { return a.Compare(b) })
	}
	return out
}

func yearsBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24 / daysPerYear
}

func postgradContinuity() Page {
	dims := []filter.Dimension{filter.Faculty, filter.Program}
	return Page{
		ID:         "postgrad-continuity",
		Title:      "Continuidad Académica y Posgrados",
		Sheet:      SheetTitles,
		Dimensions: dims,
		Requires:   append(slices.Clone(titleFields), schema.TitleFaculty, schema.TitleProgram, schema.RegisteredAt),
		render: func(ds Dataset, req Request, s Settings) (Output, error) {
			res := filter.Apply(ds.Titles, undergradValue, dims, req.Selection)
			out := begin(res)
			home := isHome(s)

			undergrads := make(personSet)
			for _, r := range res.Rows {
				if r.Credential == model.Undergraduate && home(r) {
					undergrads.add(r.PersonID)
				}
			}
			if len(undergrads) == 0 {
				out.Empty = true
				return out, nil
			}
			postgrads, homePostgrads := make(personSet), make(personSet)
			for _, r := range ds.Titles {
				if r.Credential != model.Postgraduate {
					continue
				}
				postgrads.add(r.PersonID)
				if home(r) {
					homePostgrads.add(r.PersonID)
				}
			}
			continuing := undergrads.intersect(postgrads)
			repeat := undergrads.intersect(homePostgrads)

			firstUG := registrations(res.Rows, model.Undergraduate, home)
			pgDates := registrations(ds.Titles, model.Postgraduate, nil)
			var toFirst, toSecond []float64
			for id := range continuing {
				pg := pgDates[id]
				if len(pg) == 0 {
					continue
				}
				if ug := firstUG[id]; len(ug) > 0 {
					toFirst = append(toFirst, yearsBetween(ug[0], pg[0]))
				}
				if len(pg) > 1 {
					toSecond = append(toSecond, yearsBetween(pg[0], pg[1]))
				}
			}

			dash := "—"
			continuity := float64(len(continuing)) / float64(len(undergrads))
			repeatRate := dash
			if len(continuing) > 0 {
				repeatRate = narrate.Ratio(float64(len(repeat))/float64(len(continuing)), 1)
			}
			first, second := dash, dash
			if m, ok := aggregate.Mean(toFirst); ok {
				first = narrate.Years(m)
			}
			if m, ok := aggregate.Mean(toSecond); ok {
				second = narrate.Years(m)
			}

			out.Table = &Table{Columns: []string{"Indicador", "Valor"}}
			out.Table.Append("Egresados de pregrado", narrate.Count(len(undergrads)))
			out.Table.Append("Tasa de continuidad", narrate.Ratio(continuity, 1))
			out.Table.Append("Tasa de recompra", repeatRate)
			out.Table.Append("Tiempo al primer posgrado", first)
			out.Table.Append("Tiempo al segundo posgrado", second)

			out.insight("{n} de {total} egresados de pregrado continuaron a un posgrado ({pct}).", narrate.Values{
				"n": narrate.Count(len(continuing)), "total": narrate.Count(len(undergrads)), "pct": narrate.Ratio(continuity, 1),
			})
			if len(continuing) > 0 {
				out.insight("{pct} de quienes continúan eligen un posgrado en la misma institución.", narrate.Values{"pct": repeatRate})
			}
			if first != dash {
				out.insight("El primer posgrado llega en promedio {y} después del pregrado.", narrate.Values{"y": first})
			}
			return out, nil
		},
	}
}

func postgradPrograms() Page {
	dims := []filter.Dimension{filter.Institution, filter.Faculty}
	return Page{
		ID:         "postgrad-programs",
		Title:      "Posgrados Estudiados por Egresados de Pregrado",
		Sheet:      SheetTitles,
		Dimensions: dims,
		Requires:   append(slices.Clone(titleFields), schema.TitleFaculty, schema.TitleProgram),
		render: func(ds Dataset, req Request, s Settings) (Output, error) {
			undergrad := where(ds.Titles, func(r model.TitleRecord) bool { return r.Credential == model.Undergraduate })
			res := filter.Apply(undergrad, func(r model.TitleRecord, d filter.Dimension) string {
				if d == filter.Faculty && strings.EqualFold(r.Faculty, "sin registro") {
					return ""
				}
				return titleValue(r, d)
			}, dims, req.Selection)
			out := begin(res)

			people := make(personSet)
			for _, r := range res.Rows {
				people.add(r.PersonID)
			}
			var programs []string
			for _, r := range ds.Titles {
				if r.Credential == model.Postgraduate && people.has(r.PersonID) && r.Program != "" {
					programs = append(programs, r.Program)
				}
			}
			if len(programs) == 0 {
				out.Empty = true
				out.Notice = "No se encontraron posgrados registrados para los egresados seleccionados."
				return out, nil
			}
			shares := aggregate.TopN(programs, s.TopN)
			title := "Top " + strconv.Itoa(s.TopN) + " posgrados estudiados por egresados"
			if res.Selection.IsSet(filter.Faculty) {
				title += " de " + res.Selection.Get(filter.Faculty)
			}
			if res.Selection.IsSet(filter.Institution) {
				title += " en " + res.Selection.Get(filter.Institution)
			}
			err := out.setChart(shareTable(shares, "program"), chart.HorizontalBar, chart.Encoding{
				X: "program", Y: "count", Text: "percent", TextPercent: true,
				Title: title, XLabel: "Programa de posgrado", YLabel: "Cantidad de egresados",
			})
			if err != nil {
				return Output{}, err
			}
			out.Table = shareRows(shares, "Programa de posgrado", "Egresados")
			out.insight("El posgrado más estudiado es {p}, con {n} titulados.", narrate.Values{
				"p": shares[0].Label, "n": narrate.Count(shares[0].Count),
			})
			return out, nil
		},
	}
}

func postgradOrigin() Page {
	dims := []filter.Dimension{filter.Faculty}
	return Page{
		ID:         "postgrad-origin",
		Title:      "Universidades de Origen de Estudiantes de Posgrado",
		Sheet:      SheetTitles,
		Dimensions: dims,
		Requires:   titleFields,
		render: func(ds Dataset, req Request, s Settings) (Output, error) {
			home := isHome(s)
			homePG := where(ds.Titles, func(r model.TitleRecord) bool { return r.Credential == model.Postgraduate && home(r) })
			res := filter.Apply(homePG, titleValue, dims, req.Selection)
			out := begin(res)

			people := make(personSet)
			for _, r := range res.Rows {
				people.add(r.PersonID)
			}
			var origins []string
			for _, r := range ds.Titles {
				if r.Credential == model.Undergraduate && people.has(r.PersonID) && !home(r) && r.Institution != "" {
					origins = append(origins, r.Institution)
				}
			}
			if len(origins) == 0 {
				out.Empty = true
				return out, nil
			}
			shares := aggregate.TopN(origins, s.TopN)
			err := out.setChart(shareTable(shares, "institution"), chart.HorizontalBar, chart.Encoding{
				X: "institution", Y: "count", Text: "count",
				Title: "Top " + strconv.Itoa(s.TopN) + " universidades de origen de estudiantes de posgrado", XLabel: "Universidad de pregrado",
				YLabel: "Cantidad de estudiantes",
			})
			if err != nil {
				return Output{}, err
			}
			out.Table = shareRows(shares, "Universidad de pregrado", "Estudiantes")
			out.insight("{u} es la principal universidad de origen, con {n} estudiantes de posgrado.", narrate.Values{
				"u": shares[0].Label, "n": narrate.Count(shares[0].Count),
			})
			return out, nil
		},
	}
}
