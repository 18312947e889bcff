package filter_test

import (
	"testing"

	"github.com/okian/gradpulse/internal/domain/filter"
	. "github.com/smartystreets/goconvey/convey"
)

type row struct {
	id      string
	level   string
	faculty string
	program string
	cohort  string
	formal  string
}

func get(r row, d filter.Dimension) string {
	switch d {
	case filter.Level:
		return r.level
	case filter.Faculty:
		return r.faculty
	case filter.Program:
		return r.program
	case filter.Cohort:
		return r.cohort
	case filter.FormalEmployment:
		return r.formal
	default:
		return ""
	}
}

func fixture() []row {
	return []row{
		{"1", "Pregrado", "Salud", "Medicina", "2022", "Relación de Dependencia"},
		{"2", "Pregrado", "Salud", "Enfermería", "2023", "Desconocido"},
		{"3", "Pregrado", "Ingeniería", "Software", "2024", "Relación de Dependencia"},
		{"4", "Posgrado", "Ingeniería", "Ciberseguridad", "2024", "Afiliado Voluntario"},
		{"5", "Pregrado", "Derecho", "Derecho", "2021", ""},
		{"6", "Pregrado", "", "Sin facultad", "2023", "Desconocido"},
	}
}

var single = []filter.Dimension{filter.Level, filter.Faculty, filter.Program, filter.Cohort, filter.FormalEmployment}

func TestApplyIdempotence(t *testing.T) {
	Convey("Given every dimension on its sentinel", t, func() {
		rows := fixture()
		res := filter.Apply(rows, get, single, filter.Selection{})

		Convey("Then the table comes back row for row", func() {
			So(res.Rows, ShouldResemble, rows)
			So(&res.Rows[0], ShouldPointTo, &rows[0])
			So(res.Selection.Get(filter.Faculty), ShouldEqual, filter.AllFeminine)
			So(res.Selection.Get(filter.Level), ShouldEqual, filter.AllMasculine)
		})

		Convey("Then options are sorted distinct non-null values", func() {
			So(res.Options[filter.Faculty], ShouldResemble, []string{"Derecho", "Ingeniería", "Salud"})
			So(res.Options[filter.Cohort], ShouldResemble, []string{"2021", "2022", "2023", "2024"})
			So(res.Options[filter.FormalEmployment], ShouldResemble,
				[]string{"Afiliado Voluntario", "Desconocido", "Relación de Dependencia"})
		})

		Convey("Then the sentinel strings also mean all", func() {
			sel := filter.Selection{Values: map[filter.Dimension]string{
				filter.Level: filter.AllMasculine, filter.Faculty: filter.AllFeminine, filter.Program: "Todos",
			}}
			So(filter.Apply(rows, get, single, sel).Rows, ShouldResemble, rows)
		})
	})
}

func TestApplyCascade(t *testing.T) {
	Convey("Given a faculty selection", t, func() {
		prev := filter.Selection{}.With(filter.Faculty, "Salud")
		res := filter.Apply(fixture(), get, single, prev)

		Convey("Then programs outside the faculty disappear from the options", func() {
			So(res.Options[filter.Program], ShouldResemble, []string{"Enfermería", "Medicina"})
			So(res.Options[filter.Cohort], ShouldResemble, []string{"2022", "2023"})
			So(len(res.Rows), ShouldEqual, 2)
		})

		Convey("Then options of earlier dimensions are not narrowed", func() {
			So(res.Options[filter.Level], ShouldResemble, []string{"Posgrado", "Pregrado"})
		})
	})

	Convey("Given a remembered program that the new faculty does not offer", t, func() {
		prev := filter.Selection{Values: map[filter.Dimension]string{
			filter.Faculty: "Ingeniería",
			filter.Program: "Medicina",
		}}
		res := filter.Apply(fixture(), get, single, prev)

		Convey("Then the program resets to its sentinel", func() {
			So(res.Selection.Get(filter.Program), ShouldEqual, filter.AllFeminine)
			So(res.Selection.IsSet(filter.Program), ShouldBeFalse)
			So(len(res.Rows), ShouldEqual, 2)
		})
	})

	Convey("Given a combination that matches nothing downstream", t, func() {
		prev := filter.Selection{Values: map[filter.Dimension]string{
			filter.Level:            "Posgrado",
			filter.FormalEmployment: "Desconocido",
		}}
		res := filter.Apply(fixture(), get, single, prev)

		Convey("Then the invalid value resets instead of emptying the table", func() {
			So(res.Empty(), ShouldBeFalse)
			So(res.Selection.Get(filter.FormalEmployment), ShouldEqual, filter.AllMasculine)
		})
	})

	Convey("Given disabled dimensions", t, func() {
		prev := filter.Selection{}.With(filter.Faculty, "Salud")
		res := filter.Apply(fixture(), get, []filter.Dimension{filter.Program, filter.Level}, prev)

		Convey("Then they neither filter nor offer options and order is fixed", func() {
			So(len(res.Rows), ShouldEqual, 6)
			_, ok := res.Options[filter.Faculty]
			So(ok, ShouldBeFalse)
			So(res.Enabled, ShouldResemble, []filter.Dimension{filter.Level, filter.Program})
		})
	})
}

func TestApplyCohortMulti(t *testing.T) {
	enabled := []filter.Dimension{filter.Faculty, filter.CohortMulti}

	Convey("Given no stored cohorts", t, func() {
		res := filter.Apply(fixture(), get, enabled, filter.Selection{})

		Convey("Then the two most recent cohorts are chosen", func() {
			So(res.Selection.Cohorts, ShouldResemble, []string{"2023", "2024"})
			So(len(res.Rows), ShouldEqual, 4)
		})
	})

	Convey("Given more than three stored cohorts", t, func() {
		prev := filter.Selection{Cohorts: []string{"2024", "2021", "2022", "2023"}}
		res := filter.Apply(fixture(), get, enabled, prev)

		Convey("Then only the three most recent are kept", func() {
			So(res.Selection.Cohorts, ShouldResemble, []string{"2022", "2023", "2024"})
		})
	})

	Convey("Given stored cohorts no longer offered", t, func() {
		prev := filter.Selection{
			Values:  map[filter.Dimension]string{filter.Faculty: "Salud"},
			Cohorts: []string{"2024", "2019"},
		}
		res := filter.Apply(fixture(), get, enabled, prev)

		Convey("Then the selection resets to the most recent valid cohorts", func() {
			So(res.Options[filter.CohortMulti], ShouldResemble, []string{"2022", "2023"})
			So(res.Selection.Cohorts, ShouldResemble, []string{"2022", "2023"})
		})
	})

	Convey("Given a single valid stored cohort", t, func() {
		prev := filter.Selection{}.With(filter.CohortMulti, "2021")
		res := filter.Apply(fixture(), get, enabled, prev)

		Convey("Then it is kept", func() {
			So(res.Selection.Cohorts, ShouldResemble, []string{"2021"})
			So(len(res.Rows), ShouldEqual, 1)
		})
	})
}

func TestDimension(t *testing.T) {
	Convey("Given the dimension catalogue", t, func() {
		So(filter.Order()[0], ShouldEqual, filter.Level)
		So(filter.Order()[len(filter.Order())-1], ShouldEqual, filter.FormalEmployment)
		So(filter.Faculty.Label(), ShouldEqual, "Facultad")
		So(filter.CohortMulti.Multi(), ShouldBeTrue)
		So(filter.Dimension("color").Known(), ShouldBeFalse)
		So(filter.IsAll(""), ShouldBeTrue)
	})
}
