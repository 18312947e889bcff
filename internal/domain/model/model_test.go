package model_test

import (
	"testing"

	"github.com/okian/gradpulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPeriodOf(t *testing.T) {
	Convey("Given the observation calendar", t, func() {
		Convey("When the month is one of the quarter months", func() {
			cases := map[int]int{2: 1, 5: 2, 9: 3, 11: 4}
			for month, quarter := range cases {
				p, ok := model.PeriodOf(2024, month)
				So(ok, ShouldBeTrue)
				So(p.Quarter, ShouldEqual, quarter)
			}
			p, _ := model.PeriodOf(2024, 5)
			So(p.String(), ShouldEqual, "2024 Q2")
		})

		Convey("When the month is outside the calendar", func() {
			for _, month := range []int{1, 3, 4, 6, 7, 8, 10, 12} {
				_, ok := model.PeriodOf(2024, month)
				So(ok, ShouldBeFalse)
			}
		})

		Convey("When periods are compared and parsed", func() {
			a := model.Period{Year: 2023, Quarter: 4}
			b := model.Period{Year: 2024, Quarter: 1}
			So(a.Before(b), ShouldBeTrue)
			So(b.Before(a), ShouldBeFalse)

			p, err := model.ParsePeriod("2023 Q4")
			So(err, ShouldBeNil)
			So(p, ShouldResemble, a)

			_, err = model.ParsePeriod("2023-Q4")
			So(err, ShouldNotBeNil)
			_, err = model.ParsePeriod("2023 Q7")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestGraduateRecord(t *testing.T) {
	Convey("Given graduate records", t, func() {
		salary := 850.0

		Convey("Then employment needs a salary or an employer tax id", func() {
			So(model.GraduateRecord{Salary: &salary}.Employed(), ShouldBeTrue)
			So(model.GraduateRecord{EmployerTaxID: "1790012345001"}.Employed(), ShouldBeTrue)
			So(model.GraduateRecord{EmployerName: "ACME"}.Employed(), ShouldBeFalse)
		})

		Convey("Then formality labels are canonical", func() {
			So(model.FormalDependent.String(), ShouldEqual, "Relación de Dependencia")
			So(model.VoluntaryAffiliate.IsFormal(), ShouldBeTrue)
			So(model.FormalUnknown.IsFormal(), ShouldBeFalse)
			So(model.FormalUnknown.String(), ShouldEqual, "Desconocido")
		})

		Convey("Then the month key is zero padded", func() {
			So(model.GraduateRecord{ObsYear: 2024, ObsMonth: 2}.MonthKey(), ShouldEqual, "2024-02")
			So(model.GraduateRecord{}.SalaryOr(-1), ShouldEqual, -1)
		})
	})
}
