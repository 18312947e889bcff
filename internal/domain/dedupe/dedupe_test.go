package dedupe_test

import (
	"testing"

	"github.com/okian/gradpulse/internal/domain/dedupe"
	"github.com/okian/gradpulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func salary(v float64) *float64 { return &v }

func rec(id string, year, month int, s *float64, employer string) model.GraduateRecord {
	return model.GraduateRecord{GraduateID: id, ObsYear: year, ObsMonth: month, Salary: s, EmployerName: employer}
}

func TestHighestSalaryPerMonth(t *testing.T) {
	Convey("Given a graduate with several rows in one month", t, func() {
		rows := []model.GraduateRecord{
			rec("a", 2024, 2, salary(500), "first"),
			rec("a", 2024, 2, salary(900), "best"),
			rec("a", 2024, 2, salary(700), "middle"),
			rec("b", 2024, 2, nil, "no salary"),
			rec("a", 2024, 5, salary(100), "next month"),
		}

		out := dedupe.HighestSalaryPerMonth(rows)

		Convey("Then one row per graduate-month survives, the best paid", func() {
			So(len(out), ShouldEqual, 3)
			So(out[0].EmployerName, ShouldEqual, "best")
			So(out[1].EmployerName, ShouldEqual, "no salary")
			So(out[2].EmployerName, ShouldEqual, "next month")
		})
	})

	Convey("Given tied or absent salaries", t, func() {
		rows := []model.GraduateRecord{
			rec("a", 2024, 2, salary(600), "first"),
			rec("a", 2024, 2, salary(600), "second"),
			rec("b", 2024, 2, nil, "first"),
			rec("b", 2024, 2, nil, "second"),
			rec("c", 2024, 2, nil, "absent"),
			rec("c", 2024, 2, salary(1), "present"),
		}

		out := dedupe.HighestSalaryPerMonth(rows)

		Convey("Then the first row in input order is kept unless a salary appears", func() {
			So(len(out), ShouldEqual, 3)
			So(out[0].EmployerName, ShouldEqual, "first")
			So(out[1].EmployerName, ShouldEqual, "first")
			So(out[2].EmployerName, ShouldEqual, "present")
		})
	})
}

func TestHighestSalaryPerPeriod(t *testing.T) {
	Convey("Given rows inside and outside the observation calendar", t, func() {
		rows := []model.GraduateRecord{
			rec("a", 2024, 2, salary(400), "feb"),
			rec("a", 2024, 3, salary(2000), "march"),
			rec("a", 2024, 2, salary(450), "feb better"),
		}

		out := dedupe.HighestSalaryPerPeriod(rows)

		Convey("Then off-calendar months are dropped", func() {
			So(len(out), ShouldEqual, 1)
			So(out[0].EmployerName, ShouldEqual, "feb better")
		})
	})
}

func TestLatestPerGraduate(t *testing.T) {
	Convey("Given a graduate observed across months", t, func() {
		rows := []model.GraduateRecord{
			rec("a", 2023, 11, salary(900), "old"),
			rec("a", 2024, 5, salary(300), "latest low"),
			rec("a", 2024, 5, salary(800), "latest high"),
			rec("a", 2024, 2, salary(1000), "middle"),
		}

		out := dedupe.LatestPerGraduate(rows)

		Convey("Then the newest month wins and salary breaks the tie", func() {
			So(len(out), ShouldEqual, 1)
			So(out[0].EmployerName, ShouldEqual, "latest high")
		})
	})
}
