package aggregate_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/okian/gradpulse/internal/domain/aggregate"
	. "github.com/smartystreets/goconvey/convey"
)

type obs struct {
	id       string
	cohort   string
	employed bool
}

var keys = aggregate.Keys[obs]{
	Group:  func(o obs) string { return o.cohort },
	Entity: func(o obs) string { return o.id },
}

func employed(o obs) bool { return o.employed }

func TestRateByGroup(t *testing.T) {
	Convey("Given graduates observed in several months", t, func() {
		rows := []obs{
			{"a", "2023", true}, {"a", "2023", false}, // counted once, employed
			{"b", "2023", false},
			{"c", "2024", true}, {"c", "2024", true},
			{"d", "", true}, // no cohort
		}

		rates := aggregate.RateByGroup(rows, keys, employed)

		Convey("Then each entity counts once per group", func() {
			So(len(rates), ShouldEqual, 2)
			So(rates[0], ShouldResemble, aggregate.Rate{Group: "2023", Numerator: 1, Denominator: 2, Rate: 0.5})
			So(rates[1], ShouldResemble, aggregate.Rate{Group: "2024", Numerator: 1, Denominator: 1, Rate: 1})
		})
	})

	Convey("Given random tables", t, func() {
		rng := rand.New(rand.NewSource(7))
		for round := 0; round < 50; round++ {
			var rows []obs
			for i := 0; i < rng.Intn(60); i++ {
				rows = append(rows, obs{
					id:       fmt.Sprintf("g%d", rng.Intn(20)),
					cohort:   fmt.Sprintf("%d", 2020+rng.Intn(5)),
					employed: rng.Intn(3) == 0,
				})
			}
			for _, r := range aggregate.RateByGroup(rows, keys, employed) {
				So(r.Denominator, ShouldBeGreaterThan, 0)
				So(r.Rate, ShouldBeBetweenOrEqual, 0.0, 1.0)
			}
		}
	})

	Convey("Given an empty table", t, func() {
		So(aggregate.RateByGroup(nil, keys, employed), ShouldBeEmpty)
		_, ok := aggregate.Overall[obs](nil, keys.Entity, employed)
		So(ok, ShouldBeFalse)
	})
}

func TestRateByGroupSplit(t *testing.T) {
	Convey("Given a numerator restricted by an extra filter", t, func() {
		den := []obs{{"a", "2023", true}, {"b", "2023", true}, {"c", "2023", false}, {"d", "2024", false}}
		num := []obs{{"a", "2023", true}, {"x", "2023", true}, {"z", "2025", true}}

		rates := aggregate.RateByGroupSplit(num, den, keys, employed)

		Convey("Then the denominator keeps every entity and strangers are ignored", func() {
			So(len(rates), ShouldEqual, 2)
			So(rates[0].Numerator, ShouldEqual, 1)
			So(rates[0].Denominator, ShouldEqual, 3)
			So(rates[1].Numerator, ShouldEqual, 0)
			So(rates[1].Rate, ShouldEqual, 0)
		})
	})
}

func TestTopN(t *testing.T) {
	values := []string{"Comercio", "Comercio", "Comercio", "Salud", "Salud", "Educación", "Construcción", "Minas"}

	Convey("Given N covering every category", t, func() {
		shares := aggregate.TopN(values, 10)
		sum := 0.0
		for _, s := range shares {
			sum += s.Percent
		}

		Convey("Then percentages sum to 100 within rounding", func() {
			So(len(shares), ShouldEqual, 5)
			So(sum, ShouldAlmostEqual, 100, 0.05)
			So(shares[0], ShouldResemble, aggregate.Share{Label: "Comercio", Count: 3, Percent: 37.5})
			So(shares[2].Label, ShouldEqual, "Construcción") // ties sorted by label
		})
	})

	Convey("Given N smaller than the category count", t, func() {
		shares := aggregate.TopN(values, 2)
		sum := 0.0
		for _, s := range shares {
			sum += s.Percent
		}

		Convey("Then the shares are of the grand total and sum below 100", func() {
			So(len(shares), ShouldEqual, 2)
			So(shares[1].Percent, ShouldEqual, 25)
			So(sum, ShouldBeLessThan, 100)
		})
	})

	Convey("Given shares and a display order", t, func() {
		shares := aggregate.TopN([]string{"b", "c", "c"}, 0)
		out := aggregate.Ordered(shares, []string{"a", "b", "c"})
		So(len(out), ShouldEqual, 3)
		So(out[0], ShouldResemble, aggregate.Share{Label: "a"})
		So(out[2].Count, ShouldEqual, 2)
	})
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthsBetween(t *testing.T) {
	Convey("Given start and end dates", t, func() {
		m, ok := aggregate.MonthsBetween(date(2023, 1, 15), date(2023, 4, 15))
		So(ok, ShouldBeTrue)
		So(m, ShouldEqual, 3)

		m, _ = aggregate.MonthsBetween(date(2023, 1, 15), date(2023, 4, 14))
		So(m, ShouldEqual, 2)

		m, _ = aggregate.MonthsBetween(date(2022, 11, 30), date(2024, 2, 1))
		So(m, ShouldEqual, 14)

		m, ok = aggregate.MonthsBetween(date(2023, 3, 1), date(2023, 3, 20))
		So(ok, ShouldBeTrue)
		So(m, ShouldEqual, 0)

		Convey("Then an end before the start is excluded", func() {
			_, ok := aggregate.MonthsBetween(date(2023, 4, 15), date(2023, 1, 15))
			So(ok, ShouldBeFalse)
			_, ok = aggregate.MonthsBetween(date(2023, 4, 15), date(2023, 4, 10))
			So(ok, ShouldBeFalse)
			_, ok = aggregate.MonthsBetween(time.Time{}, date(2023, 4, 10))
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given month counts", t, func() {
		buckets := aggregate.MonthHistogram([]int{0, 0, 3, 1, -2, 3, 3})

		Convey("Then they are bucketed with labels and negatives dropped", func() {
			So(len(buckets), ShouldEqual, 3)
			So(buckets[0].Label, ShouldEqual, "Menos de un mes")
			So(buckets[1].Label, ShouldEqual, "1 mes")
			So(buckets[2].Label, ShouldEqual, "3 meses")
			So(buckets[2].Percent, ShouldEqual, 50)

			mode, ok := aggregate.Mode(buckets)
			So(ok, ShouldBeTrue)
			So(mode.Months, ShouldEqual, 3)
		})
	})
}

func TestTransitionPivot(t *testing.T) {
	Convey("Given four entities over two periods", t, func() {
		A, B := aggregate.StateA, aggregate.StateB
		states := map[string]map[string]aggregate.State{
			"e1": {"Q1": A, "Q2": B},
			"e2": {"Q1": B, "Q2": B},
			"e3": {"Q1": A, "Q2": A},
			"e4": {"Q2": A},
		}

		out := aggregate.TransitionPivot(states, []string{"Q1", "Q2"})
		byKind := map[aggregate.TransitionKind]aggregate.TransitionCount{}
		for _, tc := range out {
			byKind[tc.Kind] = tc
		}

		Convey("Then each entity lands in its transition", func() {
			So(len(out), ShouldEqual, 5)
			So(byKind[aggregate.AToB].Count, ShouldEqual, 1)
			So(byKind[aggregate.StaysB].Count, ShouldEqual, 1)
			So(byKind[aggregate.StaysA].Count, ShouldEqual, 1)
			So(byKind[aggregate.Unknown].Count, ShouldEqual, 1)
			So(byKind[aggregate.BToA].Count, ShouldEqual, 0)
			So(out[0].Pair(), ShouldEqual, "Q1 → Q2")
		})

		Convey("Then percentages cover known transitions only", func() {
			sum := 0.0
			for _, tc := range out {
				sum += tc.Percent
			}
			So(sum, ShouldAlmostEqual, 100, 0.05)
			So(byKind[aggregate.Unknown].Percent, ShouldEqual, 0)
			So(byKind[aggregate.StaysA].Percent, ShouldEqual, 33.33)
		})
	})

	Convey("Given three periods", t, func() {
		states := map[string]map[string]aggregate.State{
			"e1": {"Q1": aggregate.StateB, "Q2": aggregate.StateA, "Q3": aggregate.StateA},
		}
		out := aggregate.TransitionPivot(states, []string{"Q1", "Q2", "Q3"})

		Convey("Then every consecutive pair is reported", func() {
			So(len(out), ShouldEqual, 10)
			So(out[3].Kind, ShouldEqual, aggregate.BToA)
			So(out[3].Count, ShouldEqual, 1)
			So(out[5].From, ShouldEqual, "Q2")
			So(out[5].Kind, ShouldEqual, aggregate.StaysA)
			So(out[5].Percent, ShouldEqual, 100)
		})
	})
}

func TestStats(t *testing.T) {
	Convey("Given salaries", t, func() {
		s, ok := aggregate.Describe([]float64{400, 500, 600, 700, 1800})
		So(ok, ShouldBeTrue)
		So(s.Count, ShouldEqual, 5)
		So(s.Mean, ShouldEqual, 800)
		So(s.Median, ShouldEqual, 600)
		So(s.Q1, ShouldEqual, 500)
		So(s.Q3, ShouldEqual, 700)
		So(s.Min, ShouldEqual, 400)
		So(s.Max, ShouldEqual, 1800)
		So(s.Std, ShouldAlmostEqual, 570.088, 0.001)

		q, _ := aggregate.Quantile([]float64{1, 2, 3, 4}, 0.5)
		So(q, ShouldEqual, 2.5)

		_, ok = aggregate.Describe(nil)
		So(ok, ShouldBeFalse)
	})

	Convey("Given a histogram request", t, func() {
		bins := aggregate.Histogram([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 10}, 5)
		So(len(bins), ShouldEqual, 5)
		So(bins[0].Count, ShouldEqual, 2)
		So(bins[4].Count, ShouldEqual, 2) // 8 and the closed upper edge 10
		So(bins[0].Percent, ShouldEqual, 20)

		single := aggregate.Histogram([]float64{3, 3, 3}, 20)
		So(len(single), ShouldEqual, 1)
		So(single[0].Count, ShouldEqual, 3)
	})

	Convey("Given trend series", t, func() {
		s, ok := aggregate.Slope([]float64{0.8, 0.7, 0.6})
		So(ok, ShouldBeTrue)
		So(s, ShouldAlmostEqual, -0.1, 1e-9)

		_, ok = aggregate.Slope([]float64{0.5})
		So(ok, ShouldBeFalse)

		So(aggregate.RoundTo(33.33333, 2), ShouldEqual, 33.33)
	})
}
