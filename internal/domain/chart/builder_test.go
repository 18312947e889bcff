package chart_test

import (
	"errors"
	"testing"

	"github.com/okian/gradpulse/internal/domain/chart"
	. "github.com/smartystreets/goconvey/convey"
)

func rateTable() chart.Table {
	var t chart.Table
	t.Add(map[string]string{"period": "2024 Q1", "cohort": "2023"}, map[string]float64{"rate": 61.5})
	t.Add(map[string]string{"period": "2024 Q2", "cohort": "2023"}, map[string]float64{"rate": 64})
	t.Add(map[string]string{"period": "2024 Q1", "cohort": "2024"}, map[string]float64{"rate": 40})
	return t
}

func TestToChartSeries(t *testing.T) {
	Convey("Given a rate table with a series dimension", t, func() {
		enc := chart.Encoding{X: "period", Y: "rate", Color: "cohort", Text: "rate", Percent: true, Title: "Tasa"}

		Convey("When mapped to a line chart", func() {
			spec, err := chart.ToChart(rateTable(), chart.Line, enc)
			So(err, ShouldBeNil)

			Convey("Then one series per colour value is produced with markers", func() {
				So(spec.Layout.Markers, ShouldBeTrue)
				So(spec.Layout.ShowLegend, ShouldBeTrue)
				So(spec.Layout.Categories, ShouldResemble, []string{"2024 Q1", "2024 Q2"})
				So(len(spec.Series), ShouldEqual, 2)
				So(spec.Series[0].Name, ShouldEqual, "2023")
				So(spec.Series[0].Points[1], ShouldResemble, chart.Point{Label: "2024 Q2", Value: 64, Text: "64%"})
				So(len(spec.Series[1].Points), ShouldEqual, 1)
				So(spec.Series[1].Color, ShouldEqual, chart.Palette[1])
			})
		})

		Convey("When mapped to a stacked bar", func() {
			spec, err := chart.ToChart(rateTable(), chart.StackedBar, enc)
			So(err, ShouldBeNil)

			Convey("Then missing categories are filled with zero", func() {
				So(spec.Layout.BarMode, ShouldEqual, "stack")
				So(len(spec.Series[1].Points), ShouldEqual, 2)
				So(spec.Series[1].Points[1].Value, ShouldEqual, 0)
			})
		})

		Convey("When a category order is requested", func() {
			enc.CategoryOrder = []string{"2024 Q2", "2030 Q1"}
			spec, _ := chart.ToChart(rateTable(), chart.GroupedBar, enc)

			Convey("Then listed categories come first and absent ones are skipped", func() {
				So(spec.Layout.Categories, ShouldResemble, []string{"2024 Q2", "2024 Q1"})
				So(spec.Layout.BarMode, ShouldEqual, "group")
			})
		})
	})

	Convey("Given a single series histogram", t, func() {
		var tbl chart.Table
		tbl.Add(map[string]string{"bin": "0-2"}, map[string]float64{"pct": 40})
		tbl.Add(map[string]string{"bin": "2-4"}, map[string]float64{"pct": 60})
		spec, err := chart.ToChart(tbl, chart.Histogram, chart.Encoding{X: "bin", Y: "pct", Percent: true, YLabel: "% graduados"})

		So(err, ShouldBeNil)
		So(*spec.Layout.BarGap, ShouldEqual, 0)
		So(spec.Layout.PercentAxis, ShouldBeTrue)
		So(spec.Layout.ShowLegend, ShouldBeFalse)
		So(spec.Series[0].Name, ShouldEqual, "% graduados")
	})

	Convey("Given a horizontal bar", t, func() {
		var tbl chart.Table
		tbl.Add(map[string]string{"employer": "ACME"}, map[string]float64{"n": 12})
		spec, err := chart.ToChart(tbl, chart.HorizontalBar, chart.Encoding{X: "employer", Y: "n"})
		So(err, ShouldBeNil)
		So(spec.Layout.Orientation, ShouldEqual, "h")
	})
}

func TestToChartBoxAndSankey(t *testing.T) {
	Convey("Given salary samples per period", t, func() {
		var tbl chart.Table
		tbl.AddSamples(map[string]string{"period": "2024 Q1"}, []float64{500, 700})
		tbl.AddSamples(map[string]string{"period": "2024 Q2"}, []float64{650})
		tbl.AddSamples(map[string]string{"period": "2024 Q1"}, []float64{900})

		spec, err := chart.ToChart(tbl, chart.Box, chart.Encoding{X: "period"})

		Convey("Then samples are merged per category", func() {
			So(err, ShouldBeNil)
			So(len(spec.Boxes), ShouldEqual, 2)
			So(spec.Boxes[0].Samples, ShouldResemble, []float64{500, 700, 900})
		})
	})

	Convey("Given sector changes", t, func() {
		var tbl chart.Table
		tbl.Add(map[string]string{"from": "Comercio", "to": "Salud"}, map[string]float64{"n": 4})
		tbl.Add(map[string]string{"from": "Salud", "to": "Educación"}, map[string]float64{"n": 2})

		spec, err := chart.ToChart(tbl, chart.Sankey, chart.Encoding{Source: "from", Target: "to", Y: "n"})

		Convey("Then nodes are shared and links carry the counts", func() {
			So(err, ShouldBeNil)
			So(spec.Flow.Nodes, ShouldResemble, []string{"Comercio", "Salud", "Educación"})
			So(spec.Flow.Links[1], ShouldResemble, chart.Link{Source: 1, Target: 2, Value: 2})
		})
	})
}

func TestToChartErrors(t *testing.T) {
	Convey("Given invalid inputs", t, func() {
		_, err := chart.ToChart(chart.Table{}, chart.Bar, chart.Encoding{X: "a", Y: "b"})
		So(errors.Is(err, chart.ErrEmptyTable), ShouldBeTrue)

		_, err = chart.ToChart(rateTable(), chart.Kind("pie"), chart.Encoding{X: "period", Y: "rate"})
		So(errors.Is(err, chart.ErrUnknownKind), ShouldBeTrue)

		_, err = chart.ToChart(rateTable(), chart.Bar, chart.Encoding{X: "period"})
		So(errors.Is(err, chart.ErrEncoding), ShouldBeTrue)

		_, err = chart.ToChart(rateTable(), chart.Sankey, chart.Encoding{Source: "period", Y: "rate"})
		So(errors.Is(err, chart.ErrEncoding), ShouldBeTrue)
	})
}
