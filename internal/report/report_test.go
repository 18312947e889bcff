package report_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/gradpulse/internal/adapters/dataset"
	"github.com/okian/gradpulse/internal/adapters/http/api"
	service "github.com/okian/gradpulse/internal/app"
	"github.com/okian/gradpulse/internal/pages"
	"github.com/okian/gradpulse/internal/report"
	"github.com/okian/gradpulse/internal/sampledata"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRunGenerated(t *testing.T) {
	Convey("Given a report over a freshly generated workbook", t, func() {
		var out bytes.Buffer
		cfg := &report.Config{
			Generate:  filepath.Join(t.TempDir(), "sample", "empleabilidad.xlsx"),
			Graduates: 120,
			Seed:      9,
			Pages:     []string{"salary", "sectors"},
			Query:     url.Values{"faculty": {"SALUD"}},
			NoColor:   true,
			Out:       &out,
		}
		stats, err := report.Run(context.Background(), cfg, nil)

		Convey("Then the requested pages are printed in menu order", func() {
			So(err, ShouldBeNil)
			So(stats.Pages, ShouldEqual, 2)
			So(stats.Failed, ShouldEqual, 0)
			text := out.String()
			So(text, ShouldContainSubstring, "Filtros: ")
			So(text, ShouldContainSubstring, "SALUD")
			salary := strings.Index(text, "Distribución Salarial por Trimestre")
			sectors := strings.Index(text, "Distribución por Sector Económico")
			So(salary, ShouldBeGreaterThanOrEqualTo, 0)
			So(sectors, ShouldBeGreaterThan, salary)
		})
	})

	Convey("Given an unknown page id", t, func() {
		cfg := &report.Config{Generate: filepath.Join(t.TempDir(), "s.xlsx"), Graduates: 20, Pages: []string{"nope"}, Out: &bytes.Buffer{}}
		_, err := report.Run(context.Background(), cfg, nil)
		So(errors.Is(err, pages.ErrUnknownPage), ShouldBeTrue)
	})

	Convey("Given no source at all", t, func() {
		_, err := report.Run(context.Background(), &report.Config{Out: &bytes.Buffer{}}, nil)
		So(errors.Is(err, report.ErrNoSource), ShouldBeTrue)
	})
}

func TestRemoteSource(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ctx := context.Background()
		wb, err := sampledata.Generate(ctx, sampledata.Config{Graduates: 100, Seed: 2})
		So(err, ShouldBeNil)
		svc := service.New(service.WithLoader(dataset.NewLoader("memory",
			dataset.WithSource(wb.Source(dataset.DefaultEmploymentSheet, dataset.DefaultTitlesSheet)))))
		So(svc.Start(ctx), ShouldBeNil)

		mux := http.NewServeMux()
		api.NewServer(svc, nil).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		remote := report.NewRemoteSource(srv.URL+"/", time.Second)
		local := report.LocalSource{R: svc}

		Convey("Then remote and local renders agree", func() {
			list, err := remote.Pages(ctx)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, len(svc.Pages()))

			req, _ := pages.ParseQuery(url.Values{"faculty": {"INGENIERIA"}, "threshold": {"50"}})
			want, err := local.Render(ctx, "critical-programs", req)
			So(err, ShouldBeNil)
			got, err := remote.Render(ctx, "critical-programs", req)
			So(err, ShouldBeNil)
			So(got.Insights, ShouldResemble, want.Insights)
			So(got.Params["threshold"], ShouldEqual, "50")
		})

		Convey("Then API errors carry the error code", func() {
			_, err := remote.Render(ctx, "nope", pages.Request{})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unknown_page")
		})
	})
}
