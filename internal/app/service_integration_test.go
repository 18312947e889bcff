package service_test

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/okian/gradpulse/internal/adapters/dataset"
	service "github.com/okian/gradpulse/internal/app"
	"github.com/okian/gradpulse/internal/domain/filter"
	"github.com/okian/gradpulse/internal/pages"
	"github.com/okian/gradpulse/internal/sampledata"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a generated workbook written as xlsx", t, func() {
		ctx := context.Background()
		wb, err := sampledata.Generate(ctx, sampledata.Config{Graduates: 150, Seed: 5})
		So(err, ShouldBeNil)
		path := filepath.Join(t.TempDir(), "empleabilidad.xlsx")
		So(wb.Save(path, "Datos", "Registro"), ShouldBeNil)

		svc := service.New(
			service.WithLoader(dataset.NewLoader(path, dataset.WithSheets("Datos", "Registro"))),
			service.WithSettings(pages.Settings{TopN: 5}),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then pages read from the file match pages read from memory", func() {
			mem := service.New(service.WithLoader(dataset.NewLoader("memory",
				dataset.WithSource(wb.Source("Datos", "Registro")),
				dataset.WithSheets("Datos", "Registro"))),
				service.WithSettings(pages.Settings{TopN: 5}))

			for _, id := range []string{"employability-period", "sectors", "postgrad-continuity"} {
				fromFile, err := svc.Render(ctx, id, pages.Request{})
				So(err, ShouldBeNil)
				fromMemory, err := mem.Render(ctx, id, pages.Request{})
				So(err, ShouldBeNil)
				So(fromFile.Insights, ShouldResemble, fromMemory.Insights)
				So(fromFile.Table, ShouldResemble, fromMemory.Table)
			}
		})

		Convey("Then the top-N setting bounds the sector ranking", func() {
			out, err := svc.Render(ctx, "sectors", pages.Request{})
			So(err, ShouldBeNil)
			So(len(out.Table.Rows), ShouldBeLessThanOrEqualTo, 5)
		})
	})
}

func TestServiceConcurrency(t *testing.T) {
	Convey("Given a service shared by many requests", t, func() {
		svc := newService(t, true)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		want, err := svc.Render(ctx, "employability-cohort", pages.Request{})
		So(err, ShouldBeNil)

		Convey("When pages render concurrently with different selections", func() {
			var wg sync.WaitGroup
			errs := make(chan error, 40)
			same := make(chan bool, 20)
			for i := 0; i < 20; i++ {
				wg.Add(2)
				go func() {
					defer wg.Done()
					out, err := svc.Render(ctx, "employability-cohort", pages.Request{})
					errs <- err
					same <- err == nil && slices.Equal(out.Insights, want.Insights)
				}()
				go func() {
					defer wg.Done()
					sel := filter.Selection{}.With(filter.Faculty, "INGENIERIA")
					_, err := svc.Render(ctx, "salary", pages.Request{Selection: sel})
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)
			close(same)

			Convey("Then every request succeeds and shared results do not drift", func() {
				for err := range errs {
					So(err, ShouldBeNil)
				}
				for ok := range same {
					So(ok, ShouldBeTrue)
				}
			})
		})
	})
}
