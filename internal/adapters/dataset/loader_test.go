package dataset_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/gradpulse/internal/adapters/dataset"
	"github.com/okian/gradpulse/internal/domain/model"
	"github.com/okian/gradpulse/internal/domain/schema"
	"github.com/okian/gradpulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataset.DefaultEmploymentSheet); err != nil {
		t.Fatal(err)
	}
	rows := [][]any{
		{"IdentificacionBanner.1", "AnioGraduacion.1", "regimen.1", "FACULTAD", "CarreraHomologada.1", "Anio.1", "Mes.1", "SALARIO.1", "RUCEMP.1", "Empleo formal", "FECINGAFI.1", "FechaGraduacion.1"},
		{1001, 2023, "Grado", "Salud", "Enfermería", 2024, 2, 1250.5, "1790012345001", "Relación de Dependencia", 45306, "2023-07-01"},
		{1002, 2023.0, "Grado", "Salud", "Medicina", 2024, 5, "n/d", "", "Desconocido", "sin fecha", "15/03/2023"},
		{"", 2024, "Grado", "Salud", "Medicina", 2024, 5, 900, "", "", "", ""},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(dataset.DefaultEmploymentSheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "empleabilidad.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

type countingSource struct {
	dataset.MemorySource
	calls int
}

func (c *countingSource) Rows(ctx context.Context, sheet string) ([][]string, error) {
	c.calls++
	return c.MemorySource.Rows(ctx, sheet)
}

func TestLoaderExcel(t *testing.T) {
	Convey("Given a workbook written to disk", t, func() {
		path := writeWorkbook(t)
		l := dataset.NewLoader(path)
		ctx := context.Background()

		Convey("When the employment sheet is decoded", func() {
			emp, err := l.Employment(ctx)
			So(err, ShouldBeNil)

			Convey("Then rows without a graduate id are skipped", func() {
				So(len(emp.Records), ShouldEqual, 2)
			})

			Convey("Then numbers and dates are parsed", func() {
				r := emp.Records[0]
				So(r.GraduateID, ShouldEqual, "1001")
				So(r.Cohort, ShouldEqual, "2023")
				So(*r.Salary, ShouldEqual, 1250.5)
				So(r.Formality, ShouldEqual, model.FormalDependent)
				So(r.AffiliationStart.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
				So(r.GraduationDate.Equal(time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
				So(r.Employed(), ShouldBeTrue)
			})

			Convey("Then unparseable cells become nulls", func() {
				r := emp.Records[1]
				So(r.Salary, ShouldBeNil)
				So(r.AffiliationStart.IsZero(), ShouldBeTrue)
				So(r.GraduationDate.Equal(time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
				So(r.Employed(), ShouldBeFalse)
			})

			Convey("Then absent columns are reported by the header", func() {
				So(emp.Header.Has(schema.Program), ShouldBeTrue)
				err := emp.Header.Require(schema.Program, schema.Sector)
				So(errors.Is(err, schema.ErrMissingColumn), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "sector")
			})
		})

		Convey("When the titles sheet is missing", func() {
			_, err := l.Titles(ctx)

			Convey("Then ErrSheetNotFound is returned and prewarm tolerates it", func() {
				So(errors.Is(err, dataset.ErrSheetNotFound), ShouldBeTrue)
				So(l.Prewarm(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a path that does not exist", t, func() {
		l := dataset.NewLoader(filepath.Join(t.TempDir(), "missing.xlsx"))

		Convey("Then every load fails with ErrDataFileNotFound", func() {
			_, err := l.Employment(context.Background())
			So(errors.Is(err, dataset.ErrDataFileNotFound), ShouldBeTrue)
			So(errors.Is(l.Prewarm(context.Background()), dataset.ErrDataFileNotFound), ShouldBeTrue)
		})
	})
}

func TestLoaderMemoizes(t *testing.T) {
	Convey("Given an in-memory source", t, func() {
		src := &countingSource{MemorySource: dataset.MemorySource{
			"Titulos": {
				{"IDENTIFICACION", "INSTITUCIÓN DE EDUCACIÓN SUPERIOR", "CARRERA", "NIVEL ACADÉMICA", "FECHA DE REGISTRO"},
				{"17", "Universidad de las Americas", "Derecho", "tercer nivel de grado", "2019-06-30"},
				{"17", "UNIVERSIDAD CENTRAL", "Maestría en Derecho", "CUARTO NIVEL", "2022-01-10"},
			},
		}}
		l := dataset.NewLoader("unused.xlsx", dataset.WithSource(src), dataset.WithSheets("", "Titulos"))
		ctx := context.Background()

		Convey("When titles are requested twice", func() {
			first, err := l.Titles(ctx)
			So(err, ShouldBeNil)
			second, _ := l.Titles(ctx)
			raw, _ := l.Load(ctx, "Titulos")

			Convey("Then the sheet is read once and the same snapshot is returned", func() {
				So(src.calls, ShouldEqual, 1)
				So(second, ShouldPointTo, first)
				So(len(raw.Rows), ShouldEqual, 2)
			})

			Convey("Then institutions and credentials are normalised", func() {
				So(first.Records[0].Institution, ShouldEqual, "UNIVERSIDAD DE LAS AMERICAS")
				So(first.Records[0].Credential, ShouldEqual, model.Undergraduate)
				So(first.Records[1].Credential, ShouldEqual, model.Postgraduate)
			})
		})
	})
}

type entry struct {
	msg    string
	fields []logger.Field
}

// recorder keeps every log call; the slog logger adds its own caller "source".
type recorder struct{ entries *[]entry }

func (r recorder) add(msg string, fields []logger.Field) {
	*r.entries = append(*r.entries, entry{msg: msg, fields: fields})
}

func (r recorder) Info(_ context.Context, msg string, f ...logger.Field)  { r.add(msg, f) }
func (r recorder) Error(_ context.Context, msg string, f ...logger.Field) { r.add(msg, f) }
func (r recorder) Debug(_ context.Context, msg string, f ...logger.Field) { r.add(msg, f) }
func (r recorder) Warn(_ context.Context, msg string, f ...logger.Field)  { r.add(msg, f) }
func (r recorder) Fatal(_ context.Context, msg string, f ...logger.Field) { r.add(msg, f) }
func (r recorder) Named(string) logger.Logger                              { return r }
func (r recorder) With(...logger.Field) logger.Logger                      { return r }

func TestLoaderLogFields(t *testing.T) {
	Convey("Given a loader logging to a recorder", t, func() {
		var entries []entry
		src := dataset.MemorySource{"Titulos": {{"IDENTIFICACION"}, {"17"}}}
		l := dataset.NewLoader("unused.xlsx",
			dataset.WithSource(src),
			dataset.WithSheets("", "Titulos"),
			dataset.WithLogger(recorder{entries: &entries}))
		ctx := context.Background()

		_, _ = l.Load(ctx, "Titulos")
		_, _ = l.Load(ctx, "Missing")

		Convey("Then loads and failures name the workbook without a second source key", func() {
			So(len(entries), ShouldEqual, 2)
			for _, e := range entries {
				keys := make([]string, 0, len(e.fields))
				for _, f := range e.fields {
					keys = append(keys, f.Key)
				}
				So(keys, ShouldContain, "workbook")
				So(keys, ShouldNotContain, "source")
			}
		})
	})
}
