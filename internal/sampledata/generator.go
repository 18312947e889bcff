// Package sampledata generates synthetic employability workbooks with the
// same sheets and headers as the institutional extracts. Generation is
// deterministic for a given seed.
package sampledata

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gradpulse/internal/adapters/dataset"
	"github.com/okian/gradpulse/internal/adapters/worker"
	"github.com/okian/gradpulse/internal/domain/model"
	"github.com/okian/gradpulse/pkg/logger"
)

const dateLayout = "2006-01-02"

// Config sizes the generated workbook.
type Config struct {
	Graduates int      // home-institution graduates
	Cohorts   []string // graduation years
	Year      int      // observation year
	Seed      uint64
	Workers   int
	Log       logger.Logger
}

// DefaultConfig returns a small workbook spanning four cohorts.
func DefaultConfig() Config {
	return Config{
		Graduates: 400,
		Cohorts:   []string{"2021", "2022", "2023", "2024"},
		Year:      2024,
		Seed:      1,
		Workers:   4,
	}
}

// Workbook holds both sheets as string rows, header first.
type Workbook struct {
	Employment [][]string
	Titles     [][]string
}

// Source serves the workbook from memory under the given sheet names.
func (w *Workbook) Source(employmentSheet, titlesSheet string) dataset.MemorySource {
	return dataset.MemorySource{employmentSheet: w.Employment, titlesSheet: w.Titles}
}

type graduateRows struct {
	employment [][]string
	titles     [][]string
}

// Generate builds a workbook. Graduates are generated concurrently; each one
// draws from its own seeded stream so the output does not depend on the
// worker count.
func Generate(ctx context.Context, cfg Config) (*Workbook, error) {
	def := DefaultConfig()
	if cfg.Graduates <= 0 {
		cfg.Graduates = def.Graduates
	}
	if len(cfg.Cohorts) == 0 {
		cfg.Cohorts = def.Cohorts
	}
	if cfg.Year <= 0 {
		cfg.Year = def.Year
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}

	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	log.Info(ctx, "generating workbook", logger.Int("graduates", cfg.Graduates), logger.Int("workers", cfg.Workers))

	pool := worker.New(worker.WithName("sampledata"), worker.WithWorkers(cfg.Workers), worker.WithLogger(log))
	all, err := worker.Map(ctx, pool, cfg.Graduates, func(_ context.Context, i int) (graduateRows, error) {
		return graduate(cfg, i), nil
	})
	if err != nil {
		return nil, fmt.Errorf("sampledata.Generate: %w", err)
	}

	wb := &Workbook{
		Employment: [][]string{employmentHeader},
		Titles:     [][]string{titlesHeader},
	}
	for _, g := range all {
		wb.Employment = append(wb.Employment, g.employment...)
		wb.Titles = append(wb.Titles, g.titles...)
	}
	wb.Titles = append(wb.Titles, externalPostgrads(cfg)...)

	log.Info(ctx, "workbook generated",
		logger.Int("employmentRows", len(wb.Employment)-1),
		logger.Int("titleRows", len(wb.Titles)-1))
	return wb, nil
}

func graduateID(seed uint64, i int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("gradpulse-%d-%d", seed, i))).String()
}

// graduate emits the monthly employment rows and the titles of graduate i.
func graduate(cfg Config, i int) graduateRows {
	rng := rand.New(rand.NewPCG(cfg.Seed, uint64(i)))
	id := graduateID(cfg.Seed, i)
	p := programs[rng.IntN(len(programs))]
	cohort := cfg.Cohorts[rng.IntN(len(cfg.Cohorts))]
	year, _ := strconv.Atoi(cohort)
	graduated := time.Date(year, time.Month(1+rng.IntN(12)), 1+rng.IntN(28), 0, 0, 0, 0, time.UTC)

	var out graduateRows

	// A job starts somewhere between a year before graduation and two years
	// after it; some graduates change employer during the observation year.
	var current *employer
	var since time.Time
	var title string
	hire := func(at time.Time) {
		e := employers[rng.IntN(len(employers))]
		current = &e
		since = at
		title = jobTitles[rng.IntN(len(jobTitles))]
	}
	if rng.Float64() < p.hire {
		hire(graduated.AddDate(0, rng.IntN(36)-12, rng.IntN(28)))
	}
	formality := "RELACION DE DEPENDENCIA"
	if rng.Float64() < 0.12 {
		formality = "AFILIADO VOLUNTARIO"
	}

	for _, month := range model.QuarterMonths {
		obs := time.Date(cfg.Year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		switch r := rng.Float64(); {
		case current != nil && r < 0.08:
			current = nil
		case current != nil && r < 0.18:
			hire(obs.AddDate(0, -rng.IntN(3), 0))
		case current == nil && r < p.hire/3:
			hire(obs.AddDate(0, -rng.IntN(3), 0))
		}

		row := []string{
			id, cohort, p.level, p.offer, p.faculty, p.name, p.name,
			strconv.Itoa(cfg.Year), strconv.Itoa(month), "", "", "", "", "", "", "",
			graduated.Format(dateLayout), "",
		}
		if current != nil && !since.After(obs) {
			salary := 470 + rng.Float64()*2000
			row[9] = strconv.FormatFloat(float64(int(salary*100))/100, 'f', 2, 64)
			row[10] = current.taxID
			row[11] = current.name
			row[12] = strconv.Itoa(current.headcount)
			row[13] = current.sector
			row[14] = formality
			row[15] = since.Format(dateLayout)
			row[17] = title
		}
		out.employment = append(out.employment, row)
	}

	out.titles = append(out.titles, []string{
		id, homeInstitution, p.faculty, p.name, undergradLevel, graduated.Format(dateLayout),
	})
	if rng.Float64() < 0.22 {
		institution := homeInstitution
		faculty := "POSGRADOS"
		if rng.Float64() < 0.45 {
			institution = otherInstitutions[rng.IntN(len(otherInstitutions))]
			faculty = "SIN REGISTRO"
		}
		first := graduated.AddDate(1+rng.IntN(4), rng.IntN(12), 0)
		out.titles = append(out.titles, []string{
			id, institution, faculty, postgradPrograms[rng.IntN(len(postgradPrograms))], postgradLevel, first.Format(dateLayout),
		})
		if rng.Float64() < 0.2 {
			second := first.AddDate(1+rng.IntN(3), 0, 0)
			out.titles = append(out.titles, []string{
				id, homeInstitution, "POSGRADOS", postgradPrograms[rng.IntN(len(postgradPrograms))], postgradLevel, second.Format(dateLayout),
			})
		}
	}
	return out
}

// externalPostgrads adds people who studied their undergraduate degree
// elsewhere and a postgraduate degree at the home institution.
func externalPostgrads(cfg Config) [][]string {
	rng := rand.New(rand.NewPCG(cfg.Seed, ^uint64(0)))
	n := cfg.Graduates / 10
	out := make([][]string, 0, 2*n)
	for i := 0; i < n; i++ {
		id := graduateID(cfg.Seed, cfg.Graduates+i)
		undergrad := time.Date(2010+rng.IntN(10), time.Month(1+rng.IntN(12)), 1+rng.IntN(28), 0, 0, 0, 0, time.UTC)
		out = append(out,
			[]string{id, otherInstitutions[rng.IntN(len(otherInstitutions))], "SIN REGISTRO", "SIN REGISTRO", undergradLevel, undergrad.Format(dateLayout)},
			[]string{id, homeInstitution, "POSGRADOS", postgradPrograms[rng.IntN(len(postgradPrograms))], postgradLevel, undergrad.AddDate(2+rng.IntN(5), 0, 0).Format(dateLayout)},
		)
	}
	return out
}
