package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/fatih/color"

	"github.com/okian/gradpulse/internal/adapters/dataset"
	"github.com/okian/gradpulse/internal/adapters/worker"
	service "github.com/okian/gradpulse/internal/app"
	"github.com/okian/gradpulse/internal/pages"
	"github.com/okian/gradpulse/internal/sampledata"
	"github.com/okian/gradpulse/pkg/logger"
)

const directoryPermission = 0750

// Stats summarises one report run.
type Stats struct {
	Pages    int
	Empty    int
	Failed   int
	Duration time.Duration
}

type rendered struct {
	out pages.Output
	err error
}

// Run prints the selected pages. Page failures are printed inline and counted;
// only failures to reach the source fail the run.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (Stats, error) {
	start := time.Now()
	if log == nil {
		log = logger.Nop()
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	color.NoColor = color.NoColor || cfg.NoColor

	if cfg.Generate != "" {
		if err := generate(ctx, cfg, log); err != nil {
			return Stats{}, fmt.Errorf("workbook generation failed: %w", err)
		}
		if cfg.DataPath == "" {
			cfg.DataPath = cfg.Generate
		}
	}

	src, err := newSource(ctx, cfg, log)
	if err != nil {
		return Stats{}, err
	}
	list, err := src.Pages(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to list pages: %w", err)
	}
	ids, err := selectPages(list, cfg.Pages)
	if err != nil {
		return Stats{}, err
	}

	req, err := pages.ParseQuery(cfg.Query)
	if err != nil {
		return Stats{}, err
	}

	log.Info(ctx, "rendering report", logger.Int("pages", len(ids)), logger.Int("workers", workers(cfg)))
	results, err := renderAll(ctx, src, ids, req, workers(cfg), log)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Pages: len(ids)}
	for i, id := range ids {
		r := results[i]
		switch {
		case r.err != nil:
			stats.Failed++
			printError(out, id, r.err)
		default:
			if r.out.Empty {
				stats.Empty++
			}
			printOutput(out, r.out)
		}
	}
	stats.Duration = time.Since(start)

	log.Info(ctx, "report finished",
		logger.Int("pages", stats.Pages),
		logger.Int("empty", stats.Empty),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

func workers(cfg *Config) int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return runtime.NumCPU()
}

func newSource(ctx context.Context, cfg *Config, log logger.Logger) (Source, error) {
	if cfg.BaseURL != "" {
		return NewRemoteSource(cfg.BaseURL, cfg.Timeout), nil
	}
	if cfg.DataPath == "" {
		return nil, ErrNoSource
	}
	loader := dataset.NewLoader(cfg.DataPath,
		dataset.WithSheets(cfg.EmploymentSheet, cfg.TitlesSheet),
		dataset.WithLogger(log))
	svc := service.New(service.WithLoader(loader), service.WithLogger(log), service.WithSettings(cfg.Settings))
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to load workbook: %w", err)
	}
	return LocalSource{R: svc}, nil
}

func selectPages(list []pages.Page, want []string) ([]string, error) {
	ids := make([]string, 0, len(list))
	for _, p := range list {
		if len(want) == 0 || slices.Contains(want, p.ID) {
			ids = append(ids, p.ID)
		}
	}
	for _, w := range want {
		if !slices.Contains(ids, w) {
			return nil, fmt.Errorf("%w: %s", pages.ErrUnknownPage, w)
		}
	}
	return ids, nil
}

// renderAll renders ids on a worker pool and returns the results in the
// order of ids. Page errors are kept per page.
func renderAll(ctx context.Context, src Source, ids []string, req pages.Request, n int, log logger.Logger) ([]rendered, error) {
	pool := worker.New(worker.WithName("report"), worker.WithWorkers(n), worker.WithLogger(log))
	return worker.Map(ctx, pool, len(ids), func(ctx context.Context, i int) (rendered, error) {
		out, err := src.Render(ctx, ids[i], req)
		return rendered{out: out, err: err}, nil
	})
}

func generate(ctx context.Context, cfg *Config, log logger.Logger) error {
	if dir := filepath.Dir(cfg.Generate); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	wb, err := sampledata.Generate(ctx, sampledata.Config{
		Graduates: cfg.Graduates,
		Seed:      cfg.Seed,
		Workers:   workers(cfg),
		Log:       log,
	})
	if err != nil {
		return err
	}
	employment, titles := cfg.EmploymentSheet, cfg.TitlesSheet
	if employment == "" {
		employment = dataset.DefaultEmploymentSheet
	}
	if titles == "" {
		titles = dataset.DefaultTitlesSheet
	}
	if err := wb.Save(cfg.Generate, employment, titles); err != nil {
		return err
	}
	log.Info(ctx, "workbook written", logger.String("path", cfg.Generate))
	return nil
}

// ShowHelp prints usage information for the report tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `GradPulse Report
================

Prints the dashboard pages to the console: insights and tables.

Usage:
  gradpulse-report [options]

Options:
  -data string        Workbook to read (default from config)
  -url string         Read pages from a running server instead of a workbook
  -page string        Comma separated page ids (default: every page)
  -query string       Filters and page params in URL query form, e.g. "faculty=SALUD&cohorts=2023,2024"
  -generate string    Write a synthetic workbook to this path first
  -graduates int      Graduates in the synthetic workbook (default 400)
  -seed uint          Seed of the synthetic workbook (default 1)
  -workers int        Concurrent page renders (default CPU cores)
  -timeout duration   HTTP timeout for -url (default 30s)
  -no-color           Disable colored output
  -help               Show this help message

Examples:
  gradpulse-report -data data/empleabilidad.xlsx -page salary,sectors
  gradpulse-report -generate /tmp/sample.xlsx -query "faculty=SALUD"
  gradpulse-report -url http://localhost:9080 -page critical-programs -query "threshold=50"
`)
}
