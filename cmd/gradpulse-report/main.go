package main

import (
	"context"
	"flag"
	"math"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/okian/gradpulse/internal/config"
	"github.com/okian/gradpulse/internal/pages"
	"github.com/okian/gradpulse/internal/report"
	"github.com/okian/gradpulse/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout   = 30 * time.Second
	defaultGraduates = 400
)

func main() {
	_ = godotenv.Load()

	var (
		dataPath  = flag.String("data", "", "Workbook to read (default from config)")
		baseURL   = flag.String("url", "", "Read pages from a running server")
		pageIDs   = flag.String("page", "", "Comma separated page ids (default: every page)")
		query     = flag.String("query", "", "Filters and page params in URL query form")
		generate  = flag.String("generate", "", "Write a synthetic workbook to this path first")
		graduates = flag.Int("graduates", defaultGraduates, "Graduates in the synthetic workbook")
		seed      = flag.Uint64("seed", 1, "Seed of the synthetic workbook")
		workers   = flag.Int("workers", 0, "Concurrent page renders (default CPU cores)")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP timeout for -url")
		noColor   = flag.Bool("no-color", false, "Disable colored output")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		report.ShowHelp(os.Stdout)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	// Logs go to stderr so the report can be piped.
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	level := "warn"
	if *verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)

	q, err := url.ParseQuery(*query)
	if err != nil {
		os.Stderr.WriteString("invalid -query: " + err.Error() + "\n")
		os.Exit(2)
	}

	threshold := int(math.Round(cfg.CriticalThreshold))
	rc := &report.Config{
		DataPath:        *dataPath,
		EmploymentSheet: cfg.EmploymentSheet,
		TitlesSheet:     cfg.TitlesSheet,
		Settings: pages.Settings{
			HomeInstitution:      cfg.HomeInstitution,
			TopN:                 cfg.TopN,
			TopTitles:            cfg.TopTitles,
			RotationWindowMonths: cfg.RotationWindowMonths,
			CriticalThreshold:    &threshold,
		},
		BaseURL:         *baseURL,
		Timeout:         *timeout,
		Generate:        *generate,
		Graduates:       *graduates,
		Seed:            *seed,
		Query:           q,
		Workers:         *workers,
		NoColor:         *noColor,
		Out:             os.Stdout,
	}
	if rc.DataPath == "" && rc.Generate == "" {
		rc.DataPath = cfg.DataPath
	}
	if *pageIDs != "" {
		for _, id := range strings.Split(*pageIDs, ",") {
			if id = strings.TrimSpace(id); id != "" {
				rc.Pages = append(rc.Pages, id)
			}
		}
	}

	stats, err := report.Run(ctx, rc, logger.Get().Named("report"))
	if err != nil {
		os.Stderr.WriteString("report failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	if stats.Failed > 0 {
		os.Exit(1)
	}
}
