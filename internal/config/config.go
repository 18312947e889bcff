// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New(ctx) builds a Config holding the defaults.
// - Load layers a YAML file and GRADPULSE_* environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// DataPath points at the xlsx workbook holding both sheets.
	DataPath string `koanf:"data_path"`

	// EmploymentSheet and TitlesSheet name the two workbook sheets.
	EmploymentSheet string `koanf:"employment_sheet"`
	TitlesSheet     string `koanf:"titles_sheet"`

	// HomeInstitution is the university whose graduates are tracked, as it
	// appears in the titles sheet.
	HomeInstitution string `koanf:"home_institution"`

	// TopN caps ranking pages; TopTitles caps the occupation ranking.
	TopN      int `koanf:"top_n"`
	TopTitles int `koanf:"top_titles"`

	// ChartWidth and ChartHeight size PNG renders in pixels.
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`

	// RotationWindowMonths bounds the employer rotation window.
	RotationWindowMonths int `koanf:"rotation_window_months"`

	// CriticalThreshold is the default employability threshold (percent) for
	// the critical programs page, within [0, 90].
	CriticalThreshold float64 `koanf:"critical_threshold"`

	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsLabels are constant labels attached to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config holding the defaults. Context is accepted first to
// follow the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		ReadTimeout:          10 * time.Second,
		WriteTimeout:         30 * time.Second,
		ShutdownTimeout:      10 * time.Second,
		DataPath:             "data/empleabilidad.xlsx",
		EmploymentSheet:      "Empleabilidad",
		TitlesSheet:          "Titulos",
		HomeInstitution:      "UNIVERSIDAD DE LAS AMERICAS",
		TopN:                 10,
		TopTitles:            15,
		ChartWidth:           1024,
		ChartHeight:          512,
		RotationWindowMonths: 12,
		CriticalThreshold:    60,
		MetricsNamespace:     "gradpulse",
	}
}
