package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/gradpulse/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DataPath, convey.ShouldEqual, "data/empleabilidad.xlsx")
				convey.So(cfg.ChartWidth, convey.ShouldEqual, 1024)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "gradpulse")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GRADPULSE_ADDR", ":8080")
			_ = os.Setenv("GRADPULSE_DATA_PATH", "/srv/data/egresados.xlsx")
			_ = os.Setenv("GRADPULSE_TOP_N", "5")
			_ = os.Setenv("GRADPULSE_CRITICAL_THRESHOLD", "45.5")
			_ = os.Setenv("GRADPULSE_WRITE_TIMEOUT", "5s")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DataPath, convey.ShouldEqual, "/srv/data/egresados.xlsx")
				convey.So(cfg.TopN, convey.ShouldEqual, 5)
				convey.So(cfg.CriticalThreshold, convey.ShouldEqual, 45.5)
				convey.So(cfg.WriteTimeout, convey.ShouldEqual, 5*time.Second)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
data_path: "fixtures/sample.xlsx"
employment_sheet: "Detalle"
titles_sheet: "Titulos SENESCYT"
log_format: json
metrics_namespace: campus
metrics_labels:
  deployment: staging
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("GRADPULSE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DataPath, convey.ShouldEqual, "fixtures/sample.xlsx")
				convey.So(cfg.EmploymentSheet, convey.ShouldEqual, "Detalle")
				convey.So(cfg.TitlesSheet, convey.ShouldEqual, "Titulos SENESCYT")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.TopN, convey.ShouldEqual, 10) // default kept
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "campus")
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"deployment": "staging"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
top_n: 20
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("GRADPULSE_CONFIG", tmpFile)
			_ = os.Setenv("GRADPULSE_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TopN, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("GRADPULSE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("GRADPULSE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("GRADPULSE_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("GRADPULSE_TOP_N", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given configs breaking one rule each", t, func() {
		ctx := context.Background()
		cases := map[string]func(*config.Config){
			"data_path":              func(c *config.Config) { c.DataPath = "" },
			"sheet names":            func(c *config.Config) { c.TitlesSheet = "" },
			"top_n":                  func(c *config.Config) { c.TopN = 0 },
			"chart size":             func(c *config.Config) { c.ChartHeight = -1 },
			"rotation_window_months": func(c *config.Config) { c.RotationWindowMonths = 0 },
			"critical_threshold":     func(c *config.Config) { c.CriticalThreshold = 95 },
			"metrics_namespace":      func(c *config.Config) { c.MetricsNamespace = "grad-pulse" },
			"metrics_labels":         func(c *config.Config) { c.MetricsLabels = map[string]string{"1env": "x"} },
		}
		for want, mutate := range cases {
			cfg := config.New(ctx)
			mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, want)
		}
	})
}

func TestConfigValidateThresholdBounds(t *testing.T) {
	convey.Convey("Given critical thresholds at the edges of the page range", t, func() {
		for _, v := range []float64{0, 90} {
			cfg := config.New(context.Background())
			cfg.CriticalThreshold = v
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		}
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"GRADPULSE_CONFIG",
		"GRADPULSE_ADDR",
		"GRADPULSE_DATA_PATH",
		"GRADPULSE_TOP_N",
		"GRADPULSE_CRITICAL_THRESHOLD",
		"GRADPULSE_WRITE_TIMEOUT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "gradpulse-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
