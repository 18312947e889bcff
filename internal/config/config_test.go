package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/gradpulse/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.EmploymentSheet, convey.ShouldEqual, "Empleabilidad")
			convey.So(cfg.TitlesSheet, convey.ShouldEqual, "Titulos")
			convey.So(cfg.HomeInstitution, convey.ShouldEqual, "UNIVERSIDAD DE LAS AMERICAS")
			convey.So(cfg.TopN, convey.ShouldEqual, 10)
			convey.So(cfg.TopTitles, convey.ShouldEqual, 15)
			convey.So(cfg.RotationWindowMonths, convey.ShouldEqual, 12)
			convey.So(cfg.CriticalThreshold, convey.ShouldEqual, 60)
			convey.So(cfg.WriteTimeout, convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
