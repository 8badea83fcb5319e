package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/crossing/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.ScalerPath, convey.ShouldEqual, "artifacts/scaler.yaml")
			convey.So(cfg.ModelPath, convey.ShouldEqual, "artifacts/model.yaml")
			convey.So(cfg.StreamInterval, convey.ShouldEqual, 16*time.Millisecond)
			convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"*"})
			convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
