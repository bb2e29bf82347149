package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/kiosk-analytics/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
			convey.So(cfg.DataDir, convey.ShouldEqual, "./data")
			convey.So(cfg.StorageBackend, convey.ShouldEqual, config.BackendLocal)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DefaultTopN, convey.ShouldEqual, 20)
			convey.So(cfg.QueryTimeout(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.TrustProxy, convey.ShouldBeFalse)
			convey.So(cfg.AllowedOrigins(), convey.ShouldResemble, []string{"*"})
		})

		convey.Convey("When the origin list is blank", func() {
			cfg.CORSOrigins = " , "

			convey.Convey("Then CORS should be disabled", func() {
				convey.So(cfg.AllowedOrigins(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("And the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs violating constraints", t, func() {
		convey.Convey("When the gcs backend has no bucket", func() {
			cfg := config.New()
			cfg.StorageBackend = config.BackendGCS

			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(cfg.Validate().Error(), convey.ShouldContainSubstring, "GCSBucket")
		})

		convey.Convey("When the backend is unknown", func() {
			cfg := config.New()
			cfg.StorageBackend = "s3"

			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the default ranking exceeds the maximum", func() {
			cfg := config.New()
			cfg.DefaultTopN = 50
			cfg.MaxTopN = 10

			convey.So(cfg.Validate().Error(), convey.ShouldContainSubstring, "DefaultTopN")
		})

		convey.Convey("When the worker count is zero", func() {
			cfg := config.New()
			cfg.WorkerCount = 0

			convey.So(cfg.Validate().Error(), convey.ShouldContainSubstring, "WorkerCount")
		})
	})
}
