package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/kiosk-analytics/internal/adapters/storage"
	app "github.com/okian/kiosk-analytics/internal/app"
	"github.com/okian/kiosk-analytics/internal/config"
	"github.com/okian/kiosk-analytics/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	convey.Convey("Given KIOSK_ environment overrides", t, func() {
		t.Setenv("KIOSK_ADDR", ":8080")
		t.Setenv("KIOSK_DATA_DIR", "/srv/kiosks")
		t.Setenv("KIOSK_WORKER_COUNT", "4")

		convey.Convey("Then configuration should pick them up", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.DataDir, convey.ShouldEqual, "/srv/kiosks")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
		})
	})

	convey.Convey("Given an empty listen address", t, func() {
		t.Setenv("KIOSK_ADDR", "")

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestNewSource(t *testing.T) {
	convey.Convey("Given the local backend", t, func() {
		cfg := config.New()

		convey.Convey("When the data directory does not exist", func() {
			cfg.DataDir = filepath.Join(t.TempDir(), "missing")
			src, closeSource, err := newSource(context.Background(), cfg, logger.Get())

			convey.Convey("Then a source should still be returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(src, convey.ShouldHaveSameTypeAs, &storage.Local{})
				convey.So(src.Location(), convey.ShouldEqual, cfg.DataDir)
				convey.So(closeSource, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMuxWiring(t *testing.T) {
	convey.Convey("Given a service over a one-file tree", t, func() {
		root := t.TempDir()
		dir := filepath.Join(root, "kiosk_0202")
		convey.So(os.MkdirAll(dir, 0o755), convey.ShouldBeNil)
		convey.So(os.WriteFile(filepath.Join(dir, "transactions_0202_110625.csv"), []byte(
			"Timestamp,Client_Name,User_ID,Volume_ML,Response\n"+
				"2025-11-06 08:00:00,GymA,u1,250,PASS\n",
		), 0o644), convey.ShouldBeNil)

		cfg := config.New()
		cfg.DataDir = root
		ctx := context.Background()
		svc := app.New(storage.NewLocal(root), app.WithWorkerCount(2), app.WithQueryTimeout(5*time.Second))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)

		srv := httptest.NewServer(newMux(ctx, cfg, svc, logger.Get()))
		defer srv.Close()
		client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}}

		get := func(path string) (*http.Response, []byte) {
			resp, err := client.Get(srv.URL + path)
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			convey.So(err, convey.ShouldBeNil)
			return resp, body
		}

		convey.Convey("Then the API should list the kiosk", func() {
			resp, body := get("/api/kiosks")
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			var out struct {
				Kiosks []string `json:"kiosks"`
			}
			convey.So(json.Unmarshal(body, &out), convey.ShouldBeNil)
			convey.So(out.Kiosks, convey.ShouldResemble, []string{"0202"})
		})

		convey.Convey("Then a kiosk day report should be served", func() {
			resp, body := get("/api/kiosks/0202/dates/2025-11-06")
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(string(body), convey.ShouldContainSubstring, `"total_volume":250`)
		})

		convey.Convey("Then health should report the kiosk", func() {
			resp, body := get("/healthz")
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(string(body), convey.ShouldContainSubstring, `"kiosks":1`)
		})

		convey.Convey("Then the root should redirect to the dashboard", func() {
			resp, _ := get("/")
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusFound)
			convey.So(resp.Header.Get("Location"), convey.ShouldEqual, "/dashboard")
		})

		convey.Convey("Then the API description should be served", func() {
			resp, body := get("/openapi.yaml")
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(string(body), convey.ShouldContainSubstring, "/api/analytics/analyze")
		})

		convey.Convey("Then unknown kiosks should map to not found", func() {
			resp, _ := get("/api/kiosks/9999/summary")
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update should not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("And the loop should return once its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}
