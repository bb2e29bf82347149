package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then every collector is registered there", func() {
				So(manager, ShouldNotBeNil)
				manager.rowsParsed.Add(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_namespace_test_subsystem_rows_parsed_total")
			})
		})

		Convey("When options carry empty values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldBeBlank)
				So(manager.subsystem, ShouldBeBlank)
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})

		Convey("When inspecting the global manager", func() {
			globalManager.rowsParsed.Add(0)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			Convey("Then its collectors carry the service prefix and latency buckets", func() {
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "kiosk_analytics_rows_parsed_total")
				So(globalManager.histogramBuckets, ShouldResemble, latencyBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording file loads", func() {
			before := testutil.ToFloat64(globalManager.filesLoaded.WithLabelValues("ok"))
			RecordFileLoad("ok", 1.5)
			RecordFileLoad("ok", 2.5)

			Convey("Then the outcome counter grows", func() {
				So(testutil.ToFloat64(globalManager.filesLoaded.WithLabelValues("ok")), ShouldEqual, before+2)
			})
		})

		Convey("When recording rows", func() {
			parsed := testutil.ToFloat64(globalManager.rowsParsed)
			rejected := testutil.ToFloat64(globalManager.rowsRejected)
			RecordRows(5, 2)

			Convey("Then both counters grow", func() {
				So(testutil.ToFloat64(globalManager.rowsParsed), ShouldEqual, parsed+5)
				So(testutil.ToFloat64(globalManager.rowsRejected), ShouldEqual, rejected+2)
			})
		})

		Convey("When updating gauges", func() {
			UpdateKiosksDiscovered(4)
			UpdateFilesDiscovered(12)
			UpdatePoolSize(8)

			Convey("Then the last value wins", func() {
				So(testutil.ToFloat64(globalManager.kiosksDiscovered), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.filesDiscovered), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.poolSize), ShouldEqual, 8)
			})
		})

		Convey("When tracking pool jobs", func() {
			start := testutil.ToFloat64(globalManager.poolActive)
			PoolJobStarted()
			PoolJobStarted()
			PoolJobFinished()

			Convey("Then the active gauge reflects in-flight work", func() {
				So(testutil.ToFloat64(globalManager.poolActive), ShouldEqual, start+1)
				PoolJobFinished()
			})
		})

		Convey("When recording query and HTTP metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordQuery("fleet", "ok", 12)
					RecordQueryTimeout()
					RecordQueryNoData("kiosk_history")
					RecordIndexScan(0.7)
					RecordHTTPRequest("kiosks", "GET", "200")
					RecordHTTPRequestDuration("kiosks", "GET", "200", 3)
					RecordRateLimited()
					RecordErrorByEndpoint("kiosks", "GET", "not_found")
					RecordErrorByType("not_found", "medium")
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})

		Convey("When reading the registry", func() {
			Convey("Then it is the custom one", func() {
				So(GetRegistry(), ShouldEqual, customRegistry)
			})
		})
	})
}
