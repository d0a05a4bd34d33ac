package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with defaults on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it uses the service namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "techmentor")
				So(manager.subsystem, ShouldEqual, "analyzer")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_ns"),
				WithSubsystem("test_sub"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithLatencyBuckets([]float64{10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.completionCalls.WithLabelValues("analysis", "ok").Inc()

			Convey("Then collectors are registered under the custom names", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_ns_test_sub_completion_calls_total")
				So(manager.latencyBuckets, ShouldResemble, []float64{10, 100})
			})
		})

		Convey("When options receive empty values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "techmentor")
				So(manager.subsystem, ShouldEqual, "analyzer")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global recorders", t, func() {
		Convey("When recording completion calls", func() {
			before := testutil.ToFloat64(globalManager.completionCalls.WithLabelValues("analysis", "ok"))
			RecordCompletion("analysis", "ok", 1200)

			Convey("Then the counter grows by one", func() {
				after := testutil.ToFloat64(globalManager.completionCalls.WithLabelValues("analysis", "ok"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording memo lookups", func() {
			hits := testutil.ToFloat64(globalManager.memoLookups.WithLabelValues("hit"))
			misses := testutil.ToFloat64(globalManager.memoLookups.WithLabelValues("miss"))
			RecordMemoHit()
			RecordMemoMiss()
			RecordMemoMiss()

			Convey("Then hits and misses are counted separately", func() {
				So(testutil.ToFloat64(globalManager.memoLookups.WithLabelValues("hit"))-hits, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.memoLookups.WithLabelValues("miss"))-misses, ShouldEqual, 2)
			})
		})

		Convey("When updating the stored analyses gauge", func() {
			UpdateStoredAnalyses(3)

			Convey("Then the gauge holds the last value", func() {
				So(testutil.ToFloat64(globalManager.storedAnalyses), ShouldEqual, 3)
			})
		})

		Convey("When recording the remaining metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordAnalysis("live", "ok")
					RecordAnalysis("offline", "ok")
					RecordParseFailure()
					RecordPostDraft("error")
					RecordPosterBytes(120_000)
					RecordHTTPRequest("analyze", "POST", "200")
					RecordHTTPRequestDuration("analyze", "POST", "200", 10)
					RecordErrorByEndpoint("analyze", "POST", "client_error")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})

		Convey("When gathering the custom registry", func() {
			RecordParseFailure()
			families, err := GetRegistry().Gather()

			Convey("Then it exposes service metrics", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		before := testutil.ToFloat64(globalManager.parseFailures)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				RecordParseFailure()
				RecordHTTPRequest("post", "POST", "200")
			}()
		}
		wg.Wait()

		So(testutil.ToFloat64(globalManager.parseFailures)-before, ShouldEqual, 20)
	})
}
