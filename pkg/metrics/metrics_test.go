package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithLatencyBuckets([]float64{1, 10}),
				WithScoreBuckets([]float64{5}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordPrediction(3, 1)

			Convey("Then its gatherer should be the registry it was given", func() {
				So(manager.Gatherer(), ShouldEqual, registry)
			})

			Convey("Then metric names should use the namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_scorer_predictions_total")
			})
		})
	})
}

func TestRelayMetrics(t *testing.T) {
	Convey("Given an isolated manager", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When commands are written and consumed", func() {
			m.RecordCommandReceived("left", false)
			m.RecordCommandReceived("up", true)
			m.RecordCommandDelivered("poll")
			m.RecordCommandDelivered("stream")
			m.RecordCommandDelivered("stream")
			m.SetCommandPending(true)

			Convey("Then counters should reflect them", func() {
				So(testutil.ToFloat64(m.commandsReceived.WithLabelValues("left")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.commandsOverwritten), ShouldEqual, 1)
				So(testutil.ToFloat64(m.commandsDelivered.WithLabelValues("stream")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.commandPending), ShouldEqual, 1)
			})
		})

		Convey("When clients post directions outside the game tokens", func() {
			for i := 0; i < 50; i++ {
				m.RecordCommandReceived(fmt.Sprintf("junk-%d", i), false)
			}
			m.RecordCommandReceived("right", false)

			Convey("Then they should share one label value", func() {
				So(testutil.CollectAndCount(m.commandsReceived), ShouldEqual, 2)
				So(testutil.ToFloat64(m.commandsReceived.WithLabelValues(DirectionOther)), ShouldEqual, 50)
				So(testutil.ToFloat64(m.commandsReceived.WithLabelValues("right")), ShouldEqual, 1)
			})
		})

		Convey("When stream subscribers come and go", func() {
			m.StreamSubscribed(1)
			m.StreamSubscribed(1)
			m.StreamSubscribed(-1)
			m.RecordStreamFrame()

			Convey("Then the gauge should track the live count", func() {
				So(testutil.ToFloat64(m.streamSubscribers), ShouldEqual, 1)
				So(testutil.ToFloat64(m.streamFrames), ShouldEqual, 1)
			})
		})
	})
}

func TestScorerAndHTTPMetrics(t *testing.T) {
	Convey("Given an isolated manager", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When predictions succeed and fail", func() {
			m.RecordPrediction(4.2, 0.3)
			m.RecordPredictionError("input")
			m.RecordPredictionError("input")
			m.RecordPredictionError("artifact")

			Convey("Then they should be counted separately", func() {
				So(testutil.ToFloat64(m.predictions), ShouldEqual, 1)
				So(testutil.ToFloat64(m.predictionErrors.WithLabelValues("input")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.predictionErrors.WithLabelValues("artifact")), ShouldEqual, 1)
			})
		})

		Convey("When HTTP requests are recorded", func() {
			m.RecordHTTPRequest("predict", "POST", "200", 1.5)
			m.RecordHTTPRequest("predict", "POST", "500", 0.5)
			m.RecordHTTPPanic()
			m.UpdateSystem(1024, 12)
			m.RecordGCPause(0.2)

			Convey("Then they should be labelled by status", func() {
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("predict", "POST", "500")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.httpPanics), ShouldEqual, 1)
				So(testutil.ToFloat64(m.systemGoroutineCount), ShouldEqual, 12)
			})
		})
	})
}

func TestGlobalManager(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then package-level helpers should not panic", func() {
			So(func() {
				RecordCommandReceived("down", false)
				RecordCommandDelivered("poll")
				SetCommandPending(false)
				StreamSubscribed(1)
				StreamSubscribed(-1)
				RecordStreamFrame()
				RecordPrediction(2, 0.1)
				RecordPredictionError("input")
				RecordHTTPRequest("controller", "GET", "200", 0.1)
				RecordHTTPPanic()
				UpdateSystem(1, 1)
				RecordGCPause(0.1)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry should expose them", func() {
			So(Default(), ShouldNotBeNil)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
