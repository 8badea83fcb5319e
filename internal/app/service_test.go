package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/crossing/internal/adapters/artifact"
	service "github.com/okian/crossing/internal/app"
	"github.com/okian/crossing/internal/domain/difficulty"
	"github.com/okian/crossing/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	scalerPath = "../../artifacts/scaler.yaml"
	modelPath  = "../../artifacts/model.yaml"
)

func f(v float64) *float64 { return &v }

func samplePayload() difficulty.Payload {
	return difficulty.Payload{
		PlayerAge:     f(8),
		CrossingTime:  f(5.2),
		VehicleSpeed:  f(40),
		NumberOfLanes: f(2),
		AttemptCount:  f(1),
	}
}

func isolatedMetrics() *metrics.Manager {
	return metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New(service.WithMetrics(isolatedMetrics()))

		Convey("Then the relay should be usable before Start", func() {
			So(svc, ShouldNotBeNil)
			So(svc.PollAndClear(context.Background()), ShouldEqual, "none")
			So(svc.Set(context.Background(), "up"), ShouldEqual, "up")
			So(svc.PollAndClear(context.Background()), ShouldEqual, "up")
		})

		Convey("Then scoring should fail until started", func() {
			_, err := svc.Score(context.Background(), samplePayload())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(errors.Is(err, difficulty.ErrArtifact), ShouldBeTrue)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a service pointed at the reference artifacts", t, func() {
		svc := service.New(
			service.WithArtifactPaths(scalerPath, modelPath),
			service.WithStreamInterval(5*time.Millisecond),
			service.WithMetrics(isolatedMetrics()),
		)
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it should score requests", func() {
				So(err, ShouldBeNil)
				score, err := svc.Score(context.Background(), samplePayload())
				So(err, ShouldBeNil)
				expected := 4.0 - 1.5*(3.0/75.0) - 2.0*(3.2/28.0) + 4.0*(20.0/60.0)
				So(score, ShouldAlmostEqual, expected, 1e-9)
			})

			Convey("And starting twice should be a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
			})
		})
	})

	Convey("Given a service pointed at a missing model", t, func() {
		svc := service.New(
			service.WithArtifactPaths(scalerPath, "/non/existent/model.yaml"),
			service.WithMetrics(isolatedMetrics()),
		)

		Convey("Then Start should fail with a load error", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, artifact.ErrLoad), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		set, err := artifact.Load(context.Background(), scalerPath, modelPath)
		So(err, ShouldBeNil)
		svc := service.New(service.WithArtifacts(set), service.WithMetrics(isolatedMetrics()))
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped and reject scoring", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				_, err := svc.Score(context.Background(), samplePayload())
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})

			Convey("And stopping again should not panic", func() {
				So(func() { svc.Stop() }, ShouldNotPanic)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a started service with a pending command", t, func() {
		set, err := artifact.Load(context.Background(), scalerPath, modelPath)
		So(err, ShouldBeNil)
		svc := service.New(service.WithArtifacts(set), service.WithMetrics(isolatedMetrics()))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		svc.Set(context.Background(), "left")
		_, _ = svc.Score(context.Background(), samplePayload())
		_, _ = svc.Score(context.Background(), difficulty.Payload{})

		Convey("When reading stats", func() {
			stats := svc.GetStats()

			Convey("Then they should describe the slot without consuming it", func() {
				So(stats["pendingDirection"], ShouldEqual, "left")
				So(stats["pending"], ShouldEqual, true)
				So(stats["pendingSince"], ShouldNotBeEmpty)
				So(stats["predictions"], ShouldEqual, int64(1))
				So(stats["predictionFailures"], ShouldEqual, int64(1))
				So(svc.PollAndClear(context.Background()), ShouldEqual, "left")
			})
		})
	})
}

func TestService_Stream(t *testing.T) {
	Convey("Given a service with a fast stream tick", t, func() {
		svc := service.New(service.WithStreamInterval(time.Millisecond), service.WithMetrics(isolatedMetrics()))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch := svc.Stream(ctx)
		svc.Set(ctx, "down")

		var got string
		select {
		case cmd := <-ch:
			got = cmd.Direction
		case <-time.After(2 * time.Second):
		}

		Convey("Then the stream should deliver the command", func() {
			So(got, ShouldEqual, "down")
			So(svc.Peek(ctx).Pending(), ShouldBeFalse)
		})
	})
}
