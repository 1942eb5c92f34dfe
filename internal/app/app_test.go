package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/Zaqui712/B-FO/internal/config"
	"github.com/Zaqui712/B-FO/internal/dispatch"
	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/observability"
	testhelpers "github.com/Zaqui712/B-FO/internal/test"
	"github.com/Zaqui712/B-FO/internal/worker"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestSweeper(deliverer worker.Deliverer) *worker.Sweeper {
	return worker.NewSweeper(&testhelpers.SweepSourceStub{}, deliverer, 10*time.Millisecond, 1, 1, testLogger())
}

type drainerStub struct {
	calls int32
	err   error
}

func (d *drainerStub) Wait(context.Context) error {
	atomic.AddInt32(&d.calls, 1)
	return d.err
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func TestNewSweeperUsesConfig(t *testing.T) {
	d := dispatch.NewDispatcher(&testhelpers.PeerClientStub{}, model.IdentityCallerSupplied, time.Second, testLogger(), observability.Noop())
	sweeper := newSweeper(sweeperParams{
		Facade:     newFacade(testhelpers.NewMemoryOrderStore(), &testhelpers.DispatcherStub{}),
		Dispatcher: d,
		Config:     &config.Config{SweepInterval: 15 * time.Second, SweepBatchSize: 3, WorkerPoolSize: 4},
		Logger:     testLogger(),
	})
	if sweeper == nil || !sweeper.Enabled() {
		t.Fatal("expected enabled sweeper instance")
	}

	disabled := newSweeper(sweeperParams{
		Facade:     newFacade(testhelpers.NewMemoryOrderStore(), &testhelpers.DispatcherStub{}),
		Dispatcher: d,
		Config:     &config.Config{},
		Logger:     testLogger(),
	})
	if disabled.Enabled() {
		t.Fatal("expected sweeper disabled without interval")
	}
}

func TestRegisterLifecycleStartStop(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	drainer := &drainerStub{}
	cfg := &config.Config{ShutdownTimeout: 100 * time.Millisecond, Identity: model.DefaultIdentityPolicy()}

	register(recorder, shutdowner, testLogger(), server, newTestSweeper(&testhelpers.DelivererStub{}), drainer, cfg)

	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}

	hook := recorder.Hooks[0]
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := hook.OnStart(ctx); err != nil {
		t.Fatalf("on start failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hook.OnStop(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected on stop to finish")
	}
	if atomic.LoadInt32(&drainer.calls) != 1 {
		t.Fatal("expected pending dispatches to be drained")
	}
}

func TestRegisterLifecycleToleratesDrainTimeout(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	drainer := &drainerStub{err: context.DeadlineExceeded}

	register(recorder, &testhelpers.ShutdownerStub{}, testLogger(), server, newTestSweeper(&testhelpers.DelivererStub{}), drainer, &config.Config{ShutdownTimeout: time.Second})

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("on start failed: %v", err)
	}
	if err := recorder.Stop(context.Background()); err != nil {
		t.Fatalf("drain timeout must not fail shutdown, got %v", err)
	}
}

func TestRegisterLifecycleShutdownOnServerError(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	server := &http.Server{Addr: "bad addr"}

	register(recorder, shutdowner, testLogger(), server, newTestSweeper(&testhelpers.DelivererStub{}), &drainerStub{}, &config.Config{ShutdownTimeout: time.Second})

	hook := recorder.Hooks[0]
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}
	if shutdowner.Calls() != 1 {
		t.Fatalf("expected a single shutdown request, got %d", shutdowner.Calls())
	}

	_ = recorder.Stop(context.Background())
}

func TestRegisterLifecycleRunsSweeper(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	delivered := make(chan struct{}, 1)
	source := &testhelpers.SweepSourceStub{Batches: [][]model.Order{{{ID: 1}}}}
	deliverer := &testhelpers.DelivererStub{DeliverFn: func(context.Context, model.Order) error {
		select {
		case delivered <- struct{}{}:
		default:
		}
		return nil
	}}
	sweeper := worker.NewSweeper(source, deliverer, 5*time.Millisecond, 1, 1, testLogger())
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}

	register(recorder, &testhelpers.ShutdownerStub{}, testLogger(), server, sweeper, &drainerStub{}, &config.Config{ShutdownTimeout: time.Second})

	hook := recorder.Hooks[0]
	startCtx, cancel := context.WithCancel(context.Background())
	if err := hook.OnStart(startCtx); err != nil {
		t.Fatalf("on start failed: %v", err)
	}
	cancel()

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("expected sweeper to deliver after start context ended")
	}
	if err := hook.OnStop(context.Background()); err != nil {
		t.Fatalf("on stop failed: %v", err)
	}
}

func TestRegisterLifecycleUsesDispatcher(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	d := dispatch.NewDispatcher(&testhelpers.PeerClientStub{}, model.IdentityCallerSupplied, time.Second, testLogger(), observability.Noop())
	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: &testhelpers.ShutdownerStub{},
		Logger:     testLogger(),
		Server:     &http.Server{Addr: "127.0.0.1:0"},
		Sweeper:    newTestSweeper(d),
		Dispatcher: d,
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})
	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook, got %d", len(recorder.Hooks))
	}
}

func TestLifecycleRecorderRunsHooksInOrder(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	var order []string
	recorder.Append(fx.Hook{
		OnStart: func(context.Context) error { order = append(order, "start-1"); return nil },
		OnStop:  func(context.Context) error { order = append(order, "stop-1"); return nil },
	})
	recorder.Append(fx.Hook{
		OnStop: func(context.Context) error { order = append(order, "stop-2"); return nil },
	})

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := recorder.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if len(order) != 3 || order[0] != "start-1" || order[1] != "stop-2" || order[2] != "stop-1" {
		t.Fatalf("unexpected hook order %v", order)
	}
}

func TestShutdownerStub(t *testing.T) {
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	if err := shutdowner.Shutdown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-shutdowner.Called:
	default:
		t.Fatal("expected shutdown notification")
	}
}
