package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/Zaqui712/B-FO/internal/config"
	"github.com/Zaqui712/B-FO/internal/dispatch"
	"github.com/Zaqui712/B-FO/internal/server/http/handlers"
	"github.com/Zaqui712/B-FO/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewOrderSyncFacade,
		func(f *OrderSyncFacade) handlers.OrderSyncFacade { return f },
		newHTTPServer,
		newSweeper,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type sweeperParams struct {
	fx.In

	Facade     *OrderSyncFacade
	Dispatcher *dispatch.Dispatcher
	Config     *config.Config
	Logger     *slog.Logger
}

func newSweeper(p sweeperParams) *worker.Sweeper {
	return worker.NewSweeper(
		p.Facade,
		p.Dispatcher,
		p.Config.SweepInterval,
		p.Config.SweepBatchSize,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

// Drainer waits for background pushes to finish.
type Drainer interface {
	Wait(ctx context.Context) error
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Sweeper    *worker.Sweeper
	Dispatcher *dispatch.Dispatcher
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	register(p.Lifecycle, p.Shutdowner, p.Logger, p.Server, p.Sweeper, p.Dispatcher, p.Config)
}

func register(lc fx.Lifecycle, shutdowner fx.Shutdowner, logger *slog.Logger, server *http.Server, sweeper *worker.Sweeper, drainer Drainer, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting ordersync",
				slog.String("addr", server.Addr),
				slog.String("identity_scheme", string(cfg.Identity.Scheme)),
				slog.String("match_key", string(cfg.Identity.Match)),
				slog.String("duplicate_policy", string(cfg.Identity.OnDuplicate)),
			)
			sweeper.Start(ctx)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			sweeper.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, cfg.ShutdownTimeout)
			}
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			if err := drainer.Wait(shutdownCtx); err != nil {
				logger.Warn("pending status dispatches abandoned", slog.String("error", err.Error()))
			}
			logger.Info("ordersync stopped")
			return nil
		},
	})
}
