package observability

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/Zaqui712/B-FO/internal/config"
)

// Module provides tracing and metrics instruments.
var Module = fx.Options(
	fx.Provide(newInstruments),
	fx.Invoke(registerLifecycle),
)

type instrumentsParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newInstruments(p instrumentsParams) (*Instruments, error) {
	return New(p.Ctx, p.Config.TraceStdout, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, inst *Instruments) {
	lc.Append(fx.Hook{
		OnStop: inst.Shutdown,
	})
}
