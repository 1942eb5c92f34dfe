package dispatch

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/Zaqui712/B-FO/internal/adapter/peer"
	"github.com/Zaqui712/B-FO/internal/config"
	"github.com/Zaqui712/B-FO/internal/observability"
	"github.com/Zaqui712/B-FO/internal/usecase"
)

// Module provides the dispatcher and binds it as the use case notifier.
var Module = fx.Provide(
	newDispatcher,
	func(d *Dispatcher) usecase.StatusDispatcher { return d },
)

type dispatcherParams struct {
	fx.In

	Client      peer.Client
	Config      *config.Config
	Logger      *slog.Logger
	Instruments *observability.Instruments
}

func newDispatcher(p dispatcherParams) *Dispatcher {
	return NewDispatcher(p.Client, p.Config.Identity.Scheme, p.Config.PeerTimeout, p.Logger, p.Instruments)
}
