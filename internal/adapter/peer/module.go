package peer

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/Zaqui712/B-FO/internal/config"
)

// Module exposes the peer client implementation to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.PeerAddress, p.Config.PeerTimeout, p.Logger)
}
