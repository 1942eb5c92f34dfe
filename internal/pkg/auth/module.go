package auth

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/Zaqui712/B-FO/internal/config"
)

// Module provides peer authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newTokenHasher),
	fx.Provide(newPeerVerifier),
)

func newTokenHasher() TokenHasher {
	return NewBcryptHasher(0)
}

type verifierParams struct {
	fx.In

	Config *config.Config
	Hasher TokenHasher
	Logger *slog.Logger
}

func newPeerVerifier(p verifierParams) *PeerVerifier {
	if p.Config.PeerTokenHash == "" {
		p.Logger.Warn("peer token hash not configured, inbound peer routes are unauthenticated")
	}
	return NewPeerVerifier(p.Config.PeerTokenHash, p.Hasher)
}
