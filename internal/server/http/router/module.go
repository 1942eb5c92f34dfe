package router

import (
	"go.uber.org/fx"

	pkgAuth "github.com/Zaqui712/B-FO/internal/pkg/auth"
	"github.com/Zaqui712/B-FO/internal/server/http/middleware"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(
	setup,
	func(v *pkgAuth.PeerVerifier) middleware.TokenVerifier { return v },
)
