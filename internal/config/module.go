package config

import (
	"go.uber.org/fx"

	"github.com/Zaqui712/B-FO/internal/domain/model"
)

// Module loads configuration and exposes the deployment identity policy.
var Module = fx.Provide(
	Load,
	func(c *Config) model.IdentityPolicy { return c.Identity },
)
