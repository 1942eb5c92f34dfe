package di

import (
	"github.com/Zaqui712/B-FO/internal/adapter/peer"
	"github.com/Zaqui712/B-FO/internal/app"
	"github.com/Zaqui712/B-FO/internal/config"
	"github.com/Zaqui712/B-FO/internal/dispatch"
	"github.com/Zaqui712/B-FO/internal/logger"
	"github.com/Zaqui712/B-FO/internal/observability"
	"github.com/Zaqui712/B-FO/internal/pkg/auth"
	"github.com/Zaqui712/B-FO/internal/server/http/router"
	"github.com/Zaqui712/B-FO/internal/storage/postgres"
	"github.com/Zaqui712/B-FO/internal/usecase"
	"go.uber.org/fx"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		observability.Module,
		auth.Module,
		postgres.Module,
		peer.Module,
		usecase.Module,
		dispatch.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
