package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/fx"

	"github.com/Zaqui712/B-FO/internal/observability"
	"github.com/Zaqui712/B-FO/internal/server/http/handlers"
	"github.com/Zaqui712/B-FO/internal/server/http/middleware"
)

type setupParams struct {
	fx.In

	Facade      handlers.OrderSyncFacade
	Verifier    middleware.TokenVerifier
	Logger      *slog.Logger
	Instruments *observability.Instruments
}

func setup(p setupParams) *gin.Engine {
	return Setup(p.Facade, p.Verifier, p.Logger, p.Instruments)
}

// Setup configures gin router with handlers and middleware. Only the routes
// the peer calls sit behind PeerAuth.
func Setup(facade handlers.OrderSyncFacade, verifier middleware.TokenVerifier, logger *slog.Logger, inst *observability.Instruments) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(observability.ServiceName, otelgin.WithTracerProvider(inst.TracerProvider)))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(middleware.MaxDecompressedBytes))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	ingestHandler := handlers.NewIngestHandler(facade)
	statusHandler := handlers.NewStatusHandler(facade)
	queryHandler := handlers.NewQueryHandler(facade)

	api := engine.Group("/api")

	receive := api.Group("/receive-encomenda")
	receive.Use(middleware.PeerAuth(verifier))
	receive.POST("", ingestHandler.Receive)
	receive.POST("/batch", ingestHandler.ReceiveBatch)

	api.PUT("/send-encomenda", statusHandler.Send)
	api.GET("/encomendas", queryHandler.List)
	api.GET("/encomendas/:id", queryHandler.Get)
	api.PUT("/encomendas/:id/approval", statusHandler.Approve)

	return engine
}
