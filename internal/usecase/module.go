package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/Zaqui712/B-FO/internal/config"
	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/domain/repository"
	"github.com/Zaqui712/B-FO/internal/observability"
)

// Module provides the order synchronization use cases to the fx container.
var Module = fx.Provide(
	newResolver,
	newIngestUseCase,
	newBatchUseCase,
	NewStatusUseCase,
	NewQueryUseCase,
)

func newResolver(policy model.IdentityPolicy, logger *slog.Logger) *Resolver {
	return NewResolver(policy, logger)
}

type ingestParams struct {
	fx.In

	Orders      repository.OrderRepository
	Resolver    *Resolver
	Policy      model.IdentityPolicy
	Logger      *slog.Logger
	Instruments *observability.Instruments
}

func newIngestUseCase(p ingestParams) *IngestUseCase {
	return NewIngestUseCase(p.Orders, p.Resolver, p.Policy, p.Logger, p.Instruments)
}

func newBatchUseCase(ingest *IngestUseCase, cfg *config.Config, logger *slog.Logger) *BatchUseCase {
	return NewBatchUseCase(ingest, cfg.BatchConcurrency, logger)
}
