package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	domainErrors "github.com/Zaqui712/B-FO/internal/domain/errors"
	"github.com/Zaqui712/B-FO/internal/domain/model"
)

// Ingester ingests a single order.
type Ingester interface {
	Ingest(ctx context.Context, order model.Order) model.IngestResult
}

// BatchUseCase applies the ingester to every order of a batch, isolating failures.
type BatchUseCase struct {
	ingester    Ingester
	concurrency int
	logger      *slog.Logger
}

// NewBatchUseCase constructs BatchUseCase. A concurrency of one attempts orders
// strictly in input order.
func NewBatchUseCase(ingester Ingester, concurrency int, logger *slog.Logger) *BatchUseCase {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchUseCase{ingester: ingester, concurrency: concurrency, logger: logger}
}

// IngestBatch returns one result per order, in input order. Only an empty batch
// is an error; individual failures are reported in the result.
func (u *BatchUseCase) IngestBatch(ctx context.Context, orders []model.Order) (model.BatchResult, error) {
	if len(orders) == 0 {
		return model.BatchResult{}, domainErrors.ErrEmptyBatch
	}

	results := make([]model.IngestResult, len(orders))
	var g errgroup.Group
	g.SetLimit(u.concurrency)
	for i := range orders {
		g.Go(func() error {
			results[i] = u.ingestOne(ctx, orders[i])
			return nil
		})
	}
	_ = g.Wait()

	var batch model.BatchResult
	for _, r := range results {
		batch.Add(r)
	}

	u.logger.InfoContext(ctx, "batch ingested",
		slog.Int("size", len(orders)),
		slog.Int("accepted", batch.Accepted),
		slog.Int("rejected", batch.Rejected),
		slog.Int("failed", batch.Failed),
	)
	return batch, nil
}

func (u *BatchUseCase) ingestOne(ctx context.Context, order model.Order) (result model.IngestResult) {
	defer func() {
		if p := recover(); p != nil {
			u.logger.ErrorContext(ctx, "order ingestion panicked", slog.Any("panic", p))
			result = model.IngestResult{
				Status: model.IngestFailed,
				Reason: model.ReasonPanic,
				Err:    fmt.Errorf("ingest panicked: %v", p),
			}
		}
	}()
	return u.ingester.Ingest(ctx, order)
}
