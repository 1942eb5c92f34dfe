package app

import (
	"context"

	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/domain/repository"
	"github.com/Zaqui712/B-FO/internal/usecase"
)

// OrderSyncFacade exposes the use cases to the HTTP layer and the sweeper.
type OrderSyncFacade struct {
	ingest *usecase.IngestUseCase
	batch  *usecase.BatchUseCase
	status *usecase.StatusUseCase
	query  *usecase.QueryUseCase
}

func NewOrderSyncFacade(ingest *usecase.IngestUseCase, batch *usecase.BatchUseCase, status *usecase.StatusUseCase, query *usecase.QueryUseCase) *OrderSyncFacade {
	return &OrderSyncFacade{ingest: ingest, batch: batch, status: status, query: query}
}

func (f *OrderSyncFacade) Ingest(ctx context.Context, order model.Order) model.IngestResult {
	return f.ingest.Ingest(ctx, order)
}

func (f *OrderSyncFacade) IngestBatch(ctx context.Context, orders []model.Order) (model.BatchResult, error) {
	return f.batch.IngestBatch(ctx, orders)
}

func (f *OrderSyncFacade) UpdateDelivery(ctx context.Context, update model.DeliveryUpdate) (*model.Order, error) {
	return f.status.UpdateDelivery(ctx, update)
}

func (f *OrderSyncFacade) Approve(ctx context.Context, orderID int64, approved bool) error {
	return f.status.Approve(ctx, orderID, approved)
}

func (f *OrderSyncFacade) List(ctx context.Context) ([]model.Order, error) {
	return f.query.List(ctx)
}

func (f *OrderSyncFacade) Get(ctx context.Context, id int64) (*model.Order, error) {
	return f.query.Get(ctx, id)
}

func (f *OrderSyncFacade) Incomplete(ctx context.Context, after repository.IncompleteCursor, limit int) ([]model.Order, error) {
	return f.query.Incomplete(ctx, after, limit)
}
