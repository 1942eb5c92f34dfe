package handlers

import (
	"context"

	"github.com/Zaqui712/B-FO/internal/domain/model"
)

// IngestFacade accepts orders pushed by the peer.
type IngestFacade interface {
	Ingest(ctx context.Context, order model.Order) model.IngestResult
	IngestBatch(ctx context.Context, orders []model.Order) (model.BatchResult, error)
}

// StatusFacade applies local status changes.
type StatusFacade interface {
	UpdateDelivery(ctx context.Context, update model.DeliveryUpdate) (*model.Order, error)
	Approve(ctx context.Context, orderID int64, approved bool) error
}

// QueryFacade serves read-only listings.
type QueryFacade interface {
	List(ctx context.Context) ([]model.Order, error)
	Get(ctx context.Context, id int64) (*model.Order, error)
}

// OrderSyncFacade aggregates the full set of operations used across handlers.
type OrderSyncFacade interface {
	IngestFacade
	StatusFacade
	QueryFacade
}
