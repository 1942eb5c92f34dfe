package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/domain/repository"
)

// OrderSyncFacadeStub provides controllable behaviour for HTTP handlers.
type OrderSyncFacadeStub struct {
	IngestFn         func(context.Context, model.Order) model.IngestResult
	BatchFn          func(context.Context, []model.Order) (model.BatchResult, error)
	UpdateDeliveryFn func(context.Context, model.DeliveryUpdate) (*model.Order, error)
	ApproveFn        func(context.Context, int64, bool) error
	ListFn           func(context.Context) ([]model.Order, error)
	GetFn            func(context.Context, int64) (*model.Order, error)
}

// Ingest delegates to IngestFn or commits the order as is.
func (s OrderSyncFacadeStub) Ingest(ctx context.Context, order model.Order) model.IngestResult {
	if s.IngestFn != nil {
		return s.IngestFn(ctx, order)
	}
	return model.IngestResult{Status: model.IngestCommitted, OrderID: order.ID}
}

// IngestBatch delegates to BatchFn or commits every order.
func (s OrderSyncFacadeStub) IngestBatch(ctx context.Context, orders []model.Order) (model.BatchResult, error) {
	if s.BatchFn != nil {
		return s.BatchFn(ctx, orders)
	}
	var result model.BatchResult
	for _, o := range orders {
		result.Add(model.IngestResult{Status: model.IngestCommitted, OrderID: o.ID})
	}
	return result, nil
}

// UpdateDelivery delegates to UpdateDeliveryFn or echoes the update.
func (s OrderSyncFacadeStub) UpdateDelivery(ctx context.Context, update model.DeliveryUpdate) (*model.Order, error) {
	if s.UpdateDeliveryFn != nil {
		return s.UpdateDeliveryFn(ctx, update)
	}
	complete := update.Complete
	delivered := update.DeliveredAt
	return &model.Order{ID: update.OrderID, Complete: &complete, DeliveredAt: &delivered}, nil
}

// Approve delegates to ApproveFn.
func (s OrderSyncFacadeStub) Approve(ctx context.Context, id int64, approved bool) error {
	if s.ApproveFn != nil {
		return s.ApproveFn(ctx, id, approved)
	}
	return nil
}

// List returns configured orders or a single default one.
func (s OrderSyncFacadeStub) List(ctx context.Context) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx)
	}
	return []model.Order{{ID: 1, StatusID: model.StatusPending, SupplierID: 1}}, nil
}

// Get returns the configured order.
func (s OrderSyncFacadeStub) Get(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	return &model.Order{ID: id, StatusID: model.StatusPending, SupplierID: 1}, nil
}

// DispatcherStub records orders handed over for peer notification.
type DispatcherStub struct {
	mu     sync.Mutex
	orders []model.Order
}

// Dispatch stores the order.
func (s *DispatcherStub) Dispatch(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, order)
}

// Orders returns the dispatched orders.
func (s *DispatcherStub) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Order(nil), s.orders...)
}

// PeerClientStub captures status updates sent to the peer.
type PeerClientStub struct {
	SendFn func(context.Context, model.StatusUpdate) error

	mu    sync.Mutex
	calls []model.StatusUpdate
}

// SendStatus records the update and delegates to SendFn.
func (s *PeerClientStub) SendStatus(ctx context.Context, update model.StatusUpdate) error {
	s.mu.Lock()
	s.calls = append(s.calls, update)
	s.mu.Unlock()
	if s.SendFn != nil {
		return s.SendFn(ctx, update)
	}
	return nil
}

// Calls returns the recorded updates.
func (s *PeerClientStub) Calls() []model.StatusUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.StatusUpdate(nil), s.calls...)
}

// SweepSourceStub serves queued batches of incomplete orders.
type SweepSourceStub struct {
	Batches      [][]model.Order
	IncompleteFn func(context.Context, repository.IncompleteCursor, int) ([]model.Order, error)

	calls int32
}

// Incomplete returns the next queued batch, then nothing.
func (s *SweepSourceStub) Incomplete(ctx context.Context, after repository.IncompleteCursor, limit int) ([]model.Order, error) {
	if s.IncompleteFn != nil {
		return s.IncompleteFn(ctx, after, limit)
	}
	call := atomic.AddInt32(&s.calls, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(5 * time.Millisecond)
	return nil, nil
}

// DelivererStub records synchronous deliveries.
type DelivererStub struct {
	DeliverFn func(context.Context, model.Order) error

	mu        sync.Mutex
	delivered []int64
}

// Deliver records the order id and delegates to DeliverFn.
func (s *DelivererStub) Deliver(ctx context.Context, order model.Order) error {
	if s.DeliverFn != nil {
		if err := s.DeliverFn(ctx, order); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, order.ID)
	return nil
}

// Delivered returns ids of successfully delivered orders.
func (s *DelivererStub) Delivered() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.delivered...)
}
