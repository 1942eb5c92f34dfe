package usecase

import (
	"context"

	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/domain/repository"
)

// QueryUseCase serves read-only order listings.
type QueryUseCase struct {
	orders repository.OrderRepository
}

// NewQueryUseCase constructs QueryUseCase.
func NewQueryUseCase(orders repository.OrderRepository) *QueryUseCase {
	return &QueryUseCase{orders: orders}
}

// List returns all orders with their lines, most recent first.
func (u *QueryUseCase) List(ctx context.Context) ([]model.Order, error) {
	return u.orders.List(ctx)
}

// Get returns one order with its lines.
func (u *QueryUseCase) Get(ctx context.Context, id int64) (*model.Order, error) {
	return u.orders.GetByID(ctx, id)
}

// Incomplete returns up to limit orders not yet marked complete that follow
// the cursor, oldest first.
func (u *QueryUseCase) Incomplete(ctx context.Context, after repository.IncompleteCursor, limit int) ([]model.Order, error) {
	return u.orders.ListIncomplete(ctx, after, limit)
}
