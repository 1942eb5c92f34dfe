package repository

import (
	"context"
	"time"

	"github.com/Zaqui712/B-FO/internal/domain/model"
)

// MatchCriteria lists the column values an existing order must carry to be
// treated as the same order. Nil fields are not compared.
type MatchCriteria struct {
	ID          *int64
	ExternalKey *string
	StatusID    *int64
	SupplierID  *int64
}

// Empty reports whether no column is compared.
func (c MatchCriteria) Empty() bool {
	return c.ID == nil && c.ExternalKey == nil && c.StatusID == nil && c.SupplierID == nil
}

// IncompleteCursor positions a keyset scan of incomplete orders ordered by
// (ordered_at, id). The zero value starts from the oldest order.
type IncompleteCursor struct {
	OrderedAt time.Time
	ID        int64
}

// CursorAfter returns the cursor that continues the scan after order.
func CursorAfter(order model.Order) IncompleteCursor {
	c := IncompleteCursor{ID: order.ID}
	if order.OrderedAt != nil {
		c.OrderedAt = *order.OrderedAt
	}
	return c
}

// Before reports whether order sorts at or before the cursor position.
func (c IncompleteCursor) Before(order model.Order) bool {
	var at time.Time
	if order.OrderedAt != nil {
		at = *order.OrderedAt
	}
	if !at.Equal(c.OrderedAt) {
		return at.Before(c.OrderedAt)
	}
	return order.ID <= c.ID
}

// OrderWriter is scoped to one transaction and must not outlive it.
type OrderWriter interface {
	// FindMatch returns the matching order with the lowest id together with the
	// total number of matches, or nil when nothing matches.
	FindMatch(ctx context.Context, criteria MatchCriteria) (*model.Order, int, error)
	// InsertOrder stores the order and returns its id. With explicitID the
	// order's own ID is written instead of a generated one.
	InsertOrder(ctx context.Context, order model.Order, explicitID bool) (int64, error)
	InsertLine(ctx context.Context, line model.OrderLine) error
	DeleteLines(ctx context.Context, orderID int64) error
	// UpdateOrder applies a peer redelivery to an existing row. Only the status
	// and, when present, the delivery state change; supplier, approval and
	// shipped quantity stay as stored.
	UpdateOrder(ctx context.Context, orderID int64, order model.Order) error
	UpdateDelivery(ctx context.Context, update model.DeliveryUpdate) (*model.Order, error)
	UpdateApproval(ctx context.Context, orderID int64, approved bool) error
}

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// WithinTx runs fn inside one read-committed transaction. The transaction
	// commits only when fn returns nil.
	WithinTx(ctx context.Context, fn func(OrderWriter) error) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
	// ListIncomplete returns up to limit incomplete orders positioned after the
	// cursor, oldest first.
	ListIncomplete(ctx context.Context, after IncompleteCursor, limit int) ([]model.Order, error)
}
