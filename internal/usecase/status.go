package usecase

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/Zaqui712/B-FO/internal/domain/errors"
	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/domain/repository"
	"github.com/Zaqui712/B-FO/internal/observability"
)

const statusTracerName = "github.com/Zaqui712/B-FO/internal/usecase/status"

// StatusDispatcher notifies the peer about a committed order without blocking.
type StatusDispatcher interface {
	Dispatch(order model.Order)
}

// StatusUseCase applies local status changes.
type StatusUseCase struct {
	orders     repository.OrderRepository
	dispatcher StatusDispatcher
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewStatusUseCase constructs StatusUseCase.
func NewStatusUseCase(orders repository.OrderRepository, dispatcher StatusDispatcher, logger *slog.Logger, inst *observability.Instruments) *StatusUseCase {
	return &StatusUseCase{
		orders:     orders,
		dispatcher: dispatcher,
		logger:     logger,
		tracer:     inst.Tracer(statusTracerName),
	}
}

// UpdateDelivery commits the delivery fields and only then hands the order to
// the dispatcher. A dispatch failure never touches the committed row.
func (u *StatusUseCase) UpdateDelivery(ctx context.Context, update model.DeliveryUpdate) (*model.Order, error) {
	ctx, span := u.tracer.Start(ctx, "StatusUseCase.UpdateDelivery",
		trace.WithAttributes(attribute.Int64("order.id", update.OrderID), attribute.Bool("order.complete", update.Complete)))
	defer span.End()

	if err := ValidateDeliveryUpdate(update); err != nil {
		return nil, err
	}

	var updated *model.Order
	err := u.orders.WithinTx(ctx, func(w repository.OrderWriter) error {
		var err error
		updated, err = w.UpdateDelivery(ctx, update)
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, err
		}
		u.logger.ErrorContext(ctx, "delivery update failed", slog.Int64("order_id", update.OrderID), slog.String("error", err.Error()))
		return nil, &domainErrors.TransactionError{Op: "update delivery", Err: err}
	}

	u.logger.InfoContext(ctx, "delivery updated",
		slog.Int64("order_id", updated.ID),
		slog.Bool("complete", update.Complete),
		slog.String("delivered_at", update.DeliveredAt.Format(model.DateLayout)),
	)
	u.dispatcher.Dispatch(*updated)
	return updated, nil
}

// Approve records the administrative decision on an order. The peer is not notified.
func (u *StatusUseCase) Approve(ctx context.Context, orderID int64, approved bool) error {
	if orderID <= 0 {
		return domainErrors.NewMissingField(FieldOrderID)
	}
	err := u.orders.WithinTx(ctx, func(w repository.OrderWriter) error {
		return w.UpdateApproval(ctx, orderID, approved)
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return err
		}
		return &domainErrors.TransactionError{Op: "approve", Err: err}
	}
	u.logger.InfoContext(ctx, "order approval recorded", slog.Int64("order_id", orderID), slog.Bool("approved", approved))
	return nil
}
