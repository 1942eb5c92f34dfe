package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zaqui712/B-FO/internal/adapter/peer"
	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/observability"
)

const (
	instrumentationName = "github.com/Zaqui712/B-FO/internal/dispatch"
	defaultTimeout      = 5 * time.Second
)

// ErrNoRemoteID is returned when an order cannot be addressed on the peer.
var ErrNoRemoteID = errors.New("order has no remote identity")

// Dispatcher pushes committed status changes to the peer. Failures are logged
// and counted, never written back to the store.
type Dispatcher struct {
	client   peer.Client
	scheme   model.IdentityScheme
	timeout  time.Duration
	logger   *slog.Logger
	tracer   trace.Tracer
	outcomes metric.Int64Counter

	wg sync.WaitGroup
}

// NewDispatcher constructs Dispatcher.
func NewDispatcher(client peer.Client, scheme model.IdentityScheme, timeout time.Duration, logger *slog.Logger, inst *observability.Instruments) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	outcomes, _ := inst.Meter(instrumentationName).Int64Counter("ordersync.dispatch.outcomes",
		metric.WithDescription("Status pushes to the peer by outcome"))
	return &Dispatcher{
		client:   client,
		scheme:   scheme,
		timeout:  timeout,
		logger:   logger,
		tracer:   inst.Tracer(instrumentationName),
		outcomes: outcomes,
	}
}

// RemoteID returns the identity the peer knows the order by.
func RemoteID(order model.Order, scheme model.IdentityScheme) (any, bool) {
	if scheme == model.IdentityExternalKey {
		return order.ExternalKey, order.ExternalKey != ""
	}
	return order.ID, order.ID > 0
}

// Dispatch schedules a push and returns immediately. The push is detached
// from the caller's context and bounded by the dispatcher timeout.
func (d *Dispatcher) Dispatch(order model.Order) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				d.logger.Error("status dispatch panicked", slog.Int64("order_id", order.ID), slog.Any("panic", p))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		_ = d.Deliver(ctx, order)
	}()
}

// Deliver pushes the order status synchronously.
func (d *Dispatcher) Deliver(ctx context.Context, order model.Order) error {
	ctx, span := d.tracer.Start(ctx, "Dispatcher.Deliver", trace.WithAttributes(attribute.Int64("order.id", order.ID)))
	defer span.End()

	remoteID, ok := RemoteID(order, d.scheme)
	if !ok {
		return d.record(ctx, span, order, fmt.Errorf("order %d: %w", order.ID, ErrNoRemoteID))
	}

	update := model.StatusUpdate{RemoteID: remoteID, DeliveredAt: order.DeliveredAt}
	if order.Complete != nil {
		update.Complete = *order.Complete
	}
	return d.record(ctx, span, order, d.client.SendStatus(ctx, update))
}

func (d *Dispatcher) record(ctx context.Context, span trace.Span, order model.Order, err error) error {
	outcome := "delivered"
	if err != nil {
		outcome = "failed"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.ErrorContext(ctx, "status dispatch failed", slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
	} else {
		d.logger.InfoContext(ctx, "status dispatched", slog.Int64("order_id", order.ID))
	}
	if d.outcomes != nil {
		d.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	return err
}

// Wait blocks until every scheduled push finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
