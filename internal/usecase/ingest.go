package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/Zaqui712/B-FO/internal/domain/errors"
	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/domain/repository"
	"github.com/Zaqui712/B-FO/internal/observability"
)

const ingestTracerName = "github.com/Zaqui712/B-FO/internal/usecase/ingest"

// IngestUseCase persists one incoming order and its lines atomically.
type IngestUseCase struct {
	orders   repository.OrderRepository
	resolver *Resolver
	policy   model.IdentityPolicy
	logger   *slog.Logger
	tracer   trace.Tracer
	outcomes metric.Int64Counter
}

// NewIngestUseCase constructs IngestUseCase.
func NewIngestUseCase(orders repository.OrderRepository, resolver *Resolver, policy model.IdentityPolicy, logger *slog.Logger, inst *observability.Instruments) *IngestUseCase {
	outcomes, _ := inst.Meter(ingestTracerName).Int64Counter("ordersync.ingest.outcomes",
		metric.WithDescription("Ingested orders by outcome"))
	return &IngestUseCase{
		orders:   orders,
		resolver: resolver,
		policy:   policy,
		logger:   logger,
		tracer:   inst.Tracer(ingestTracerName),
		outcomes: outcomes,
	}
}

// Ingest resolves and writes the order in a single transaction. Nothing from a
// rejected or failed order is left in the store.
func (u *IngestUseCase) Ingest(ctx context.Context, order model.Order) model.IngestResult {
	txn := uuid.NewString()
	logger := u.logger.With(slog.String("txn", txn))

	ctx, span := u.tracer.Start(ctx, "IngestUseCase.Ingest", trace.WithAttributes(
		attribute.String("txn", txn),
		attribute.Int64("order.id", order.ID),
		attribute.Int64("order.status_id", order.StatusID),
		attribute.Int64("order.supplier_id", order.SupplierID),
		attribute.Int("order.lines", len(order.Lines)),
	))
	defer span.End()

	order.ExternalKey = strings.TrimSpace(order.ExternalKey)
	if err := ValidateIncoming(order, u.policy); err != nil {
		return u.finish(ctx, span, logger, model.IngestResult{Status: model.IngestRejected, Reason: model.ReasonMissingField, Err: err})
	}

	var result model.IngestResult
	err := u.orders.WithinTx(ctx, func(w repository.OrderWriter) error {
		decision, err := u.resolver.Resolve(ctx, w, order)
		if err != nil {
			return fmt.Errorf("resolve: %w", err)
		}
		span.SetAttributes(attribute.String("resolution", decision.Resolution.String()))

		switch decision.Resolution {
		case ResolveDuplicate:
			return &domainErrors.ConflictError{OrderID: decision.Target.ID}
		case ResolveUpdate:
			id := decision.Target.ID
			if err := w.UpdateOrder(ctx, id, order); err != nil {
				return err
			}
			if u.policy.ReplaceLinesOnSync {
				if err := w.DeleteLines(ctx, id); err != nil {
					return err
				}
				if err := insertLines(ctx, w, id, order.Lines); err != nil {
					return err
				}
			}
			result = model.IngestResult{Status: model.IngestCommitted, OrderID: id, Updated: true}
		default:
			id, err := w.InsertOrder(ctx, order, u.policy.Scheme == model.IdentityCallerSupplied)
			if err != nil {
				return err
			}
			if err := insertLines(ctx, w, id, order.Lines); err != nil {
				return err
			}
			result = model.IngestResult{Status: model.IngestCommitted, OrderID: id}
		}
		return nil
	})
	if err != nil {
		result = classifyIngestError(err)
	}

	return u.finish(ctx, span, logger, result)
}

func insertLines(ctx context.Context, w repository.OrderWriter, orderID int64, lines []model.OrderLine) error {
	for i, line := range lines {
		if line.ItemID <= 0 {
			return fmt.Errorf("line %d: %w", i, domainErrors.ErrMissingItemID)
		}
		line.OrderID = orderID
		if err := w.InsertLine(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func classifyIngestError(err error) model.IngestResult {
	var conflict *domainErrors.ConflictError
	switch {
	case errors.As(err, &conflict):
		return model.IngestResult{Status: model.IngestRejected, Reason: model.ReasonDuplicate, OrderID: conflict.OrderID, Err: err}
	case errors.Is(err, domainErrors.ErrMissingItemID):
		return model.IngestResult{Status: model.IngestFailed, Reason: model.ReasonMissingItemID, Err: err}
	case errors.Is(err, domainErrors.ErrMissingField):
		return model.IngestResult{Status: model.IngestRejected, Reason: model.ReasonMissingField, Err: err}
	case errors.Is(err, domainErrors.ErrInvalidRef):
		return model.IngestResult{Status: model.IngestRejected, Reason: model.ReasonInvalidRef, Err: err}
	case errors.Is(err, domainErrors.ErrInvalidPayload):
		return model.IngestResult{Status: model.IngestRejected, Reason: model.ReasonInvalidPayload, Err: err}
	default:
		return model.IngestResult{
			Status: model.IngestFailed,
			Reason: model.ReasonTransaction,
			Err:    &domainErrors.TransactionError{Op: "ingest", Err: err},
		}
	}
}

func (u *IngestUseCase) finish(ctx context.Context, span trace.Span, logger *slog.Logger, result model.IngestResult) model.IngestResult {
	attrs := []any{
		slog.String("status", string(result.Status)),
		slog.Int64("order_id", result.OrderID),
	}
	switch result.Status {
	case model.IngestCommitted:
		logger.InfoContext(ctx, "order ingested", append(attrs, slog.Bool("updated", result.Updated))...)
	case model.IngestRejected:
		logger.WarnContext(ctx, "order rejected", append(attrs, slog.String("reason", result.Reason), slog.String("error", result.Err.Error()))...)
	default:
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Reason)
		logger.ErrorContext(ctx, "order ingestion failed", append(attrs, slog.String("reason", result.Reason), slog.String("error", result.Err.Error()))...)
	}

	if u.outcomes != nil {
		u.outcomes.Add(ctx, 1, metric.WithAttributes(
			attribute.String("status", string(result.Status)),
			attribute.String("reason", result.Reason),
		))
	}
	return result
}
