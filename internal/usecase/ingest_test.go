package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	domainErrors "github.com/Zaqui712/B-FO/internal/domain/errors"
	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/observability"
	testhelpers "github.com/Zaqui712/B-FO/internal/test"
)

func intPtr(v int) *int { return &v }

func generatedPolicy() model.IdentityPolicy {
	return model.IdentityPolicy{
		Scheme:      model.IdentityStoreGenerated,
		Match:       model.MatchStatusSupplier,
		OnDuplicate: model.DuplicateReject,
	}
}

func newIngest(store *testhelpers.MemoryOrderStore, policy model.IdentityPolicy) *IngestUseCase {
	logger := discardLogger()
	return NewIngestUseCase(store, NewResolver(policy, logger), policy, logger, observability.Noop())
}

func sampleOrder() model.Order {
	return model.Order{
		StatusID:   model.StatusApproved,
		SupplierID: 7,
		Lines: []model.OrderLine{
			{ItemID: 5, Quantity: intPtr(3)},
			{ItemID: 9, Quantity: intPtr(1)},
		},
	}
}

func TestIngestCommitsOrderWithLines(t *testing.T) {
	store := testhelpers.NewMemoryOrderStore()
	uc := newIngest(store, generatedPolicy())

	result := uc.Ingest(context.Background(), sampleOrder())
	if !result.Committed() || result.Updated {
		t.Fatalf("expected fresh commit, got %+v", result)
	}
	stored, ok := store.Snapshot(result.OrderID)
	if !ok {
		t.Fatalf("order %d not stored", result.OrderID)
	}
	if stored.StatusID != model.StatusApproved || stored.SupplierID != 7 || len(stored.Lines) != 2 {
		t.Fatalf("unexpected stored order %+v", stored)
	}
	for _, line := range stored.Lines {
		if line.OrderID != result.OrderID {
			t.Fatalf("line not attached to order: %+v", line)
		}
	}
}

func TestIngestRejectsRepeatedOrderWithoutSideEffects(t *testing.T) {
	store := testhelpers.NewMemoryOrderStore()
	uc := newIngest(store, generatedPolicy())

	first := uc.Ingest(context.Background(), sampleOrder())
	if !first.Committed() {
		t.Fatalf("expected first ingestion to commit, got %+v", first)
	}

	for i := 0; i < 3; i++ {
		again := uc.Ingest(context.Background(), sampleOrder())
		if again.Status != model.IngestRejected || again.Reason != model.ReasonDuplicate {
			t.Fatalf("expected duplicate rejection, got %+v", again)
		}
		if again.OrderID != first.OrderID {
			t.Fatalf("expected conflict with %d, got %d", first.OrderID, again.OrderID)
		}
		if !errors.Is(again.Err, domainErrors.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", again.Err)
		}
	}

	if store.Count() != 1 || store.LineCount() != 2 {
		t.Fatalf("store changed: orders=%d lines=%d", store.Count(), store.LineCount())
	}
}

func TestIngestCallerSuppliedIdentity(t *testing.T) {
	store := testhelpers.NewMemoryOrderStore()
	uc := newIngest(store, model.DefaultIdentityPolicy())

	order := sampleOrder()
	order.ID = 42
	result := uc.Ingest(context.Background(), order)
	if !result.Committed() || result.OrderID != 42 {
		t.Fatalf("expected order 42 committed, got %+v", result)
	}

	order.StatusID = model.StatusRejected
	result = uc.Ingest(context.Background(), order)
	if result.Status != model.IngestRejected || result.Reason != model.ReasonDuplicate {
		t.Fatalf("expected primary key conflict, got %+v", result)
	}
	if store.Count() != 1 {
		t.Fatalf("expected one order, got %d", store.Count())
	}
}

func TestIngestExternalKeyConflictFromConstraint(t *testing.T) {
	policy := model.IdentityPolicy{Scheme: model.IdentityExternalKey, Match: model.MatchNone, OnDuplicate: model.DuplicateReject}
	store := testhelpers.NewMemoryOrderStore()
	uc := newIngest(store, policy)

	order := sampleOrder()
	order.ExternalKey = testhelpers.RandomExternalKey()
	if result := uc.Ingest(context.Background(), order); !result.Committed() {
		t.Fatalf("expected commit, got %+v", result)
	}
	result := uc.Ingest(context.Background(), order)
	if result.Status != model.IngestRejected || result.Reason != model.ReasonDuplicate {
		t.Fatalf("expected duplicate from unique key, got %+v", result)
	}
	if store.Finds != 0 {
		t.Fatalf("expected no lookups without match key, got %d", store.Finds)
	}
}

func TestIngestExternalKeyIgnoresSurroundingWhitespace(t *testing.T) {
	policy := model.IdentityPolicy{Scheme: model.IdentityExternalKey, Match: model.MatchIdentity, OnDuplicate: model.DuplicateReject}
	store := testhelpers.NewMemoryOrderStore()
	uc := newIngest(store, policy)

	order := sampleOrder()
	order.ExternalKey = "K1"
	first := uc.Ingest(context.Background(), order)
	if !first.Committed() {
		t.Fatalf("expected commit, got %+v", first)
	}

	order.ExternalKey = " K1\n"
	again := uc.Ingest(context.Background(), order)
	if again.Status != model.IngestRejected || again.Reason != model.ReasonDuplicate || again.OrderID != first.OrderID {
		t.Fatalf("expected duplicate of %d, got %+v", first.OrderID, again)
	}
	stored, _ := store.Snapshot(first.OrderID)
	if stored.ExternalKey != "K1" || store.Count() != 1 {
		t.Fatalf("unexpected store state: key=%q orders=%d", stored.ExternalKey, store.Count())
	}
}

func TestIngestRollsBackWhenLineInsertFails(t *testing.T) {
	store := testhelpers.NewMemoryOrderStore()
	store.InsertLineErr = func(line model.OrderLine) error {
		if line.ItemID == 9 {
			return errors.New("connection reset")
		}
		return nil
	}
	uc := newIngest(store, generatedPolicy())

	result := uc.Ingest(context.Background(), sampleOrder())
	if result.Status != model.IngestFailed || result.Reason != model.ReasonTransaction {
		t.Fatalf("expected transaction failure, got %+v", result)
	}
	var txErr *domainErrors.TransactionError
	if !errors.As(result.Err, &txErr) || txErr.Op != "ingest" {
		t.Fatalf("expected TransactionError, got %v", result.Err)
	}
	if store.Count() != 0 || store.LineCount() != 0 {
		t.Fatalf("partial write left behind: orders=%d lines=%d", store.Count(), store.LineCount())
	}
	if store.Rollbacks != 1 || store.Commits != 0 {
		t.Fatalf("expected one rollback, got commits=%d rollbacks=%d", store.Commits, store.Rollbacks)
	}
}

func TestIngestMissingItemRollsBack(t *testing.T) {
	store := testhelpers.NewMemoryOrderStore()
	uc := newIngest(store, generatedPolicy())

	order := sampleOrder()
	order.Lines = append(order.Lines, model.OrderLine{Quantity: intPtr(2)})
	result := uc.Ingest(context.Background(), order)
	if result.Status != model.IngestFailed || result.Reason != model.ReasonMissingItemID {
		t.Fatalf("expected missing item failure, got %+v", result)
	}
	if store.Count() != 0 || store.LineCount() != 0 {
		t.Fatalf("expected nothing stored, got orders=%d lines=%d", store.Count(), store.LineCount())
	}
}

func TestIngestMissingFieldSkipsTransaction(t *testing.T) {
	store := testhelpers.NewMemoryOrderStore()
	uc := newIngest(store, generatedPolicy())

	order := sampleOrder()
	order.SupplierID = 0
	result := uc.Ingest(context.Background(), order)
	if result.Status != model.IngestRejected || result.Reason != model.ReasonMissingField {
		t.Fatalf("expected missing field rejection, got %+v", result)
	}
	if store.Commits+store.Rollbacks != 0 {
		t.Fatalf("expected no transaction, got commits=%d rollbacks=%d", store.Commits, store.Rollbacks)
	}
}

func TestIngestRepeatedItemIsInvalidPayload(t *testing.T) {
	store := testhelpers.NewMemoryOrderStore()
	uc := newIngest(store, generatedPolicy())

	order := sampleOrder()
	order.Lines = append(order.Lines, model.OrderLine{ItemID: 5, Quantity: intPtr(1)})
	result := uc.Ingest(context.Background(), order)
	if result.Status != model.IngestRejected || result.Reason != model.ReasonInvalidPayload {
		t.Fatalf("expected invalid payload, got %+v", result)
	}
	if store.Count() != 0 {
		t.Fatalf("expected nothing stored, got %d", store.Count())
	}
}

func TestIngestUnknownReferenceRejected(t *testing.T) {
	store := testhelpers.NewMemoryOrderStore()
	store.InsertLineErr = func(model.OrderLine) error {
		return &domainErrors.ValidationError{Field: "status_id", Err: domainErrors.ErrInvalidRef}
	}
	uc := newIngest(store, generatedPolicy())

	result := uc.Ingest(context.Background(), sampleOrder())
	if result.Status != model.IngestRejected || result.Reason != model.ReasonInvalidRef {
		t.Fatalf("expected invalid reference, got %+v", result)
	}
}

func TestIngestUpsertIsIdempotent(t *testing.T) {
	policy := generatedPolicy()
	policy.OnDuplicate = model.DuplicateUpsert
	store := testhelpers.NewMemoryOrderStore()
	uc := newIngest(store, policy)

	first := uc.Ingest(context.Background(), sampleOrder())
	if !first.Committed() {
		t.Fatalf("expected commit, got %+v", first)
	}

	again := sampleOrder()
	done := true
	again.Complete = &done
	again.Lines = []model.OrderLine{{ItemID: 11, Quantity: intPtr(4)}}
	for i := 0; i < 2; i++ {
		result := uc.Ingest(context.Background(), again)
		if !result.Committed() || !result.Updated || result.OrderID != first.OrderID {
			t.Fatalf("expected update of %d, got %+v", first.OrderID, result)
		}
	}

	stored, _ := store.Snapshot(first.OrderID)
	if store.Count() != 1 || stored.Complete == nil || !*stored.Complete {
		t.Fatalf("expected single updated order, got count=%d %+v", store.Count(), stored)
	}
	if len(stored.Lines) != 2 || stored.Lines[0].ItemID != 5 {
		t.Fatalf("expected original lines kept, got %+v", stored.Lines)
	}
}

func TestIngestUpsertKeepsLocallyOwnedFields(t *testing.T) {
	policy := model.IdentityPolicy{Scheme: model.IdentityCallerSupplied, Match: model.MatchIdentity, OnDuplicate: model.DuplicateUpsert}
	store := testhelpers.NewMemoryOrderStore()
	approved := true
	delivered := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	store.Seed(model.Order{
		ID:              8,
		StatusID:        model.StatusPending,
		SupplierID:      7,
		AdminApproved:   &approved,
		QuantityShipped: intPtr(12),
		DeliveredAt:     &delivered,
	})
	uc := newIngest(store, policy)

	done := true
	redelivery := model.Order{ID: 8, StatusID: model.StatusApproved, SupplierID: 99, Complete: &done}
	result := uc.Ingest(context.Background(), redelivery)
	if !result.Committed() || !result.Updated {
		t.Fatalf("expected update, got %+v", result)
	}

	stored, _ := store.Snapshot(8)
	if stored.AdminApproved == nil || !*stored.AdminApproved {
		t.Fatalf("admin approval must survive a peer redelivery, got %+v", stored.AdminApproved)
	}
	if stored.SupplierID != 7 || stored.QuantityShipped == nil || *stored.QuantityShipped != 12 {
		t.Fatalf("supplier and shipped quantity must stay as stored, got %+v", stored)
	}
	if stored.StatusID != model.StatusApproved || stored.Complete == nil || !*stored.Complete {
		t.Fatalf("expected status and completion updated, got %+v", stored)
	}
	if stored.DeliveredAt == nil || !stored.DeliveredAt.Equal(delivered) {
		t.Fatalf("absent delivery date must not clear the stored one, got %v", stored.DeliveredAt)
	}
}

func TestIngestUpsertReplacesLines(t *testing.T) {
	policy := generatedPolicy()
	policy.OnDuplicate = model.DuplicateUpsert
	policy.ReplaceLinesOnSync = true
	store := testhelpers.NewMemoryOrderStore()
	uc := newIngest(store, policy)

	first := uc.Ingest(context.Background(), sampleOrder())
	again := sampleOrder()
	again.Lines = []model.OrderLine{{ItemID: 11, Quantity: intPtr(4)}}
	if result := uc.Ingest(context.Background(), again); !result.Updated {
		t.Fatalf("expected update, got %+v", result)
	}

	stored, _ := store.Snapshot(first.OrderID)
	if len(stored.Lines) != 1 || stored.Lines[0].ItemID != 11 {
		t.Fatalf("expected lines replaced, got %+v", stored.Lines)
	}
}

func TestIngestTransactionStartFailure(t *testing.T) {
	store := testhelpers.NewMemoryOrderStore()
	store.BeginErr = errors.New("pool exhausted")
	uc := newIngest(store, generatedPolicy())

	result := uc.Ingest(context.Background(), sampleOrder())
	if result.Status != model.IngestFailed || result.Reason != model.ReasonTransaction {
		t.Fatalf("expected transaction failure, got %+v", result)
	}
}

func TestIngestRecordsOutcomeMetric(t *testing.T) {
	ctx := context.Background()
	inst, err := observability.New(ctx, false, nil)
	if err != nil {
		t.Fatalf("instruments: %v", err)
	}
	t.Cleanup(func() { _ = inst.Shutdown(ctx) })

	store := testhelpers.NewMemoryOrderStore()
	policy := generatedPolicy()
	uc := NewIngestUseCase(store, NewResolver(policy, discardLogger()), policy, discardLogger(), inst)
	uc.Ingest(ctx, sampleOrder())
	uc.Ingest(ctx, sampleOrder())

	var rm metricdata.ResourceMetrics
	if err := inst.Reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "ordersync.ingest.outcomes" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 2 {
		t.Fatalf("expected two recorded outcomes, got %d", total)
	}
}
