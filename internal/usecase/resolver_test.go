package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/domain/repository"
	testhelpers "github.com/Zaqui712/B-FO/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func resolveWith(t *testing.T, store *testhelpers.MemoryOrderStore, policy model.IdentityPolicy, order model.Order) (Decision, error) {
	t.Helper()
	resolver := NewResolver(policy, discardLogger())
	var (
		decision Decision
		err      error
	)
	txErr := store.WithinTx(context.Background(), func(w repository.OrderWriter) error {
		decision, err = resolver.Resolve(context.Background(), w, order)
		return nil
	})
	if txErr != nil {
		t.Fatalf("unexpected transaction error: %v", txErr)
	}
	return decision, err
}

func TestResolverCriteria(t *testing.T) {
	order := model.Order{ID: 4, ExternalKey: "SH-4", StatusID: 2, SupplierID: 7}

	cases := []struct {
		name   string
		policy model.IdentityPolicy
		check  func(repository.MatchCriteria) bool
	}{
		{"caller identity", model.IdentityPolicy{Scheme: model.IdentityCallerSupplied, Match: model.MatchIdentity},
			func(c repository.MatchCriteria) bool {
				return c.ID != nil && *c.ID == 4 && c.StatusID == nil && c.ExternalKey == nil
			}},
		{"caller identity and status", model.IdentityPolicy{Scheme: model.IdentityCallerSupplied, Match: model.MatchIdentityStatus},
			func(c repository.MatchCriteria) bool { return c.ID != nil && c.StatusID != nil && *c.StatusID == 2 }},
		{"external key", model.IdentityPolicy{Scheme: model.IdentityExternalKey, Match: model.MatchIdentity},
			func(c repository.MatchCriteria) bool { return c.ExternalKey != nil && *c.ExternalKey == "SH-4" && c.ID == nil }},
		{"status and supplier", model.IdentityPolicy{Scheme: model.IdentityStoreGenerated, Match: model.MatchStatusSupplier},
			func(c repository.MatchCriteria) bool {
				return c.StatusID != nil && c.SupplierID != nil && *c.SupplierID == 7 && c.ID == nil
			}},
		{"no dedup", model.IdentityPolicy{Scheme: model.IdentityStoreGenerated, Match: model.MatchNone},
			func(c repository.MatchCriteria) bool { return c.Empty() }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewResolver(tc.policy, nil).Criteria(order)
			if !tc.check(c) {
				t.Fatalf("unexpected criteria %+v", c)
			}
		})
	}
}

func TestResolverDecisions(t *testing.T) {
	reject := model.DefaultIdentityPolicy()
	upsert := reject
	upsert.OnDuplicate = model.DuplicateUpsert

	store := testhelpers.NewMemoryOrderStore()
	store.Seed(model.Order{ID: 10, StatusID: 2, SupplierID: 7})

	decision, err := resolveWith(t, store, reject, model.Order{ID: 11, StatusID: 2, SupplierID: 7})
	if err != nil || decision.Resolution != ResolveNew || decision.Target != nil {
		t.Fatalf("expected new, got %+v err=%v", decision, err)
	}

	decision, err = resolveWith(t, store, reject, model.Order{ID: 10, StatusID: 2, SupplierID: 7})
	if err != nil || decision.Resolution != ResolveDuplicate || decision.Target.ID != 10 {
		t.Fatalf("expected duplicate of 10, got %+v err=%v", decision, err)
	}

	decision, err = resolveWith(t, store, reject, model.Order{ID: 10, StatusID: 3, SupplierID: 7})
	if err != nil || decision.Resolution != ResolveNew {
		t.Fatalf("expected identity with another status to be new, got %+v err=%v", decision, err)
	}

	decision, err = resolveWith(t, store, upsert, model.Order{ID: 10, StatusID: 2, SupplierID: 7})
	if err != nil || decision.Resolution != ResolveUpdate || decision.Target.ID != 10 {
		t.Fatalf("expected update target 10, got %+v err=%v", decision, err)
	}
}

func TestResolverPicksLowestIdentityOnAmbiguousMatch(t *testing.T) {
	policy := model.IdentityPolicy{Scheme: model.IdentityStoreGenerated, Match: model.MatchStatusSupplier, OnDuplicate: model.DuplicateUpsert}
	store := testhelpers.NewMemoryOrderStore()
	store.Seed(
		model.Order{ID: 31, StatusID: 1, SupplierID: 3},
		model.Order{ID: 12, StatusID: 1, SupplierID: 3},
		model.Order{ID: 20, StatusID: 1, SupplierID: 3},
	)

	decision, err := resolveWith(t, store, policy, model.Order{StatusID: 1, SupplierID: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Target == nil || decision.Target.ID != 12 || decision.Matches != 3 {
		t.Fatalf("expected lowest id 12 out of 3 matches, got %+v", decision)
	}
}

func TestResolverSkipsLookupWithoutDedup(t *testing.T) {
	policy := model.IdentityPolicy{Scheme: model.IdentityStoreGenerated, Match: model.MatchNone, OnDuplicate: model.DuplicateReject}
	store := testhelpers.NewMemoryOrderStore()
	store.Seed(model.Order{ID: 1, StatusID: 1, SupplierID: 3})

	decision, err := resolveWith(t, store, policy, model.Order{StatusID: 1, SupplierID: 3})
	if err != nil || decision.Resolution != ResolveNew {
		t.Fatalf("expected new, got %+v err=%v", decision, err)
	}
	if store.Finds != 0 {
		t.Fatalf("expected no lookup, got %d", store.Finds)
	}
}

func TestResolverPropagatesReadError(t *testing.T) {
	store := testhelpers.NewMemoryOrderStore()
	store.FindErr = errors.New("read failed")

	if _, err := resolveWith(t, store, model.DefaultIdentityPolicy(), model.Order{ID: 1, StatusID: 1, SupplierID: 1}); err == nil {
		t.Fatal("expected read error")
	}
}

func TestResolutionString(t *testing.T) {
	for r, want := range map[Resolution]string{ResolveNew: "new", ResolveDuplicate: "duplicate", ResolveUpdate: "update", Resolution(9): "unknown"} {
		if r.String() != want {
			t.Fatalf("expected %q, got %q", want, r.String())
		}
	}
}
