package usecase

import (
	"context"
	"log/slog"

	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/domain/repository"
)

// Resolution tells the ingestion engine what to do with an incoming order.
type Resolution int

const (
	ResolveNew Resolution = iota
	ResolveDuplicate
	ResolveUpdate
)

func (r Resolution) String() string {
	switch r {
	case ResolveNew:
		return "new"
	case ResolveDuplicate:
		return "duplicate"
	case ResolveUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Decision is the resolver output. Target is set for duplicates and updates.
type Decision struct {
	Resolution Resolution
	Target     *model.Order
	Matches    int
}

// Resolver decides whether an incoming order is new, a duplicate or an update.
type Resolver struct {
	policy model.IdentityPolicy
	logger *slog.Logger
}

// NewResolver constructs Resolver for a fixed identity policy.
func NewResolver(policy model.IdentityPolicy, logger *slog.Logger) *Resolver {
	return &Resolver{policy: policy, logger: logger}
}

// Criteria returns the lookup the active match key implies for the order.
func (r *Resolver) Criteria(order model.Order) repository.MatchCriteria {
	var c repository.MatchCriteria
	switch r.policy.Match {
	case model.MatchIdentity, model.MatchIdentityStatus:
		switch r.policy.Scheme {
		case model.IdentityCallerSupplied:
			id := order.ID
			c.ID = &id
		case model.IdentityExternalKey:
			key := order.ExternalKey
			c.ExternalKey = &key
		}
		if r.policy.Match == model.MatchIdentityStatus {
			status := order.StatusID
			c.StatusID = &status
		}
	case model.MatchStatusSupplier:
		status, supplier := order.StatusID, order.SupplierID
		c.StatusID = &status
		c.SupplierID = &supplier
	}
	return c
}

// Resolve reads the store through w, inside the caller's transaction.
func (r *Resolver) Resolve(ctx context.Context, w repository.OrderWriter, incoming model.Order) (Decision, error) {
	criteria := r.Criteria(incoming)
	if criteria.Empty() {
		return Decision{Resolution: ResolveNew}, nil
	}

	existing, matches, err := w.FindMatch(ctx, criteria)
	if err != nil {
		return Decision{}, err
	}
	if existing == nil {
		return Decision{Resolution: ResolveNew}, nil
	}
	if matches > 1 && r.logger != nil {
		r.logger.WarnContext(ctx, "order matches several rows, using lowest id",
			slog.Int64("order_id", existing.ID),
			slog.Int("matches", matches),
			slog.String("match_key", string(r.policy.Match)),
		)
	}

	if r.policy.OnDuplicate == model.DuplicateUpsert {
		return Decision{Resolution: ResolveUpdate, Target: existing, Matches: matches}, nil
	}
	return Decision{Resolution: ResolveDuplicate, Target: existing, Matches: matches}, nil
}
