package model

import "fmt"

// IdentityScheme selects where an order's identity comes from.
type IdentityScheme string

const (
	IdentityCallerSupplied IdentityScheme = "caller-supplied"
	IdentityStoreGenerated IdentityScheme = "store-generated"
	IdentityExternalKey    IdentityScheme = "external-key"
)

// MatchKey selects the columns compared when looking for an existing order.
type MatchKey string

const (
	MatchIdentity       MatchKey = "identity"
	MatchIdentityStatus MatchKey = "identity-status"
	MatchStatusSupplier MatchKey = "status-supplier"
	MatchNone           MatchKey = "none"
)

// DuplicatePolicy decides what happens to an incoming order that matches an existing row.
type DuplicatePolicy string

const (
	DuplicateReject DuplicatePolicy = "reject"
	DuplicateUpsert DuplicatePolicy = "upsert"
)

// IdentityPolicy is fixed per deployment and never inferred from a payload.
type IdentityPolicy struct {
	Scheme             IdentityScheme
	Match              MatchKey
	OnDuplicate        DuplicatePolicy
	ReplaceLinesOnSync bool
}

// DefaultIdentityPolicy mirrors the behaviour the peer integration was built against.
func DefaultIdentityPolicy() IdentityPolicy {
	return IdentityPolicy{
		Scheme:      IdentityCallerSupplied,
		Match:       MatchIdentityStatus,
		OnDuplicate: DuplicateReject,
	}
}

// Validate rejects unknown values and combinations that cannot be resolved.
func (p IdentityPolicy) Validate() error {
	switch p.Scheme {
	case IdentityCallerSupplied, IdentityStoreGenerated, IdentityExternalKey:
	default:
		return fmt.Errorf("unknown identity scheme %q", p.Scheme)
	}
	switch p.Match {
	case MatchIdentity, MatchIdentityStatus:
		if p.Scheme == IdentityStoreGenerated {
			return fmt.Errorf("match key %q requires a caller-supplied or external identity", p.Match)
		}
	case MatchStatusSupplier, MatchNone:
	default:
		return fmt.Errorf("unknown match key %q", p.Match)
	}
	switch p.OnDuplicate {
	case DuplicateReject, DuplicateUpsert:
	default:
		return fmt.Errorf("unknown duplicate policy %q", p.OnDuplicate)
	}
	return nil
}
