package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists  = errors.New("already exists")
	ErrNotFound       = errors.New("not found")
	ErrMissingField   = errors.New("missing-field")
	ErrMissingItemID  = errors.New("missing-item-id")
	ErrDuplicate      = errors.New("duplicate")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrEmptyBatch     = errors.New("empty batch")
	ErrInvalidRef     = errors.New("invalid-reference")
)

// ValidationError reports a missing or malformed mandatory field. No transaction is opened for it.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Field)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewMissingField builds a ValidationError for an absent mandatory field.
func NewMissingField(field string) *ValidationError {
	return &ValidationError{Field: field, Err: ErrMissingField}
}

// ConflictError is returned when an order already exists under the reject policy.
type ConflictError struct {
	OrderID int64
}

func (e *ConflictError) Error() string {
	if e.OrderID == 0 {
		return ErrDuplicate.Error()
	}
	return fmt.Sprintf("%s: order %d", ErrDuplicate, e.OrderID)
}

func (e *ConflictError) Unwrap() error { return ErrDuplicate }

// TransactionError wraps a store failure that rolled the transaction back.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// RemoteDeliveryError reports a failed push to the peer. Local state is never affected by it.
type RemoteDeliveryError struct {
	StatusCode int
	Err        error
}

func (e *RemoteDeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote delivery failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote delivery failed: %v", e.Err)
}

func (e *RemoteDeliveryError) Unwrap() error { return e.Err }
