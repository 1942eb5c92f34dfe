package usecase

import (
	"strings"

	domainErrors "github.com/Zaqui712/B-FO/internal/domain/errors"
	"github.com/Zaqui712/B-FO/internal/domain/model"
)

// Payload field names reported in validation errors.
const (
	FieldOrderID     = "encomendaID"
	FieldExternalKey = "externalOrderKey"
	FieldStatusID    = "estadoID"
	FieldSupplierID  = "fornecedorID"
	FieldComplete    = "encomendaCompleta"
	FieldDeliveredAt = "dataEntrega"
)

// ValidateIncoming checks the fields the identity policy makes mandatory.
func ValidateIncoming(order model.Order, policy model.IdentityPolicy) error {
	switch policy.Scheme {
	case model.IdentityCallerSupplied:
		if order.ID <= 0 {
			return domainErrors.NewMissingField(FieldOrderID)
		}
	case model.IdentityExternalKey:
		if strings.TrimSpace(order.ExternalKey) == "" {
			return domainErrors.NewMissingField(FieldExternalKey)
		}
	}
	if order.StatusID <= 0 {
		return domainErrors.NewMissingField(FieldStatusID)
	}
	if order.SupplierID <= 0 {
		return domainErrors.NewMissingField(FieldSupplierID)
	}
	return nil
}

// ValidateDeliveryUpdate checks a local delivery update before it is stored.
func ValidateDeliveryUpdate(update model.DeliveryUpdate) error {
	if update.OrderID <= 0 {
		return domainErrors.NewMissingField(FieldOrderID)
	}
	if update.DeliveredAt.IsZero() {
		return domainErrors.NewMissingField(FieldDeliveredAt)
	}
	return nil
}
