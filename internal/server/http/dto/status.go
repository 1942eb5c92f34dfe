package dto

// DeliveryPayload is the local delivery update sent by operators.
type DeliveryPayload struct {
	EncomendaID       int64 `json:"encomendaID"`
	EncomendaCompleta *bool `json:"encomendaCompleta"`
	DataEntrega       *Date `json:"dataEntrega"`
}

// SendRequest wraps a delivery update.
type SendRequest struct {
	Encomenda *DeliveryPayload `json:"encomenda"`
}

// ApprovalRequest records the administrative decision.
type ApprovalRequest struct {
	AprovadoPorAdministrador *bool `json:"aprovadoPorAdministrador"`
}

// MessageResponse acknowledges a status change.
type MessageResponse struct {
	Message     string `json:"message"`
	EncomendaID int64  `json:"encomendaID,omitempty"`
}

// ErrorResponse carries a machine readable reason.
type ErrorResponse struct {
	Error string `json:"error"`
}
