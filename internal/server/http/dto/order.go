package dto

import (
	"encoding/json"
	"strings"

	"github.com/Zaqui712/B-FO/internal/domain/model"
)

// OrderLinePayload is one item of an incoming order. The peer sends either
// itemId or, in its older format, medicamentoID.
type OrderLinePayload struct {
	ItemID        *int64 `json:"itemId,omitempty"`
	MedicamentoID *int64 `json:"medicamentoID,omitempty"`
	Quantity      *int   `json:"quantidade,omitempty"`
}

// OrderPayload describes an order as sent by the peer system.
type OrderPayload struct {
	EncomendaID              int64              `json:"encomendaID,omitempty"`
	ExternalKey              string             `json:"externalOrderKey,omitempty"`
	EstadoID                 int64              `json:"estadoID"`
	FornecedorID             int64              `json:"fornecedorID"`
	EncomendaCompleta        *bool              `json:"encomendaCompleta,omitempty"`
	AprovadoPorAdministrador *bool              `json:"aprovadoPorAdministrador,omitempty"`
	DataEncomenda            *Date              `json:"dataEncomenda,omitempty"`
	DataEntrega              *Date              `json:"dataEntrega,omitempty"`
	QuantidadeEnviada        *int               `json:"quantidadeEnviada,omitempty"`
	Itens                    []OrderLinePayload `json:"itens,omitempty"`
	Medicamentos             []OrderLinePayload `json:"medicamentos,omitempty"`
}

// ReceiveRequest wraps a single incoming order.
type ReceiveRequest struct {
	Encomenda *OrderPayload `json:"encomenda"`
}

// ReceiveBatchRequest carries several orders. Encomendas stays raw so a
// non-array value can be told apart from a malformed order.
type ReceiveBatchRequest struct {
	Encomendas json.RawMessage `json:"encomendas"`
}

// ToModel converts the payload. A line without an item id keeps ItemID zero.
func (p OrderPayload) ToModel() model.Order {
	order := model.Order{
		ID:              p.EncomendaID,
		ExternalKey:     strings.TrimSpace(p.ExternalKey),
		StatusID:        p.EstadoID,
		SupplierID:      p.FornecedorID,
		Complete:        p.EncomendaCompleta,
		AdminApproved:   p.AprovadoPorAdministrador,
		OrderedAt:       p.DataEncomenda.Ptr(),
		DeliveredAt:     p.DataEntrega.Ptr(),
		QuantityShipped: p.QuantidadeEnviada,
	}
	for _, items := range [][]OrderLinePayload{p.Itens, p.Medicamentos} {
		for _, item := range items {
			line := model.OrderLine{Quantity: item.Quantity}
			switch {
			case item.ItemID != nil:
				line.ItemID = *item.ItemID
			case item.MedicamentoID != nil:
				line.ItemID = *item.MedicamentoID
			}
			order.Lines = append(order.Lines, line)
		}
	}
	return order
}

// IngestResponse reports the outcome of one ingested order.
type IngestResponse struct {
	Index       *int   `json:"index,omitempty"`
	Status      string `json:"status"`
	EncomendaID int64  `json:"encomendaID,omitempty"`
	Updated     bool   `json:"updated,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewIngestResponse converts an ingest result.
func NewIngestResponse(r model.IngestResult) IngestResponse {
	resp := IngestResponse{
		Status:      string(r.Status),
		EncomendaID: r.OrderID,
		Updated:     r.Updated,
		Reason:      r.Reason,
	}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}

// BatchResponse summarises a batch.
type BatchResponse struct {
	Accepted int              `json:"accepted"`
	Rejected int              `json:"rejected"`
	Failed   int              `json:"failed"`
	Results  []IngestResponse `json:"results"`
}

// NewBatchResponse converts a batch result, keeping input order.
func NewBatchResponse(b model.BatchResult) BatchResponse {
	resp := BatchResponse{
		Accepted: b.Accepted,
		Rejected: b.Rejected,
		Failed:   b.Failed,
		Results:  make([]IngestResponse, 0, len(b.Results)),
	}
	for i, r := range b.Results {
		item := NewIngestResponse(r)
		item.Index = &i
		resp.Results = append(resp.Results, item)
	}
	return resp
}

// OrderLineResponse is one line in an order listing.
type OrderLineResponse struct {
	ItemID   int64 `json:"itemId"`
	Quantity *int  `json:"quantidade,omitempty"`
}

// OrderResponse is an order in a listing.
type OrderResponse struct {
	EncomendaID              int64               `json:"encomendaID"`
	ExternalKey              string              `json:"externalOrderKey,omitempty"`
	EstadoID                 int64               `json:"estadoID"`
	FornecedorID             int64               `json:"fornecedorID"`
	EncomendaCompleta        *bool               `json:"encomendaCompleta"`
	AprovadoPorAdministrador *bool               `json:"aprovadoPorAdministrador"`
	DataEncomenda            *Date               `json:"dataEncomenda"`
	DataEntrega              *Date               `json:"dataEntrega"`
	QuantidadeEnviada        *int                `json:"quantidadeEnviada"`
	Itens                    []OrderLineResponse `json:"itens"`
}

// NewOrderResponse converts a stored order.
func NewOrderResponse(o model.Order) OrderResponse {
	resp := OrderResponse{
		EncomendaID:              o.ID,
		ExternalKey:              o.ExternalKey,
		EstadoID:                 o.StatusID,
		FornecedorID:             o.SupplierID,
		EncomendaCompleta:        o.Complete,
		AprovadoPorAdministrador: o.AdminApproved,
		DataEncomenda:            DateFrom(o.OrderedAt),
		DataEntrega:              DateFrom(o.DeliveredAt),
		QuantidadeEnviada:        o.QuantityShipped,
		Itens:                    make([]OrderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		resp.Itens = append(resp.Itens, OrderLineResponse{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return resp
}
