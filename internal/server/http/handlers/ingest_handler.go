package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/Zaqui712/B-FO/internal/domain/errors"
	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/server/http/dto"
)

// IngestHandler receives orders from the peer system.
type IngestHandler struct {
	facade IngestFacade
}

// NewIngestHandler constructs IngestHandler.
func NewIngestHandler(facade IngestFacade) *IngestHandler {
	return &IngestHandler{facade: facade}
}

// Receive handles POST /api/receive-encomenda.
func (h *IngestHandler) Receive(c *gin.Context) {
	var req dto.ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err, model.ReasonInvalidPayload)
		return
	}
	if req.Encomenda == nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: model.ReasonMissingField})
		return
	}

	result := h.facade.Ingest(c.Request.Context(), req.Encomenda.ToModel())
	c.JSON(statusForResult(result), dto.NewIngestResponse(result))
}

// ReceiveBatch handles POST /api/receive-encomenda/batch.
func (h *IngestHandler) ReceiveBatch(c *gin.Context) {
	var req dto.ReceiveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err, model.ReasonInvalidPayload)
		return
	}
	raw := bytes.TrimSpace(req.Encomendas)
	if len(raw) == 0 || raw[0] != '[' {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "encomendas must be an array"})
		return
	}
	var payloads []dto.OrderPayload
	if err := json.Unmarshal(raw, &payloads); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: model.ReasonInvalidPayload})
		return
	}

	orders := make([]model.Order, 0, len(payloads))
	for _, p := range payloads {
		orders = append(orders, p.ToModel())
	}

	result, err := h.facade.IngestBatch(c.Request.Context(), orders)
	if err != nil {
		if errors.Is(err, domainErrors.ErrEmptyBatch) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "encomendas must not be empty"})
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, dto.NewBatchResponse(result))
}

func statusForResult(r model.IngestResult) int {
	switch r.Status {
	case model.IngestCommitted:
		if r.Updated {
			return http.StatusOK
		}
		return http.StatusCreated
	case model.IngestRejected:
		if r.Reason == model.ReasonDuplicate {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	default:
		if r.Reason == model.ReasonMissingItemID {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}
}

// writeBindError answers 413 when the body hit the size cap and 400 with
// reason otherwise.
func writeBindError(c *gin.Context, err error, reason string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "payload too large"})
		return
	}
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: reason})
}
