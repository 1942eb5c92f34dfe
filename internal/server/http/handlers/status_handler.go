package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/Zaqui712/B-FO/internal/domain/errors"
	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/server/http/dto"
)

// StatusHandler manages local status changes.
type StatusHandler struct {
	facade StatusFacade
}

// NewStatusHandler constructs StatusHandler.
func NewStatusHandler(facade StatusFacade) *StatusHandler {
	return &StatusHandler{facade: facade}
}

// Send handles PUT /api/send-encomenda. The peer is notified after the
// local commit; its answer does not affect the response.
func (h *StatusHandler) Send(c *gin.Context) {
	var req dto.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err, model.ReasonInvalidPayload)
		return
	}
	p := req.Encomenda
	if p == nil || p.EncomendaID <= 0 || p.EncomendaCompleta == nil || p.DataEntrega == nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: model.ReasonMissingField})
		return
	}

	update := model.DeliveryUpdate{OrderID: p.EncomendaID, Complete: *p.EncomendaCompleta, DeliveredAt: p.DataEntrega.Time}
	if _, err := h.facade.UpdateDelivery(c.Request.Context(), update); err != nil {
		writeStatusError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "delivery updated", EncomendaID: p.EncomendaID})
}

// Approve handles PUT /api/encomendas/:id/approval.
func (h *StatusHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid order id"})
		return
	}
	var req dto.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err, model.ReasonMissingField)
		return
	}
	if req.AprovadoPorAdministrador == nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: model.ReasonMissingField})
		return
	}

	if err := h.facade.Approve(c.Request.Context(), id, *req.AprovadoPorAdministrador); err != nil {
		writeStatusError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "approval recorded", EncomendaID: id})
}

func writeStatusError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrMissingField):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: model.ReasonMissingField})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	default:
		c.Status(http.StatusInternalServerError)
	}
}
