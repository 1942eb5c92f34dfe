package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/Zaqui712/B-FO/internal/domain/errors"
	"github.com/Zaqui712/B-FO/internal/server/http/dto"
)

// QueryHandler serves order listings.
type QueryHandler struct {
	facade QueryFacade
}

// NewQueryHandler constructs QueryHandler.
func NewQueryHandler(facade QueryFacade) *QueryHandler {
	return &QueryHandler{facade: facade}
}

// List handles GET /api/encomendas.
func (h *QueryHandler) List(c *gin.Context) {
	orders, err := h.facade.List(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, dto.NewOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/encomendas/:id.
func (h *QueryHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid order id"})
		return
	}
	order, err := h.facade.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(*order))
}
