package handlers

import (
	"net/http"

	"github.com/capstone-itrack/backend-go/internal/api/middleware"
	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type StockCardHandler struct {
	cards *service.StockCardService
}

func NewStockCardHandler(cards *service.StockCardService) *StockCardHandler {
	return &StockCardHandler{cards: cards}
}

// Get returns an item's stock card: header figures and the movement ledger.
func (h *StockCardHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	card, err := h.cards.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// Update patches the operator-maintained columns of one movement row.
func (h *StockCardHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var upd domain.StockCardLineUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock card payload", "details": err.Error()})
		return
	}

	if err := h.cards.Update(c.Request.Context(), middleware.ActorID(c), id, upd); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated", "order_line_id": upd.OrderLineID})
}
