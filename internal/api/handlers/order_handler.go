package handlers

import (
	"net/http"
	"strconv"

	"github.com/capstone-itrack/backend-go/internal/api/middleware"
	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

const maxOrderListLimit = 500

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create records an order and its lines, consuming stock.
func (h *OrderHandler) Create(c *gin.Context) {
	var in domain.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order payload", "details": err.Error()})
		return
	}

	order, err := h.orders.Create(c.Request.Context(), middleware.ActorID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 {
		limit = 50
	}
	if limit > maxOrderListLimit {
		limit = maxOrderListLimit
	}

	orders, err := h.orders.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
