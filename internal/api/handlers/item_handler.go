package handlers

import (
	"net/http"
	"strconv"

	"github.com/capstone-itrack/backend-go/internal/api/middleware"
	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	items *service.ItemService
}

func NewItemHandler(items *service.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// List returns the full catalog ordered by id.
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.items.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) Create(c *gin.Context) {
	var in domain.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item payload", "details": err.Error()})
		return
	}

	item, err := h.items.Create(c.Request.Context(), middleware.ActorID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var in domain.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item payload", "details": err.Error()})
		return
	}

	item, err := h.items.Update(c.Request.Context(), middleware.ActorID(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.items.Delete(c.Request.Context(), middleware.ActorID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "item_id": id})
}

// AddStock records a manual stock receipt against one item.
func (h *ItemHandler) AddStock(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required", "details": err.Error()})
		return
	}

	result, err := h.items.AddStock(c.Request.Context(), middleware.ActorID(c), id, body.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})
		return 0, false
	}
	return id, true
}
