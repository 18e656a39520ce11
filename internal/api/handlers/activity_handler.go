package handlers

import (
	"net/http"
	"strconv"

	"github.com/capstone-itrack/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activity *service.ActivityService
}

func NewActivityHandler(activity *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// List returns the most recent audit-trail entries, newest first.
func (h *ActivityHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 {
		limit = 100
	}

	logs, err := h.activity.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(logs), "rows": logs})
}
