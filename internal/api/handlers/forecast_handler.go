// backend-go/internal/api/handlers/forecast_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/capstone-itrack/backend-go/internal/api/middleware"
	"github.com/capstone-itrack/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ForecastHandler struct {
	forecasts *service.ForecastService
}

func NewForecastHandler(forecasts *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{forecasts: forecasts}
}

// Validate dry-runs the curated history workbook through the pipeline and
// reports what a training pass would see. Nothing is cached or persisted.
func (h *ForecastHandler) Validate(c *gin.Context) {
	report, err := h.forecasts.ValidateWorkbook(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// TrainAll runs a full manual training pass over the workbook.
func (h *ForecastHandler) TrainAll(c *gin.Context) {
	result, err := h.forecasts.TrainFromWorkbook(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Models lists the item names that currently hold a fitted model.
func (h *ForecastHandler) Models(c *gin.Context) {
	names := h.forecasts.Models()
	c.JSON(http.StatusOK, gin.H{"count": len(names), "items": names})
}

// Status reports the latest training run.
func (h *ForecastHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.forecasts.Status())
}

// ForecastItem returns the monthly forecast and restock plan for one item.
func (h *ForecastHandler) ForecastItem(c *gin.Context) {
	name, ok := requireItemName(c)
	if !ok {
		return
	}

	result, err := h.forecasts.ForecastItem(c.Request.Context(), name, parseMonths(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ForecastAll returns the restock summary across the whole catalog.
func (h *ForecastHandler) ForecastAll(c *gin.Context) {
	rows, err := h.forecasts.ForecastAll(c.Request.Context(), parseMonths(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "rows": rows})
}

// NextMonthItem returns the single-month projection for one item.
func (h *ForecastHandler) NextMonthItem(c *gin.Context) {
	name, ok := requireItemName(c)
	if !ok {
		return
	}

	result, err := h.forecasts.NextMonthItem(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// NextMonthAll ranks every catalog item by its next-month projection.
func (h *ForecastHandler) NextMonthAll(c *gin.Context) {
	rows, err := h.forecasts.NextMonthAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "rows": rows})
}

// Export writes an item's restock plan to the export directory and streams
// it back as a download.
func (h *ForecastHandler) Export(c *gin.Context) {
	name, ok := requireItemName(c)
	if !ok {
		return
	}
	filetype := strings.ToLower(strings.TrimSpace(c.DefaultQuery("filetype", "csv")))

	path, fileName, err := h.forecasts.ExportPlan(c.Request.Context(), middleware.ActorID(c), name, filetype)
	if err != nil {
		respondError(c, err)
		return
	}

	contentType := "text/csv"
	if filetype == "xlsx" {
		contentType = xlsxContentType
	}
	c.Header("Content-Type", contentType)
	c.FileAttachment(path, fileName)
}

func requireItemName(c *gin.Context) (string, bool) {
	name := strings.TrimSpace(c.Query("item_name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_name parameter is required"})
		return "", false
	}
	return name, true
}

// parseMonths reads the optional ?months= horizon override; the service
// clamps it to its supported range.
func parseMonths(c *gin.Context) int {
	months, err := strconv.Atoi(c.DefaultQuery("months", "0"))
	if err != nil || months < 0 {
		return 0
	}
	return months
}
