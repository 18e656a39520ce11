// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/capstone-itrack/backend-go/internal/api/handlers"
	"github.com/capstone-itrack/backend-go/internal/api/middleware"
	"github.com/capstone-itrack/backend-go/internal/config"
	"github.com/capstone-itrack/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Items     *service.ItemService
	Orders    *service.OrderService
	Reports   *service.ReportService
	StockCard *service.StockCardService
	Activity  *service.ActivityService
	Forecasts *service.ForecastService
}

func NewRouter(services *Services, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(cfg.Server.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.Actor(cfg.Auth.JWTSecret, cfg.Auth.CookieName))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "itrack-backend",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	apiGroup := router.Group("/api/v1")

	if services.Items != nil {
		itemHandler := handlers.NewItemHandler(services.Items)
		itemGroup := apiGroup.Group("/items")
		{
			itemGroup.GET("", itemHandler.List)
			itemGroup.POST("", itemHandler.Create)
			itemGroup.PUT("/:id", itemHandler.Update)
			itemGroup.DELETE("/:id", itemHandler.Delete)
			itemGroup.POST("/:id/add_stock", itemHandler.AddStock)
		}

		if services.StockCard != nil {
			stockCardHandler := handlers.NewStockCardHandler(services.StockCard)
			itemGroup.GET("/:id/stockcard", stockCardHandler.Get)
			itemGroup.PUT("/:id/stockcard", stockCardHandler.Update)
		}
	}

	if services.Orders != nil {
		orderHandler := handlers.NewOrderHandler(services.Orders)
		orderGroup := apiGroup.Group("/orders")
		{
			orderGroup.POST("", orderHandler.Create)
			orderGroup.GET("", orderHandler.List)
			orderGroup.GET("/:id", orderHandler.Get)
		}
	}

	if services.Reports != nil {
		reportHandler := handlers.NewReportHandler(services.Reports)
		apiGroup.GET("/reports/monthly", reportHandler.Monthly)
	}

	if services.Activity != nil {
		activityHandler := handlers.NewActivityHandler(services.Activity)
		apiGroup.GET("/activity", activityHandler.List)
	}

	if services.Forecasts != nil {
		forecastHandler := handlers.NewForecastHandler(services.Forecasts)
		predictiveGroup := apiGroup.Group("/predictive")
		{
			predictiveGroup.GET("/train", forecastHandler.Validate)
			predictiveGroup.POST("/train", forecastHandler.Validate)
			predictiveGroup.GET("/train/all", forecastHandler.TrainAll)
			predictiveGroup.POST("/train/all", forecastHandler.TrainAll)
			predictiveGroup.GET("/models", forecastHandler.Models)
			predictiveGroup.GET("/status", forecastHandler.Status)
			predictiveGroup.GET("/forecast/item", forecastHandler.ForecastItem)
			predictiveGroup.GET("/forecast/all", forecastHandler.ForecastAll)
			predictiveGroup.GET("/next_month/item", forecastHandler.NextMonthItem)
			predictiveGroup.GET("/next_month/all", forecastHandler.NextMonthAll)
			predictiveGroup.GET("/export", forecastHandler.Export)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
