// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/capstone-itrack/backend-go/internal/api"
	"github.com/capstone-itrack/backend-go/internal/cache"
	"github.com/capstone-itrack/backend-go/internal/config"
	"github.com/capstone-itrack/backend-go/internal/forecast"
	"github.com/capstone-itrack/backend-go/internal/repository"
	"github.com/capstone-itrack/backend-go/internal/repository/postgres"
	"github.com/capstone-itrack/backend-go/internal/service"
	"github.com/capstone-itrack/backend-go/internal/storage"
	"github.com/capstone-itrack/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.Open(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Repositories
	itemRepo := repository.NewItemRepository(db.DB)
	historyRepo := repository.NewHistoryRepository(db.DB)
	activityRepo := repository.NewActivityRepository(db.DB)
	reportRepo := repository.NewReportRepository(db.DB)
	stockCardRepo := repository.NewStockCardRepository(db.DB)
	orderRepo := postgres.NewOrderRepository(db)

	// Model cache, rehydrated from the last snapshot when one exists. The
	// object-storage mirror is optional; a misconfigured mirror costs the
	// warm start, not the process.
	var mirror forecast.SnapshotMirror
	if cfg.Storage.Enabled() {
		m, err := storage.NewMirror(cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("snapshot mirror disabled")
		} else {
			mirror = m
		}
	}
	modelCache := forecast.NewModelCache(cfg.Forecast.SnapshotPath, mirror)
	if err := modelCache.Load(context.Background()); err != nil {
		logger.Log.Error().Err(err).Msg("model snapshot load failed, starting with empty cache")
	}

	// Forecasting pipeline
	loader := forecast.NewLoader(historyRepo, cfg.App.HistoryFile)
	fitter := forecast.NewFitter(cfg.Forecast.MinTrainMonths)
	trainer := forecast.NewTrainer(modelCache, fitter, cfg.Forecast.MinTrainMonths, cfg.Forecast.TrainWorkers)
	forecaster := forecast.NewForecaster(modelCache)

	summaries, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("forecast summary cache unavailable, proceeding without it")
		summaries = cache.NewNoopForecastCache()
	}

	// Services
	activityService := service.NewActivityService(activityRepo)
	forecastService := service.NewForecastService(service.ForecastServiceParams{
		Loader:     loader,
		Trainer:    trainer,
		Models:     modelCache,
		Forecaster: forecaster,
		Items:      itemRepo,
		Summaries:  summaries,
		Activity:   activityService,
		Horizon:    cfg.Forecast.HorizonMonths,
		MinMonths:  cfg.Forecast.MinTrainMonths,
		ExportDir:  cfg.App.ExportDir,
	})

	services := &api.Services{
		Items:     service.NewItemService(itemRepo, activityService),
		Orders:    service.NewOrderService(orderRepo, activityService),
		Reports:   service.NewReportService(reportRepo),
		StockCard: service.NewStockCardService(itemRepo, stockCardRepo, activityService),
		Activity:  activityService,
		Forecasts: forecastService,
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Daily retrain loop, owned by main: cancelled at shutdown, and the
	// cancel interrupts its inter-cycle sleep immediately.
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	if cfg.Forecast.SchedulerEnabled {
		scheduler := forecast.NewScheduler(
			time.Duration(cfg.Forecast.SchedulerDelaySecs)*time.Second,
			time.Duration(cfg.Forecast.SchedulerPeriodHours)*time.Hour,
			forecastService.LastTrained,
			func(ctx context.Context) error {
				_, err := forecastService.TrainFromDB(ctx)
				return err
			},
		)
		go scheduler.Run(schedulerCtx)
	}

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")
	stopScheduler()

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
