// backend-go/internal/service/forecast_service.go
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/capstone-itrack/backend-go/internal/cache"
	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/forecast"
	"github.com/capstone-itrack/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// ForecastService drives the predictive restock pipeline end to end:
// history loading, training, per-item forecasts, restock plans, the
// all-items summaries, and plan exports.
type ForecastService struct {
	loader     *forecast.Loader
	trainer    *forecast.Trainer
	models     *forecast.ModelCache
	forecaster *forecast.Forecaster
	items      repository.ItemRepository
	summaries  cache.ForecastSummaryCache
	activity   *ActivityService

	horizon   int
	minMonths int
	exportDir string
}

type ForecastServiceParams struct {
	Loader     *forecast.Loader
	Trainer    *forecast.Trainer
	Models     *forecast.ModelCache
	Forecaster *forecast.Forecaster
	Items      repository.ItemRepository
	Summaries  cache.ForecastSummaryCache
	Activity   *ActivityService
	Horizon    int
	MinMonths  int
	ExportDir  string
}

func NewForecastService(p ForecastServiceParams) *ForecastService {
	if p.Summaries == nil {
		p.Summaries = cache.NewNoopForecastCache()
	}
	if p.Horizon <= 0 {
		p.Horizon = forecast.DefaultHorizonMonths
	}
	if p.MinMonths <= 0 {
		p.MinMonths = forecast.DefaultMinTrainMonths
	}
	return &ForecastService{
		loader:     p.Loader,
		trainer:    p.Trainer,
		models:     p.Models,
		forecaster: p.Forecaster,
		items:      p.Items,
		summaries:  p.Summaries,
		activity:   p.Activity,
		horizon:    p.Horizon,
		minMonths:  p.MinMonths,
		exportDir:  p.ExportDir,
	}
}

// Horizon clamps a requested horizon to something sane, falling back to
// the configured default.
func (s *ForecastService) Horizon(requested int) int {
	if requested <= 0 {
		return s.horizon
	}
	if requested > 24 {
		return 24
	}
	return requested
}

// historyUnavailable tags a loader failure so the handler can answer with
// a service-unavailable rather than a generic 500.
func historyUnavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
}

// ValidateWorkbook dry-runs the curated workbook through the pipeline and
// reports what a training run would see. The cache is not touched.
func (s *ForecastService) ValidateWorkbook(ctx context.Context, userID *int64) (*domain.HistoryValidation, error) {
	records, err := s.loader.FromSpreadsheet()
	if err != nil {
		return nil, historyUnavailable(err)
	}

	agg := forecast.AggregateMonthly(records)
	eligible := forecast.EligibleItems(agg, s.minMonths)

	sample := eligible
	if len(sample) > 10 {
		sample = sample[:10]
	}

	s.activity.Record(ctx, userID, ActionPredictive,
		fmt.Sprintf("Validated history workbook (%d rows, %d items, %d eligible)",
			agg.Rows, len(agg.Items), len(eligible)))

	return &domain.HistoryValidation{
		Status:              "ok",
		RowsLoaded:          agg.Rows,
		UniqueItems:         len(agg.Items),
		DateMin:             agg.DateMin.Format("2006-01-02"),
		DateMax:             agg.DateMax.Format("2006-01-02"),
		EligibleItemsCount:  len(eligible),
		EligibleItemsSample: sample,
		DataFile:            s.loader.HistoryFile(),
	}, nil
}

// TrainFromWorkbook runs a full manual training pass over the curated
// workbook and persists the resulting snapshot.
func (s *ForecastService) TrainFromWorkbook(ctx context.Context, userID *int64) (*domain.TrainRunResult, error) {
	records, err := s.loader.FromSpreadsheet()
	if err != nil {
		return nil, historyUnavailable(err)
	}

	status, err := s.trainer.Train(ctx, records, domain.TrainSourceXLSX)
	if err != nil {
		return nil, err
	}

	s.invalidateSummaries(ctx)
	s.activity.Record(ctx, userID, ActionPredictive,
		fmt.Sprintf("Trained %d forecasting models from workbook (%d skipped)",
			len(status.Trained), len(status.Skipped)))

	return &domain.TrainRunResult{
		Status:       "ok",
		Trained:      status.Trained,
		TrainedCount: len(status.Trained),
		Skipped:      status.Skipped,
		SkippedCount: len(status.Skipped),
		CacheSize:    status.ModelCount,
	}, nil
}

// TrainFromDB retrains from the orders database. The scheduler calls this
// daily; it shares the trainer's mutual exclusion with manual runs.
func (s *ForecastService) TrainFromDB(ctx context.Context) (domain.TrainStatus, error) {
	records, err := s.loader.FromDB(ctx)
	if err != nil {
		return domain.TrainStatus{}, historyUnavailable(err)
	}
	if len(records) == 0 {
		return domain.TrainStatus{}, fmt.Errorf("%w: no order history in database to train on", ErrHistoryUnavailable)
	}

	status, err := s.trainer.Train(ctx, records, domain.TrainSourceDB)
	if err != nil {
		return domain.TrainStatus{}, err
	}

	s.invalidateSummaries(ctx)
	s.activity.Record(ctx, nil, ActionPredictive,
		fmt.Sprintf("Scheduled retrain fitted %d models (%d skipped)",
			len(status.Trained), len(status.Skipped)))
	return status, nil
}

// Models lists the cached items' display names, sorted.
func (s *ForecastService) Models() []string {
	return s.models.Names()
}

// Status reports the latest training run.
func (s *ForecastService) Status() domain.TrainStatus {
	return s.models.Status()
}

// LastTrained feeds the scheduler's already-trained-today check.
func (s *ForecastService) LastTrained() time.Time {
	return s.models.Status().LastTrainedUTC
}

// ForecastItem builds the monthly forecast and restock plan for one item.
// The caller's spelling is echoed back; lookups are case-insensitive.
func (s *ForecastService) ForecastItem(ctx context.Context, name string, horizon int) (*domain.ItemForecast, error) {
	horizon = s.Horizon(horizon)

	series, stock, err := s.resolveItem(ctx, name)
	if err != nil {
		return nil, err
	}

	forecasts, _, err := s.forecaster.ForecastSeries(series, horizon)
	if err != nil {
		return nil, err
	}

	plan := forecast.BuildRestockPlan(forecasts, stock)
	totalForecast, totalRestock := forecast.PlanTotals(plan)

	s.activity.Record(ctx, nil, ActionPredictive,
		fmt.Sprintf("Generated %d-month forecast for '%s'", horizon, strings.TrimSpace(name)))

	return &domain.ItemForecast{
		ItemName:                strings.TrimSpace(name),
		CurrentStock:            stock,
		MonthlyForecast:         forecasts,
		RestockPlan:             plan,
		TotalForecast:           totalForecast,
		TotalRecommendedRestock: totalRestock,
	}, nil
}

// ForecastAll summarizes the restock position of every catalog item that
// has any history. Served from the summary cache when warm.
func (s *ForecastService) ForecastAll(ctx context.Context, horizon int) ([]domain.ItemForecastSummary, error) {
	horizon = s.Horizon(horizon)

	if rows, ok, err := s.summaries.GetSummary(ctx, horizon); err == nil && ok {
		return rows, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast summary cache get failed")
	}

	levels, err := s.items.StockLevels(ctx)
	if err != nil {
		return nil, err
	}

	records, _, err := s.loader.Load(ctx)
	if err != nil {
		return nil, historyUnavailable(err)
	}
	agg := forecast.AggregateMonthly(records)

	rows := make([]domain.ItemForecastSummary, 0, len(levels))
	for key, level := range levels {
		series, ok := agg.Items[key]
		if !ok {
			log.Debug().Str("item", level.Name).Msg("catalog item has no history, skipping in summary")
			continue
		}

		forecasts, _, err := s.forecaster.ForecastSeries(series, horizon)
		if err != nil {
			log.Debug().Err(err).Str("item", level.Name).Msg("summary forecast failed, skipping item")
			continue
		}

		plan := forecast.BuildRestockPlan(forecasts, level.Quantity)
		totalForecast, totalRestock := forecast.PlanTotals(plan)
		rows = append(rows, domain.ItemForecastSummary{
			ItemName:                level.Name,
			CurrentStock:            level.Quantity,
			TotalForecast:           totalForecast,
			TotalRecommendedRestock: totalRestock,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalForecast != rows[j].TotalForecast {
			return rows[i].TotalForecast > rows[j].TotalForecast
		}
		return rows[i].ItemName < rows[j].ItemName
	})

	if err := s.summaries.SetSummary(ctx, horizon, rows); err != nil {
		log.Warn().Err(err).Msg("forecast summary cache set failed")
	}

	return rows, nil
}

// NextMonthItem projects a single month for one item.
func (s *ForecastService) NextMonthItem(ctx context.Context, name string) (*domain.NextMonthForecast, error) {
	series, stock, err := s.resolveItem(ctx, name)
	if err != nil {
		return nil, err
	}

	qty, err := s.forecaster.NextMonthSafe(series)
	if err != nil {
		return nil, err
	}

	return &domain.NextMonthForecast{
		ItemName:          strings.TrimSpace(name),
		NextMonthForecast: qty,
		CurrentStock:      stock,
	}, nil
}

// NextMonthAll ranks every catalog item by its next-month projection.
// History rows whose names match no catalog item are dropped; per-item
// projection failures skip the item rather than failing the ranking.
func (s *ForecastService) NextMonthAll(ctx context.Context) ([]domain.NextMonthForecast, error) {
	if rows, ok, err := s.summaries.GetNextMonth(ctx); err == nil && ok {
		return rows, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("next month cache get failed")
	}

	levels, err := s.items.StockLevels(ctx)
	if err != nil {
		return nil, err
	}

	records, _, err := s.loader.Load(ctx)
	if err != nil {
		return nil, historyUnavailable(err)
	}
	agg := forecast.AggregateMonthly(records)

	rows := make([]domain.NextMonthForecast, 0, len(levels))
	for key, level := range levels {
		series, ok := agg.Items[key]
		if !ok {
			continue
		}

		qty, err := s.forecaster.NextMonthSafe(series)
		if err != nil {
			log.Debug().Err(err).Str("item", level.Name).Msg("next month projection failed, skipping item")
			continue
		}

		rows = append(rows, domain.NextMonthForecast{
			ItemName:          level.Name,
			NextMonthForecast: qty,
			CurrentStock:      level.Quantity,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].NextMonthForecast != rows[j].NextMonthForecast {
			return rows[i].NextMonthForecast > rows[j].NextMonthForecast
		}
		return rows[i].ItemName < rows[j].ItemName
	})

	if err := s.summaries.SetNextMonth(ctx, rows); err != nil {
		log.Warn().Err(err).Msg("next month cache set failed")
	}

	return rows, nil
}

var exportFormatRe = regexp.MustCompile(`^(csv|xlsx)$`)

// ExportPlan writes an item's restock plan to the export directory and
// returns the file path for streaming. Export reads the curated workbook
// only, matching the operator workflow it serves.
func (s *ForecastService) ExportPlan(ctx context.Context, userID *int64, name, filetype string) (string, string, error) {
	if filetype == "" {
		filetype = "csv"
	}
	if !exportFormatRe.MatchString(filetype) {
		return "", "", ErrBadExportFormat
	}

	records, err := s.loader.FromSpreadsheet()
	if err != nil {
		return "", "", historyUnavailable(err)
	}

	agg := forecast.AggregateMonthly(records)
	series, ok := agg.Series(name)
	if !ok {
		return "", "", repository.ErrItemNotFound
	}

	levels, err := s.items.StockLevels(ctx)
	if err != nil {
		return "", "", err
	}
	stock := levels[forecast.NormalizeName(name)].Quantity

	forecasts, _, err := s.forecaster.ForecastSeries(series, s.horizon)
	if err != nil {
		return "", "", err
	}
	plan := forecast.BuildRestockPlan(forecasts, stock)

	fileName := fmt.Sprintf("%s_restock_plan.%s", slugify(series.Name), filetype)
	fullPath := filepath.Join(s.exportDir, fileName)

	f, err := os.Create(fullPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	switch filetype {
	case "xlsx":
		err = forecast.WritePlanXLSX(f, series.Name, plan)
	default:
		err = forecast.WritePlanCSV(f, series.Name, plan)
	}
	if err != nil {
		return "", "", err
	}

	s.activity.Record(ctx, userID, ActionPredictive,
		fmt.Sprintf("Exported restock plan for '%s' (%s)", series.Name, filetype))

	return fullPath, fileName, nil
}

// resolveItem loads history (database first, workbook fallback) and the
// stock level for one item. No history at all means the item is unknown
// to the pipeline, whatever the catalog says.
func (s *ForecastService) resolveItem(ctx context.Context, name string) (domain.MonthlySeries, int, error) {
	records, _, err := s.loader.Load(ctx)
	if err != nil {
		return domain.MonthlySeries{}, 0, historyUnavailable(err)
	}

	agg := forecast.AggregateMonthly(records)
	series, ok := agg.Series(name)
	if !ok {
		return domain.MonthlySeries{}, 0, repository.ErrItemNotFound
	}

	levels, err := s.items.StockLevels(ctx)
	if err != nil {
		return domain.MonthlySeries{}, 0, err
	}
	stock := levels[forecast.NormalizeName(name)].Quantity

	return series, stock, nil
}

func (s *ForecastService) invalidateSummaries(ctx context.Context) {
	if err := s.summaries.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("forecast summary cache invalidation failed")
	}
}

var slugRe = regexp.MustCompile(`[^a-z0-9_-]+`)

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "_")
	slug = slugRe.ReplaceAllString(slug, "")
	if slug == "" {
		slug = "item"
	}
	return slug
}
