package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/capstone-itrack/backend-go/internal/config"
	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/forecast"
	"github.com/capstone-itrack/backend-go/internal/repository"
	"github.com/capstone-itrack/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubItemRepo struct {
	levels map[string]domain.StockLevel
}

func (s *stubItemRepo) List(context.Context) ([]domain.Item, error) { return nil, nil }
func (s *stubItemRepo) GetByID(context.Context, int64) (*domain.Item, error) {
	return nil, repository.ErrItemNotFound
}
func (s *stubItemRepo) GetByName(context.Context, string) (*domain.Item, error) {
	return nil, repository.ErrItemNotFound
}
func (s *stubItemRepo) Create(context.Context, domain.ItemInput) (*domain.Item, error) {
	return nil, nil
}
func (s *stubItemRepo) Update(context.Context, int64, domain.ItemInput) (*domain.Item, error) {
	return nil, nil
}
func (s *stubItemRepo) Delete(context.Context, int64) error { return nil }
func (s *stubItemRepo) AddStock(context.Context, int64, int) (*domain.AddStockResult, error) {
	return nil, nil
}
func (s *stubItemRepo) StockLevels(context.Context) (map[string]domain.StockLevel, error) {
	return s.levels, nil
}

type stubHistoryRepo struct {
	records []domain.HistoryRecord
}

func (s *stubHistoryRepo) LoadHistory(context.Context) ([]domain.HistoryRecord, error) {
	return s.records, nil
}

// newTestRouter serves the predictive surface over one sparse item: Rare
// Widget, two months of history (5 then 7), four on hand.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	history := &stubHistoryRepo{}
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	for i, q := range []int{5, 7} {
		history.records = append(history.records, domain.HistoryRecord{
			Date:     start.AddDate(0, i, 0),
			ItemName: "Rare Widget",
			Quantity: q,
		})
	}

	items := &stubItemRepo{levels: map[string]domain.StockLevel{
		"rare widget": {Name: "Rare Widget", Quantity: 4},
	}}

	models := forecast.NewModelCache(filepath.Join(t.TempDir(), "models.json"), nil)
	trainer := forecast.NewTrainer(models, forecast.NewFitter(forecast.DefaultMinTrainMonths), forecast.DefaultMinTrainMonths, 2)

	forecasts := service.NewForecastService(service.ForecastServiceParams{
		Loader:     forecast.NewLoader(history, filepath.Join(t.TempDir(), "missing.xlsx")),
		Trainer:    trainer,
		Models:     models,
		Forecaster: forecast.NewForecaster(models),
		Items:      items,
		Horizon:    6,
		ExportDir:  t.TempDir(),
	})

	return NewRouter(&Services{Forecasts: forecasts}, &config.Config{})
}

func doRequest(t *testing.T, router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := doRequest(t, newTestRouter(t), http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "itrack-backend", body["service"])
}

func TestForecastItemEndpoint(t *testing.T) {
	w := doRequest(t, newTestRouter(t), http.MethodGet, "/api/v1/predictive/forecast/item?item_name=Rare+Widget")

	require.Equal(t, http.StatusOK, w.Code)
	var body domain.ItemForecast
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "Rare Widget", body.ItemName)
	assert.Equal(t, 4, body.CurrentStock)
	require.Len(t, body.MonthlyForecast, 6)
	require.Len(t, body.RestockPlan, 6)
	assert.Equal(t, 6, body.MonthlyForecast[0].ForecastQty)
	assert.Equal(t, 36, body.TotalForecast)
	assert.Equal(t, 32, body.TotalRecommendedRestock)
}

func TestForecastItemRequiresName(t *testing.T) {
	w := doRequest(t, newTestRouter(t), http.MethodGet, "/api/v1/predictive/forecast/item")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForecastItemUnknownIsNotFound(t *testing.T) {
	w := doRequest(t, newTestRouter(t), http.MethodGet, "/api/v1/predictive/forecast/item?item_name=Ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrainAllWithoutWorkbookIsUnavailable(t *testing.T) {
	w := doRequest(t, newTestRouter(t), http.MethodPost, "/api/v1/predictive/train/all")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestModelsStartsEmpty(t *testing.T) {
	w := doRequest(t, newTestRouter(t), http.MethodGet, "/api/v1/predictive/models")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":0,"items":[]}`, w.Body.String())
}

func TestStatusEndpoint(t *testing.T) {
	w := doRequest(t, newTestRouter(t), http.MethodGet, "/api/v1/predictive/status")

	require.Equal(t, http.StatusOK, w.Code)
	var status domain.TrainStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Zero(t, status.ModelCount)
	assert.NotNil(t, status.Trained)
}

func TestExportRejectsBadFiletype(t *testing.T) {
	w := doRequest(t, newTestRouter(t), http.MethodGet, "/api/v1/predictive/export?item_name=Rare+Widget&filetype=pdf")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNextMonthAllEndpoint(t *testing.T) {
	w := doRequest(t, newTestRouter(t), http.MethodGet, "/api/v1/predictive/next_month/all")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Count int                        `json:"count"`
		Rows  []domain.NextMonthForecast `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Rare Widget", body.Rows[0].ItemName)
	assert.Equal(t, 6, body.Rows[0].NextMonthForecast)
}
