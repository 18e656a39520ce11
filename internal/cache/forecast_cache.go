package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/capstone-itrack/backend-go/internal/config"
	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	forecastKeyPrefix = "predictive:summary"
	scanBatchSize     = 100
)

// ForecastSummaryCache fronts the two expensive fan-out endpoints: the
// all-items restock summary and the all-items next-month ranking. Both are
// invalidated wholesale after every training run.
type ForecastSummaryCache interface {
	GetSummary(ctx context.Context, horizon int) ([]domain.ItemForecastSummary, bool, error)
	SetSummary(ctx context.Context, horizon int, rows []domain.ItemForecastSummary) error
	GetNextMonth(ctx context.Context) ([]domain.NextMonthForecast, bool, error)
	SetNextMonth(ctx context.Context, rows []domain.NextMonthForecast) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

// NewForecastCache returns the redis-backed cache when caching is enabled
// and reachable, the no-op cache when disabled.
func NewForecastCache(cfg config.CacheConfig) (ForecastSummaryCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, err := dialRedis(cfg)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{client: client, ttl: summaryTTL(cfg)}, nil
}

func NewNoopForecastCache() ForecastSummaryCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetSummary(ctx context.Context, horizon int) ([]domain.ItemForecastSummary, bool, error) {
	var rows []domain.ItemForecastSummary
	ok, err := c.get(ctx, summaryKey(horizon), &rows)
	return rows, ok, err
}

func (c *redisForecastCache) SetSummary(ctx context.Context, horizon int, rows []domain.ItemForecastSummary) error {
	return c.set(ctx, summaryKey(horizon), rows)
}

func (c *redisForecastCache) GetNextMonth(ctx context.Context) ([]domain.NextMonthForecast, bool, error) {
	var rows []domain.NextMonthForecast
	ok, err := c.get(ctx, nextMonthKey(), &rows)
	return rows, ok, err
}

func (c *redisForecastCache) SetNextMonth(ctx context.Context, rows []domain.NextMonthForecast) error {
	return c.set(ctx, nextMonthKey(), rows)
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return dropByPrefix(ctx, c.client, forecastKeyPrefix, scanBatchSize)
}

func (c *redisForecastCache) get(ctx context.Context, key string, out interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode forecast summary cache: %w", err)
	}
	return true, nil
}

func (c *redisForecastCache) set(ctx context.Context, key string, rows interface{}) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode forecast summary cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopForecastCache) GetSummary(ctx context.Context, horizon int) ([]domain.ItemForecastSummary, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetSummary(ctx context.Context, horizon int, rows []domain.ItemForecastSummary) error {
	return nil
}

func (n *noopForecastCache) GetNextMonth(ctx context.Context) ([]domain.NextMonthForecast, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetNextMonth(ctx context.Context, rows []domain.NextMonthForecast) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func summaryKey(horizon int) string {
	raw := fmt.Sprintf("horizon=%d", horizon)
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:all:%s", forecastKeyPrefix, hex.EncodeToString(hash[:]))
}

func nextMonthKey() string {
	return forecastKeyPrefix + ":next_month"
}
