package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/capstone-itrack/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultForecastTTL = time.Minute
	redisDialTimeout   = 5 * time.Second
)

// dialRedis connects and pings, so an unreachable redis is caught at
// startup while the caller can still fall back to the no-op cache.
func dialRedis(cfg config.CacheConfig) (*redis.Client, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// redisOptions prefers a full REDIS_URL and falls back to host/port pieces.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func summaryTTL(cfg config.CacheConfig) time.Duration {
	if cfg.ForecastTTLSeconds > 0 {
		return time.Duration(cfg.ForecastTTLSeconds) * time.Second
	}
	return defaultForecastTTL
}

// dropByPrefix deletes every key under prefix in batches. SCAN keeps the
// walk incremental, so invalidating after a training run never stalls the
// request path the way KEYS would.
func dropByPrefix(ctx context.Context, client *redis.Client, prefix string, batch int64) error {
	iter := client.Scan(ctx, 0, prefix+"*", batch).Iterator()

	keys := make([]string, 0, int(batch))
	flush := func() error {
		if len(keys) == 0 {
			return nil
		}
		if err := client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis delete failed: %w", err)
		}
		keys = keys[:0]
		return nil
	}

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if int64(len(keys)) >= batch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	return flush()
}
