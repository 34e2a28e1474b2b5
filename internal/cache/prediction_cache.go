package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	predictionKeyPrefix = "stockcast:predictions"
	scanBatchSize       = 100
	defaultSummaryTTL   = time.Minute
)

// PredictionCache caches the prediction dashboard between runs.
type PredictionCache interface {
	GetDashboard(ctx context.Context, limit int) (*domain.PredictionDashboard, bool, error)
	SetDashboard(ctx context.Context, limit int, dashboard *domain.PredictionDashboard) error
	InvalidateAll(ctx context.Context) error
}

type redisPredictionCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopPredictionCache struct{}

// NewPredictionCache connects to Redis when caching is enabled, otherwise
// returns a cache that never hits.
func NewPredictionCache(cfg config.CacheConfig) (PredictionCache, error) {
	if !cfg.Enabled {
		return NewNoopPredictionCache(), nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisPredictionCache(client, time.Duration(cfg.SummaryTTLSeconds)*time.Second), nil
}

// NewRedisPredictionCache wraps an existing client. Non-positive ttl uses one minute.
func NewRedisPredictionCache(client *redis.Client, ttl time.Duration) PredictionCache {
	if ttl <= 0 {
		ttl = defaultSummaryTTL
	}
	return &redisPredictionCache{client: client, ttl: ttl}
}

func NewNoopPredictionCache() PredictionCache {
	return &noopPredictionCache{}
}

func (c *redisPredictionCache) GetDashboard(ctx context.Context, limit int) (*domain.PredictionDashboard, bool, error) {
	payload, err := c.client.Get(ctx, dashboardKey(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var dashboard domain.PredictionDashboard
	if err := json.Unmarshal(payload, &dashboard); err != nil {
		return nil, false, fmt.Errorf("decode prediction dashboard cache: %w", err)
	}

	return &dashboard, true, nil
}

func (c *redisPredictionCache) SetDashboard(ctx context.Context, limit int, dashboard *domain.PredictionDashboard) error {
	payload, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("encode prediction dashboard cache: %w", err)
	}

	if err := c.client.Set(ctx, dashboardKey(limit), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// InvalidateAll drops every cached dashboard, whatever its limit.
func (c *redisPredictionCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, predictionKeyPrefix+":*", scanBatchSize).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (n *noopPredictionCache) GetDashboard(ctx context.Context, limit int) (*domain.PredictionDashboard, bool, error) {
	return nil, false, nil
}

func (n *noopPredictionCache) SetDashboard(ctx context.Context, limit int, dashboard *domain.PredictionDashboard) error {
	return nil
}

func (n *noopPredictionCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func dashboardKey(limit int) string {
	return fmt.Sprintf("%s:dashboard:top=%d", predictionKeyPrefix, limit)
}

func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}
