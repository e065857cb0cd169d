package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/config"
)

// RedisClient wraps the shared limiter store. A disabled client sends every
// check to the in-process limiter.
type RedisClient struct {
	client  *redis.Client
	enabled bool
	addr    string
}

// NewRedisClient connects to cfg.RedisAddr. An empty address is not an
// error; a failed ping returns a disabled client together with the error.
func NewRedisClient(cfg config.RateLimitConfig) (*RedisClient, error) {
	if cfg.RedisAddr == "" {
		zap.L().Info("Redis not configured, rate limiting in process")
		return &RedisClient{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		MaxRetries:   2,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		PoolTimeout:  2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return &RedisClient{addr: cfg.RedisAddr}, eris.Wrap(err, "ratelimit: redis ping")
	}

	zap.L().Info("Redis rate limit store connected", zap.String("addr", cfg.RedisAddr))
	return &RedisClient{client: client, enabled: true, addr: cfg.RedisAddr}, nil
}

func (r *RedisClient) Client() *redis.Client {
	return r.client
}

func (r *RedisClient) IsEnabled() bool {
	return r != nil && r.enabled
}

// HealthCheck pings the store. A disabled client reports "disabled".
func (r *RedisClient) HealthCheck(ctx context.Context) string {
	if !r.IsEnabled() {
		return "disabled"
	}
	if err := r.client.Ping(ctx).Err(); err != nil {
		return "unavailable"
	}
	return "ok"
}

func (r *RedisClient) Close() error {
	if r.IsEnabled() {
		return r.client.Close()
	}
	return nil
}

func (r *RedisClient) GetPoolStats() map[string]any {
	if !r.IsEnabled() {
		return map[string]any{"enabled": false}
	}
	stats := r.client.PoolStats()
	return map[string]any{
		"enabled":     true,
		"addr":        r.addr,
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
	}
}
