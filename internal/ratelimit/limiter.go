package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Metrics receives limiter events. *monitoring.Metrics satisfies it.
type Metrics interface {
	IncrementRateLimitIPBlock()
	IncrementRateLimitRedisError()
	IncrementRateLimitFallback()
}

type Config struct {
	IPLimitPerMin   int
	BurstMultiplier float64
}

// Result is the outcome of one check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter checks per-key quotas against Redis when available and
// against in-process token buckets otherwise.
type RateLimiter struct {
	redisLimiter *redis_rate.Limiter
	redisClient  *RedisClient
	config       Config
	metrics      Metrics

	visitors map[string]*visitor
	mu       sync.Mutex
}

func NewRateLimiter(redisClient *RedisClient, cfg Config, metrics Metrics) *RateLimiter {
	rl := &RateLimiter{
		redisClient: redisClient,
		config:      cfg,
		metrics:     metrics,
		visitors:    make(map[string]*visitor),
	}
	if redisClient.IsEnabled() {
		rl.redisLimiter = redis_rate.NewLimiter(redisClient.Client())
	}
	return rl
}

// AllowIP checks the per-minute quota for one client address.
func (rl *RateLimiter) AllowIP(ctx context.Context, ip string) *Result {
	return rl.allow(ctx, fmt.Sprintf("ratelimit:ip:%s", ip), rl.config.IPLimitPerMin, time.Minute)
}

func (rl *RateLimiter) burst(limit int) int {
	return max(1, int(math.Ceil(float64(limit)*rl.config.BurstMultiplier)))
}

// allow never fails: a Redis error degrades to the in-process bucket.
func (rl *RateLimiter) allow(ctx context.Context, key string, limit int, period time.Duration) *Result {
	if rl.redisLimiter != nil {
		res, err := rl.redisLimiter.Allow(ctx, key, redis_rate.Limit{
			Rate:   limit,
			Burst:  rl.burst(limit),
			Period: period,
		})
		if err == nil {
			return &Result{
				Allowed:    res.Allowed > 0,
				Limit:      limit,
				Remaining:  res.Remaining,
				ResetAt:    time.Now().Add(res.ResetAfter),
				RetryAfter: max(res.RetryAfter, 0),
			}
		}
		zap.L().Warn("Redis rate limit check failed, using fallback", zap.String("key", key), zap.Error(err))
		if rl.metrics != nil {
			rl.metrics.IncrementRateLimitRedisError()
		}
	}
	if rl.metrics != nil {
		rl.metrics.IncrementRateLimitFallback()
	}
	return rl.allowLocal(key, limit, period)
}

func (rl *RateLimiter) allowLocal(key string, limit int, period time.Duration) *Result {
	now := time.Now()
	every := period / time.Duration(max(limit, 1))

	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), rl.burst(limit))}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	allowed := v.limiter.AllowN(now, 1)
	tokens := v.limiter.TokensAt(now)

	result := &Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: max(int(tokens), 0),
		ResetAt:   now.Add(every),
	}
	if !allowed {
		result.RetryAfter = time.Duration((1 - tokens) * float64(every))
	}
	return result
}

// Prune drops in-process buckets idle for longer than idle.
func (rl *RateLimiter) Prune(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

// RunJanitor prunes idle buckets every interval until ctx is done.
func (rl *RateLimiter) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Prune(interval); n > 0 {
				zap.L().Debug("Pruned idle rate limit buckets", zap.Int("count", n))
			}
		}
	}
}

func (rl *RateLimiter) GetStats() map[string]any {
	rl.mu.Lock()
	local := len(rl.visitors)
	rl.mu.Unlock()

	return map[string]any{
		"redis_enabled":    rl.redisClient.IsEnabled(),
		"local_buckets":    local,
		"ip_limit_per_min": rl.config.IPLimitPerMin,
		"burst":            rl.burst(rl.config.IPLimitPerMin),
		"redis_pool":       rl.redisClient.GetPoolStats(),
	}
}
