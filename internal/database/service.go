package database

import (
	"context"
	"time"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/cache"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/resilience"
)

// List limits.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// HistoryService fronts the repository with an LRU cache for lookups and a
// retry loop plus circuit breaker for writes.
type HistoryService struct {
	repo    *Repository
	cache   *cache.Cache[string, *Assessment]
	breaker *resilience.Breaker
	retry   resilience.RetryConfig
}

func NewHistoryService(repo *Repository, lookups *cache.Cache[string, *Assessment], observer resilience.BreakerObserver) *HistoryService {
	retry := resilience.DefaultRetryConfig()
	retry.Retryable = IsTransient

	return &HistoryService{
		repo:    repo,
		cache:   lookups,
		breaker: resilience.NewBreaker("assessment-history", resilience.DefaultBreakerConfig(), observer),
		retry:   retry,
	}
}

// Record persists a. Lock contention is retried; sustained failure opens
// the breaker so later writes fail fast.
func (s *HistoryService) Record(ctx context.Context, a *Assessment) error {
	err := resilience.Retry(ctx, s.retry, func() error {
		return s.breaker.Call(func() error {
			return s.repo.Save(ctx, a)
		})
	})
	if err != nil {
		return err
	}
	s.cache.Set(a.ID, a)
	return nil
}

func (s *HistoryService) Get(ctx context.Context, id string) (*Assessment, error) {
	if a, ok := s.cache.Get(id); ok {
		return a, nil
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(id, a)
	return a, nil
}

// List returns the newest assessments. limit is clamped to
// [1, MaxListLimit]; zero or less means DefaultListLimit.
func (s *HistoryService) List(ctx context.Context, limit int) ([]AssessmentSummary, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	return s.repo.ListRecent(ctx, limit)
}

func (s *HistoryService) Delete(ctx context.Context, id string) error {
	s.cache.Delete(id)
	return s.repo.Delete(ctx, id)
}

// Purge deletes assessments created before cutoff.
func (s *HistoryService) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if n > 0 {
		s.cache.Clear()
	}
	return n, err
}

func (s *HistoryService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// BreakerState reports the write breaker state for health checks.
func (s *HistoryService) BreakerState() string {
	return s.breaker.State()
}
