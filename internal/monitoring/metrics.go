package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const responseTimeSamples = 1000

// Metrics holds process-wide counters. All methods are safe for concurrent use.
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	CacheHits           int64
	CacheMisses         int64
	AverageResponseTime int64 // nanoseconds
	StartTime           time.Time

	AssessmentCount      int64
	AssessmentFailures   int64
	RetestRecommended    int64
	PersistenceFailures  int64
	AssessmentsPurged    int64
	CircuitBreakerOpens  int64
	CircuitBreakerCloses int64

	GCCount        int64
	GCPauseTotalNs int64
	HeapAlloc      int64
	HeapSys        int64

	RateLimitIPBlocks      int64
	RateLimitRedisErrors   int64
	RateLimitFallbackCount int64

	responseTimes []time.Duration
	timesMu       sync.RWMutex

	byStatus map[int]int64
	byLevel  map[string]int64
	countsMu sync.RWMutex
}

func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:     time.Now(),
		responseTimes: make([]time.Duration, 0, responseTimeSamples),
		byStatus:      make(map[int]int64),
		byLevel:       make(map[string]int64),
	}
}

func (m *Metrics) IncrementRequest() { atomic.AddInt64(&m.RequestCount, 1) }
func (m *Metrics) IncrementError() { atomic.AddInt64(&m.ErrorCount, 1) }
func (m *Metrics) IncrementCacheHit() { atomic.AddInt64(&m.CacheHits, 1) }
func (m *Metrics) IncrementCacheMiss() { atomic.AddInt64(&m.CacheMisses, 1) }
func (m *Metrics) IncrementPersistFail() { atomic.AddInt64(&m.PersistenceFailures, 1) }

func (m *Metrics) IncrementCircuitBreakerOpen() { atomic.AddInt64(&m.CircuitBreakerOpens, 1) }
func (m *Metrics) IncrementCircuitBreakerClose() { atomic.AddInt64(&m.CircuitBreakerCloses, 1) }

func (m *Metrics) IncrementRateLimitIPBlock() { atomic.AddInt64(&m.RateLimitIPBlocks, 1) }
func (m *Metrics) IncrementRateLimitRedisError() { atomic.AddInt64(&m.RateLimitRedisErrors, 1) }
func (m *Metrics) IncrementRateLimitFallback() { atomic.AddInt64(&m.RateLimitFallbackCount, 1) }

// RecordAssessment counts a completed assessment under its composite tier.
func (m *Metrics) RecordAssessment(level string, retest bool) {
	atomic.AddInt64(&m.AssessmentCount, 1)
	if retest {
		atomic.AddInt64(&m.RetestRecommended, 1)
	}
	m.countsMu.Lock()
	m.byLevel[level]++
	m.countsMu.Unlock()
}

func (m *Metrics) RecordAssessmentFailure() {
	atomic.AddInt64(&m.AssessmentFailures, 1)
}

func (m *Metrics) RecordPurged(n int64) {
	atomic.AddInt64(&m.AssessmentsPurged, n)
}

// RecordResponseTime updates the running average and the percentile window.
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	atomic.StoreInt64(&m.AverageResponseTime, (current+duration.Nanoseconds())/2)

	m.timesMu.Lock()
	m.responseTimes = append(m.responseTimes, duration)
	if len(m.responseTimes) > responseTimeSamples {
		m.responseTimes = m.responseTimes[1:]
	}
	m.timesMu.Unlock()
}

func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.countsMu.Lock()
	defer m.countsMu.Unlock()
	m.byStatus[statusCode]++
}

func (m *Metrics) RecordGCMetrics(gcCount, gcPauseTotalNs, heapAlloc, heapSys int64) {
	atomic.StoreInt64(&m.GCCount, gcCount)
	atomic.StoreInt64(&m.GCPauseTotalNs, gcPauseTotalNs)
	atomic.StoreInt64(&m.HeapAlloc, heapAlloc)
	atomic.StoreInt64(&m.HeapSys, heapSys)
}

// GetPercentileResponseTime returns the nearest-rank percentile over the
// most recent samples.
func (m *Metrics) GetPercentileResponseTime(percentile float64) time.Duration {
	m.timesMu.RLock()
	times := make([]time.Duration, len(m.responseTimes))
	copy(times, m.responseTimes)
	m.timesMu.RUnlock()

	if len(times) == 0 {
		return 0
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	index := int(float64(len(times)-1) * percentile / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}
	return times[index]
}

func (m *Metrics) GetStatusCodeDistribution() map[int]int64 {
	m.countsMu.RLock()
	defer m.countsMu.RUnlock()

	out := make(map[int]int64, len(m.byStatus))
	for code, count := range m.byStatus {
		out[code] = count
	}
	return out
}

// GetRiskLevelDistribution returns completed assessments per composite tier.
func (m *Metrics) GetRiskLevelDistribution() map[string]int64 {
	m.countsMu.RLock()
	defer m.countsMu.RUnlock()

	out := make(map[string]int64, len(m.byLevel))
	for level, count := range m.byLevel {
		out[level] = count
	}
	return out
}

func percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func (m *Metrics) GetStats() map[string]any {
	requests := atomic.LoadInt64(&m.RequestCount)
	errs := atomic.LoadInt64(&m.ErrorCount)
	hits := atomic.LoadInt64(&m.CacheHits)
	misses := atomic.LoadInt64(&m.CacheMisses)
	heapAlloc := atomic.LoadInt64(&m.HeapAlloc)
	heapSys := atomic.LoadInt64(&m.HeapSys)

	return map[string]any{
		"uptime_seconds":         time.Since(m.StartTime).Seconds(),
		"start_time":             m.StartTime.Format(time.RFC3339),
		"total_requests":         requests,
		"error_count":            errs,
		"error_rate_percent":     percent(errs, requests),
		"cache_hits":             hits,
		"cache_misses":           misses,
		"cache_hit_rate_percent": percent(hits, hits+misses),
		"avg_response_time_ms":   float64(atomic.LoadInt64(&m.AverageResponseTime)) / 1e6,
		"p50_response_time_ms":   float64(m.GetPercentileResponseTime(50)) / 1e6,
		"p95_response_time_ms":   float64(m.GetPercentileResponseTime(95)) / 1e6,
		"p99_response_time_ms":   float64(m.GetPercentileResponseTime(99)) / 1e6,

		"status_code_distribution": m.GetStatusCodeDistribution(),

		"assessments": map[string]any{
			"completed":            atomic.LoadInt64(&m.AssessmentCount),
			"failed":               atomic.LoadInt64(&m.AssessmentFailures),
			"retest_recommended":   atomic.LoadInt64(&m.RetestRecommended),
			"persistence_failures": atomic.LoadInt64(&m.PersistenceFailures),
			"purged":               atomic.LoadInt64(&m.AssessmentsPurged),
			"by_risk_level":        m.GetRiskLevelDistribution(),
		},

		"circuit_breaker_opens":  atomic.LoadInt64(&m.CircuitBreakerOpens),
		"circuit_breaker_closes": atomic.LoadInt64(&m.CircuitBreakerCloses),

		"rate_limit": map[string]any{
			"ip_blocks":      atomic.LoadInt64(&m.RateLimitIPBlocks),
			"redis_errors":   atomic.LoadInt64(&m.RateLimitRedisErrors),
			"fallback_count": atomic.LoadInt64(&m.RateLimitFallbackCount),
		},

		"go_gc_count":           atomic.LoadInt64(&m.GCCount),
		"go_gc_pause_total_ns":  atomic.LoadInt64(&m.GCPauseTotalNs),
		"go_heap_alloc_bytes":   heapAlloc,
		"go_heap_sys_bytes":     heapSys,
		"go_heap_usage_percent": percent(heapAlloc, heapSys),
	}
}

// Reset zeroes every counter. Tests only.
func (m *Metrics) Reset() {
	for _, p := range []*int64{
		&m.RequestCount, &m.ErrorCount, &m.CacheHits, &m.CacheMisses, &m.AverageResponseTime,
		&m.AssessmentCount, &m.AssessmentFailures, &m.RetestRecommended, &m.PersistenceFailures,
		&m.AssessmentsPurged, &m.CircuitBreakerOpens, &m.CircuitBreakerCloses,
		&m.GCCount, &m.GCPauseTotalNs, &m.HeapAlloc, &m.HeapSys,
		&m.RateLimitIPBlocks, &m.RateLimitRedisErrors, &m.RateLimitFallbackCount,
	} {
		atomic.StoreInt64(p, 0)
	}

	m.timesMu.Lock()
	m.responseTimes = m.responseTimes[:0]
	m.timesMu.Unlock()

	m.countsMu.Lock()
	m.byStatus = make(map[int]int64)
	m.byLevel = make(map[string]int64)
	m.countsMu.Unlock()

	m.StartTime = time.Now()
}
