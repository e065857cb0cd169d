package monitoring

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MemoryStats is a point-in-time snapshot of the Go runtime.
type MemoryStats struct {
	HeapAlloc    uint64    `json:"heap_alloc_bytes"`
	HeapSys      uint64    `json:"heap_sys_bytes"`
	HeapInuse    uint64    `json:"heap_inuse_bytes"`
	HeapObjects  uint64    `json:"heap_objects"`
	NumGC        uint32    `json:"num_gc"`
	PauseTotalNs uint64    `json:"gc_pause_total_ns"`
	NumGoroutine int       `json:"num_goroutine"`
	Timestamp    time.Time `json:"timestamp"`
}

// MemoryMonitor samples runtime memory on an interval and publishes the
// results to Metrics. Heap usage above the pressure threshold is logged.
type MemoryMonitor struct {
	metrics         *Metrics
	logger          *Logger
	interval        time.Duration
	pressurePercent float64
	latest          MemoryStats
	mu              sync.RWMutex
}

func NewMemoryMonitor(metrics *Metrics, logger *Logger, interval time.Duration, pressurePercent float64) *MemoryMonitor {
	return &MemoryMonitor{
		metrics:         metrics,
		logger:          logger,
		interval:        interval,
		pressurePercent: pressurePercent,
	}
}

// Run samples until ctx is cancelled.
func (mm *MemoryMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(mm.interval)
	defer ticker.Stop()

	mm.Sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mm.Sample()
		}
	}
}

// Sample reads the runtime stats once.
func (mm *MemoryMonitor) Sample() MemoryStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := MemoryStats{
		HeapAlloc:    ms.HeapAlloc,
		HeapSys:      ms.HeapSys,
		HeapInuse:    ms.HeapInuse,
		HeapObjects:  ms.HeapObjects,
		NumGC:        ms.NumGC,
		PauseTotalNs: ms.PauseTotalNs,
		NumGoroutine: runtime.NumGoroutine(),
		Timestamp:    time.Now(),
	}

	mm.mu.Lock()
	mm.latest = stats
	mm.mu.Unlock()

	mm.metrics.RecordGCMetrics(int64(ms.NumGC), int64(ms.PauseTotalNs), int64(ms.HeapAlloc), int64(ms.HeapSys))

	if ms.HeapSys > 0 {
		usage := float64(ms.HeapAlloc) / float64(ms.HeapSys) * 100
		if usage > mm.pressurePercent {
			mm.logger.Warn("High memory pressure",
				zap.Float64("heap_usage_percent", usage),
				zap.Uint64("heap_alloc_mb", ms.HeapAlloc/(1024*1024)),
				zap.Int("goroutines", stats.NumGoroutine),
			)
		}
	}
	return stats
}

func (mm *MemoryMonitor) Latest() MemoryStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latest
}
