package core

import (
	"sync"
	"sync/atomic"
)

const AVG_COUNT uint8 = 30

// MetricsState tracks operational diagnostics for the generation pipeline:
// capped appendages, degenerate-field fallbacks, cache traffic and a
// rolling average of generation latency. Counters are atomic since
// generation runs on worker goroutines.
type MetricsState struct {
	CappedAppendages  atomic.Int64
	PrunedBones       atomic.Int64
	DegenerateFields  atomic.Int64
	EmptyMeshes       atomic.Int64
	CacheHits         atomic.Int64
	CacheMisses       atomic.Int64
	DiskCacheCorrupt  atomic.Int64
	GenerationsTotal  atomic.Int64
	CoalescedRequests atomic.Int64
	DroppedRequests   atomic.Int64

	mu             sync.Mutex
	latencyCounter uint8
	latencyMS      [AVG_COUNT]float64
	latencyAvg     float64
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{
			latencyMS: [AVG_COUNT]float64{0},
		}
	})
	return nil
}

// Metrics returns the shared metrics state. Safe to call before
// MetricsInitialize; it will initialize on first use.
func Metrics() *MetricsState {
	if metricsState == nil {
		MetricsInitialize()
	}
	return metricsState
}

// MetricsObserveLatency records one generation latency sample in ms and
// folds it into the rolling average.
func MetricsObserveLatency(elapsedMS float64) {
	m := Metrics()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.latencyMS[m.latencyCounter] = elapsedMS
	if m.latencyCounter == AVG_COUNT-1 {
		sum := 0.0
		for i := uint8(0); i < AVG_COUNT; i++ {
			sum += m.latencyMS[i]
		}
		m.latencyAvg = sum / float64(AVG_COUNT)
	}
	m.latencyCounter++
	m.latencyCounter %= AVG_COUNT
}

// MetricsGenerationLatency returns the rolling average generation latency
// in milliseconds.
func MetricsGenerationLatency() float64 {
	m := Metrics()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latencyAvg
}

// MetricsCacheRate returns cache hits and misses.
func MetricsCacheRate() (int64, int64) {
	m := Metrics()
	return m.CacheHits.Load(), m.CacheMisses.Load()
}
