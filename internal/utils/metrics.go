// internal/utils/metrics.go
package utils

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector collects application metrics in memory
type MetricsCollector struct {
	counters   map[string]*int64
	gauges     map[string]*int64
	histograms map[string]*Histogram

	mu sync.RWMutex
}

// Histogram tracks count, sum, min and max
type Histogram struct {
	count int64
	sum   int64
	min   int64
	max   int64
	mu    sync.Mutex
}

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
)

// GetMetricsCollector returns the global metrics collector
func GetMetricsCollector() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsCollector()
	})
	return globalMetrics
}

// NewMetricsCollector creates an empty collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:   make(map[string]*int64),
		gauges:     make(map[string]*int64),
		histograms: make(map[string]*Histogram),
	}
}

// value returns the slot for name in m, creating it on first use.
func (mc *MetricsCollector) value(m map[string]*int64, name string) *int64 {
	mc.mu.RLock()
	v, ok := m[name]
	mc.mu.RUnlock()
	if ok {
		return v
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	if v, ok = m[name]; !ok {
		v = new(int64)
		m[name] = v
	}
	return v
}

// IncrementCounter increments a counter metric
func (mc *MetricsCollector) IncrementCounter(name string) {
	atomic.AddInt64(mc.value(mc.counters, name), 1)
}

// AddCounter adds a value to a counter metric
func (mc *MetricsCollector) AddCounter(name string, delta int64) {
	atomic.AddInt64(mc.value(mc.counters, name), delta)
}

// GetCounterValue gets the current value of a counter
func (mc *MetricsCollector) GetCounterValue(name string) int64 {
	return atomic.LoadInt64(mc.value(mc.counters, name))
}

// SetGauge sets a gauge metric
func (mc *MetricsCollector) SetGauge(name string, value int64) {
	atomic.StoreInt64(mc.value(mc.gauges, name), value)
}

// AddGauge moves a gauge by delta
func (mc *MetricsCollector) AddGauge(name string, delta int64) {
	atomic.AddInt64(mc.value(mc.gauges, name), delta)
}

// GetGauge gets the current value of a gauge
func (mc *MetricsCollector) GetGauge(name string) int64 {
	return atomic.LoadInt64(mc.value(mc.gauges, name))
}

// RecordHistogram records a value in a histogram
func (mc *MetricsCollector) RecordHistogram(name string, value int64) {
	mc.mu.RLock()
	h, ok := mc.histograms[name]
	mc.mu.RUnlock()

	if !ok {
		mc.mu.Lock()
		if h, ok = mc.histograms[name]; !ok {
			h = &Histogram{min: value, max: value}
			mc.histograms[name] = h
		}
		mc.mu.Unlock()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	if value < h.min {
		h.min = value
	}
	if value > h.max {
		h.max = value
	}
}

// GetMetrics returns a snapshot of all metrics
func (mc *MetricsCollector) GetMetrics() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	counters := make(map[string]int64, len(mc.counters))
	for name, v := range mc.counters {
		counters[name] = atomic.LoadInt64(v)
	}

	gauges := make(map[string]int64, len(mc.gauges))
	for name, v := range mc.gauges {
		gauges[name] = atomic.LoadInt64(v)
	}

	histograms := make(map[string]map[string]int64, len(mc.histograms))
	for name, h := range mc.histograms {
		h.mu.Lock()
		histograms[name] = map[string]int64{
			"count": h.count,
			"sum":   h.sum,
			"min":   h.min,
			"max":   h.max,
		}
		h.mu.Unlock()
	}

	return map[string]interface{}{
		"counters":   counters,
		"gauges":     gauges,
		"histograms": histograms,
	}
}

// APIMetrics records request and generation metrics
type APIMetrics struct {
	metrics *MetricsCollector
	logger  *Logger
}

// NewAPIMetrics creates a new API metrics instance
func NewAPIMetrics(metrics *MetricsCollector, logger *Logger) *APIMetrics {
	return &APIMetrics{metrics: metrics, logger: logger}
}

// RecordAPIRequest records metrics for an API request
func (am *APIMetrics) RecordAPIRequest(route, method string, statusCode int, duration time.Duration) {
	am.metrics.IncrementCounter("api.requests")
	am.metrics.IncrementCounter("api.requests." + method + " " + route)
	am.metrics.IncrementCounter("api.responses." + strconv.Itoa(statusCode/100) + "xx")
	am.metrics.RecordHistogram("api.duration_ms", duration.Milliseconds())
}

// RecordGeneration records one finished generation request
func (am *APIMetrics) RecordGeneration(success bool, duration time.Duration) {
	am.metrics.IncrementCounter("generation.requests")
	if success {
		am.metrics.IncrementCounter("generation.success")
	} else {
		am.metrics.IncrementCounter("generation.failure")
	}
	am.metrics.RecordHistogram("generation.duration_ms", duration.Milliseconds())

	am.logger.Debug("generation recorded", map[string]interface{}{
		"success":     success,
		"duration_ms": duration.Milliseconds(),
	})
}

// RecordSceneAction counts editor actions by name
func (am *APIMetrics) RecordSceneAction(action string) {
	am.metrics.IncrementCounter("editor.actions")
	am.metrics.IncrementCounter("editor.actions." + action)
}
