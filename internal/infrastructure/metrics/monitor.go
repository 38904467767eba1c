// Package metrics records per-operation performance of tool calls and
// resource reads.
package metrics

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/VividCortex/ewma"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
)

const (
	// DefaultMaxOperations bounds the number of tracked operation names.
	DefaultMaxOperations = 100
	// DefaultWindowSize is the number of recent samples kept per operation.
	DefaultWindowSize = 1000
	// MinCallsForErrorRate is the call count below which an operation is
	// never reported as error-prone.
	MinCallsForErrorRate = 10
)

// WindowMetrics summarises the samples recorded within a recent window.
type WindowMetrics struct {
	Calls          int     `json:"calls"`
	CallsPerSecond float64 `json:"calls_per_second"`
	AvgMs          float64 `json:"avg_ms"`
	P95Ms          float64 `json:"p95_ms"`
	P99Ms          float64 `json:"p99_ms"`
	ErrorRate      float64 `json:"error_rate"`
}

// OperationMetrics is a snapshot of one operation.
type OperationMetrics struct {
	Operation  string        `json:"operation"`
	TotalCalls int           `json:"total_calls"`
	Errors     int           `json:"errors"`
	ErrorRate  float64       `json:"error_rate"`
	AvgMs      float64       `json:"avg_ms"`
	MinMs      float64       `json:"min_ms"`
	MaxMs      float64       `json:"max_ms"`
	EWMAMs     float64       `json:"ewma_ms"`
	LastCall   time.Time     `json:"last_call"`
	Recent1m   WindowMetrics `json:"recent_1m"`
	Recent5m   WindowMetrics `json:"recent_5m"`
}

// Summary is the monitor state reported on the status endpoint.
type Summary struct {
	Enabled    bool               `json:"enabled"`
	Operations []OperationMetrics `json:"operations"`
	Slow       []OperationMetrics `json:"slow_operations"`
	ErrorProne []OperationMetrics `json:"error_prone_operations"`
}

type sample struct {
	at       time.Time
	duration time.Duration
	failed   bool
}

type operation struct {
	calls   int
	errors  int
	total   time.Duration
	min     time.Duration
	max     time.Duration
	last    time.Time
	avg     ewma.MovingAverage
	window  []sample
	next    int
	wrapped bool
}

func (o *operation) add(s sample) {
	o.calls++
	o.total += s.duration
	if o.calls == 1 || s.duration < o.min {
		o.min = s.duration
	}
	if s.duration > o.max {
		o.max = s.duration
	}
	if s.failed {
		o.errors++
	}
	o.last = s.at
	o.avg.Add(ms(s.duration))

	o.window[o.next] = s
	o.next++
	if o.next == len(o.window) {
		o.next = 0
		o.wrapped = true
	}
}

func (o *operation) samples() []sample {
	if o.wrapped {
		return o.window
	}
	return o.window[:o.next]
}

func (o *operation) errorRate() float64 {
	if o.calls == 0 {
		return 0
	}
	return float64(o.errors) / float64(o.calls)
}

func (o *operation) avgDuration() time.Duration {
	if o.calls == 0 {
		return 0
	}
	return o.total / time.Duration(o.calls)
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithMaxOperations bounds the tracked operation names. When exceeded, the
// operation called least recently is dropped.
func WithMaxOperations(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.maxOperations = n
		}
	}
}

// WithWindowSize sets how many recent samples each operation keeps.
func WithWindowSize(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.windowSize = n
		}
	}
}

// WithThresholds sets the limits used by Summary.
func WithThresholds(slow time.Duration, errorRate float64) Option {
	return func(m *Monitor) {
		m.slowThreshold = slow
		m.errorRateThreshold = errorRate
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Monitor tracks call counts, durations and failures per operation. It also
// feeds a private Prometheus registry served by Handler.
type Monitor struct {
	mu                 sync.Mutex
	enabled            bool
	maxOperations      int
	windowSize         int
	slowThreshold      time.Duration
	errorRateThreshold float64
	operations         map[string]*operation
	now                func() time.Time
	logger             *logging.Logger

	registry  *prometheus.Registry
	durations *prometheus.HistogramVec
	failures  *prometheus.CounterVec
}

// NewMonitor creates an enabled monitor.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		enabled:            true,
		maxOperations:      DefaultMaxOperations,
		windowSize:         DefaultWindowSize,
		slowThreshold:      time.Second,
		errorRateThreshold: 0.1,
		operations:         make(map[string]*operation),
		now:                time.Now,
		logger:             logging.NewNop(),
		registry:           prometheus.NewRegistry(),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "openapi_mcp",
			Name:      "operation_duration_seconds",
			Help:      "Duration of tool calls and resource reads.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openapi_mcp",
			Name:      "operation_errors_total",
			Help:      "Failed tool calls and resource reads.",
		}, []string{"operation"}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.registry.MustRegister(m.durations, m.failures)
	return m
}

// Enable turns recording on.
func (m *Monitor) Enable() {
	m.mu.Lock()
	m.enabled = true
	m.mu.Unlock()
	m.logger.Info("Performance monitoring enabled")
}

// Disable turns recording off. Collected metrics are kept.
func (m *Monitor) Disable() {
	m.mu.Lock()
	m.enabled = false
	m.mu.Unlock()
	m.logger.Info("Performance monitoring disabled")
}

// Enabled reports whether Record stores samples.
func (m *Monitor) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Record stores one call of op. A non-nil err counts as a failure.
func (m *Monitor) Record(op string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}

	o, ok := m.operations[op]
	if !ok {
		o = &operation{avg: ewma.NewMovingAverage(), window: make([]sample, m.windowSize)}
		m.operations[op] = o
	}
	o.add(sample{at: m.now(), duration: duration, failed: err != nil})

	m.durations.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		m.failures.WithLabelValues(op).Inc()
	}

	if len(m.operations) > m.maxOperations {
		m.evictOldestLocked(op)
	}
}

// Measure runs fn and records its duration and error under op.
func (m *Monitor) Measure(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	m.Record(op, time.Since(start), err)
	if err != nil {
		m.logger.Warn("Operation failed", logging.Fields{"operation": op, "error": err.Error()})
	}
	return err
}

func (m *Monitor) evictOldestLocked(keep string) {
	var oldest string
	var oldestAt time.Time
	for name, o := range m.operations {
		if name == keep {
			continue
		}
		if oldest == "" || o.last.Before(oldestAt) {
			oldest, oldestAt = name, o.last
		}
	}
	if oldest == "" {
		return
	}
	delete(m.operations, oldest)
	m.durations.DeleteLabelValues(oldest)
	m.failures.DeleteLabelValues(oldest)
}

// Metrics returns the snapshot of op, false when op was never recorded.
func (m *Monitor) Metrics(op string) (OperationMetrics, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.operations[op]
	if !ok {
		return OperationMetrics{}, false
	}
	return m.snapshotLocked(op, o), true
}

// Snapshot returns every tracked operation ordered by name.
func (m *Monitor) Snapshot() []OperationMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]OperationMetrics, 0, len(m.operations))
	for name, o := range m.operations {
		out = append(out, m.snapshotLocked(name, o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// SlowOperations returns operations whose average duration is at least
// threshold, slowest first. limit <= 0 returns all of them.
func (m *Monitor) SlowOperations(threshold time.Duration, limit int) []OperationMetrics {
	var out []OperationMetrics
	for _, op := range m.Snapshot() {
		if op.AvgMs >= ms(threshold) {
			out = append(out, op)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgMs > out[j].AvgMs })
	return truncate(out, limit)
}

// ErrorProneOperations returns operations with at least MinCallsForErrorRate
// calls and an error rate of at least threshold, worst first.
func (m *Monitor) ErrorProneOperations(threshold float64, limit int) []OperationMetrics {
	var out []OperationMetrics
	for _, op := range m.Snapshot() {
		if op.TotalCalls >= MinCallsForErrorRate && op.ErrorRate >= threshold {
			out = append(out, op)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ErrorRate > out[j].ErrorRate })
	return truncate(out, limit)
}

// Summary returns every operation plus the slow and error-prone ones under
// the configured thresholds.
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	slow, errorRate := m.slowThreshold, m.errorRateThreshold
	m.mu.Unlock()

	return Summary{
		Enabled:    m.Enabled(),
		Operations: m.Snapshot(),
		Slow:       m.SlowOperations(slow, 10),
		ErrorProne: m.ErrorProneOperations(errorRate, 10),
	}
}

// Reset drops op, or every operation when op is empty.
func (m *Monitor) Reset(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if op == "" {
		m.operations = make(map[string]*operation)
		m.durations.Reset()
		m.failures.Reset()
		return
	}
	delete(m.operations, op)
	m.durations.DeleteLabelValues(op)
	m.failures.DeleteLabelValues(op)
}

// Handler serves the Prometheus exposition of the recorded metrics.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the private Prometheus registry.
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Monitor) snapshotLocked(name string, o *operation) OperationMetrics {
	now := m.now()
	samples := o.samples()
	return OperationMetrics{
		Operation:  name,
		TotalCalls: o.calls,
		Errors:     o.errors,
		ErrorRate:  o.errorRate(),
		AvgMs:      ms(o.avgDuration()),
		MinMs:      ms(o.min),
		MaxMs:      ms(o.max),
		EWMAMs:     o.avg.Value(),
		LastCall:   o.last,
		Recent1m:   window(samples, now, time.Minute),
		Recent5m:   window(samples, now, 5*time.Minute),
	}
}

func window(samples []sample, now time.Time, span time.Duration) WindowMetrics {
	cutoff := now.Add(-span)
	var durations []time.Duration
	var total time.Duration
	failed := 0
	for _, s := range samples {
		if s.at.Before(cutoff) {
			continue
		}
		durations = append(durations, s.duration)
		total += s.duration
		if s.failed {
			failed++
		}
	}
	n := len(durations)
	if n == 0 {
		return WindowMetrics{}
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	return WindowMetrics{
		Calls:          n,
		CallsPerSecond: float64(n) / span.Seconds(),
		AvgMs:          ms(total / time.Duration(n)),
		P95Ms:          ms(percentile(durations, 0.95)),
		P99Ms:          ms(percentile(durations, 0.99)),
		ErrorRate:      float64(failed) / float64(n),
	}
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p float64) time.Duration {
	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func truncate(ops []OperationMetrics, limit int) []OperationMetrics {
	if limit > 0 && len(ops) > limit {
		return ops[:limit]
	}
	return ops
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
