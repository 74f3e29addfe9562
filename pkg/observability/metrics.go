package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the flatnav service.
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// Graph operation metrics
	InsertsTotal    prometheus.Counter
	InsertDuration  prometheus.Histogram
	QueriesTotal    prometheus.Counter
	QueryDuration   prometheus.Histogram
	QueryResultSize prometheus.Histogram

	// Graph shape metrics
	GraphSize      *prometheus.GaugeVec
	GraphMemory    *prometheus.GaugeVec
	ReorderTotal   *prometheus.CounterVec
	ReorderLatency prometheus.Histogram

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheSize   prometheus.Gauge

	// Batch operation metrics
	BatchInsertTotal    prometheus.Counter
	BatchInsertDuration prometheus.Histogram

	// Tenant metrics
	TenantsTotal     prometheus.Gauge
	TenantQuotaUsage *prometheus.GaugeVec

	// System metrics
	GoroutinesCount prometheus.Gauge
	MemoryUsage     prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flatnav_requests_total",
				Help: "Total number of requests by method and status",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flatnav_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		RequestErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flatnav_request_errors_total",
				Help: "Total number of request errors by method and error type",
			},
			[]string{"method", "error_type"},
		),

		InsertsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "flatnav_inserts_total",
				Help: "Total number of vectors inserted",
			},
		),
		InsertDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flatnav_insert_duration_seconds",
				Help:    "Insert duration in seconds, including beam search and back-link repair",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		QueriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "flatnav_queries_total",
				Help: "Total number of query operations",
			},
		),
		QueryDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flatnav_query_duration_seconds",
				Help:    "Query duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		QueryResultSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flatnav_query_result_size",
				Help:    "Number of results returned by a query",
				Buckets: []float64{1, 5, 10, 20, 50, 100},
			},
		),

		GraphSize: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flatnav_graph_size",
				Help: "Number of nodes in the graph by namespace",
			},
			[]string{"namespace"},
		),
		GraphMemory: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flatnav_graph_memory_bytes",
				Help: "Packed storage memory usage in bytes by namespace",
			},
			[]string{"namespace"},
		),
		ReorderTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flatnav_reorder_total",
				Help: "Total number of reorder passes by namespace",
			},
			[]string{"namespace"},
		),
		ReorderLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flatnav_reorder_duration_seconds",
				Help:    "Reorder pass duration in seconds",
				Buckets: []float64{.001, .01, .1, .5, 1, 5, 10, 30, 60},
			},
		),

		CacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "flatnav_cache_hits_total",
				Help: "Total number of query cache hits",
			},
		),
		CacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "flatnav_cache_misses_total",
				Help: "Total number of query cache misses",
			},
		),
		CacheSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "flatnav_cache_size",
				Help: "Current number of entries in the query cache",
			},
		),

		BatchInsertTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "flatnav_batch_insert_total",
				Help: "Total number of batch insert operations",
			},
		),
		BatchInsertDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "flatnav_batch_insert_duration_seconds",
				Help:    "Batch insert duration in seconds",
				Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),

		TenantsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "flatnav_tenants_total",
				Help: "Total number of active tenant namespaces",
			},
		),
		TenantQuotaUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flatnav_tenant_quota_usage",
				Help: "Tenant quota usage fraction by namespace and resource",
			},
			[]string{"namespace", "resource"},
		),

		GoroutinesCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "flatnav_goroutines",
				Help: "Current number of goroutines",
			},
		),
		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "flatnav_memory_bytes",
				Help: "Process memory usage in bytes",
			},
		),
	}

	return m
}

// RecordRequest records a request with duration and status.
func (m *Metrics) RecordRequest(method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError records a request error.
func (m *Metrics) RecordError(method, errorType string) {
	m.RequestErrors.WithLabelValues(method, errorType).Inc()
}

// RecordInsert records a single vector insertion.
func (m *Metrics) RecordInsert(duration time.Duration) {
	m.InsertsTotal.Inc()
	m.InsertDuration.Observe(duration.Seconds())
}

// RecordQuery records a query operation.
func (m *Metrics) RecordQuery(duration time.Duration, resultSize int) {
	m.QueriesTotal.Inc()
	m.QueryDuration.Observe(duration.Seconds())
	m.QueryResultSize.Observe(float64(resultSize))
}

// RecordCacheHit records a query cache hit.
func (m *Metrics) RecordCacheHit() { m.CacheHits.Inc() }

// RecordCacheMiss records a query cache miss.
func (m *Metrics) RecordCacheMiss() { m.CacheMisses.Inc() }

// UpdateCacheSize updates the cache size gauge.
func (m *Metrics) UpdateCacheSize(size int) { m.CacheSize.Set(float64(size)) }

// UpdateGraphSize updates the graph size gauge for a namespace.
func (m *Metrics) UpdateGraphSize(namespace string, size int) {
	m.GraphSize.WithLabelValues(namespace).Set(float64(size))
}

// UpdateGraphMemory updates the graph memory gauge for a namespace.
func (m *Metrics) UpdateGraphMemory(namespace string, bytes int64) {
	m.GraphMemory.WithLabelValues(namespace).Set(float64(bytes))
}

// RecordReorder records a completed reorder pass for a namespace.
func (m *Metrics) RecordReorder(namespace string, duration time.Duration) {
	m.ReorderTotal.WithLabelValues(namespace).Inc()
	m.ReorderLatency.Observe(duration.Seconds())
}

// RecordBatchInsert records a batch insert operation.
func (m *Metrics) RecordBatchInsert(duration time.Duration, count int) {
	m.BatchInsertTotal.Inc()
	m.BatchInsertDuration.Observe(duration.Seconds())
	m.InsertsTotal.Add(float64(count))
}

// UpdateTenantCount updates the total tenant namespace count.
func (m *Metrics) UpdateTenantCount(count int) { m.TenantsTotal.Set(float64(count)) }

// UpdateTenantQuota updates tenant quota usage for a namespace and resource.
func (m *Metrics) UpdateTenantQuota(namespace, resource string, usage float64) {
	m.TenantQuotaUsage.WithLabelValues(namespace, resource).Set(usage)
}

// UpdateGoroutineCount updates the goroutine count gauge.
func (m *Metrics) UpdateGoroutineCount(count int) { m.GoroutinesCount.Set(float64(count)) }

// UpdateMemoryUsage updates the process memory usage gauge.
func (m *Metrics) UpdateMemoryUsage(bytes uint64) { m.MemoryUsage.Set(float64(bytes)) }
