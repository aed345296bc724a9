package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics.
const metricsNamespace = "parsimony"

// PrometheusHooks implements every hook interface of this package by
// recording Prometheus metrics. All operations are safe for concurrent use.
type PrometheusHooks struct {
	// SearchesTotal counts finished searches by status (success, error).
	SearchesTotal *prometheus.CounterVec
	// SearchDurationSeconds measures wall time of whole searches.
	SearchDurationSeconds prometheus.Histogram
	// IterationsTotal counts frontier expansions.
	IterationsTotal prometheus.Counter
	// CandidatesTotal counts scored NNI candidates.
	CandidatesTotal prometheus.Counter
	// BestScore is the best score of the most recent search iteration.
	BestScore prometheus.Gauge
	// FrontierSize is the frontier size of the most recent search iteration.
	FrontierSize prometheus.Gauge
	// ActiveSearches tracks searches in progress.
	ActiveSearches prometheus.Gauge

	// StageDurationSeconds measures pipeline stages.
	// Labels: stage (parse, render), status (success, error)
	StageDurationSeconds *prometheus.HistogramVec

	// CacheEventsTotal counts cache events.
	// Labels: key_type, event (hit, miss, set)
	CacheEventsTotal *prometheus.CounterVec
	// CacheBytesTotal counts bytes written to the cache.
	CacheBytesTotal prometheus.Counter

	// RequestsTotal counts API responses.
	// Labels: method, route, code
	RequestsTotal *prometheus.CounterVec
	// RequestDurationSeconds measures API latency.
	// Labels: method, route
	RequestDurationSeconds *prometheus.HistogramVec
}

// NewPrometheusHooks creates and registers all metrics with reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		SearchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "runs_total",
			Help:      "Total number of finished searches by status",
		}, []string{"status"}),
		SearchDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search wall time in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		IterationsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "iterations_total",
			Help:      "Total number of frontier expansions",
		}),
		CandidatesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "candidates_total",
			Help:      "Total number of scored NNI candidates",
		}),
		BestScore: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "best_score",
			Help:      "Best parsimony score of the latest iteration",
		}),
		FrontierSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "frontier_size",
			Help:      "Number of co-optimal topologies in the latest iteration",
		}),
		ActiveSearches: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "active",
			Help:      "Number of searches in progress",
		}),
		StageDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage", "status"}),
		CacheEventsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache hits, misses and writes by key type",
		}, []string{"key_type", "event"}),
		CacheBytesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache",
		}),
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "API responses by method, route and status code",
		}, []string{"method", "route", "code"}),
		RequestDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// =============================================================================
// SearchHooks
// =============================================================================

func (p *PrometheusHooks) OnSearchStart(context.Context, int, int, int) {
	p.ActiveSearches.Inc()
}

func (p *PrometheusHooks) OnIteration(_ context.Context, _, candidates, best, frontier int, _ time.Duration) {
	p.IterationsTotal.Inc()
	p.CandidatesTotal.Add(float64(candidates))
	p.BestScore.Set(float64(best))
	p.FrontierSize.Set(float64(frontier))
}

func (p *PrometheusHooks) OnSearchComplete(_ context.Context, _, _, _ int, d time.Duration, err error) {
	p.ActiveSearches.Dec()
	p.SearchesTotal.WithLabelValues(status(err)).Inc()
	p.SearchDurationSeconds.Observe(d.Seconds())
}

// =============================================================================
// PipelineHooks
// =============================================================================

func (p *PrometheusHooks) OnParseStart(context.Context, string) {}

func (p *PrometheusHooks) OnParseComplete(_ context.Context, _ string, _, _ int, d time.Duration, err error) {
	p.StageDurationSeconds.WithLabelValues("parse", status(err)).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnRenderStart(context.Context, []string) {}

func (p *PrometheusHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	p.StageDurationSeconds.WithLabelValues("render", status(err)).Observe(d.Seconds())
}

// =============================================================================
// CacheHooks
// =============================================================================

func (p *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	p.CacheEventsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	p.CacheEventsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	p.CacheEventsTotal.WithLabelValues(keyType, "set").Inc()
	p.CacheBytesTotal.Add(float64(size))
}

// =============================================================================
// ServerHooks
// =============================================================================

func (p *PrometheusHooks) OnRequest(context.Context, string, string) {}

func (p *PrometheusHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	p.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.RequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

// Register installs h for every hook category.
func Register(h *PrometheusHooks) {
	SetSearchHooks(h)
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetServerHooks(h)
}
