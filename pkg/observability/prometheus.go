package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "cyclesearch"

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	gatherer prometheus.Gatherer

	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	scanCounts     *prometheus.CounterVec
	candidates     *prometheus.CounterVec
	minimalScans   *prometheus.HistogramVec
	active         *prometheus.GaugeVec

	cacheOps   *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheus registers the collectors with reg. The registry is also
// served by Handler.
func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		gatherer: reg,
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "total",
			Help:      "Searches by family and outcome",
		}, []string{"family", "outcome"}),
		searchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120, 600},
		}, []string{"family"}),
		scanCounts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "scan_counts_total",
			Help:      "Scan counts visited",
		}, []string{"family"}),
		candidates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "candidates_total",
			Help:      "Candidates generated and checked",
		}, []string{"family"}),
		minimalScans: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "minimal_scans",
			Help:      "Scan count of successful searches",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 8),
		}, []string{"family"}),
		active: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "active",
			Help:      "Searches in progress",
		}, []string{"family"}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache operations by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache",
		}, []string{"key_type"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

func (p *Prometheus) OnSearchStart(_ context.Context, family string, _ int) {
	p.active.WithLabelValues(family).Inc()
}

func (p *Prometheus) OnScanCount(_ context.Context, family string, _ int) {
	p.scanCounts.WithLabelValues(family).Inc()
}

func (p *Prometheus) OnFill(_ context.Context, family string, filled int) {
	p.candidates.WithLabelValues(family).Add(float64(filled))
}

func (p *Prometheus) OnSearchComplete(_ context.Context, family string, nScans, found int, d time.Duration, err error) {
	p.active.WithLabelValues(family).Dec()
	p.searchDuration.WithLabelValues(family).Observe(d.Seconds())

	outcome := "found"
	switch {
	case err != nil:
		outcome = "error"
	case found == 0:
		outcome = "exhausted"
	default:
		p.minimalScans.WithLabelValues(family).Observe(float64(nScans))
	}
	p.searches.WithLabelValues(family, outcome).Inc()
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheOps.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ SearchHooks = (*Prometheus)(nil)
	_ CacheHooks  = (*Prometheus)(nil)
	_ ServerHooks = (*Prometheus)(nil)
)
