package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements PipelineHooks, CacheHooks and HTTPHooks by
// updating Prometheus collectors.
type PrometheusHooks struct {
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	pagesTotal      *prometheus.CounterVec
	recordsTotal    prometheus.Counter
	descriptions    *prometheus.CounterVec
	cacheEvents     *prometheus.CounterVec
	cacheBytes      prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpErrors      *prometheus.CounterVec
	httpRetries     *prometheus.CounterVec
	httpRetryDelays prometheus.Histogram
}

// NewPrometheusHooks registers the topdeps collectors with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default handler.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		runsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "topdeps_runs_total",
			Help: "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "topdeps_run_duration_seconds",
			Help:    "Wall time of a full pipeline run.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		pagesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "topdeps_pages_total",
			Help: "Dependents listing pages visited by outcome.",
		}, []string{"outcome"}),
		recordsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "topdeps_records_total",
			Help: "Raw dependent records extracted from listing pages.",
		}),
		descriptions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "topdeps_descriptions_total",
			Help: "Description lookups by outcome.",
		}, []string{"outcome"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "topdeps_cache_events_total",
			Help: "Response cache hits, misses and writes.",
		}, []string{"host", "event"}),
		cacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "topdeps_cache_bytes_written_total",
			Help: "Uncompressed bytes written to the response cache.",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "topdeps_http_requests_total",
			Help: "Outgoing HTTP responses by host and status code.",
		}, []string{"host", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "topdeps_http_request_duration_seconds",
			Help:    "Outgoing HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
		httpErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "topdeps_http_errors_total",
			Help: "Outgoing HTTP transport failures.",
		}, []string{"host"}),
		httpRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "topdeps_http_retries_total",
			Help: "Retries scheduled after 429 or transport failures.",
		}, []string{"host"}),
		httpRetryDelays: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "topdeps_http_retry_delay_seconds",
			Help:    "Backoff delays before retries.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
}

// Install registers h as the global pipeline, cache and HTTP hooks.
func (h *PrometheusHooks) Install() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *PrometheusHooks) OnRunStart(context.Context, string) {}

func (h *PrometheusHooks) OnRunComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	h.runsTotal.WithLabelValues(outcome(err)).Inc()
	h.runDuration.Observe(d.Seconds())
}

func (h *PrometheusHooks) OnPageFetched(_ context.Context, _ int, records int, err error) {
	h.pagesTotal.WithLabelValues(outcome(err)).Inc()
	h.recordsTotal.Add(float64(records))
}

func (h *PrometheusHooks) OnEnrichComplete(_ context.Context, requested, described int, _ time.Duration) {
	h.descriptions.WithLabelValues("found").Add(float64(described))
	h.descriptions.WithLabelValues("missing").Add(float64(requested - described))
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, host string) {
	h.cacheEvents.WithLabelValues(host, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, host string) {
	h.cacheEvents.WithLabelValues(host, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, host string, size int) {
	h.cacheEvents.WithLabelValues(host, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	h.httpRequests.WithLabelValues(host, strconv.Itoa(code)).Inc()
	h.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpErrors.WithLabelValues(host).Inc()
}

func (h *PrometheusHooks) OnRetry(_ context.Context, host string, _ int, delay time.Duration) {
	h.httpRetries.WithLabelValues(host).Inc()
	h.httpRetryDelays.Observe(delay.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
