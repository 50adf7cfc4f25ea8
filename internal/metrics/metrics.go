package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rentalhub"

// Recorder owns every collector the service exports. Methods are safe on a nil Recorder.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	payments     *prometheus.CounterVec
	listings     prometheus.Counter
	cacheLookups *prometheus.CounterVec
	gatedViews   *prometheus.CounterVec
}

// New creates a Recorder with its own registry, including Go and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "path"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payments",
			Name:      "verifications_total",
			Help:      "Payment verification attempts by result.",
		}, []string{"result"}),
		listings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listings",
			Name:      "created_total",
			Help:      "Listings created.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by cache name and outcome.",
		}, []string{"cache", "outcome"}),
		gatedViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listings",
			Name:      "detail_views_total",
			Help:      "Listing detail views split by whether premium content was shown.",
		}, []string{"unlocked"}),
	}
	r.registry.MustRegister(
		r.httpRequests,
		r.httpDuration,
		r.payments,
		r.listings,
		r.cacheLookups,
		r.gatedViews,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler returns an HTTP handler exposing the registered metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveHTTP(method, path, code string, seconds float64) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, path, code).Inc()
	r.httpDuration.WithLabelValues(method, path).Observe(seconds)
}

// PaymentVerification counts one attempt. result is verified, rejected, duplicate or error.
func (r *Recorder) PaymentVerification(result string) {
	if r == nil {
		return
	}
	r.payments.WithLabelValues(result).Inc()
}

func (r *Recorder) ListingCreated() {
	if r == nil {
		return
	}
	r.listings.Inc()
}

func (r *Recorder) CacheLookup(cache string, hit bool) {
	if r == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.cacheLookups.WithLabelValues(cache, outcome).Inc()
}

func (r *Recorder) DetailView(unlocked bool) {
	if r == nil {
		return
	}
	if unlocked {
		r.gatedViews.WithLabelValues("true").Inc()
		return
	}
	r.gatedViews.WithLabelValues("false").Inc()
}
