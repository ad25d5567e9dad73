package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the storefront collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	cartOps       *prometheus.CounterVec
	storeFailures *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registers the storefront collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_operations_total",
		Help: "Cart manager operations by name and outcome.",
	}, []string{"op", "outcome"})
	storeFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_store_failures_total",
		Help: "Failed store calls by kind (read or write).",
	}, []string{"kind"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(cartOps, storeFailures, httpDuration)
	return &Metrics{
		cartOps:       cartOps,
		storeFailures: storeFailures,
		httpDuration:  httpDuration,
	}
}

// CartOp counts one cart operation. err == nil is recorded as "ok".
func (m *Metrics) CartOp(op string, err error) {
	if m == nil || m.cartOps == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.cartOps.WithLabelValues(normalizeLabel(op), outcome).Inc()
}

// StoreFailure counts a failed store read or write.
func (m *Metrics) StoreFailure(kind string) {
	if m == nil || m.storeFailures == nil {
		return
	}
	m.storeFailures.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ObserveHTTP records the latency of one request.
func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m == nil || m.httpDuration == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, normalizeLabel(route), status).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
