package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "omnipos",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "omnipos",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

type CheckoutMetrics struct {
	Checkouts *prometheus.CounterVec
	Duration  prometheus.Histogram
	Revenue   prometheus.Counter
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "omnipos",
		Subsystem: "checkout",
		Name:      "total",
		Help:      "Checkout attempts by result.",
	}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "omnipos",
		Subsystem: "checkout",
		Name:      "duration_seconds",
		Help:      "Time spent committing a checkout.",
		Buckets:   prometheus.DefBuckets,
	})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "omnipos",
		Subsystem: "checkout",
		Name:      "revenue_total",
		Help:      "Sum of committed sale totals.",
	})

	reg.MustRegister(checkouts, duration, revenue)
	return &CheckoutMetrics{Checkouts: checkouts, Duration: duration, Revenue: revenue}
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
