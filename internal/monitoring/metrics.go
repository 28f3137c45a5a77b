package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Webhook metrics
	WebhookEventsTotal    *prometheus.CounterVec
	WebhookOutcomesTotal  *prometheus.CounterVec
	WebhookUpsertDuration prometheus.Histogram

	// AI gateway metrics
	AIGatewayLatency  *prometheus.HistogramVec
	AIGatewayRequests *prometheus.CounterVec
	AIGatewayErrors   *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

var metrics *Metrics

// Init initializes all Prometheus metrics
func Init() *Metrics {
	if metrics != nil {
		return metrics
	}

	metrics = &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		WebhookEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_total",
				Help: "Total number of payment-provider webhook deliveries by result",
			},
			[]string{"result"},
		),
		WebhookOutcomesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_outcomes_total",
				Help: "Classified webhook outcomes by status and plan",
			},
			[]string{"status", "plan"},
		),
		WebhookUpsertDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "webhook_user_upsert_duration_seconds",
				Help:    "Duration of the user record upsert",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),

		AIGatewayLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_gateway_latency_seconds",
				Help:    "AI gateway response latency in seconds",
				Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"operation", "model"},
		),
		AIGatewayRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_gateway_requests_total",
				Help: "Total number of requests to the AI gateway",
			},
			[]string{"operation", "model", "status"},
		),
		AIGatewayErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_gateway_errors_total",
				Help: "Total number of errors from the AI gateway",
			},
			[]string{"operation", "error_type"},
		),

		RateLimitHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
		),
	}

	return metrics
}

// Get returns the initialized metrics, initializing on first use
func Get() *Metrics {
	if metrics == nil {
		return Init()
	}
	return metrics
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware records HTTP metrics for every request
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m := Get()

		start := time.Now()
		m.HTTPRequestsInFlight.Inc()

		c.Next()

		m.HTTPRequestsInFlight.Dec()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
		).Observe(time.Since(start).Seconds())
	}
}
