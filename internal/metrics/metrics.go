package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	LeadsCreatedTotal   prometheus.Counter
	CreditsDebitedTotal prometheus.Counter
	TopupsTotal         prometheus.Counter
	AIQueriesTotal      *prometheus.CounterVec
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		LeadsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "marketplace",
			Name:      "leads_created_total",
			Help:      "Total leads created and billed.",
		}),

		CreditsDebitedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "marketplace",
			Name:      "credits_debited_total",
			Help:      "Total credits debited from clinics for leads.",
		}),

		TopupsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "marketplace",
			Name:      "topups_total",
			Help:      "Total verified Razorpay top-ups.",
		}),

		AIQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "ai",
			Name:      "queries_total",
			Help:      "Recommendation queries by analyzer backend.",
		}, []string{"backend"}),
	}
}

// GinMiddleware records the request counter and latency histogram per route
func (c *Collector) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(ctx.Writer.Status())
		c.RequestsTotal.WithLabelValues(ctx.Request.Method, path, status).Inc()
		c.RequestDuration.WithLabelValues(ctx.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
