package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carelum", Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "carelum", Name: "http_request_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
	SessionTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carelum", Name: "session_transitions_total", Help: "Applied session status transitions",
	}, []string{"to_status"})
	ProviderFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carelum", Name: "auth_provider_failures_total", Help: "Identity provider verification failures",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, SessionTransitions, ProviderFailures)
}

func Handler() http.Handler { return promhttp.Handler() }

// Middleware records per-route counters and latency. The route template
// is used instead of the raw path to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
