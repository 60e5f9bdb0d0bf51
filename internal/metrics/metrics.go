package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "joyeria_admin_http_requests_total",
			Help: "Total number of HTTP requests served by the admin",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "joyeria_admin_http_request_duration_seconds",
			Help:    "Duration of HTTP requests served by the admin",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	gatewayCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "joyeria_admin_gateway_calls_total",
			Help: "Calls made to the remote shop API",
		},
		[]string{"operation", "status"},
	)

	gatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "joyeria_admin_gateway_call_duration_seconds",
			Help:    "Duration of calls made to the remote shop API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	staleFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "joyeria_admin_list_stale_fetches_total",
			Help: "List fetch results discarded because a newer fetch was issued",
		},
		[]string{"list"},
	)
)

// Middleware collecte les métriques HTTP par route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// ObserveGatewayCall enregistre un appel à l'API distante
func ObserveGatewayCall(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	gatewayCalls.WithLabelValues(operation, status).Inc()
	gatewayDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func RecordStaleFetch(list string) {
	staleFetches.WithLabelValues(list).Inc()
}
