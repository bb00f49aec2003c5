package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_http_requests_total",
			Help: "Total number of HTTP requests processed by the activity service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "activity_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	feedDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "activity_feed_duration_seconds",
			Help:    "End-to-end feed ranking latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	feedCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "activity_feed_candidates",
			Help:    "Number of candidates scored per feed request.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	unreadFanout = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "activity_unread_fanout_chats",
			Help:    "Number of chats counted per total-unread request.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	publishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_event_publish_errors_total",
			Help: "Total number of event publish errors.",
		},
	)
	upstreamDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_upstream_degraded_total",
			Help: "Reads served with degraded upstream data, by provider.",
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		feedDuration,
		feedCandidates,
		unreadFanout,
		publishErrorsTotal,
		upstreamDegradedTotal,
	)
}

// HTTPMetricsMiddleware records request counts and latencies per route.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveFeed records one feed computation.
func ObserveFeed(candidates int, elapsed time.Duration) {
	feedCandidates.Observe(float64(candidates))
	feedDuration.Observe(elapsed.Seconds())
}

// ObserveUnreadFanout records the chat count of one total-unread computation.
func ObserveUnreadFanout(chats int) {
	unreadFanout.Observe(float64(chats))
}

// IncPublishError counts one failed event publish.
func IncPublishError() {
	publishErrorsTotal.Inc()
}

// IncUpstreamDegraded counts one degraded read against a named provider.
func IncUpstreamDegraded(provider string) {
	upstreamDegradedTotal.WithLabelValues(provider).Inc()
}
