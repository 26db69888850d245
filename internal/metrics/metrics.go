package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MediaRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photovault_media_requests_total",
			Help: "Media gateway requests by resource class and outcome",
		},
		[]string{"class", "outcome"},
	)

	MediaResolveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photovault_media_resolve_seconds",
			Help:    "Time spent classifying, authorizing and locating media before streaming",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"class"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photovault_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photovault_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	CleanupTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photovault_cleanup_tasks_total",
			Help: "Cleanup tasks processed by type and result",
		},
		[]string{"type", "result"},
	)
)

func RecordMedia(class, outcome string, elapsed time.Duration) {
	MediaRequests.WithLabelValues(class, outcome).Inc()
	MediaResolveDuration.WithLabelValues(class).Observe(elapsed.Seconds())
}

func RecordHTTP(method, route string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
