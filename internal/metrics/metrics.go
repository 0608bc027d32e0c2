package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	predictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survival_predictions_total",
			Help: "Total number of survival predictions",
		},
		[]string{"source", "level"},
	)

	caregiverMatchesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "caregiver_matches_returned",
			Help:    "Number of caregivers returned per match request",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	learnedModelLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learned_model_loads_total",
			Help: "Learned model load attempts by outcome",
		},
		[]string{"result"},
	)
)

// Middleware records request count, latency and in-flight requests
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus exposition handler
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// RecordPrediction counts a survival prediction
func RecordPrediction(source, level string) {
	predictionsTotal.WithLabelValues(source, level).Inc()
}

// RecordMatches observes the size of a match result
func RecordMatches(n int) {
	caregiverMatchesReturned.Observe(float64(n))
}

// RecordModelLoad counts a learned model load outcome
func RecordModelLoad(result string) {
	learnedModelLoads.WithLabelValues(result).Inc()
}
