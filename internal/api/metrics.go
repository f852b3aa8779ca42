package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chronos_http_requests_total",
		Help: "HTTP requests processed, partitioned by method, route and status.",
	}, []string{"method", "route", "status"})

	scheduleBuildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chronos_schedule_build_seconds",
		Help:    "Time spent expanding and laying out a schedule window.",
		Buckets: prometheus.DefBuckets,
	})

	dragCommitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chronos_drag_commits_total",
		Help: "Drag or resize interactions committed over the interactive socket.",
	})
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument wraps a handler with the request counter. The route label is the
// registered pattern, not the raw path, to keep cardinality bounded.
func instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
	}
}
