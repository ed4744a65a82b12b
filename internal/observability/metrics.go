package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatduo_http_requests_total",
			Help: "Total number of HTTP requests processed by the sync server.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatduo_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatduo_relay_active_connections",
			Help: "Number of open relay websocket connections.",
		},
	)
	wsFramesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatduo_relay_frames_total",
			Help: "Total number of relay frames by direction.",
		},
		[]string{"direction"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsFramesTotal,
	)
}

// HTTPMetrics records request counts and latencies per chi route pattern.
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// IncRelayActive bumps the open-connection gauge.
func IncRelayActive() {
	wsActiveConnections.Inc()
}

// DecRelayActive drops the open-connection gauge.
func DecRelayActive() {
	wsActiveConnections.Dec()
}

// IncRelayFrame counts one relayed frame ("in" or "out").
func IncRelayFrame(direction string) {
	wsFramesTotal.WithLabelValues(direction).Inc()
}
