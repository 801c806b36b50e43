package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MilestoneTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigmarket_milestone_transitions_total",
			Help: "Milestone status transitions by action",
		},
		[]string{"action"},
	)

	GatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gigmarket_gateway_call_duration_seconds",
			Help:    "Payment gateway call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"operation", "status"},
	)

	OutboxPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigmarket_outbox_events_total",
			Help: "Outbox events handled by the dispatcher",
		},
		[]string{"type", "result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gigmarket_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)
)

func IncMilestoneTransition(action string) {
	MilestoneTransitions.WithLabelValues(action).Inc()
}

func RecordGatewayCall(operation, status string, duration time.Duration) {
	GatewayCallDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

func IncOutboxEvent(eventType, result string) {
	OutboxPublished.WithLabelValues(eventType, result).Inc()
}

// Middleware records request duration labelled with the chi route pattern, so
// /api/contracts/{id} is one series regardless of the id.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
