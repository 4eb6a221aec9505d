// Package metrics registers the service's prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ms-transactions/internal/logger"
)

var (
	transactionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_created_total",
			Help: "Transactions created, by initial status",
		},
		[]string{"status"},
	)

	transactionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transaction_transitions_total",
			Help: "Transaction state transitions, by action and resulting status",
		},
		[]string{"action", "status"},
	)

	transactionRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transaction_rejections_total",
			Help: "Business rule rejections, by action and error kind",
		},
		[]string{"action", "kind"},
	)

	sweptTransactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swept_transactions_total",
			Help: "Transactions moved out of a waiting state by the sweeper",
		},
		[]string{"status"},
	)

	freedSeats = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweeper_freed_seats_total",
			Help: "Seats returned to inventory by the sweeper",
		},
	)

	notificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Failed best-effort notifications, by channel",
		},
		[]string{"channel"},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests, by method, route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func TransactionCreated(status string) {
	transactionsCreated.WithLabelValues(status).Inc()
}

func TransactionTransition(action, status string) {
	transactionTransitions.WithLabelValues(action, status).Inc()
}

func TransactionRejected(action, kind string) {
	transactionRejections.WithLabelValues(action, kind).Inc()
}

func Swept(expired, cancelled, seats int) {
	sweptTransactions.WithLabelValues("EXPIRED").Add(float64(expired))
	sweptTransactions.WithLabelValues("CANCELLED").Add(float64(cancelled))
	freedSeats.Add(float64(seats))
}

func NotificationFailed(channel string) {
	notificationFailures.WithLabelValues(channel).Inc()
}

// Middleware records request counts and latency under the matched chi route pattern
// and writes one access log line per request.
func Middleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
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
			elapsed := time.Since(start)
			httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
			httpDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
			log.LogAPI(r.Method, r.URL.Path, ww.Status(), elapsed)
		})
	}
}
