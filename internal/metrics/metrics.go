package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"eldrix/admin/internal/models"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eldrix_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eldrix_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HelpSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eldrix_help_sessions",
			Help: "Help sessions by status, refreshed by the stats job",
		},
		[]string{"status"},
	)

	MessagesAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eldrix_messages_appended_total",
			Help: "Messages appended to help sessions",
		},
		[]string{"author"},
	)

	SessionsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eldrix_sessions_closed_total",
			Help: "Help sessions closed, by where the recap came from",
		},
		[]string{"recap_source"},
	)

	NotificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eldrix_notifications_total",
			Help: "SMS bridge notifications handled by the worker",
		},
		[]string{"kind", "result"},
	)
)

func SetSessionCounts(counts map[models.SessionStatus]int) {
	for status, n := range counts {
		HelpSessions.WithLabelValues(string(status)).Set(float64(n))
	}
}

func Author(isAdmin bool) string {
	if isAdmin {
		return "admin"
	}
	return "user"
}
