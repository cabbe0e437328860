package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rescue_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rescue_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rescue_auth_failures_total",
		Help: "Rejected requests at the auth gate by reason.",
	}, []string{"reason"})

	LifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rescue_lifecycle_transitions_total",
		Help: "Committed animal lifecycle operations.",
	}, []string{"operation"})

	OutboxPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rescue_outbox_events_published_total",
		Help: "Outbox events relayed to the broker by type.",
	}, []string{"type"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rescue_notifications_total",
		Help: "Notification e-mails by event type and result.",
	}, []string{"type", "result"})
)
