// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// NotificationsScheduled counts submitted triggers by category.
	NotificationsScheduled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petcare_notifications_scheduled_total",
		Help: "Notification triggers submitted to the notifier",
	}, []string{"category"})

	// NotificationsSkipped counts reminders that got no alarm, by reason.
	NotificationsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petcare_notifications_skipped_total",
		Help: "Reminders saved without a scheduled notification",
	}, []string{"reason"})

	NotificationsDeferred = promauto.NewCounter(prometheus.CounterOpts{
		Name: "petcare_notifications_deferred_total",
		Help: "Primary triggers moved to the end of quiet hours",
	})

	NotificationsCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petcare_notifications_cancelled_total",
		Help: "Notification cancellations by result",
	}, []string{"result"})

	// NotificationsDispatched counts outbox deliveries by channel and result.
	NotificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petcare_notifications_dispatched_total",
		Help: "Due notifications delivered by the dispatcher",
	}, []string{"channel", "result"})

	CascadeDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petcare_cascade_deletes_total",
		Help: "Pet cascade deletions by result",
	}, []string{"result"})

	// CascadeRemoved counts dependent records removed by cascades and reconcile sweeps.
	CascadeRemoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petcare_cascade_removed_records_total",
		Help: "Dependent records removed per collection",
	}, []string{"collection"})

	CascadeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "petcare_cascade_duration_seconds",
		Help:    "Pet cascade deletion duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petcare_http_requests_total",
		Help: "HTTP requests by method and status code",
	}, []string{"method", "status"})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
