package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groundslot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "groundslot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LocksAcquiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groundslot_locks_acquired_total",
			Help: "Total number of holds granted",
		},
		[]string{"mode"},
	)

	LockConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groundslot_lock_conflicts_total",
			Help: "Total number of rejected lock attempts by conflict code",
		},
		[]string{"code"},
	)

	LocksReleasedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "groundslot_locks_released_total",
			Help: "Total number of holds released by their channel",
		},
	)

	HoldsReclaimedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "groundslot_holds_reclaimed_total",
			Help: "Total number of expired holds returned to available",
		},
	)

	ReaperRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groundslot_reaper_runs_total",
			Help: "Total number of reaper runs by result",
		},
		[]string{"result"},
	)

	BookingsConfirmedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groundslot_bookings_confirmed_total",
			Help: "Total number of confirmed bookings",
		},
		[]string{"channel"},
	)

	DuplicateConfirmationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "groundslot_duplicate_confirmations_total",
			Help: "Total number of payment signals answered with an existing booking",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groundslot_notifications_total",
			Help: "Total number of partner notifications",
		},
		[]string{"event", "result"},
	)

	NotifierDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "groundslot_notifier_dropped_total",
			Help: "Total number of events dropped before reaching the queue",
		},
	)

	NotifierQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "groundslot_notifier_queue_length",
			Help: "Events waiting in the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordLockAcquired counts a granted hold. mode is "new", "takeover" or "existing".
func RecordLockAcquired(mode string) {
	LocksAcquiredTotal.WithLabelValues(mode).Inc()
}

func RecordLockConflict(code string) {
	LockConflictsTotal.WithLabelValues(code).Inc()
}

func RecordLockReleased() {
	LocksReleasedTotal.Inc()
}

func RecordHoldsReclaimed(n int) {
	HoldsReclaimedTotal.Add(float64(n))
}

func RecordReaperRun(result string) {
	ReaperRunsTotal.WithLabelValues(result).Inc()
}

func RecordBookingConfirmed(channel string) {
	BookingsConfirmedTotal.WithLabelValues(channel).Inc()
}

func RecordDuplicateConfirmation() {
	DuplicateConfirmationsTotal.Inc()
}

func RecordNotification(event, result string) {
	NotificationsTotal.WithLabelValues(event, result).Inc()
}

func RecordNotifierDrop() {
	NotifierDroppedTotal.Inc()
}

func SetNotifierQueueLength(n int64) {
	NotifierQueueLength.Set(float64(n))
}
