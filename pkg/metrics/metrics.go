package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Lifecycle
	PatientsArchived     *prometheus.CounterVec
	PatientsRestored     prometheus.Counter
	ScheduleFlagFailures prometheus.Counter
	SweepRuns            *prometheus.CounterVec
	SweepDuration        prometheus.Histogram

	// Notifications
	NotificationsCreated        *prometheus.CounterVec
	NotificationDeliveryFailure *prometheus.CounterVec

	// Calendar / email
	CalendarFailures *prometheus.CounterVec

	// HTTP
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	RequestErrors   *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics on reg.
// A nil reg means the default prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		PatientsArchived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patients_archived_total",
			Help:      "Total number of patients moved to the archive",
		}, []string{"reason"}),
		PatientsRestored: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patients_restored_total",
			Help:      "Total number of patients restored from the archive",
		}),
		ScheduleFlagFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_flag_failures_total",
			Help:      "Schedule archive flag updates that failed during a move",
		}),
		SweepRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Auto-archive sweep runs",
		}, []string{"status"}),
		SweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Time spent in an auto-archive sweep",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),

		NotificationsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Notifications persisted, by type",
		}, []string{"type"}),
		NotificationDeliveryFailure: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_delivery_failed_total",
			Help:      "Notification deliveries that failed, by channel",
		}, []string{"channel"}),

		CalendarFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calendar_failures_total",
			Help:      "Calendar invite or provider calls that failed",
		}, []string{"operation"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		RequestErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_errors_total",
			Help:      "Total number of HTTP requests answered with 5xx",
		}, []string{"method", "path"}),
	}
}

// NewNop returns metrics registered on a throwaway registry, for tests and tools.
func NewNop() *Metrics {
	return NewMetrics("oproom", prometheus.NewRegistry())
}
