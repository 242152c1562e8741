package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the background worker metrics
type Metrics struct {
	// Outbox related metrics
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram
	OutboxRetries           *prometheus.CounterVec
	OutboxCleanedUp         prometheus.Counter

	// Reminder metrics
	RemindersSent    *prometheus.CounterVec
	RemindersSkipped *prometheus.CounterVec
	ReminderScan     prometheus.Histogram

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
}

// New creates the metrics and registers them on reg. A nil registerer
// leaves them unregistered, which keeps tests independent of the default
// registry.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OutboxEventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully published outbox events",
		}),
		OutboxEventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of outbox events that failed publishing",
		}),
		OutboxProcessingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing a batch of outbox events",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		OutboxRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_retry_attempts_total",
			Help:      "Total number of retry attempts for outbox events",
		}, []string{"event_type"}),
		OutboxCleanedUp: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_cleaned_total",
			Help:      "Total number of processed outbox events deleted by cleanup",
		}),
		RemindersSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Total number of reminders delivered",
		}, []string{"kind"}),
		RemindersSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_skipped_total",
			Help:      "Reminders skipped because they were already sent today",
		}, []string{"kind"}),
		ReminderScan: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reminder_scan_duration_seconds",
			Help:      "Duration of one reminder scan",
			Buckets:   prometheus.DefBuckets,
		}),
		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.OutboxEventsProcessed,
			m.OutboxEventsFailed,
			m.OutboxProcessingLatency,
			m.OutboxRetries,
			m.OutboxCleanedUp,
			m.RemindersSent,
			m.RemindersSkipped,
			m.ReminderScan,
			m.DatabaseOperations,
		)
	}

	return m
}
