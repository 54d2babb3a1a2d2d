package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsRecorded tracks created event rows per kind and direction
	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_recorded_total",
			Help: "Total number of transaction events recorded",
		},
		[]string{"kind", "direction"},
	)

	// EventsUpdated tracks status updates applied to existing events
	EventsUpdated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_updated_total",
			Help: "Total number of transaction event updates",
		},
		[]string{"kind"},
	)

	// NotificationsDelivered tracks successful callback deliveries
	NotificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_notifications_delivered_total",
			Help: "Total number of delivered event notifications",
		},
		[]string{"kind"},
	)

	// NotificationsFailed tracks callback delivery failures
	NotificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_notifications_failed_total",
			Help: "Total number of failed event notifications",
		},
		[]string{"kind"},
	)

	// DBConnectionPoolUsage tracks connection pool utilization percentage
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "events_db_connection_pool_usage",
			Help: "Database connection pool usage percentage",
		},
	)
)
