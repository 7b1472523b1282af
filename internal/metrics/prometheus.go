package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DirectoryOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_operations_total",
			Help: "Directory operations by name and result",
		},
		[]string{"op", "result"},
	)

	BulkAssignConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bulk_assign_conflicts_total",
			Help: "Bulk assignments rejected because memberships would be dropped",
		},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Directory events handed to the message broker",
		},
		[]string{"type", "result"},
	)

	WorkerProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_notifications_processed_total",
			Help: "Notifications delivered by workers",
		},
		[]string{"tenant"},
	)

	WorkerFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_notifications_failed_total",
			Help: "Notifications rejected to the dead-letter queue",
		},
		[]string{"tenant"},
	)

	WorkerActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_active_goroutines",
			Help: "Number of active worker goroutines per tenant",
		},
		[]string{"tenant"},
	)

	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Current RabbitMQ queue depth per tenant",
		},
		[]string{"tenant"},
	)
)

var initOnce sync.Once

// Init registers metrics with Prometheus. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			DirectoryOps,
			BulkAssignConflicts,
			EventsPublished,
			WorkerProcessed,
			WorkerFailed,
			WorkerActive,
			QueueDepth,
		)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
