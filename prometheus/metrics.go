package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"repairshop-service/pkg/config"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Tenant context metrics
	TenantContextMissingCounter prometheus.Counter

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Entity lifecycle metrics
	EntityOperationsCounter prometheus.CounterVec

	// Cascade metrics
	CascadeDeleteCounter prometheus.CounterVec
	RestoreCounter       prometheus.CounterVec

	// Wipe metrics
	OrganizationWipeCounter prometheus.CounterVec

	// Open repair tickets by status
	OpenRepairsGauge prometheus.GaugeVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Tenant context metrics
	TenantContextMissingCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_context_missing_total",
			Help: "Total number of requests without tenant context",
		},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Entity lifecycle metrics
	EntityOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_entity_operations_total",
			Help: "Total number of entity operations",
		},
		[]string{"entity", "operation"},
	)

	// Cascade metrics
	CascadeDeleteCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_cascade_deletes_total",
			Help: "Total number of cascading soft deletes by root entity",
		},
		[]string{"entity"},
	)

	RestoreCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_restores_total",
			Help: "Total number of soft-delete restores",
		},
		[]string{"entity"},
	)

	// Wipe metrics
	OrganizationWipeCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_organization_wipes_total",
			Help: "Total number of bulk organization data wipes",
		},
		[]string{"outcome"},
	)

	// Open repair tickets by status
	OpenRepairsGauge = *promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_open_repairs",
			Help: "Current number of live repair tickets by status",
		},
		[]string{"status"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordEntityOperation increments the counter for one entity operation
func RecordEntityOperation(entity, operation string) {
	EntityOperationsCounter.WithLabelValues(entity, operation).Inc()
}

// RecordCascadeDelete increments the cascade counter for the root entity kind
func RecordCascadeDelete(entity string) {
	CascadeDeleteCounter.WithLabelValues(entity).Inc()
}

// RecordRestore increments the restore counter for the entity kind
func RecordRestore(entity string) {
	RestoreCounter.WithLabelValues(entity).Inc()
}

// RecordOrganizationWipe records a bulk wipe attempt by outcome
func RecordOrganizationWipe(outcome string) {
	OrganizationWipeCounter.WithLabelValues(outcome).Inc()
}
