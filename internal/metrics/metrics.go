package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "lyceum"
)

var (
	aiDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60}

	// Grid Metrics
	GridReordersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "grid_reorders_total",
		Help:      "Count of grid reorder requests by outcome.",
	}, []string{"status"})

	SidebarDropsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sidebar_drops_total",
		Help:      "Count of drag payloads dropped on the sidebar by outcome.",
	}, []string{"status"})

	// AI Helper Metrics
	AIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_requests_total",
		Help:      "Count of AI backend requests.",
	}, []string{"operation", "status"})

	AIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ai_request_duration_seconds",
		Help:      "Time taken for an AI backend round trip.",
		Buckets:   aiDurationBuckets,
	}, []string{"operation"})

	// Tracking Metrics
	VisitsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "visits_recorded_total",
		Help:      "Count of visitor beacons received by the tracking endpoint.",
	}, []string{"status"})

	BeaconFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracking_beacon_failures_total",
		Help:      "Count of visitor beacons that failed to send.",
	})

	// Maintenance Metrics
	MaintenanceRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "maintenance_runs_total",
		Help:      "Count of background maintenance runs by task and outcome.",
	}, []string{"task", "status"})
)
