// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// SearchBranches counts per-hotel branch outcomes:
	// emitted, no_offers, no_result, skipped.
	SearchBranches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "package_search_branches_total",
			Help: "Per-hotel search branches by outcome",
		},
		[]string{"outcome"},
	)

	SearchBranchesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "package_search_branches_in_flight",
			Help: "Hotel branches currently holding a concurrency permit",
		},
	)

	SearchRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "package_search_runs_total",
			Help: "Completed search runs by status",
		},
		[]string{"trigger", "status"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Upstream API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Upstream API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	HotelCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_info_cache_lookups_total",
			Help: "Hotel metadata cache lookups by result",
		},
		[]string{"result"},
	)

	EnvelopesDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "output_envelopes_total",
			Help: "Envelopes pushed to the output sink",
		},
		[]string{"sink", "status"},
	)
)
