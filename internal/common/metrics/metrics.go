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

	DecreeDocumentsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decree_documents_generated_total",
			Help: "Decree documents rendered into an archive",
		},
		[]string{"category"},
	)

	DecreeItemsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decree_items_failed_total",
			Help: "Batch items skipped because of an error",
		},
		[]string{"error_code"},
	)

	DecreeBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "decree_batch_duration_seconds",
			Help:    "Wall time of a decree batch by final state",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"state"},
	)
)
