package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	schedulerLabel = "scheduler"
	outcomeLabel   = "outcome"

	outcomeDone  = "done"
	outcomePanic = "panic"
)

var (
	schedulerPendingJobs = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pcstream",
		Name:      "scheduler_pending_jobs",
		Help:      "The number of jobs waiting to be executed.",
	}, []string{schedulerLabel})

	schedulerJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pcstream",
		Name:      "scheduler_jobs_total",
		Help:      "The total number of executed jobs by outcome.",
	}, []string{schedulerLabel, outcomeLabel})

	schedulerJobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pcstream",
		Name:      "scheduler_job_duration_seconds",
		Help:      "The time spent executing a job.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{schedulerLabel})
)

func instrumentPending(name string, pending int) {
	schedulerPendingJobs.
		With(prometheus.Labels{schedulerLabel: name}).
		Set(float64(pending))
}

func instrumentJob(name string, outcome string, elapsed time.Duration) {
	schedulerJobsTotal.
		With(prometheus.Labels{schedulerLabel: name, outcomeLabel: outcome}).
		Inc()
	schedulerJobDuration.
		With(prometheus.Labels{schedulerLabel: name}).
		Observe(elapsed.Seconds())
}
