package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	slaSweepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "esteira_sla_sweeps_total",
			Help: "SLA sweeps by trigger and result",
		},
		[]string{"type", "result"},
	)

	slaCasesReleasedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "esteira_sla_cases_released_total",
			Help: "Cases reclaimed by the SLA engine by reason",
		},
		[]string{"reason"},
	)

	slaSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "esteira_sla_sweep_duration_seconds",
			Help:    "Wall-clock duration of completed SLA sweeps",
			Buckets: prometheus.DefBuckets,
		},
	)

	lockConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "esteira_lock_conflicts_total",
			Help: "Assign attempts that lost the race for a case",
		},
	)
)

const (
	sweepResultSuccess = "success"
	sweepResultBusy    = "busy"
	sweepResultError   = "error"
)
