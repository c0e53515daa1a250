package tasktree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"

	anomalyDuplicateRoot   = "duplicate_root"
	anomalyDuplicateTask   = "duplicate_task"
	anomalyMissingParent   = "missing_parent"
	anomalyCycle           = "cycle"
	anomalyUnknownAccess   = "unknown_access_task"
	anomalyUnknownProject  = "unknown_project_task"
	anomalyUnknownPosition = "unknown_order_task"
)

var (
	refreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasktree_refresh_total",
			Help: "Full task tree rebuilds by result.",
		},
		[]string{"result"},
	)

	refreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tasktree_refresh_duration_seconds",
			Help:    "Duration of full task tree rebuilds.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	nodeCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasktree_nodes",
			Help: "Nodes in the most recently published task tree.",
		},
	)

	anomaliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasktree_anomalies_total",
			Help: "Data inconsistencies found while building the task tree.",
		},
		[]string{"kind"},
	)

	orderRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasktree_order_positions_refresh_total",
			Help: "Order position cache rebuilds by result.",
		},
		[]string{"result"},
	)
)

func recordAnomaly(kind string) {
	anomaliesTotal.WithLabelValues(kind).Inc()
}
