package collector

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FetchesTotal counts successful dependency fetches.
	FetchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "resilord_dependency_fetches_total",
			Help: "Total number of successful dependency graph fetches",
		},
	)

	// FetchErrorsTotal counts failed dependency fetches.
	FetchErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "resilord_dependency_fetch_errors_total",
			Help: "Total number of failed dependency graph fetches",
		},
	)

	// LastEdgeCount tracks the edge count of the last collected graph.
	LastEdgeCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "resilord_dependency_edges",
			Help: "Edge count of the most recently collected dependency graph",
		},
	)

	// WorkloadRunsTotal counts wrk2 workload invocations.
	WorkloadRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "resilord_workload_runs_total",
			Help: "Total number of workload generator invocations",
		},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(FetchesTotal)
	prometheus.MustRegister(FetchErrorsTotal)
	prometheus.MustRegister(LastEdgeCount)
	prometheus.MustRegister(WorkloadRunsTotal)
}
