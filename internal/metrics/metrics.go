// Package metrics provides Prometheus metrics for the meal plan service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RolloverPlansTotal counts per-plan rollover outcomes
	RolloverPlansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealplan",
			Subsystem: "rollover",
			Name:      "plans_total",
			Help:      "Total number of plans processed by rollover, by outcome",
		},
		[]string{"outcome"},
	)

	// RolloverRunDuration tracks how long a full rollover run takes
	RolloverRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mealplan",
			Subsystem: "rollover",
			Name:      "run_duration_seconds",
			Help:      "Duration of rollover runs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// RolloverLastRun records the unix time of the last completed run
	RolloverLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mealplan",
			Subsystem: "rollover",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix timestamp of the last completed rollover run",
		},
	)

	// PlannerRequestsTotal counts planner calls by backend and status
	PlannerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealplan",
			Subsystem: "planner",
			Name:      "requests_total",
			Help:      "Total number of planner requests",
		},
		[]string{"backend", "status"},
	)

	// PlannerRequestDuration tracks planner latency
	PlannerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mealplan",
			Subsystem: "planner",
			Name:      "request_duration_seconds",
			Help:      "Duration of planner requests in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"backend"},
	)

	// MutationsTotal counts slot mutations by operation and outcome
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealplan",
			Subsystem: "mutation",
			Name:      "operations_total",
			Help:      "Total number of meal plan item mutations",
		},
		[]string{"operation", "outcome"},
	)

	// IngredientCacheLookups counts ingredient cache hits and misses
	IngredientCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mealplan",
			Subsystem: "ingredients",
			Name:      "cache_lookups_total",
			Help:      "Ingredient cache lookups by result",
		},
		[]string{"result"},
	)

	// HTTPRequestDuration tracks inbound request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mealplan",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Outcome labels shared by the counters above.
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeInactivated = "inactivated"
	OutcomeGenerated   = "generated"
	OutcomeSkipped     = "skipped"
	OutcomeFailed      = "failed"
)
