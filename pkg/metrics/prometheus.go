package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	PlansComputed *prometheus.CounterVec
	PlansSaved    prometheus.Counter
	PlanningTime  prometheus.Histogram
	ErrorsCount   *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		PlansComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_computed_total",
			Help:      "The total number of planning requests by outcome",
		}, []string{"outcome"}),
		PlansSaved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_saved_total",
			Help:      "The total number of saved plans",
		}),
		PlanningTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "planning_time_seconds",
			Help:      "Time taken to compute a plan",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
