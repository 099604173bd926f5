// Package metrics exposes Prometheus instrumentation for the allocation
// engine: how many candidates the generator produces, how profitable the
// DP-only solution is, how the search loop behaves, and how long a whole
// optimisation run takes. Collectors register with Prometheus's default
// registry through promauto; this package does not serve them over HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the optimisation pipeline
// writes to.
type Metrics struct {
	CandidatesGenerated  prometheus.Counter
	CandidateGenSeconds  prometheus.Histogram
	DPProfit             prometheus.Gauge
	DPSeconds            prometheus.Histogram
	SearchIterationsTotal *prometheus.CounterVec
	SearchAcceptedTotal   *prometheus.CounterVec
	SearchProfit         prometheus.Gauge
	OptimizationSeconds  prometheus.Histogram
	OptimizationsTotal   *prometheus.CounterVec
}

// New creates and registers every collector. instance identifies the
// agroalloc instance (process-wide, not per-run) so multiple deployments
// scraped by the same Prometheus don't collide.
func New(instance string) *Metrics {
	return &Metrics{
		CandidatesGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agroalloc_candidates_generated_total",
			Help: "Total allocation candidates produced by the candidate generator",
			ConstLabels: prometheus.Labels{
				"instance": instance,
			},
		}),

		CandidateGenSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "agroalloc_candidate_generation_seconds",
			Help: "Time spent generating the candidate pool for one optimisation run",
			ConstLabels: prometheus.Labels{
				"instance": instance,
			},
			Buckets: prometheus.DefBuckets,
		}),

		DPProfit: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "agroalloc_dp_solution_profit",
			Help: "Total profit of the most recent interval-scheduling DP solution",
			ConstLabels: prometheus.Labels{
				"instance": instance,
			},
		}),

		DPSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "agroalloc_dp_seconds",
			Help: "Time spent solving the interval-scheduling DP across all fields",
			ConstLabels: prometheus.Labels{
				"instance": instance,
			},
			Buckets: prometheus.DefBuckets,
		}),

		SearchIterationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agroalloc_search_iterations_total",
			Help: "Total local-search/ALNS iterations run, by mode",
			ConstLabels: prometheus.Labels{
				"instance": instance,
			},
		}, []string{"mode"}),

		SearchAcceptedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agroalloc_search_accepted_total",
			Help: "Total ALNS iteration outcomes, by acceptance decision (new_best, better, worse, rejected)",
			ConstLabels: prometheus.Labels{
				"instance": instance,
			},
		}, []string{"reason"}),

		SearchProfit: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "agroalloc_search_solution_profit",
			Help: "Total profit of the most recent local-search/ALNS solution",
			ConstLabels: prometheus.Labels{
				"instance": instance,
			},
		}),

		OptimizationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "agroalloc_optimization_seconds",
			Help: "Wall-clock time of a full optimisation run, end to end",
			ConstLabels: prometheus.Labels{
				"instance": instance,
			},
			Buckets: prometheus.DefBuckets,
		}),

		OptimizationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agroalloc_optimizations_total",
			Help: "Total successful optimisation runs, by outcome (ok, infeasible)",
			ConstLabels: prometheus.Labels{
				"instance": instance,
			},
		}, []string{"outcome"}),
	}
}

// RecordCandidateGeneration records one candidate-generation pass.
func (m *Metrics) RecordCandidateGeneration(count int, seconds float64) {
	m.CandidatesGenerated.Add(float64(count))
	m.CandidateGenSeconds.Observe(seconds)
}

// RecordDP records one DP solve across all fields.
func (m *Metrics) RecordDP(profit, seconds float64) {
	m.DPProfit.Set(profit)
	m.DPSeconds.Observe(seconds)
}

// RecordSearchIteration increments the iteration counter for the given
// search mode ("hill_climb" or "alns").
func (m *Metrics) RecordSearchIteration(mode string) {
	m.SearchIterationsTotal.WithLabelValues(mode).Inc()
}

// RecordAcceptance increments the acceptance counter for one ALNS outcome.
func (m *Metrics) RecordAcceptance(reason string) {
	m.SearchAcceptedTotal.WithLabelValues(reason).Inc()
}

// RecordSearchProfit sets the gauge tracking the search loop's current
// best-so-far solution profit.
func (m *Metrics) RecordSearchProfit(profit float64) {
	m.SearchProfit.Set(profit)
}

// RecordOptimization records one complete optimisation run.
func (m *Metrics) RecordOptimization(outcome string, seconds float64) {
	m.OptimizationsTotal.WithLabelValues(outcome).Inc()
	m.OptimizationSeconds.Observe(seconds)
}
