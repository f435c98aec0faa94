package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mercator-hq/creditpilot/pkg/optimizer"
)

// Metrics tracks the controller's operational metrics.
//
// Metrics:
//   - creditpilot_routing_percentage: the final routing percentage
//   - creditpilot_month_spend_credits: month-to-date spend
//   - creditpilot_ideal_spend_credits: trajectory position
//   - creditpilot_daily_spend_rate_credits: observed daily rate
//   - creditpilot_pid_component: P/I/D term contributions
//   - creditpilot_budget_exceeded: hard-stop indicator (0/1)
//   - creditpilot_cycles_total: cycle count by outcome
//   - creditpilot_fetch_errors_total: fetch failures by source
//   - creditpilot_cycle_duration_seconds: cycle latency
type Metrics struct {
	routingPercentage prometheus.Gauge
	monthSpend        prometheus.Gauge
	idealSpend        prometheus.Gauge
	dailySpendRate    prometheus.Gauge
	pidComponent      *prometheus.GaugeVec
	budgetExceeded    prometheus.Gauge
	cyclesTotal       *prometheus.CounterVec
	fetchErrorsTotal  *prometheus.CounterVec
	cycleDuration     prometheus.Histogram
}

// New creates and registers the controller metrics with the registry.
func New(namespace string, registry *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = "creditpilot"
	}

	m := &Metrics{
		routingPercentage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "routing_percentage",
			Help:      "Final routing percentage sent to the secondary account",
		}),
		monthSpend: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "month_spend_credits",
			Help:      "Month-to-date spend in credits",
		}),
		idealSpend: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ideal_spend_credits",
			Help:      "Ideal month-to-date spend on the linear trajectory",
		}),
		dailySpendRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "daily_spend_rate_credits",
			Help:      "Observed daily spend rate in credits per day",
		}),
		pidComponent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pid_component",
			Help:      "PID term contributions to the last decision",
		}, []string{"term"}),
		budgetExceeded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "budget_exceeded",
			Help:      "1 when the budget-exceeded hard stop forced zero routing",
		}),
		cyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed control cycles by outcome",
		}, []string{"outcome"}),
		fetchErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Fetch failures by external source",
		}, []string{"source"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Control cycle duration",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		m.routingPercentage,
		m.monthSpend,
		m.idealSpend,
		m.dailySpendRate,
		m.pidComponent,
		m.budgetExceeded,
		m.cyclesTotal,
		m.fetchErrorsTotal,
		m.cycleDuration,
	)

	return m
}

// RecordDecision updates the gauges for a completed decision.
func (m *Metrics) RecordDecision(d *optimizer.Decision) {
	m.routingPercentage.Set(d.FinalPercentage)
	m.monthSpend.Set(d.Snapshot.CurrentMonthSpend)
	m.idealSpend.Set(d.IdealSpend)
	m.dailySpendRate.Set(d.Snapshot.DailySpendRate)
	m.pidComponent.WithLabelValues("p").Set(d.Components.P)
	m.pidComponent.WithLabelValues("i").Set(d.Components.I)
	m.pidComponent.WithLabelValues("d").Set(d.Components.D)
	if d.Overridden {
		m.budgetExceeded.Set(1)
	} else {
		m.budgetExceeded.Set(0)
	}
	m.cyclesTotal.WithLabelValues("success").Inc()
}

// RecordCycleFailure counts a failed cycle.
func (m *Metrics) RecordCycleFailure() {
	m.cyclesTotal.WithLabelValues("failure").Inc()
}

// RecordFetchError counts a fetch failure for the named source.
func (m *Metrics) RecordFetchError(source string) {
	m.fetchErrorsTotal.WithLabelValues(source).Inc()
}

// ObserveCycleDuration records how long a cycle took.
func (m *Metrics) ObserveCycleDuration(d time.Duration) {
	m.cycleDuration.Observe(d.Seconds())
}
