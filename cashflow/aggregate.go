/*
aggregate.go - Streaming accumulators over the timeline

PURPOSE:
  Walks the sorted timeline exactly once and maintains one running value
  per metric. After each instance every metric's new value is stored in
  the running state AND stamped onto the instance.

BUILT-IN METRICS (DefaultMetrics order):
  expenses: running sum of negative amounts
  income:   running sum of positive amounts
  balance:  running signed sum, seeded from CURRENT
  wiggle:   identity, filled in by CalculateWiggle
  latent:   identity, filled in by CalculateLatent

ORDERING:
  Aggregate must run before the calculators: latent reads balance, lead
  reads latent. The calculators check this and fail with ErrMetricMissing.

SEE ALSO:
  - wiggle.go, latent.go, lead.go: The dependent calculators
  - pools.go: Re-aggregates per-class sub-timelines
*/
package cashflow

import "github.com/shopspring/decimal"

// Metric names.
const (
	MetricExpenses = "expenses"
	MetricIncome   = "income"
	MetricBalance  = "balance"
	MetricWiggle   = "wiggle"
	MetricLatent   = "latent"
)

// Metric is a named running accumulator.
type Metric struct {
	Name       string
	Accumulate func(running, amount decimal.Decimal) decimal.Decimal
	Initial    decimal.Decimal
}

// State maps metric name to its current running value.
type State map[string]decimal.Decimal

// =============================================================================
// BUILT-IN ACCUMULATORS
// =============================================================================

func sumNegative(running, amount decimal.Decimal) decimal.Decimal {
	return running.Add(decimal.Min(decimal.Zero, amount))
}

func sumPositive(running, amount decimal.Decimal) decimal.Decimal {
	return running.Add(decimal.Max(decimal.Zero, amount))
}

func sumSigned(running, amount decimal.Decimal) decimal.Decimal {
	return running.Add(amount)
}

func identity(running, _ decimal.Decimal) decimal.Decimal { return running }

// DefaultMetrics returns the built-in metrics for a run.
func DefaultMetrics(control ControlParameters) []Metric {
	return []Metric{
		{Name: MetricExpenses, Accumulate: sumNegative, Initial: decimal.Zero},
		{Name: MetricIncome, Accumulate: sumPositive, Initial: decimal.Zero},
		{Name: MetricBalance, Accumulate: sumSigned, Initial: control.Current},
		{Name: MetricWiggle, Accumulate: identity, Initial: decimal.Zero},
		{Name: MetricLatent, Accumulate: identity, Initial: decimal.Zero},
	}
}

// =============================================================================
// AGGREGATION ENGINE
// =============================================================================

// Aggregate streams instances once in timeline order, stamping every metric
// on every instance, and returns the final state.
func Aggregate(instances []Instance, metrics []Metric) State {
	state := make(State, len(metrics))
	for _, m := range metrics {
		state[m.Name] = m.Initial
	}

	for i := range instances {
		in := &instances[i]
		for _, m := range metrics {
			next := m.Accumulate(state[m.Name], in.Amount)
			state[m.Name] = next
			in.setMetric(m.Name, next)
		}
	}
	return state
}

// requireMetric fails unless every instance carries name.
func requireMetric(instances []Instance, name string) error {
	for i, in := range instances {
		if _, ok := in.Metrics[name]; !ok {
			return &MetricMissingError{Metric: name, Index: i}
		}
	}
	return nil
}
