package cashflow_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/cashflow"
)

func withWiggles(wiggles ...string) []cashflow.Instance {
	out := make([]cashflow.Instance, len(wiggles))
	for i, w := range wiggles {
		out[i] = cashflow.Instance{
			Date:    day(2025, time.January, 1).AddDays(7 * i),
			Metrics: map[string]decimal.Decimal{cashflow.MetricWiggle: dec(w)},
		}
	}
	return out
}

func TestProductionPoints_FirstOfEachValue(t *testing.T) {
	instances := withWiggles("200", "200", "200", "350", "350")

	points := cashflow.ProductionPoints(instances)

	require.Len(t, points, 2)
	assert.Equal(t, instances[0].Date, points[0].Date)
	assert.Equal(t, instances[3].Date, points[1].Date)
}

func TestProductionPoints_DedupIsGlobal(t *testing.T) {
	// GIVEN: A value that reappears after a different one
	// THEN: It is not emitted twice
	points := cashflow.ProductionPoints(withWiggles("100", "200", "100"))

	require.Len(t, points, 2)
	assertDecimal(t, "100", points[0].Wiggle())
	assertDecimal(t, "200", points[1].Wiggle())
}

func TestProductionPoints_Empty(t *testing.T) {
	assert.Empty(t, cashflow.ProductionPoints(nil))
}

func TestPools_AllFirstThenClasses(t *testing.T) {
	// GIVEN: A stamped timeline spanning two classes
	// WHEN: Splitting it into pools
	// THEN: Each pool re-aggregates only its members and the source is untouched
	control := testControl()
	control.Current = dec("1000")
	control.Reserve = dec("100")
	instances := []cashflow.Instance{
		{Date: day(2025, time.January, 1), Amount: dec("-300"), Class: "housing"},
		{Date: day(2025, time.January, 3), Amount: dec("2000"), Class: "salary"},
		{Date: day(2025, time.January, 5), Amount: dec("-100"), Class: "housing"},
	}
	metrics := cashflow.DefaultMetrics(control)
	cashflow.Aggregate(instances, metrics)

	pools, err := cashflow.Pools(instances, metrics, control.Reserve, 14)

	require.NoError(t, err)
	require.Len(t, pools, 3)
	assert.Equal(t, cashflow.PoolAll, pools[0].Name)
	assert.Equal(t, "housing", pools[1].Name)
	assert.Equal(t, "salary", pools[2].Name)

	assert.Len(t, pools[0].Instances, 3)
	assertDecimal(t, "2600", pools[0].State[cashflow.MetricBalance])

	assert.Len(t, pools[1].Instances, 2)
	assertDecimal(t, "600", pools[1].State[cashflow.MetricBalance])
	assertDecimal(t, "-400", pools[1].State[cashflow.MetricExpenses])
	assertDecimal(t, "600", pools[1].Instances[1].Balance())

	assertDecimal(t, "3000", pools[2].State[cashflow.MetricBalance])

	assertDecimal(t, "2600", instances[2].Balance())
	assertDecimal(t, "0", instances[2].Wiggle())
}

func TestPools_RestampFloorsPerPool(t *testing.T) {
	// GIVEN: Rent, pay, then a bill two days after pay, reserve 100
	// WHEN: Splitting with a two-day latent window
	// THEN: Every pool carries wiggle, latent and lead from its own balances
	control := testControl()
	control.Current = dec("1000")
	control.Reserve = dec("100")
	instances := []cashflow.Instance{
		{Date: day(2025, time.January, 1), Amount: dec("-300"), Class: "housing"},
		{Date: day(2025, time.January, 3), Amount: dec("2000"), Class: "salary"},
		{Date: day(2025, time.January, 5), Amount: dec("-100"), Class: "housing"},
	}
	metrics := cashflow.DefaultMetrics(control)
	cashflow.Aggregate(instances, metrics)

	pools, err := cashflow.Pools(instances, metrics, control.Reserve, 2)
	require.NoError(t, err)

	all := pools[0].Instances
	for i, want := range []string{"600", "600", "2500"} {
		assertDecimal(t, want, all[i].Wiggle())
	}
	for i, want := range []string{"600", "2600", "2500"} {
		assertDecimal(t, want, all[i].Latent())
	}
	assert.False(t, all[0].Lead.IsKnown())
	days, ok := all[1].Lead.Days()
	require.True(t, ok)
	assert.Equal(t, 2, days)
	assert.False(t, all[2].Lead.IsKnown())

	housing := pools[1].Instances
	assertDecimal(t, "500", housing[0].Wiggle())
	assertDecimal(t, "600", housing[0].Latent())
	assertDecimal(t, "500", housing[1].Latent())
	days, ok = housing[0].Lead.Days()
	require.True(t, ok)
	assert.Equal(t, 4, days)

	salary := pools[2].Instances
	assertDecimal(t, "2900", salary[0].Wiggle())
	assertDecimal(t, "2900", salary[0].Latent())
	assert.False(t, salary[0].Lead.IsKnown())
}
