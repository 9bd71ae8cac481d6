package cashflow_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/cashflow"
)

func latentExample() []cashflow.Instance {
	return withBalances(
		entry{day(2025, time.January, 1), "1000", "1000"},
		entry{day(2025, time.January, 6), "-300", "700"},
		entry{day(2025, time.January, 14), "-400", "300"},
		entry{day(2025, time.January, 15), "-200", "100"},
		entry{day(2025, time.January, 31), "800", "900"},
	)
}

func TestCalculateLatent_FourteenDayWindow(t *testing.T) {
	// GIVEN: Reserve 50 and a drop to 100 on Jan 15
	// WHEN: Calculating latent over 14 days
	// THEN: Jan 1 does not see Jan 15 (exactly 14 days later), Jan 6 does
	instances := latentExample()

	require.NoError(t, cashflow.CalculateLatent(instances, dec("50"), 14))

	want := []string{"250", "50", "50", "50", "850"}
	for i, w := range want {
		assertDecimal(t, w, instances[i].Latent())
	}
}

func TestCalculateLatent_DefaultsWindow(t *testing.T) {
	instances := latentExample()

	require.NoError(t, cashflow.CalculateLatent(instances, dec("50"), 0))

	assertDecimal(t, "250", instances[0].Latent())
}

func TestCalculateLatent_NeverAboveOwnFloor(t *testing.T) {
	reserve := dec("25")
	instances := randomTimeline(rand.New(rand.NewSource(7)), 60)

	require.NoError(t, cashflow.CalculateLatent(instances, reserve, 14))

	for i, in := range instances {
		assert.Truef(t, in.Latent().LessThanOrEqual(in.Balance().Sub(reserve)), "instance %d", i)
	}
}

func TestCalculateLatent_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 20; run++ {
		window := 1 + rng.Intn(20)
		reserve := decimal.NewFromInt(int64(rng.Intn(100)))
		instances := randomTimeline(rng, 1+rng.Intn(80))

		require.NoError(t, cashflow.CalculateLatent(instances, reserve, window))

		for i := range instances {
			low := instances[i].Balance()
			for k := i; k < len(instances); k++ {
				if cashflow.DaysBetween(instances[i].Date, instances[k].Date) >= window {
					break
				}
				low = decimal.Min(low, instances[k].Balance())
			}
			assert.Truef(t, low.Sub(reserve).Equal(instances[i].Latent()),
				"run %d window %d instance %d: want %s got %s", run, window, i, low.Sub(reserve), instances[i].Latent())
		}
	}
}

// randomTimeline returns n balance-stamped instances with non-decreasing
// dates, several of them sharing a day.
func randomTimeline(rng *rand.Rand, n int) []cashflow.Instance {
	entries := make([]entry, n)
	date := day(2025, time.January, 1)
	balance := int64(500)
	for i := range entries {
		date = date.AddDays(rng.Intn(4))
		amount := int64(rng.Intn(601) - 300)
		balance += amount
		entries[i] = entry{
			date:    date,
			amount:  decimal.NewFromInt(amount).String(),
			balance: decimal.NewFromInt(balance).String(),
		}
	}
	return withBalances(entries...)
}
