package cashflow

import "github.com/shopspring/decimal"

// =============================================================================
// LATENT FLOOR - Worst balance within a forward window, net of reserve
// =============================================================================

// CalculateLatent stamps latent[i] = min(balance[k]) - reserve over every
// k >= i with date[k] - date[i] < windowDays.
//
// The trailing pointer j only moves forward; a monotonic deque of indices with
// increasing balances gives the window minimum, so the sweep is amortized
// linear. Requires balance to be stamped.
func CalculateLatent(instances []Instance, reserve decimal.Decimal, windowDays int) error {
	if err := requireMetric(instances, MetricBalance); err != nil {
		return err
	}
	if windowDays <= 0 {
		windowDays = DefaultLatentWindowDays
	}

	var deque []int // indices into instances, balances strictly increasing
	j := 0          // next index not yet inside the window
	for i := range instances {
		for j < len(instances) && DaysBetween(instances[i].Date, instances[j].Date) < windowDays {
			for len(deque) > 0 && !instances[deque[len(deque)-1]].Balance().LessThan(instances[j].Balance()) {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, j)
			j++
		}
		for deque[0] < i {
			deque = deque[1:]
		}
		instances[i].setMetric(MetricLatent, instances[deque[0]].Balance().Sub(reserve))
	}
	return nil
}
