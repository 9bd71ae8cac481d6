package cashflow

// =============================================================================
// LEAD TIME - Days until the latent floor next drops
// =============================================================================

// CalculateLeadTime stamps each instance with the days until the first later
// instance whose latent floor is strictly smaller, or NoDecline.
//
// Next-smaller-element over a stack scanned right to left: the stack holds
// candidate indices with strictly increasing latent values from bottom to
// top. Linear time, same results as the forward scan. Requires latent.
func CalculateLeadTime(instances []Instance) error {
	if err := requireMetric(instances, MetricLatent); err != nil {
		return err
	}

	var stack []int
	for i := len(instances) - 1; i >= 0; i-- {
		latent := instances[i].Latent()
		for len(stack) > 0 && !instances[stack[len(stack)-1]].Latent().LessThan(latent) {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			instances[i].Lead = NoDecline
		} else {
			next := instances[stack[len(stack)-1]]
			instances[i].Lead = KnownLead(DaysBetween(instances[i].Date, next.Date))
		}
		stack = append(stack, i)
	}
	return nil
}
