package cashflow

// =============================================================================
// EVENT EXPANDER - Definitions -> dated instances for one recurrence kind
// =============================================================================

// Expand walks rec's cycles across [start, end] and returns one Instance per
// accepted date, in cycle order then definition order.
//
// The walk begins at the latest cycle boundary <= start. A date is accepted
// when it lies in [start, end] (inclusive) and inside the definition's own
// validity window. Any selector error aborts the expansion.
func Expand(rec Recurrence, defs []Definition, start, end Date) ([]Instance, error) {
	period := Period{Start: start, End: end}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	n := firstCycle(rec, start)

	var instances []Instance
	for cycleStart := rec.Boundary(n); cycleStart.Before(end); cycleStart = rec.Boundary(n) {
		cycle := Cycle{Start: cycleStart, End: rec.Boundary(n + 1)}
		for _, def := range defs {
			dates, err := rec.Selector.Select(cycle, def)
			if err != nil {
				return nil, err
			}
			for _, d := range dates {
				if !period.Contains(d) || !def.ValidOn(d) {
					continue
				}
				inst := NewInstance(def, d)
				inst.Kind = rec.Kind
				instances = append(instances, inst)
			}
		}
		n++
	}
	return instances, nil
}

// firstCycle returns the index of the latest boundary <= start. The anchor
// may lie after start, in which case the index is negative.
func firstCycle(rec Recurrence, start Date) int {
	n := 0
	for !rec.Boundary(n + 1).After(start) {
		n++
	}
	for rec.Boundary(n).After(start) {
		n--
	}
	return n
}
