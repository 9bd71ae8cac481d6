package cashflow

import "github.com/shopspring/decimal"

// =============================================================================
// WIGGLE - Spare capital: what can leave today without breaking any later floor
// =============================================================================

// Segment is a run of consecutive instances ending at (and including) an
// income event. A trailing run with no closing income is a partial segment.
type Segment struct {
	From, To int // instances[From:To]
	Floor    decimal.Decimal
}

// Segments partitions the timeline at every positive amount and computes
// each segment's floor: min(balance over the segment) - reserve.
func Segments(instances []Instance, reserve decimal.Decimal) []Segment {
	var segments []Segment
	from := 0
	closeAt := func(to int) {
		low := instances[from].Balance()
		for _, in := range instances[from+1 : to] {
			low = decimal.Min(low, in.Balance())
		}
		segments = append(segments, Segment{From: from, To: to, Floor: low.Sub(reserve)})
		from = to
	}

	for i, in := range instances {
		if in.IsIncome() {
			closeAt(i + 1)
		}
	}
	if from < len(instances) {
		closeAt(len(instances))
	}
	return segments
}

// CalculateWiggle stamps every instance with the minimum floor over its own
// segment and every later one. An empty timeline has no segments and is left
// untouched.
func CalculateWiggle(instances []Instance, reserve decimal.Decimal) error {
	if len(instances) == 0 {
		return nil
	}
	if err := requireMetric(instances, MetricBalance); err != nil {
		return err
	}

	segments := Segments(instances, reserve)
	lowest := segments[len(segments)-1].Floor
	for s := len(segments) - 1; s >= 0; s-- {
		seg := segments[s]
		lowest = decimal.Min(lowest, seg.Floor)
		for i := seg.From; i < seg.To; i++ {
			instances[i].setMetric(MetricWiggle, lowest)
		}
	}
	return nil
}
