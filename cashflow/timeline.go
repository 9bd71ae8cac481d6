package cashflow

import "slices"

// =============================================================================
// TIMELINE BUILDER - Merge every kind's instances, chronologically
// =============================================================================

// BuildTimeline expands every catalog entry over [start, end] and sorts the
// result by date. Same-day instances keep catalog order of their kind, then
// expansion order, so the output is fully deterministic.
func BuildTimeline(catalog *Catalog, defs map[Kind][]Definition, start, end Date) ([]Instance, error) {
	if err := (Period{Start: start, End: end}).Validate(); err != nil {
		return nil, err
	}

	var all []Instance
	for _, rec := range catalog.Entries() {
		instances, err := Expand(rec, defs[rec.Kind], start, end)
		if err != nil {
			return nil, err
		}
		all = append(all, instances...)
	}

	// Concatenation already follows catalog order; a stable sort keeps it.
	slices.SortStableFunc(all, func(a, b Instance) int {
		return a.Date.Compare(b.Date)
	})
	return all, nil
}

// IsSorted reports whether instances are in non-decreasing date order.
func IsSorted(instances []Instance) bool {
	return slices.IsSortedFunc(instances, func(a, b Instance) int {
		return a.Date.Compare(b.Date)
	})
}

// Filter returns deep copies of the instances matching keep, in order.
func Filter(instances []Instance, keep func(Instance) bool) []Instance {
	var out []Instance
	for _, in := range instances {
		if keep(in) {
			out = append(out, in.Clone())
		}
	}
	return out
}
