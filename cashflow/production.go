package cashflow

// =============================================================================
// PRODUCTION CURVE - Vertices of spare capital over time
// =============================================================================

// ProductionPoints returns, in timeline order, the first instance seen for
// each distinct wiggle value. Deduplication is global: a value that comes
// back later is not repeated.
func ProductionPoints(instances []Instance) []Instance {
	seen := make(map[string]struct{})
	var points []Instance
	for _, in := range instances {
		key := in.Wiggle().String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		points = append(points, in.Clone())
	}
	return points
}
