package cashflow

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// POOLS - Per-class sub-timelines with their own final state
// =============================================================================

// PoolAll is the pool holding every instance.
const PoolAll = "ALL"

// Pool is a filtered copy of the timeline and the state it aggregates to.
type Pool struct {
	Name      string
	Instances []Instance
	State     State
}

// Pools returns the ALL pool followed by one pool per distinct Class, sorted
// by class name. Every pool aggregates its own deep copy and then restamps
// wiggle, latent and lead time against its own balances, so the source
// timeline is never touched.
func Pools(instances []Instance, metrics []Metric, reserve decimal.Decimal, windowDays int) ([]Pool, error) {
	classes := make(map[string]struct{})
	for _, in := range instances {
		classes[in.Class] = struct{}{}
	}
	names := make([]string, 0, len(classes))
	for c := range classes {
		names = append(names, c)
	}
	sort.Strings(names)

	pools := make([]Pool, 0, len(names)+1)
	all, err := newPool(PoolAll, Filter(instances, func(Instance) bool { return true }), metrics, reserve, windowDays)
	if err != nil {
		return nil, err
	}
	pools = append(pools, all)

	for _, class := range names {
		class := class
		members := Filter(instances, func(in Instance) bool { return in.Class == class })
		pool, err := newPool(class, members, metrics, reserve, windowDays)
		if err != nil {
			return nil, err
		}
		pools = append(pools, pool)
	}
	return pools, nil
}

func newPool(name string, members []Instance, metrics []Metric, reserve decimal.Decimal, windowDays int) (Pool, error) {
	state := Aggregate(members, metrics)
	if err := CalculateWiggle(members, reserve); err != nil {
		return Pool{}, err
	}
	if err := CalculateLatent(members, reserve, windowDays); err != nil {
		return Pool{}, err
	}
	if err := CalculateLeadTime(members); err != nil {
		return Pool{}, err
	}
	return Pool{Name: name, Instances: members, State: state}, nil
}
