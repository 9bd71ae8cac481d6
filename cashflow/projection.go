/*
projection.go - Runs the full pipeline in its required order

PURPOSE:
  The individual stages are pure functions over one in-memory slice, but
  they only make sense in one order:

    BuildTimeline -> Aggregate -> CalculateWiggle -> CalculateLatent
                  -> CalculateLeadTime

  Projector runs them in that order and returns a Projection holding the
  stamped timeline and the final accumulator state.

INPUTS:
  ControlParameters and definitions are passed in explicitly. A Source
  (sqlite store, in-memory store, YAML file) loads them; LoadInputs does
  that in one call.

EXAMPLE:
  projector := cashflow.NewProjector(hebrew.Calendar{})
  control, defs, err := cashflow.LoadInputs(ctx, store)
  result, err := projector.ProjectHorizon(control, defs)
  spare, _ := result.SpareCapital()

SEE ALSO:
  - goal.go: Goal projection built on a Projection
  - api/handlers.go, cmd/cashflow: Callers
*/
package cashflow

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SOURCE - Where control parameters and definitions come from
// =============================================================================

// Source loads the inputs of a run.
type Source interface {
	Control(ctx context.Context) (ControlParameters, error)
	// Definitions returns definitions grouped by kind, each list in its
	// configured order.
	Definitions(ctx context.Context) (map[Kind][]Definition, error)
}

// LoadInputs reads control parameters and definitions from src.
func LoadInputs(ctx context.Context, src Source) (ControlParameters, map[Kind][]Definition, error) {
	control, err := src.Control(ctx)
	if err != nil {
		return ControlParameters{}, nil, fmt.Errorf("load control parameters: %w", err)
	}
	defs, err := src.Definitions(ctx)
	if err != nil {
		return ControlParameters{}, nil, fmt.Errorf("load definitions: %w", err)
	}
	return control, defs, nil
}

// =============================================================================
// PROJECTOR
// =============================================================================

// Projector runs projections. Safe for concurrent use as long as Calendar is.
// Each run memoizes Calendar conversions for its own horizon only.
type Projector struct {
	Calendar SecondaryCalendar

	// Metrics overrides DefaultMetrics when set.
	Metrics func(ControlParameters) []Metric
}

func NewProjector(cal SecondaryCalendar) *Projector {
	return &Projector{Calendar: cal}
}

// Projection is the output of one run.
type Projection struct {
	Control   ControlParameters
	Period    Period
	Instances []Instance
	State     State
}

// ProjectHorizon projects [Now, Now + HorizonMonths].
func (p *Projector) ProjectHorizon(control ControlParameters, defs map[Kind][]Definition) (*Projection, error) {
	return p.Project(control, defs, control.Horizon())
}

// Project expands, aggregates and stamps every metric over period.
func (p *Projector) Project(control ControlParameters, defs map[Kind][]Definition, period Period) (*Projection, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	var cal SecondaryCalendar
	if p.Calendar != nil {
		cal = NewMemoizedCalendar(p.Calendar)
	}
	catalog := NewCatalog(control, cal)
	instances, err := BuildTimeline(catalog, defs, period.Start, period.End)
	if err != nil {
		return nil, err
	}

	state := Aggregate(instances, p.metrics(control))
	if err := CalculateWiggle(instances, control.Reserve); err != nil {
		return nil, err
	}
	if err := CalculateLatent(instances, control.Reserve, control.Window()); err != nil {
		return nil, err
	}
	if err := CalculateLeadTime(instances); err != nil {
		return nil, err
	}

	return &Projection{Control: control, Period: period, Instances: instances, State: state}, nil
}

func (p *Projector) metrics(control ControlParameters) []Metric {
	if p.Metrics != nil {
		return p.Metrics(control)
	}
	return DefaultMetrics(control)
}

// SpareCapital is the wiggle of the first instance: what can be withdrawn
// today. False for an empty timeline.
func (pr *Projection) SpareCapital() (decimal.Decimal, bool) {
	if len(pr.Instances) == 0 {
		return decimal.Zero, false
	}
	return pr.Instances[0].Wiggle(), true
}

// ProductionPoints returns the production curve of this projection.
func (pr *Projection) ProductionPoints() []Instance {
	return ProductionPoints(pr.Instances)
}

// Pools splits the projection by class using the default metrics.
func (pr *Projection) Pools() ([]Pool, error) {
	return Pools(pr.Instances, DefaultMetrics(pr.Control), pr.Control.Reserve, pr.Control.Window())
}

// Before returns deep copies of the instances dated strictly before d.
func (pr *Projection) Before(d Date) []Instance {
	return Filter(pr.Instances, func(in Instance) bool { return in.Date.Before(d) })
}
