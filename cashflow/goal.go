package cashflow

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// GOAL PROJECTION - Net worth at a goal date under a few yield assumptions
// =============================================================================

// DefaultRetirementReturn is the annual return assumed for retirement savings.
const DefaultRetirementReturn = 0.12

// GoalScenario is one yield assumption for production capital.
type GoalScenario struct {
	Name            string
	ProductionYield float64
}

// StandardGoalScenarios are reported by the goal command and endpoint.
var StandardGoalScenarios = []GoalScenario{
	{Name: "Base production + retirement", ProductionYield: 0.0},
	{Name: "Production yield 12%", ProductionYield: 0.12},
	{Name: "Production yield 100%", ProductionYield: 1.00},
}

// GoalResult is the projected value for one scenario.
type GoalResult struct {
	Scenario GoalScenario
	Value    decimal.Decimal
	// Progress is Value / goal value as a percentage; zero when no goal is set.
	Progress decimal.Decimal
}

// GoalProjector values a projected timeline at a goal date.
type GoalProjector struct {
	Control          ControlParameters
	RetirementReturn float64
}

// compound grows principal at an annual rate for days days.
func compound(principal decimal.Decimal, days int, rate float64) decimal.Decimal {
	factor := math.Pow(1+rate, float64(days)/365.0)
	return principal.Mul(decimal.NewFromFloat(factor))
}

// Value projects the value at goalDate. instances must be a stamped
// timeline already pruned to dates before goalDate.
//
// Sum of: retirement balance compounded, production assets compounded at
// productionYield, static assets, each biweekly retirement contribution
// compounded from its paycheck, and each non-negative production-curve
// increment compounded from the day it appears.
func (g GoalProjector) Value(instances []Instance, goalDate Date, productionYield float64) decimal.Decimal {
	goal := g.Control.Goal
	now := g.Control.Now
	horizon := DaysBetween(now, goalDate)
	retirementReturn := g.RetirementReturn

	value := compound(goal.RetirementBalance, horizon, retirementReturn)
	value = value.Add(compound(goal.ProductionAssets, horizon, productionYield))
	value = value.Add(goal.StaticAssets)

	contribution := goal.BiweeklyGrossPay.Mul(goal.RetirementContribute)
	if !contribution.IsZero() {
		for k := 0; k < horizon/14; k++ {
			paid := now.AddDays(14 * k)
			value = value.Add(compound(contribution, DaysBetween(paid, goalDate), retirementReturn))
		}
	}

	previous := decimal.Zero
	for _, p := range ProductionPoints(instances) {
		w := p.Wiggle()
		if w.IsNegative() {
			continue
		}
		gain := w.Sub(previous)
		value = value.Add(compound(gain, DaysBetween(p.Date, goalDate), productionYield))
		previous = w
	}
	return value
}

// ProjectGoal projects one month past goalDate so that wiggle sees the
// obligations just beyond it, prunes to dates before goalDate and values
// every scenario.
func (p *Projector) ProjectGoal(control ControlParameters, defs map[Kind][]Definition, goalDate Date, scenarios []GoalScenario) ([]GoalResult, error) {
	if goalDate.IsZero() {
		goalDate = control.Goal.Date
	}
	if !control.Now.Before(goalDate) {
		return nil, fmt.Errorf("goal date %s: %w", goalDate, &RangeError{Start: control.Now, End: goalDate})
	}
	if len(scenarios) == 0 {
		scenarios = StandardGoalScenarios
	}

	projection, err := p.Project(control, defs, Period{Start: control.Now, End: goalDate.AddMonths(1)})
	if err != nil {
		return nil, err
	}
	pruned := projection.Before(goalDate)

	gp := GoalProjector{Control: control, RetirementReturn: DefaultRetirementReturn}
	results := make([]GoalResult, 0, len(scenarios))
	for _, sc := range scenarios {
		value := gp.Value(pruned, goalDate, sc.ProductionYield)
		progress := decimal.Zero
		if control.Goal.Value.IsPositive() {
			progress = value.Div(control.Goal.Value).Mul(decimal.NewFromInt(100))
		}
		results = append(results, GoalResult{Scenario: sc, Value: value, Progress: progress})
	}
	return results, nil
}
