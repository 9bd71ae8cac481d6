/*
Package report renders projections for people: text lines for the
terminal and CSV for spreadsheets.

PURPOSE:
  The engine produces decimals and tagged values; this package owns every
  formatting decision (money, days-later gaps, column order) so the CLI and
  any other caller print the same thing.

SEE ALSO:
  - cashflow/production.go: the points ProductionLines renders
  - cashflow/goal.go: the results GoalLines renders
*/
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/cashflow"
)

// FormatMoney renders d as "$1,234.56" ("-$1,234.56" when negative).
func FormatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}

// ProductionLines renders one line per production point:
//
//	2025-02-14 $1,250.00 (14 days later)
//
// The gap of the first point is measured from since; a zero since omits it.
func ProductionLines(points []cashflow.Instance, since cashflow.Date) []string {
	lines := make([]string, 0, len(points))
	prev := since
	for _, p := range points {
		line := p.Date.String() + " " + FormatMoney(p.Wiggle())
		if !prev.IsZero() {
			line += fmt.Sprintf(" (%d days later)", cashflow.DaysBetween(prev, p.Date))
		}
		lines = append(lines, line)
		prev = p.Date
	}
	return lines
}

// GoalLines renders one padded line per scenario with its progress toward
// the goal value.
func GoalLines(results []cashflow.GoalResult) []string {
	width := 0
	for _, r := range results {
		if n := len(r.Scenario.Name) + 1; n > width {
			width = n
		}
	}

	lines := make([]string, 0, len(results))
	for _, r := range results {
		label := fmt.Sprintf("%-*s", width, r.Scenario.Name+":")
		lines = append(lines, fmt.Sprintf("%s %s (%s%%)", label, FormatMoney(r.Value), r.Progress.StringFixed(1)))
	}
	return lines
}
