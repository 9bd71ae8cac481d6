package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/warp/cashflow-engine/cashflow"
)

// TimelineColumns is the header WriteTimelineCSV writes.
var TimelineColumns = []string{
	"DAY", "KIND", "NAME", "CLASS", "TO", "VALUE", "AUTO", "NOTES",
	cashflow.MetricExpenses, cashflow.MetricIncome, cashflow.MetricBalance,
	cashflow.MetricWiggle, cashflow.MetricLatent, "lead_days",
}

// WriteTimelineCSV writes one row per instance. Metrics an instance does
// not carry are left empty, as is lead_days when there is no decline.
func WriteTimelineCSV(w io.Writer, instances []cashflow.Instance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TimelineColumns); err != nil {
		return err
	}

	for _, in := range instances {
		row := []string{
			in.Date.String(),
			in.Kind.String(),
			in.Name,
			in.Class,
			in.Account,
			in.Amount.StringFixed(2),
			strconv.FormatBool(in.Auto),
			in.Notes,
		}
		for _, name := range []string{
			cashflow.MetricExpenses, cashflow.MetricIncome, cashflow.MetricBalance,
			cashflow.MetricWiggle, cashflow.MetricLatent,
		} {
			v, ok := in.Metric(name)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, v.StringFixed(2))
		}
		if days, ok := in.Lead.Days(); ok {
			row = append(row, strconv.Itoa(days))
		} else {
			row = append(row, "")
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
