// Package export renders plans as JSON, CSV or an HTML chart report.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/prodseq/core/planner"
)

// WriteJSON writes the plan to w in JSON format.
func WriteJSON(w io.Writer, plan *planner.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// CSVHeader lists the columns written by WriteCSV.
var CSVHeader = []string{"run_id", "line", "objective", "strategy", "day", "seq", "product", "amount"}

// WriteCSV writes one row per production event. names labels products by
// index; products without a name are written as their index.
func WriteCSV(w io.Writer, plan *planner.Plan, names []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range plan.Results {
		if r.Err != nil {
			continue
		}
		for _, d := range r.Result.Days {
			for i, e := range d.Events {
				rec := []string{
					plan.RunID,
					r.Line,
					r.Objective.String(),
					r.Result.Strategy,
					strconv.Itoa(d.Day),
					strconv.Itoa(i),
					productName(names, e.Product),
					strconv.Itoa(e.Amount),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func productName(names []string, p int) string {
	if p >= 0 && p < len(names) && names[p] != "" {
		return names[p]
	}
	return strconv.Itoa(p)
}
