package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/prodseq/core/planner"
)

// WriteHTML renders the plan as a self-contained HTML page: a score overview
// followed by one stacked production chart per successful result.
func WriteHTML(w io.Writer, plan *planner.Plan, names []string) error {
	page := components.NewPage()
	page.PageTitle = "Plan " + plan.RunID
	page.AddCharts(scoreChart(plan))
	for _, r := range plan.Results {
		if r.Err != nil {
			continue
		}
		page.AddCharts(productionChart(r, names))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func scoreChart(plan *planner.Plan) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Lost sales per solve", Subtitle: "run " + plan.RunID}),
		charts.WithXAxisOpts(opts.XAxis{Name: "line/objective"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "units"}),
	)
	var x []string
	var lost, penalty []opts.BarData
	for _, r := range plan.Results {
		if r.Err != nil {
			continue
		}
		x = append(x, r.Line+"/"+r.Objective.String())
		lost = append(lost, opts.BarData{Value: r.Result.TotalLostSales + sum(r.Result.EndingBacklog)})
		penalty = append(penalty, opts.BarData{Value: r.Result.TotalPenalty})
	}
	bar.SetXAxis(x).
		AddSeries("lost sales", lost).
		AddSeries("changeover penalty", penalty)
	return bar
}

func productionChart(r planner.LineResult, names []string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s / %s", r.Line, r.Objective),
			Subtitle: fmt.Sprintf("%s, penalty %d, cost %d, lost %d", r.Result.Strategy, r.Result.TotalPenalty, r.Result.TotalCost, r.Result.TotalLostSales),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "units"}),
	)
	products := len(r.Result.EndingBacklog)
	days := make([]string, len(r.Result.Days))
	series := make([][]opts.BarData, products)
	for i, d := range r.Result.Days {
		days[i] = fmt.Sprintf("day %d", d.Day+1)
		produced := make([]int, products)
		for _, e := range d.Events {
			if e.Product < products {
				produced[e.Product] += e.Amount
			}
		}
		for p := range series {
			series[p] = append(series[p], opts.BarData{Value: produced[p]})
		}
	}
	bar.SetXAxis(days)
	for p, data := range series {
		bar.AddSeries(productName(names, p), data, charts.WithBarChartOpts(opts.BarChart{Stack: "production"}))
	}
	return bar
}

func sum(v []int) int {
	n := 0
	for _, x := range v {
		n += x
	}
	return n
}
