package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/prodseq/app"
	"github.com/kilianp07/prodseq/config"
	"github.com/kilianp07/prodseq/core/planner"
	"github.com/kilianp07/prodseq/pkg/export"
)

var solveOpts struct {
	strategy   string
	objectives []string
	format     string
	output     string
	chart      string
	serve      bool
}

var solveCmd = &cobra.Command{
	Use:   "solve PROBLEM",
	Short: "Plan every line of a problem file",
	Args:  cobra.ExactArgs(1),
	RunE:  solve,
}

func init() {
	f := solveCmd.Flags()
	f.StringVarP(&solveOpts.strategy, "strategy", "s", "", "override the configured strategy")
	f.StringSliceVarP(&solveOpts.objectives, "objective", "o", nil, "objectives to plan for (default: configured, else all)")
	f.StringVarP(&solveOpts.format, "format", "f", "table", "output format: table, json or csv")
	f.StringVar(&solveOpts.output, "out", "", "write the plan to this file instead of stdout")
	f.StringVar(&solveOpts.chart, "chart", "", "also write an HTML chart report to this file")
	f.BoolVar(&solveOpts.serve, "serve", false, "keep serving metrics after planning until interrupted")
	rootCmd.AddCommand(solveCmd)
}

func solve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if solveOpts.strategy != "" {
		cfg.Sequencing.Strategy = solveOpts.strategy
	}
	if len(solveOpts.objectives) > 0 {
		cfg.Objectives = solveOpts.objectives
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	prob, err := config.LoadProblem(args[0])
	if err != nil {
		return fmt.Errorf("load problem: %w", err)
	}

	return withService(cfg, func(ctx context.Context, svc *app.Service) error {
		svc.Start(ctx)
		plan, err := svc.Plan(ctx, prob)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if solveOpts.output != "" {
			f, err := os.Create(solveOpts.output)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if err := writePlan(out, plan, prob.Products, solveOpts.format); err != nil {
			return err
		}
		if solveOpts.chart != "" {
			f, err := os.Create(solveOpts.chart)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := export.WriteHTML(f, plan, prob.Products); err != nil {
				return err
			}
		}
		if solveOpts.serve {
			return svc.Serve(ctx)
		}
		if n := plan.Failed(); n > 0 {
			return fmt.Errorf("%d of %d solves failed", n, len(plan.Results))
		}
		return nil
	})
}

func writePlan(w io.Writer, plan *planner.Plan, names []string, format string) error {
	switch format {
	case "json":
		return export.WriteJSON(w, plan)
	case "csv":
		return export.WriteCSV(w, plan, names)
	case "table":
		return writeTable(w, plan)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeTable(w io.Writer, plan *planner.Plan) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run %s\n", plan.RunID)
	fmt.Fprintln(tw, "LINE\tOBJECTIVE\tSTRATEGY\tPENALTY\tCOST\tLOST\tBACKLOG\tSCORE\tTIME")
	for _, r := range plan.Results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t%s\terror: %v\t\t\t\t\t\t\n", r.Line, r.Objective, r.Err)
			continue
		}
		backlog := 0
		for _, b := range r.Result.EndingBacklog {
			backlog += b
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%.2f\t%s\n",
			r.Line, r.Objective, r.Result.Strategy,
			r.Result.TotalPenalty, r.Result.TotalCost, r.Result.TotalLostSales, backlog,
			r.Result.Score, r.Duration.Round(time.Microsecond))
	}
	return tw.Flush()
}
