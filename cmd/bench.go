package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/prodseq/app"
	"github.com/kilianp07/prodseq/config"
	"github.com/kilianp07/prodseq/core/model"
)

var benchOpts struct {
	line       string
	objectives []string
}

var benchCmd = &cobra.Command{
	Use:   "bench PROBLEM",
	Short: "Run every strategy on one line and compare scores per objective",
	Args:  cobra.ExactArgs(1),
	RunE:  bench,
}

func init() {
	benchCmd.Flags().StringVarP(&benchOpts.line, "line", "l", "", "line name (default: first line)")
	benchCmd.Flags().StringSliceVarP(&benchOpts.objectives, "objectives", "o", nil, "objectives to score with (default: all)")
	rootCmd.AddCommand(benchCmd)
}

func bench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	objs, err := config.ParseObjectives(benchOpts.objectives)
	if err != nil {
		return err
	}
	if len(objs) == 0 {
		objs = model.Objectives()
	}
	prob, err := config.LoadProblem(args[0])
	if err != nil {
		return fmt.Errorf("load problem: %w", err)
	}
	line := 0
	if benchOpts.line != "" {
		line = -1
		for i, l := range prob.Lines {
			if l.Name == benchOpts.line {
				line = i
			}
		}
		if line < 0 {
			return fmt.Errorf("unknown line %q", benchOpts.line)
		}
	}

	return withService(cfg, func(ctx context.Context, svc *app.Service) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for i, obj := range objs {
			entries, err := svc.Benchmark(ctx, prob, line, obj)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Fprintln(tw)
			}
			fmt.Fprintf(tw, "line %s, objective %s\n", prob.Lines[line].Name, obj)
			fmt.Fprintln(tw, "STRATEGY\tUSED\tPENALTY\tCOST\tLOST\tSCORE\tNOTES")
			for _, e := range entries {
				if e.Err != nil {
					fmt.Fprintf(tw, "%s\t-\t\t\t\t\t%v\n", e.Strategy, e.Err)
					continue
				}
				r := e.Result
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.2f\t%s\n",
					e.Strategy, r.Strategy, r.TotalPenalty, r.TotalCost, r.TotalLostSales, e.Score, statsNote(r.Stats))
			}
		}
		return tw.Flush()
	})
}

func statsNote(s model.Stats) string {
	switch {
	case s.Nodes > 0:
		note := fmt.Sprintf("nodes=%d bound=%d", s.Nodes, s.LowerBound)
		if s.BudgetExhausted {
			note += " budget exhausted"
		}
		return note
	case s.Iterations > 0:
		return fmt.Sprintf("iterations=%d skipped=%d best=%d mean=%.1f sd=%.1f",
			s.Iterations, s.Skipped, s.BestIteration, s.ScoreMean, s.ScoreStdDev)
	}
	return ""
}
