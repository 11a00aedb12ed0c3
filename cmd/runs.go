package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/prodseq/core/runlog"
)

var runsOpts struct {
	runID     string
	line      string
	objective string
	since     time.Duration
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Query the run log",
	Args:  cobra.NoArgs,
	RunE:  runs,
}

func init() {
	f := runsCmd.Flags()
	f.StringVar(&runsOpts.runID, "run-id", "", "only this run")
	f.StringVar(&runsOpts.line, "line", "", "only this line")
	f.StringVar(&runsOpts.objective, "objective", "", "only this objective")
	f.DurationVar(&runsOpts.since, "since", 0, "only records newer than this, e.g. 24h")
	rootCmd.AddCommand(runsCmd)
}

func runs(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.RunLog.Backend == "" {
		return fmt.Errorf("no run log configured")
	}
	store, err := runlog.NewStore(cfg.RunLog)
	if err != nil {
		return err
	}
	defer store.Close()

	q := runlog.Query{RunID: runsOpts.runID, Line: runsOpts.line, Objective: runsOpts.objective}
	if runsOpts.since > 0 {
		q.Start = time.Now().Add(-runsOpts.since)
	}
	recs, err := store.Query(context.Background(), q)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
