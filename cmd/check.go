package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kilianp07/prodseq/qa/scenarios"
)

var errViolations = errors.New("scenario expectations violated")

var checkCmd = &cobra.Command{
	Use:   "check SCENARIO...",
	Short: "Run regression scenarios and report broken expectations",
	Args:  cobra.MinimumNArgs(1),
	RunE:  check,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func check(cmd *cobra.Command, args []string) error {
	var files []string
	for _, a := range args {
		m, err := filepath.Glob(a)
		if err != nil {
			return err
		}
		if len(m) == 0 {
			return fmt.Errorf("no scenario matches %q", a)
		}
		files = append(files, m...)
	}
	out := cmd.OutOrStdout()
	failed := 0
	for _, f := range files {
		sc, err := scenarios.Load(f)
		if err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
		violations, err := scenarios.Run(cmd.Context(), sc)
		if err != nil {
			return err
		}
		if len(violations) == 0 {
			fmt.Fprintf(out, "ok   %s\n", sc.Name)
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL %s\n", sc.Name)
		for _, v := range violations {
			fmt.Fprintf(out, "     %s\n", v)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w in %d of %d scenarios", errViolations, failed, len(files))
	}
	return nil
}
