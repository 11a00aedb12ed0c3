package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/prodseq/core/sequencing"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available strategies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, name := range sequencing.Strategies() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
