package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vocabctl",
		Short: "Inspect the vocabquest review scheduler",
		Long: `vocabctl runs the SM-2 review scheduler offline so schedules can be
checked without a database: simulate a sequence of reviews or list the
review labels offered to learners.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(newSimulateCmd(), newLabelsCmd())
	return root
}
