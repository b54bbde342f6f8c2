package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/phrazzld/vocabquest-api/internal/domain"
	"github.com/spf13/cobra"
)

func newLabelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "Show how review labels map to SM-2 quality",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LABEL\tQUALITY\tOUTCOME")
			for _, label := range domain.ReviewLabels() {
				q, err := label.Quality()
				if err != nil {
					return err
				}
				outcome := "fail"
				if q.Passed() {
					outcome = "pass"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", label, q, outcome)
			}
			return w.Flush()
		},
	}
}
