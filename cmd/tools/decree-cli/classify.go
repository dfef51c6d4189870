package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"decree-workers/internal/decree/classify"
	"decree-workers/internal/decree/templates"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <candidates.yaml>",
		Short: "Print the decree category of every candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readCandidates(args[0])
			if err != nil {
				return err
			}

			engine := classify.New()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tNAME\tCATEGORY\tTEMPLATE\tNOTE")
			for i, c := range doc.Candidates {
				res := engine.Explain(c)
				note := ""
				switch {
				case res.FromOverride:
					note = "override"
				case res.TenureUnparsed:
					note = "tenure start unreadable"
				case res.TenureYears > 0:
					note = fmt.Sprintf("%d years", res.TenureYears)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, c.DisplayName(), res.Category, templates.DefaultID(res.Category), note)
			}
			return w.Flush()
		},
	}
}

