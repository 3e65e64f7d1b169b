package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
)

// resolution is the output of the resolve command.
type resolution struct {
	Label  string        `json:"label"`
	Region domain.Region `json:"region"`
	Valid  bool          `json:"valid"`
}

func newRegionsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the canonical regions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFULL NAME\tCLASS")
			for _, r := range s.regions.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.FullName, r.Class)
			}
			return tw.Flush()
		},
	}
}

func newResolveCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve LABEL",
		Short: "Resolve a region label to its canonical region",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := s.regions.ResolveRegion(args[0])
			if !ok {
				return fmt.Errorf("resolve %q: %w", args[0], domain.ErrNotFound)
			}
			return printJSON(cmd.OutOrStdout(), resolution{
				Label:  args[0],
				Region: r,
				Valid:  s.regions.IsValid(args[0]),
			})
		},
	}
}
