package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type routeRow struct {
	Path   string   `json:"path"`
	Access string   `json:"access"`
	Roles  []string `json:"roles"`
}

func newRoutesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List guarded routes and their accepted roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.policy()
			if err != nil {
				return err
			}
			rows := make([]routeRow, 0)
			for _, r := range p.Rules() {
				row := routeRow{Path: r.Path, Access: r.Access}
				for _, role := range r.Allowed.Roles() {
					row.Roles = append(row.Roles, string(role))
				}
				rows = append(rows, row)
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tACCESS\tROLES")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%v\n", r.Path, r.Access, r.Roles)
			}
			return tw.Flush()
		},
	}
}
