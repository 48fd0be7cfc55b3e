package cli

import (
	"fmt"
	"text/tabwriter"

	"warehouse-dashboard/internal/auth"
	"warehouse-dashboard/internal/i18n"
	"warehouse-dashboard/internal/rbac"

	"github.com/spf13/cobra"
)

type menuRow struct {
	rbac.MenuItem
	Label string `json:"label"`
}

func newMenuCommand(opts *RootOptions) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "menu <ROLE>",
		Short: "Show the navigation visible to a primary role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := rbac.ParseRole(args[0])
			if !ok {
				return fmt.Errorf("unknown role %q", args[0])
			}
			s := auth.Authenticated{Claims: auth.Claims{Roles: []string{string(role)}}}
			lang = i18n.Normalize(lang)

			var rows []menuRow
			for _, it := range rbac.Menu(s) {
				rows = append(rows, menuRow{MenuItem: it, Label: i18n.T(lang, it.Key)})
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SECTION\tLABEL\tPATH")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Section, r.Label, r.Path)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&lang, "lang", i18n.English, "label language (en|tr)")
	return cmd
}
