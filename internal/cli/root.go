// Package cli implements dashctl, the operator tool for inspecting tokens and the route policy.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"warehouse-dashboard/internal/rbac"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format     string // "json" | "text"
	PolicyFile string
}

var validFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dashctl",
		Short: "Inspect dashboard tokens, route policy and navigation",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.PolicyFile, "policy", "", "route policy file (default: embedded)")

	cmd.AddCommand(newDecodeCommand(opts))
	cmd.AddCommand(newRoutesCommand(opts))
	cmd.AddCommand(newMenuCommand(opts))
	return cmd
}

func (o *RootOptions) policy() (rbac.Policy, error) {
	if o.PolicyFile == "" {
		return rbac.DefaultPolicy()
	}
	return rbac.LoadPolicyFile(o.PolicyFile)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
