package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"warehouse-dashboard/internal/auth"

	"github.com/spf13/cobra"
)

func newDecodeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <token|->",
		Short: "Decode a bearer token without verifying it",
		Long: `Decode prints the claims the gateway would derive from a token.
Pass "-" to read the token from stdin. Undecodable tokens print as anonymous.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := args[0]
			if raw == "-" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return fmt.Errorf("read token: %w", err)
				}
				raw = line
			}
			codec := auth.NewCodec(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil)))
			return printSession(cmd.OutOrStdout(), opts.Format, codec.Decode(raw))
		},
	}
}

func printSession(w io.Writer, format string, s auth.Session) error {
	c, ok := auth.ClaimsOf(s)
	if format == "json" {
		if !ok {
			return writeJSON(w, map[string]any{"authenticated": false})
		}
		return writeJSON(w, map[string]any{"authenticated": true, "claims": c})
	}

	if !ok {
		_, err := fmt.Fprintln(w, "anonymous")
		return err
	}
	fmt.Fprintf(w, "username:  %s\n", c.Username)
	fmt.Fprintf(w, "roles:     %s\n", strings.Join(c.Roles, ","))
	fmt.Fprintf(w, "userId:    %d\n", c.UserID)
	fmt.Fprintf(w, "storeId:   %s\n", optionalID(c.StoreID))
	_, err := fmt.Fprintf(w, "companyId: %s\n", optionalID(c.CompanyID))
	return err
}

func optionalID(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
