package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/covenantcc/crucible/pkg/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print crucible version",
		Long:  "Print the crucible version string.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "crucible %s\n", version.FullVersion())
		},
	}

	return cmd
}
