package sidxcli

import (
	"fmt"

	"github.com/spf13/cobra"

	"scopeidx/internal/model"
)

func newKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List query kinds and their indexer flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range model.Kinds() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", k, k.Flag())
			}
			return nil
		},
	}
}
