package sidxcli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCmdCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cmd",
		Short: "Print the last build and query command lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			last, err := s.CmdLast()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "build: %s\nquery: %s\n", last.Build, last.Query)
			return nil
		},
	}
}
