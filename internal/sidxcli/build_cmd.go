package sidxcli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the index in every workspace directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.Build(cmd.Context())
			if err != nil {
				return err
			}
			if report != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), report)
			}
			return nil
		},
	}
}
