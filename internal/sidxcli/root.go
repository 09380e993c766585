// Package sidxcli implements the sidx command line.
package sidxcli

import (
	"github.com/spf13/cobra"

	"scopeidx/internal/version"
)

func NewRootCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:           "sidx",
		Short:         "Build and query cscope-style symbol indexes across workspace directories",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.Version = version.String()
	cmd.InitDefaultVersionFlag()
	if f := cmd.Flags().Lookup("version"); f != nil {
		f.Shorthand = "v"
	}

	withOptionsContext(cmd, opts)
	bindFlags(cmd, opts)

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if opts := optionsFrom(cmd); opts != nil {
			return opts.Prepare()
		}
		return nil
	}

	cmd.AddCommand(newBuildCommand())
	cmd.AddCommand(newQueryCommand())
	cmd.AddCommand(newCmdCommand())
	cmd.AddCommand(newHistoryCommand())
	cmd.AddCommand(newWatchCommand())
	cmd.AddCommand(newKindsCommand())
	return cmd
}
