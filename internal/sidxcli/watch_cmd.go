package sidxcli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newWatchCommand() *cobra.Command {
	var initial bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the index whenever workspace files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts := optionsFrom(cmd); opts != nil && opts.Daemon != "" {
				return fmt.Errorf("watch runs in-process; use the daemon's watch.start method instead")
			}
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			out := cmd.OutOrStdout()
			rebuild := func(ctx context.Context) string {
				report := ws.Service.Build(ctx)
				if report != "" {
					_, _ = fmt.Fprintln(out, report)
				}
				return report
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if initial {
				rebuild(ctx)
			}

			w, err := ws.Watch(rebuild)
			if err != nil {
				return err
			}
			defer w.Close()

			for _, d := range w.Dirs() {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "watching", d)
			}
			return w.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&initial, "build", false, "build once before watching")
	return cmd
}
