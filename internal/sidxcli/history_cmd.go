package sidxcli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newHistoryCommand() *cobra.Command {
	var limit int
	var jsonl bool
	cmd := &cobra.Command{
		Use:   "history [search]",
		Short: "List journaled runs, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("limit must be >= 0")
			}
			search := ""
			if len(args) == 1 {
				search = strings.TrimSpace(args[0])
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.History(search, limit)
			if err != nil {
				return err
			}
			if jsonl {
				for _, r := range runs {
					if err := writeJSONLine(cmd.OutOrStdout(), r); err != nil {
						return err
					}
				}
				return nil
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), RenderRuns(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs")
	cmd.Flags().BoolVar(&jsonl, "jsonl", false, "output as JSONL")
	return cmd
}
