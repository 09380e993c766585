package sidxcli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scopeidx/internal/model"
)

func newQueryCommand() *cobra.Command {
	var jsonl, vim bool
	cmd := &cobra.Command{
		Use:   "query <kind> <word>",
		Short: "Look up a symbol or text in every workspace directory",
		Long:  "Look up a symbol or text in every workspace directory.\n\nKinds: " + kindNames(),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonl && vim {
				return fmt.Errorf("--jsonl and --vim are mutually exclusive")
			}
			kind, err := model.ParseQueryKind(args[0])
			if err != nil {
				return err
			}
			word := args[1]
			if strings.TrimSpace(word) == "" {
				return fmt.Errorf("word is required")
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			items, err := s.Query(cmd.Context(), kind, word)
			if err != nil {
				return err
			}

			var out string
			switch {
			case jsonl:
				out = RenderJSONL(items)
			case vim:
				out = RenderVim(items)
			default:
				out = RenderDefault(items)
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonl, "jsonl", false, "output as JSONL")
	cmd.Flags().BoolVarP(&vim, "vim", "L", false, "vim quickfix lines")
	return cmd
}

func kindNames() string {
	kinds := model.Kinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}
