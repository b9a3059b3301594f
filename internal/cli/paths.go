package cli

import (
	"github.com/spf13/cobra"

	"github.com/jacoelho/tq/internal/path"
)

func newPathsCmd(o *options) *cobra.Command {
	var (
		maxDepth int
		lengths  bool
	)

	cmd := &cobra.Command{
		Use:   "paths [file]",
		Short: "List every distinct path of a document",
		Long: `The paths command lists every distinct path reachable in a document,
sorted. Sequence positions appear as the wildcard, or as [n] with --lengths.

Example:
  tq paths instances.json
  tq paths instances.json --max-depth 2
  kubectl get pods -o json | tq paths --select '$.items[0]' --lengths`,
		Args: fileArg,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := o.cfg.Root()
			if err != nil {
				return err
			}

			opts := []path.VisibleOption{path.WithMaxDepth(maxDepth)}
			if lengths {
				opts = append(opts, path.WithSequenceLength())
			}
			paths, err := o.cfg.Syntax().Visible(root, opts...)
			if err != nil {
				return err
			}
			logger(cmd).Debug("visible paths", "count", len(paths))

			out := make([]any, len(paths))
			for i, p := range paths {
				out[i] = p
			}
			return o.write(cmd, out)
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", -1, "maximum number of path elements (negative = unlimited)")
	cmd.Flags().BoolVar(&lengths, "lengths", false, "show sequence positions as [n] with the sequence length")
	return cmd
}
