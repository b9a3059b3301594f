package cli

import (
	"github.com/spf13/cobra"

	"github.com/jacoelho/tq/internal/flatten"
)

func newFlattenCmd(o *options) *cobra.Command {
	var (
		maxDepth      int
		prefix        string
		flattenLeaves bool
		leavesAt      []string
		strict        bool
	)

	cmd := &cobra.Command{
		Use:   "flatten [file]",
		Short: "Flatten a document into rows",
		Long: `The flatten command turns a nested document into rows. Map keys are
joined with the separator; sibling sequences multiply into one row per
combination; sequences of maps contribute one row per element. With
--select, every selected node is flattened separately and the rows are
concatenated.

Example:
  tq flatten instances.json -o table
  tq flatten instances.json --max-depth 2
  tq flatten tags.yaml --flatten-leaves-at Tags`,
		Args: fileArg,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []flatten.Option{
				flatten.WithSeparator(o.cfg.Syntax().Separator),
				flatten.WithMaxDepth(maxDepth),
				flatten.WithFlattenLeaves(flattenLeaves),
				flatten.WithFlattenLeavesAt(leavesAt...),
				flatten.WithRequireSerializable(strict),
				flatten.WithRecursionLimit(o.cfg.RecursionLimit),
				flatten.WithLogger(logger(cmd)),
			}
			if cmd.Flags().Changed("prefix") {
				opts = append(opts, flatten.WithPrefix(prefix))
			}
			f := flatten.New(opts...)

			trees, err := o.cfg.Trees()
			if err != nil {
				return err
			}

			var out any
			if o.cfg.Select == "" {
				out, err = f.Flatten(trees[0])
			} else {
				out, err = f.Disjoint(trees...)
			}
			if err != nil {
				return err
			}
			return o.write(cmd, out)
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", -1, "levels to expand (0 = unchanged, negative = unlimited)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "name of the document root in row keys")
	cmd.Flags().BoolVar(&flattenLeaves, "flatten-leaves", false, "one row per element of every scalar sequence")
	cmd.Flags().StringArrayVar(&leavesAt, "flatten-leaves-at", nil, "one row per element of the scalar sequence at this key (repeatable)")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on values that cannot be serialized")
	return cmd
}
