package cli

import (
	"github.com/spf13/cobra"

	"github.com/jacoelho/tq/internal/flatten"
	"github.com/jacoelho/tq/internal/prune"
)

func (o *options) specFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.cfg.Paths, "path", "p", nil, "path specification (repeatable)")
	cmd.Flags().StringVar(&o.cfg.SpecFile, "spec-file", "", "YAML file with path specifications")
}

// loadPruner builds the pruner from the flags and reads the root tree.
func (o *options) loadPruner(cmd *cobra.Command) (*prune.Pruner, any, error) {
	specs, err := o.specs()
	if err != nil {
		return nil, nil, err
	}
	p, err := o.pruner(cmd.Context(), specs)
	if err != nil {
		return nil, nil, err
	}
	root, err := o.cfg.Root()
	if err != nil {
		return nil, nil, err
	}
	return p, root, nil
}

func newPruneCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune [file]",
		Short: "Keep only the parts of a document reached by the paths",
		Long: `The prune command prints the minimal subtree containing every node
reached by a path, keeping the original maps and sequences. It prints null
when nothing matches.

Example:
  tq prune instances.json -p 'Reservations.[].Instances.[].InstanceId'
  tq prune deploy.yaml --spec-file specs.yaml -o yaml`,
		Args: fileArg,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, root, err := o.loadPruner(cmd)
			if err != nil {
				return err
			}

			subtree, ok, err := p.Subtree(root)
			if err != nil {
				return err
			}
			logger(cmd).Debug("pruned", "matched", ok)
			return o.write(cmd, subtree)
		},
	}
	o.specFlags(cmd)
	return cmd
}

func newLeavesCmd(o *options) *cobra.Command {
	var rake bool

	cmd := &cobra.Command{
		Use:   "leaves [file]",
		Short: "List the values reached by each path",
		Long: `The leaves command prints, for every path with its wildcards removed,
the values the path reached in document order. With --rake the values of all
paths are merged into one list without duplicates.

Example:
  tq leaves instances.json -p 'Reservations.[].Instances.[].InstanceId'
  tq leaves instances.json -p 'a.[].b' -p 'c.[].b' --rake`,
		Args: fileArg,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, root, err := o.loadPruner(cmd)
			if err != nil {
				return err
			}

			if rake {
				values, err := p.Rake(root)
				if err != nil {
					return err
				}
				return o.write(cmd, values)
			}

			leaves, err := p.Leaves(root)
			if err != nil {
				return err
			}
			return o.write(cmd, leaves)
		},
	}
	o.specFlags(cmd)
	cmd.Flags().BoolVar(&rake, "rake", false, "merge the values of all paths, dropping duplicates")
	return cmd
}

func newBranchesCmd(o *options) *cobra.Command {
	var (
		branchOpts    prune.BranchOptions
		flattenLeaves bool
	)

	cmd := &cobra.Command{
		Use:   "branches [file]",
		Short: "Prune a document and flatten the result into rows",
		Long: `The branches command prunes a document and flattens what remains into
rows whose keys are the paths without wildcards. Sibling sequences multiply
into one row per combination. With --select, every selected node is
flattened separately and the rows are concatenated.

Example:
  tq branches countries.json -p Name -p 'Cities.[].Name' -p 'Cities.[].Population' --balanced -o table`,
		Args: fileArg,
		RunE: func(cmd *cobra.Command, _ []string) error {
			specs, err := o.specs()
			if err != nil {
				return err
			}
			if flattenLeaves {
				for i := range specs {
					specs[i].FlattenLeaves = true
				}
			}
			p, err := o.pruner(cmd.Context(), specs)
			if err != nil {
				return err
			}

			trees, err := o.cfg.Trees()
			if err != nil {
				return err
			}

			records := make([]flatten.Record, 0, len(trees))
			for _, t := range trees {
				rows, err := p.Branches(t, branchOpts)
				if err != nil {
					return err
				}
				records = append(records, rows...)
			}
			logger(cmd).Debug("branches", "trees", len(trees), "records", len(records))
			return o.write(cmd, records)
		},
	}
	o.specFlags(cmd)
	cmd.Flags().BoolVar(&branchOpts.Balanced, "balanced", false, "give every row every path key, null when missing")
	cmd.Flags().BoolVar(&branchOpts.RequireSerializable, "strict", false, "fail on values that cannot be serialized")
	cmd.Flags().BoolVar(&flattenLeaves, "flatten-leaves", false, "one row per element of scalar sequences under every path")
	return cmd
}
