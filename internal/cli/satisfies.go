package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jacoelho/tq/internal/exit"
	"github.com/jacoelho/tq/internal/predicate"
)

func newSatisfiesCmd(o *options) *cobra.Command {
	var (
		at    string
		op    string
		value string
	)

	operators := make([]string, len(predicate.Operators))
	for i, candidate := range predicate.Operators {
		operators[i] = string(candidate)
	}

	cmd := &cobra.Command{
		Use:   "satisfies [file]",
		Short: "Check whether any value reached by a path satisfies a predicate",
		Long: fmt.Sprintf(`The satisfies command prints true and exits 0 when a value reached by
--path satisfies the predicate, and prints false and exits 3 otherwise.
Without --path the document root is tested. Values are parsed as YAML, so
5 is a number and [a, b] a list.

Operators: %s

Example:
  tq satisfies instances.json --path 'Reservations.[].Instances.[].State.Name' --op equals --value running
  tq satisfies pod.yaml --path 'spec.containers' --op length --value 2`, strings.Join(operators, ", ")),
		Args: fileArg,
		RunE: func(cmd *cobra.Command, _ []string) error {
			operator, err := predicate.ParseOperator(op)
			if err != nil {
				return exit.Usagef("%v", err)
			}
			expr := predicate.Expr{Op: operator}
			if cmd.Flags().Changed("value") {
				expr.Value = predicate.ParseValue(value)
				expr.HasValue = true
			}
			test, err := predicate.NewEvaluator().Func(expr)
			if err != nil {
				return exit.Usagef("%v", err)
			}

			p, err := o.pruner(cmd.Context(), nil)
			if err != nil {
				return err
			}
			root, err := o.cfg.Root()
			if err != nil {
				return err
			}

			var target any
			if cmd.Flags().Changed("path") {
				target = at
			}
			ok, err := p.Satisfies(root, target, test)
			if err != nil {
				return err
			}
			if err := o.write(cmd, ok); err != nil {
				return err
			}
			if !ok {
				return exit.ErrFalse
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "path", "", "path to the values to test; the root when omitted")
	cmd.Flags().StringVar(&op, "op", "", "predicate operator")
	cmd.Flags().StringVar(&value, "value", "", "expected value, parsed as YAML")
	return cmd
}
