// Package cli implements the tq command line.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/jacoelho/tq/internal/config"
	"github.com/jacoelho/tq/internal/exit"
	"github.com/jacoelho/tq/internal/formatter"
	tqlog "github.com/jacoelho/tq/internal/log"
	"github.com/jacoelho/tq/internal/prune"
	"github.com/jacoelho/tq/internal/source"
)

// Version is reported by --version.
var Version = "dev"

// options carries the state shared by all commands of one invocation.
type options struct {
	cfg         config.Config
	output      string
	inputFormat string
}

// New returns the root command.
func New() *cobra.Command {
	o := &options{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:   "tq",
		Short: "Prune and flatten JSON and YAML documents",
		Long: `tq extracts the parts of a document addressed by path specifications
and flattens nested documents into rows.

A path is a list of field names joined by the separator ("."), where the
wildcard ("[]") stands for every element of a sequence:

  Reservations.[].Instances.[].InstanceId`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: o.setup,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exit.Usagef("%v", err)
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.cfg.Select, "select", "", "JSONPath selecting the nodes to work on; each node is a separate tree")
	flags.StringVarP(&o.output, "format", "o", string(formatter.FormatJSON), "output format (json, ndjson, yaml, table)")
	flags.StringVar(&o.inputFormat, "input-format", "", "input format (json, yaml); inferred from the file name by default")
	flags.StringVar(&o.cfg.Separator, "separator", o.cfg.Separator, "path and record key separator")
	flags.StringVar(&o.cfg.Wildcard, "wildcard", o.cfg.Wildcard, "path wildcard token")
	flags.IntVar(&o.cfg.RecursionLimit, "recursion-limit", o.cfg.RecursionLimit, "maximum nesting depth before failing")
	tqlog.RegisterLoggingFlags(cmd)

	cmd.AddCommand(
		newPathsCmd(o),
		newPruneCmd(o),
		newLeavesCmd(o),
		newBranchesCmd(o),
		newFlattenCmd(o),
		newSatisfiesCmd(o),
	)
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := New()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	result := exit.FromError(stderr, err)
	result.Print()
	return result.ExitCode
}

// setup runs before every command: it builds the logger, resolves the input
// and validates the configuration.
func (o *options) setup(cmd *cobra.Command, args []string) error {
	logger, err := tqlog.GetBaseLogger(cmd)
	if err != nil {
		return exit.Usagef("%v", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(slogcontext.NewCtx(ctx, logger))

	if len(args) > 0 {
		o.cfg.Input = args[0]
	}
	flags := cmd.Flags()
	o.cfg.ExplicitSyntax = flags.Changed("separator") || flags.Changed("wildcard")

	if o.cfg.Output, err = formatter.ParseFormat(o.output); err != nil {
		return exit.Usagef("%v", err)
	}
	if o.cfg.InputFormat, err = source.ParseFormat(o.inputFormat); err != nil {
		return exit.Usagef("%v", err)
	}
	if err := o.cfg.Validate(); err != nil {
		return exit.Usagef("%v", err)
	}

	logger.Debug("configuration", "input", o.cfg.Input, "select", o.cfg.Select, "format", o.cfg.Output)
	return nil
}

func fileArg(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		return exit.Usagef("%v", err)
	}
	return nil
}

func (o *options) write(cmd *cobra.Command, v any) error {
	f, err := formatter.New(o.cfg.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return f.Format(v)
}

func (o *options) pruner(ctx context.Context, specs []prune.Spec) (*prune.Pruner, error) {
	syntax, err := o.cfg.SpecSyntax()
	if err != nil {
		return nil, err
	}
	return prune.New(specs,
		prune.WithSyntax(syntax),
		prune.WithLogger(slogcontext.FromCtx(ctx)),
		prune.WithRecursionLimit(o.cfg.RecursionLimit),
	)
}

func (o *options) specs() ([]prune.Spec, error) {
	specs, err := o.cfg.Specs()
	if errors.Is(err, config.ErrNoSpecs) {
		return nil, exit.Usagef("%v: use --path or --spec-file", err)
	}
	return specs, err
}

func logger(cmd *cobra.Command) *slog.Logger {
	return slogcontext.FromCtx(cmd.Context())
}
