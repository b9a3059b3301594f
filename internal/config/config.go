package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/jacoelho/tq/internal/formatter"
	"github.com/jacoelho/tq/internal/path"
	"github.com/jacoelho/tq/internal/prune"
	"github.com/jacoelho/tq/internal/source"
	"github.com/jacoelho/tq/internal/specfile"
)

// DefaultRecursionLimit bounds tree descent unless overridden.
const DefaultRecursionLimit = prune.DefaultRecursionLimit

var (
	ErrNoInput       = errors.New("no input document specified")
	ErrNoSpecs       = errors.New("no path specified")
	ErrInvalidSyntax = errors.New("separator and wildcard must be different")
	ErrInvalidLimit  = errors.New("recursion limit must be positive")
)

// Config represents the configuration shared by every tq command.
type Config struct {
	// Input
	Input       string // file name, "-" for stdin
	InputFormat source.Format
	Select      string // JSONPath applied before any command

	// Output
	Output formatter.Format

	// Path syntax
	Separator string
	Wildcard  string
	// ExplicitSyntax is set when the separator or wildcard came from flags;
	// otherwise a spec file's declared syntax wins.
	ExplicitSyntax bool

	// Specifications
	Paths    []string
	SpecFile string

	RecursionLimit int

	specFile *specfile.File // loaded on first use
}

// Default returns a Config with every field at its default.
func Default() Config {
	return Config{
		Input:          "-",
		Output:         formatter.FormatJSON,
		Separator:      path.Default.Separator,
		Wildcard:       path.Default.Wildcard,
		RecursionLimit: DefaultRecursionLimit,
	}
}

// Syntax returns the configured path syntax.
func (c *Config) Syntax() path.Syntax {
	return path.Syntax{Separator: c.Separator, Wildcard: c.Wildcard}.Resolved()
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Input == "" {
		return ErrNoInput
	}
	if c.Input != "-" {
		if _, err := os.Stat(c.Input); err != nil {
			return fmt.Errorf("input file %s not found: %w", c.Input, err)
		}
	}

	syntax := c.Syntax()
	if syntax.Separator == syntax.Wildcard {
		return fmt.Errorf("%w: both are %q", ErrInvalidSyntax, syntax.Separator)
	}

	if c.RecursionLimit <= 0 {
		return fmt.Errorf("%w, got: %d", ErrInvalidLimit, c.RecursionLimit)
	}

	if c.SpecFile != "" {
		if _, err := os.Stat(c.SpecFile); err != nil {
			return fmt.Errorf("spec file %s not found: %w", c.SpecFile, err)
		}
	}

	specSyntax, err := c.SpecSyntax()
	if err != nil {
		return err
	}
	for _, p := range c.Paths {
		if _, err := specSyntax.Parse(p); err != nil {
			return err
		}
	}

	return nil
}

// SpecSyntax returns the syntax specifications are written and named in:
// the spec file's, unless the separator or wildcard were set explicitly.
func (c *Config) SpecSyntax() (path.Syntax, error) {
	if c.SpecFile == "" || c.ExplicitSyntax {
		return c.Syntax(), nil
	}
	f, err := c.loadSpecFile()
	if err != nil {
		return path.Syntax{}, err
	}
	return f.Syntax(), nil
}

func (c *Config) loadSpecFile() (*specfile.File, error) {
	if c.specFile != nil {
		return c.specFile, nil
	}
	f, err := specfile.LoadFile(c.SpecFile)
	if err != nil {
		return nil, err
	}
	c.specFile = f
	return f, nil
}

// Specs returns the specifications from --path flags followed by those of
// the spec file. At least one is required.
func (c *Config) Specs() ([]prune.Spec, error) {
	syntax, err := c.SpecSyntax()
	if err != nil {
		return nil, err
	}

	specs := make([]prune.Spec, 0, len(c.Paths))
	for _, raw := range c.Paths {
		p, err := syntax.Parse(raw)
		if err != nil {
			return nil, err
		}
		specs = append(specs, prune.Spec{Path: p})
	}

	if c.SpecFile != "" {
		f, err := c.loadSpecFile()
		if err != nil {
			return nil, err
		}
		fileSpecs, err := f.PruneSpecs()
		if err != nil {
			return nil, err
		}
		specs = append(specs, fileSpecs...)
	}

	if len(specs) == 0 {
		return nil, ErrNoSpecs
	}
	return specs, nil
}

// Trees reads the input document. Without a selector the document is the
// only tree; with one, every selected node is a tree of its own.
func (c *Config) Trees() ([]any, error) {
	doc, err := source.ReadFile(c.Input, c.InputFormat)
	if err != nil {
		return nil, err
	}
	if c.Select == "" {
		return []any{doc}, nil
	}
	return source.Select(doc, c.Select)
}

// Root reads the input as a single tree: the document, or the sequence of
// selected nodes.
func (c *Config) Root() (any, error) {
	trees, err := c.Trees()
	if err != nil {
		return nil, err
	}
	if c.Select == "" {
		return trees[0], nil
	}
	return trees, nil
}
