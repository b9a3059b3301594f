// Package specfile loads reusable prune specifications from YAML.
//
//	separator: "."
//	wildcard: "[]"
//	specs:
//	  - path: Reservations.[].Instances.[].InstanceId
//	  - path: [Tags, "[]", Value]
//	    flatten_leaves: true
//	    refine: value.lowerAscii()
package specfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	yaml "github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"

	"github.com/jacoelho/tq/internal/path"
	"github.com/jacoelho/tq/internal/prune"
	"github.com/jacoelho/tq/internal/refine"
)

// ErrSpecFile is the sentinel error for every spec file failure.
var ErrSpecFile = errors.New("spec file error")

// File is a decoded spec file.
type File struct {
	Separator string  `yaml:"separator,omitempty"`
	Wildcard  string  `yaml:"wildcard,omitempty"`
	Entries   []Entry `yaml:"specs"`
}

// Entry is one specification.
type Entry struct {
	Path          Path   `yaml:"path"`
	FlattenLeaves bool   `yaml:"flatten_leaves,omitempty"`
	Refine        string `yaml:"refine,omitempty"` // CEL over "value"
}

// Path holds either form of a path as written.
type Path struct {
	Raw      string
	Elements []string
	IsList   bool
}

// UnmarshalYAML accepts the string form or a sequence of elements:
//
//	path: Cities.[].Name
//
// or:
//
//	path: [Cities, "[]", Name]
func (p *Path) UnmarshalYAML(node ast.Node) error {
	switch n := node.(type) {
	case *ast.StringNode:
		*p = Path{Raw: n.Value}
		return nil
	case *ast.SequenceNode:
		elems := make([]string, 0, len(n.Values))
		for index, item := range n.Values {
			elem, err := scalarText(item)
			if err != nil {
				return fmt.Errorf("%w: path element %d: %v", ErrSpecFile, index, err)
			}
			elems = append(elems, elem)
		}
		*p = Path{Elements: elems, IsList: true}
		return nil
	default:
		return fmt.Errorf("%w: path must be a string or a sequence, got %s", ErrSpecFile, node.Type())
	}
}

// MarshalYAML emits the form the path was written in.
func (p Path) MarshalYAML() (any, error) {
	if p.IsList {
		return p.Elements, nil
	}
	return p.Raw, nil
}

func (p Path) value() any {
	if p.IsList {
		return p.Elements
	}
	return p.Raw
}

func scalarText(node ast.Node) (string, error) {
	switch n := node.(type) {
	case *ast.StringNode:
		return n.Value, nil
	case *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode:
		return n.GetToken().Value, nil
	default:
		return "", fmt.Errorf("element must be scalar, got %s", node.Type())
	}
}

// Load decodes a spec file. Unknown fields are rejected.
func Load(r io.Reader) (*File, error) {
	decoder := yaml.NewDecoder(r, yaml.DisallowUnknownField())

	var f File
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: failed to decode YAML: %v", ErrSpecFile, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile is Load on the named file.
func LoadFile(name string) (*File, error) {
	fh, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpecFile, err)
	}
	defer fh.Close()

	f, err := Load(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// Validate checks the file without compiling refiners.
func (f *File) Validate() error {
	if len(f.Entries) == 0 {
		return fmt.Errorf("%w: no specs", ErrSpecFile)
	}
	syntax := f.Syntax()
	if syntax.Separator == syntax.Wildcard {
		return fmt.Errorf("%w: separator and wildcard are both %q", ErrSpecFile, syntax.Separator)
	}
	for i, entry := range f.Entries {
		if _, err := syntax.Normalize(entry.Path.value(), false); err != nil {
			return fmt.Errorf("%w: spec %d: %w", ErrSpecFile, i, err)
		}
	}
	return nil
}

// Syntax returns the path syntax declared by the file.
func (f *File) Syntax() path.Syntax {
	return path.Syntax{Separator: f.Separator, Wildcard: f.Wildcard}.Resolved()
}

// PruneSpecs builds the prune specifications in the file's syntax,
// compiling every refiner.
func (f *File) PruneSpecs() ([]prune.Spec, error) {
	syntax := f.Syntax()
	out := make([]prune.Spec, 0, len(f.Entries))
	for i, entry := range f.Entries {
		p, err := syntax.Normalize(entry.Path.value(), false)
		if err != nil {
			return nil, fmt.Errorf("%w: spec %d: %w", ErrSpecFile, i, err)
		}

		spec := prune.Spec{Path: p, FlattenLeaves: entry.FlattenLeaves}
		if entry.Refine != "" {
			r, err := refine.Compile(entry.Refine)
			if err != nil {
				return nil, fmt.Errorf("%w: spec %d: %w", ErrSpecFile, i, err)
			}
			spec.Refine = r
		}
		out = append(out, spec)
	}
	return out, nil
}
