package path

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPathType indicates a value that cannot represent a path.
	ErrPathType = errors.New("path: unsupported path type")

	// ErrInvalidPath indicates a path element that cannot round-trip through
	// the string form.
	ErrInvalidPath = errors.New("path: invalid path")
)

// Element is a single step of a path.
type Element struct {
	name     string
	wildcard bool
}

// Wildcard matches every element of a sequence.
var Wildcard = Element{wildcard: true}

// Field returns an element selecting the map key name.
func Field(name string) Element {
	return Element{name: name}
}

func (e Element) IsWildcard() bool {
	return e.wildcard
}

// Name returns the field name, or the empty string for the wildcard.
func (e Element) Name() string {
	return e.name
}

// Path is an ordered walk through a tree. The empty path addresses the root.
type Path []Element

// StripWildcards returns p without its wildcard elements.
func (p Path) StripWildcards() Path {
	out := make(Path, 0, len(p))
	for _, e := range p {
		if !e.wildcard {
			out = append(out, e)
		}
	}
	return out
}

func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Syntax controls the string form of paths.
type Syntax struct {
	Separator string
	Wildcard  string
}

// Default is the syntax used when none is configured: "." and "[]".
var Default = Syntax{Separator: ".", Wildcard: "[]"}

// Resolved fills unset fields from Default.
func (s Syntax) Resolved() Syntax {
	if s.Separator == "" {
		s.Separator = Default.Separator
	}
	if s.Wildcard == "" {
		s.Wildcard = Default.Wildcard
	}
	return s
}

// Parse converts the string form into a Path.
func (s Syntax) Parse(str string) (Path, error) {
	s = s.Resolved()
	if str == "" {
		return Path{}, nil
	}

	parts := strings.Split(str, s.Separator)
	out := make(Path, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: empty element at position %d in %q", ErrInvalidPath, i, str)
		}
		if part == s.Wildcard {
			out = append(out, Wildcard)
			continue
		}
		out = append(out, Field(part))
	}
	return out, nil
}

// Normalize converts any supported representation into a validated Path:
// the string form, []string or []any of element strings (the wildcard token
// becomes the wildcard marker), a Path or a single Element. With
// stripWildcards the wildcard elements are removed.
func (s Syntax) Normalize(v any, stripWildcards bool) (Path, error) {
	s = s.Resolved()

	var (
		out Path
		err error
	)
	switch current := v.(type) {
	case string:
		out, err = s.Parse(current)
	case []string:
		out, err = s.fromStrings(current)
	case []any:
		elems := make([]string, 0, len(current))
		for i, item := range current {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: element %d has type %T", ErrPathType, i, item)
			}
			elems = append(elems, str)
		}
		out, err = s.fromStrings(elems)
	case Path:
		out = append(make(Path, 0, len(current)), current...)
		err = s.validate(out)
	case Element:
		out = Path{current}
		err = s.validate(out)
	default:
		return nil, fmt.Errorf("%w: %T", ErrPathType, v)
	}
	if err != nil {
		return nil, err
	}

	if stripWildcards {
		out = out.StripWildcards()
	}
	return out, nil
}

// Format renders p in string form.
func (s Syntax) Format(p Path, stripWildcards bool) string {
	s = s.Resolved()

	parts := make([]string, 0, len(p))
	for _, e := range p {
		if e.wildcard {
			if stripWildcards {
				continue
			}
			parts = append(parts, s.Wildcard)
			continue
		}
		parts = append(parts, e.name)
	}
	return strings.Join(parts, s.Separator)
}

func (s Syntax) fromStrings(elems []string) (Path, error) {
	out := make(Path, 0, len(elems))
	for _, elem := range elems {
		if elem == s.Wildcard {
			out = append(out, Wildcard)
			continue
		}
		out = append(out, Field(elem))
	}
	if err := s.validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s Syntax) validate(p Path) error {
	for i, e := range p {
		if e.wildcard {
			continue
		}
		switch {
		case e.name == "":
			return fmt.Errorf("%w: empty element at position %d", ErrInvalidPath, i)
		case e.name == s.Wildcard:
			return fmt.Errorf("%w: field name %q at position %d is the wildcard token", ErrInvalidPath, e.name, i)
		case strings.Contains(e.name, s.Separator):
			return fmt.Errorf("%w: field name %q at position %d contains separator %q", ErrInvalidPath, e.name, i, s.Separator)
		}
	}
	return nil
}

// Normalize converts v into a Path using the Default syntax.
func Normalize(v any, stripWildcards bool) (Path, error) {
	return Default.Normalize(v, stripWildcards)
}

// String renders p using the Default syntax.
func String(p Path, stripWildcards bool) string {
	return Default.Format(p, stripWildcards)
}

// Parse converts a string using the Default syntax.
func Parse(str string) (Path, error) {
	return Default.Parse(str)
}

// MustParse is like Parse but panics on error. Intended for literals.
func MustParse(str string) Path {
	p, err := Parse(str)
	if err != nil {
		panic(err)
	}
	return p
}
