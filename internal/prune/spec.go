package prune

import (
	"fmt"

	"github.com/jacoelho/tq/internal/path"
)

// Refiner transforms the value a specification matched.
type Refiner func(any) (any, error)

// Predicate tests a leaf reached by Satisfies.
type Predicate func(any) (bool, error)

// Spec selects the nodes reached by Path.
type Spec struct {
	Path path.Path

	// FlattenLeaves expands scalar sequences found under Path into one row
	// per element when branches are flattened.
	FlattenLeaves bool

	// Refine, if set, replaces every matched value.
	Refine Refiner
}

// Specs normalizes each path (any form accepted by path.Normalize) into a
// plain Spec.
func Specs(paths ...any) ([]Spec, error) {
	out := make([]Spec, 0, len(paths))
	for i, p := range paths {
		normalized, err := path.Normalize(p, false)
		if err != nil {
			return nil, fmt.Errorf("spec %d: %w", i, err)
		}
		out = append(out, Spec{Path: normalized})
	}
	return out, nil
}

// MustSpecs is like Specs but panics on error. Intended for literals.
func MustSpecs(paths ...any) []Spec {
	specs, err := Specs(paths...)
	if err != nil {
		panic(err)
	}
	return specs
}
