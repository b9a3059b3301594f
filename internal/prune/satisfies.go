package prune

import (
	"fmt"

	"github.com/jacoelho/tq/internal/path"
	"github.com/jacoelho/tq/internal/tree"
)

// Satisfies reports whether any node reached by p satisfies pred. A nil p
// tests the root. Wildcards fan out over sequence elements and the walk stops
// at the first node for which pred returns true, so pred is never called on
// the remaining nodes. A field on anything but a map, a missing key, or a
// wildcard on anything but a sequence reaches nothing.
func Satisfies(v any, p any, pred Predicate) (bool, error) {
	return satisfies(path.Default, DefaultRecursionLimit, v, p, pred)
}

// Satisfies is the package-level Satisfies using the Pruner's path syntax and
// recursion limit.
func (p *Pruner) Satisfies(v any, at any, pred Predicate) (bool, error) {
	return satisfies(p.syntax, p.limit, v, at, pred)
}

func satisfies(syntax path.Syntax, limit int, v any, at any, pred Predicate) (bool, error) {
	if pred == nil {
		return false, ErrNilPredicate
	}
	var elems path.Path
	if at != nil {
		normalized, err := syntax.Normalize(at, false)
		if err != nil {
			return false, err
		}
		elems = normalized
	}
	if len(elems) > limit {
		return false, fmt.Errorf("%w: %d levels", ErrDepthExceeded, limit)
	}
	return walkSatisfies(v, elems, pred)
}

func walkSatisfies(node any, rest path.Path, pred Predicate) (bool, error) {
	if len(rest) == 0 {
		return pred(node)
	}

	elem := rest[0]
	switch tree.KindOf(node) {
	case tree.KindSequence:
		if !elem.IsWildcard() {
			return false, nil
		}
		for _, item := range node.([]any) {
			ok, err := walkSatisfies(item, rest[1:], pred)
			if err != nil || ok {
				return ok, err
			}
		}
	case tree.KindMap:
		if elem.IsWildcard() {
			return false, nil
		}
		child, ok := node.(map[string]any)[elem.Name()]
		if !ok {
			return false, nil
		}
		return walkSatisfies(child, rest[1:], pred)
	case tree.KindNull, tree.KindBool, tree.KindNumber, tree.KindString, tree.KindOpaque:
	}
	return false, nil
}
