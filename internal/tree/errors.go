package tree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStructuralMismatch indicates a tree whose shape contradicts the
// operation applied to it.
var ErrStructuralMismatch = errors.New("structural mismatch")

// MismatchError locates a structural mismatch.
type MismatchError struct {
	Path   string // path or record prefix being processed
	Node   any    // offending node
	Reason string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%v at %q: %s: %s", ErrStructuralMismatch, e.Path, e.Reason, Describe(e.Node))
}

func (e *MismatchError) Unwrap() error {
	return ErrStructuralMismatch
}

const describeLimit = 5

// Describe renders a short, bounded description of v for diagnostics.
func Describe(v any) string {
	switch KindOf(v) {
	case KindMap:
		keys := SortedKeys(v.(map[string]any))
		suffix := ""
		if len(keys) > describeLimit {
			keys, suffix = keys[:describeLimit], ",…"
		}
		return "map{" + strings.Join(keys, ",") + suffix + "}"
	case KindSequence:
		seq := v.([]any)
		kinds := make([]string, 0, min(len(seq), describeLimit))
		for _, item := range seq[:min(len(seq), describeLimit)] {
			kinds = append(kinds, KindOf(item).String())
		}
		suffix := ""
		if len(seq) > describeLimit {
			suffix = ",…"
		}
		return fmt.Sprintf("sequence(%d)[%s%s]", len(seq), strings.Join(kinds, ","), suffix)
	case KindString:
		return fmt.Sprintf("%q", v)
	case KindOpaque:
		return fmt.Sprintf("%T", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
