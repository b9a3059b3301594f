package path

import (
	"slices"
	"strconv"

	"github.com/jacoelho/tq/internal/stack"
	"github.com/jacoelho/tq/internal/tree"
)

type visibleConfig struct {
	maxDepth       int
	sequenceLength bool
	limit          int
}

// VisibleOption configures Visible.
type VisibleOption func(*visibleConfig)

// WithMaxDepth stops enumeration at paths of n elements. Negative means unlimited.
func WithMaxDepth(n int) VisibleOption {
	return func(c *visibleConfig) {
		c.maxDepth = n
	}
}

// WithSequenceLength renders sequence positions as "[n]", n being the
// sequence length, instead of the wildcard token.
func WithSequenceLength() VisibleOption {
	return func(c *visibleConfig) {
		c.sequenceLength = true
	}
}

// WithPendingLimit bounds the number of nodes waiting to be visited.
func WithPendingLimit(n int) VisibleOption {
	return func(c *visibleConfig) {
		c.limit = n
	}
}

type visibleFrame struct {
	node   any
	prefix string
	depth  int
}

// Visible enumerates every distinct path reachable in v, sorted. The root
// itself is not reported. Paths that differ only by which sequence element
// they traverse collapse into one.
func (s Syntax) Visible(v any, opts ...VisibleOption) ([]string, error) {
	s = s.Resolved()
	cfg := visibleConfig{maxDepth: -1}
	for _, opt := range opts {
		opt(&cfg)
	}

	seen := make(map[string]struct{})
	work := stack.NewBounded[visibleFrame](cfg.limit)
	if err := work.Push(visibleFrame{node: v}); err != nil {
		return nil, err
	}

	for !work.IsEmpty() {
		frame, _ := work.Pop()
		if cfg.maxDepth >= 0 && frame.depth >= cfg.maxDepth {
			continue
		}

		switch tree.KindOf(frame.node) {
		case tree.KindMap:
			m := frame.node.(map[string]any)
			for _, key := range tree.SortedKeys(m) {
				child := s.join(frame, key)
				seen[child] = struct{}{}
				if err := work.Push(visibleFrame{node: m[key], prefix: child, depth: frame.depth + 1}); err != nil {
					return nil, err
				}
			}
		case tree.KindSequence:
			seq := frame.node.([]any)
			if len(seq) == 0 {
				continue
			}
			label := s.Wildcard
			if cfg.sequenceLength {
				label = "[" + strconv.Itoa(len(seq)) + "]"
			}
			child := s.join(frame, label)
			seen[child] = struct{}{}
			for _, item := range seq {
				if !tree.IsContainer(item) {
					continue
				}
				if err := work.Push(visibleFrame{node: item, prefix: child, depth: frame.depth + 1}); err != nil {
					return nil, err
				}
			}
		case tree.KindNull, tree.KindBool, tree.KindNumber, tree.KindString, tree.KindOpaque:
		}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out, nil
}

func (s Syntax) join(frame visibleFrame, elem string) string {
	if frame.depth == 0 {
		return elem
	}
	return frame.prefix + s.Separator + elem
}

// Visible enumerates reachable paths using the Default syntax.
func Visible(v any, opts ...VisibleOption) ([]string, error) {
	return Default.Visible(v, opts...)
}
