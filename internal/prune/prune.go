package prune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jacoelho/tq/internal/path"
	"github.com/jacoelho/tq/internal/tree"
)

var (
	// ErrDuplicateFinish indicates two specifications finishing at the same node.
	ErrDuplicateFinish = errors.New("prune: more than one spec finishes at the same node")

	// ErrDepthExceeded indicates a descent deeper than the recursion limit.
	ErrDepthExceeded = errors.New("prune: recursion limit exceeded")

	// ErrNilPredicate indicates Satisfies called without a predicate.
	ErrNilPredicate = errors.New("prune: nil predicate")
)

type compiledSpec struct {
	Spec
	display string // full path, reported in errors
	key     string // wildcard-stripped path, names results
}

// Pruner matches a fixed, ordered list of specifications against trees. It
// is immutable and safe for concurrent use.
type Pruner struct {
	specs  []compiledSpec
	syntax path.Syntax
	logger *slog.Logger
	trace  bool
	limit  int
}

// New validates specs and returns a Pruner. Duplicate specifications are
// allowed, but two of them finishing on the same node is an error at match
// time.
func New(specs []Spec, opts ...Option) (*Pruner, error) {
	p := &Pruner{
		syntax: path.Default,
		logger: slog.New(slog.DiscardHandler),
		limit:  DefaultRecursionLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.trace = p.logger.Enabled(context.Background(), slog.LevelDebug)

	p.specs = make([]compiledSpec, 0, len(specs))
	for i, s := range specs {
		normalized, err := p.syntax.Normalize(s.Path, false)
		if err != nil {
			return nil, fmt.Errorf("spec %d: %w", i, err)
		}
		s.Path = normalized
		p.specs = append(p.specs, compiledSpec{
			Spec:    s,
			display: p.syntax.Format(normalized, false),
			key:     p.syntax.Format(normalized, true),
		})
	}
	return p, nil
}

// Keys returns the result name of every specification, in order. Duplicate
// specifications share a name.
func (p *Pruner) Keys() []string {
	out := make([]string, 0, len(p.specs))
	seen := make(map[string]struct{}, len(p.specs))
	for _, s := range p.specs {
		if _, ok := seen[s.key]; ok {
			continue
		}
		seen[s.key] = struct{}{}
		out = append(out, s.key)
	}
	return out
}

// Subtree returns the minimal subtree of v containing every node reached by
// a specification, preserving container shapes. ok is false when nothing
// matched.
func (p *Pruner) Subtree(v any) (result any, ok bool, err error) {
	m := matcher{pruner: p}
	return m.match(v, 0, p.all())
}

// Leaves returns, for every specification, the values at which it finished
// in discovery order, keyed by the wildcard-stripped path. Every key is
// present even when its specification matched nothing.
func (p *Pruner) Leaves(v any) (map[string][]any, error) {
	m := matcher{pruner: p, leaves: make(map[string][]any, len(p.specs))}
	for _, s := range p.specs {
		m.leaves[s.key] = []any{}
	}
	if _, _, err := m.match(v, 0, p.all()); err != nil {
		return nil, err
	}
	return m.leaves, nil
}

// Rake returns the union of all Leaves values without duplicates. Equal
// values are detected by fingerprint when possible and by a linear scan
// otherwise.
func (p *Pruner) Rake(v any) ([]any, error) {
	leaves, err := p.Leaves(v)
	if err != nil {
		return nil, err
	}

	var (
		out      []any
		seen     = make(map[any]struct{})
		unhashed []any
	)
	for _, k := range p.Keys() {
		for _, value := range leaves[k] {
			if fp, ok := tree.Fingerprint(value); ok {
				if _, dup := seen[fp]; dup {
					continue
				}
				seen[fp] = struct{}{}
				out = append(out, value)
				continue
			}
			if containsEqual(unhashed, value) {
				continue
			}
			unhashed = append(unhashed, value)
			out = append(out, value)
		}
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

func containsEqual(values []any, v any) bool {
	for _, candidate := range values {
		if tree.Equal(candidate, v) {
			return true
		}
	}
	return false
}

func (p *Pruner) all() []int {
	out := make([]int, len(p.specs))
	for i := range out {
		out[i] = i
	}
	return out
}

// matcher carries the per-call accumulator; it is never shared between calls.
type matcher struct {
	pruner *Pruner
	leaves map[string][]any
}

func (m *matcher) match(node any, depth int, running []int) (any, bool, error) {
	p := m.pruner
	if depth > p.limit {
		return nil, false, fmt.Errorf("%w: %d levels", ErrDepthExceeded, p.limit)
	}

	finishing := -1
	unfinished := make([]int, 0, len(running))
	for _, i := range running {
		if len(p.specs[i].Path) != depth {
			unfinished = append(unfinished, i)
			continue
		}
		if finishing >= 0 {
			return nil, false, fmt.Errorf("%w: %q and %q at %s",
				ErrDuplicateFinish, p.specs[finishing].display, p.specs[i].display, tree.Describe(node))
		}
		finishing = i
	}

	kind := tree.KindOf(node)
	if p.trace {
		p.logger.Debug("prune visit", "depth", depth, "kind", kind.String(), "running", len(running), "finishing", finishing >= 0)
	}

	if finishing >= 0 {
		return m.finish(p.specs[finishing], node)
	}

	switch kind {
	case tree.KindSequence:
		return m.matchSequence(node.([]any), depth, unfinished)
	case tree.KindMap:
		return m.matchMap(node.(map[string]any), depth, unfinished)
	case tree.KindNull, tree.KindBool, tree.KindNumber, tree.KindString, tree.KindOpaque:
	}
	return nil, false, nil
}

func (m *matcher) finish(s compiledSpec, node any) (any, bool, error) {
	value := node
	if s.Refine != nil {
		refined, err := s.Refine(node)
		if err != nil {
			return nil, false, fmt.Errorf("prune: refine %q: %w", s.display, err)
		}
		value = refined
	}
	if m.leaves != nil {
		m.leaves[s.key] = append(m.leaves[s.key], value)
	}
	return value, true, nil
}

func (m *matcher) matchSequence(seq []any, depth int, running []int) (any, bool, error) {
	p := m.pruner
	for _, i := range running {
		if !p.specs[i].Path[depth].IsWildcard() {
			return nil, false, &tree.MismatchError{
				Path:   p.specs[i].display,
				Node:   seq,
				Reason: fmt.Sprintf("expected wildcard at element %d, found field %q", depth, p.specs[i].Path[depth].Name()),
			}
		}
	}

	var out []any
	for _, item := range seq {
		value, ok, err := m.match(item, depth+1, running)
		if err != nil {
			return nil, false, err
		}
		if ok {
			out = append(out, value)
		}
	}
	if len(out) == 0 {
		return nil, false, nil
	}
	return out, true, nil
}

func (m *matcher) matchMap(node map[string]any, depth int, running []int) (any, bool, error) {
	p := m.pruner
	byKey := make(map[string][]int)
	for _, i := range running {
		elem := p.specs[i].Path[depth]
		if elem.IsWildcard() {
			continue
		}
		if _, ok := node[elem.Name()]; ok {
			byKey[elem.Name()] = append(byKey[elem.Name()], i)
		}
	}
	if len(byKey) == 0 {
		return nil, false, nil
	}

	out := make(map[string]any, len(byKey))
	for _, k := range sortedKeys(byKey) {
		value, ok, err := m.match(node[k], depth+1, byKey[k])
		if err != nil {
			return nil, false, err
		}
		if ok {
			out[k] = value
		}
	}
	if len(out) == 0 {
		return nil, false, nil
	}
	return out, true, nil
}

func sortedKeys(m map[string][]int) []string {
	keys := make(map[string]any, len(m))
	for k := range m {
		keys[k] = nil
	}
	return tree.SortedKeys(keys)
}
