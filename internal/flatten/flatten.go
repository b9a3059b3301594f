package flatten

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jacoelho/tq/internal/tree"
)

var (
	// ErrNotSerializable indicates an opaque leaf rejected by WithRequireSerializable.
	ErrNotSerializable = errors.New("flatten: value is not serializable")

	// ErrDepthExceeded indicates nesting deeper than the recursion limit.
	ErrDepthExceeded = errors.New("flatten: recursion limit exceeded")

	// ErrNotTabular indicates a tree that flattens to itself rather than to records.
	ErrNotTabular = errors.New("flatten: result is not a list of records")
)

// Record is one flat row: keys are joined paths, values are scalars or
// scalar sequences.
type Record map[string]any

// Flattener converts trees into records. It is immutable and safe for
// concurrent use.
type Flattener struct {
	cfg   config
	trace bool
}

// New returns a Flattener configured by opts.
func New(opts ...Option) *Flattener {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Flattener{
		cfg:   cfg,
		trace: cfg.logger.Enabled(context.Background(), slog.LevelDebug),
	}
}

// Flatten returns either v unchanged or a []Record.
//
// v is returned unchanged when the maximum depth is zero, and, without a
// prefix, when v is a scalar or a sequence of scalars. Everything else becomes
// records.
func (f *Flattener) Flatten(v any) (any, error) {
	if f.cfg.maxDepth == 0 {
		return v, nil
	}
	if f.cfg.hasPrefix {
		return f.records(v, key{name: f.cfg.prefix, set: true}, f.cfg.maxDepth, 0)
	}
	return f.unprefixed(v, f.cfg.maxDepth, 0)
}

// Records is Flatten for callers that require rows.
func (f *Flattener) Records(v any) ([]Record, error) {
	out, err := f.Flatten(v)
	if err != nil {
		return nil, err
	}
	records, ok := out.([]Record)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotTabular, tree.Describe(v))
	}
	return records, nil
}

// Disjoint flattens every tree independently and concatenates the rows; rows
// of different trees are never combined. With a maximum depth of zero the
// trees are returned unchanged as a []any.
func (f *Flattener) Disjoint(trees ...any) (any, error) {
	if f.cfg.maxDepth == 0 {
		return append([]any{}, trees...), nil
	}

	out := make([]Record, 0, len(trees))
	for i, t := range trees {
		records, err := f.Records(t)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		out = append(out, records...)
	}
	return out, nil
}

// Flatten flattens v with a Flattener built from opts.
func Flatten(v any, opts ...Option) (any, error) {
	return New(opts...).Flatten(v)
}

// Records flattens v into rows with a Flattener built from opts.
func Records(v any, opts ...Option) ([]Record, error) {
	return New(opts...).Records(v)
}

// Disjoint flattens trees independently with a Flattener built from opts.
func Disjoint(trees []any, opts ...Option) (any, error) {
	return New(opts...).Disjoint(trees...)
}

type key struct {
	name string
	set  bool
}

func (k key) join(sep, child string) key {
	if !k.set {
		return key{name: child, set: true}
	}
	return key{name: k.name + sep + child, set: true}
}

// descend returns the remaining depth one level down; negative stays unlimited.
func descend(depth int) int {
	if depth > 0 {
		return depth - 1
	}
	return depth
}

type shape uint8

const (
	shapeLeaves shape = iota
	shapeMaps
	shapeSequences
	shapeMixed
)

// classify reports the common shape of the elements of seq. The empty
// sequence is a sequence of leaves.
func classify(seq []any) shape {
	var leaves, maps, seqs int
	for _, item := range seq {
		switch tree.KindOf(item) {
		case tree.KindMap:
			maps++
		case tree.KindSequence:
			seqs++
		case tree.KindNull, tree.KindBool, tree.KindNumber, tree.KindString, tree.KindOpaque:
			leaves++
		}
	}

	switch len(seq) {
	case leaves:
		return shapeLeaves
	case maps:
		return shapeMaps
	case seqs:
		return shapeSequences
	default:
		return shapeMixed
	}
}

func concat(seq []any) []any {
	n := 0
	for _, item := range seq {
		n += len(item.([]any))
	}
	out := make([]any, 0, n)
	for _, item := range seq {
		out = append(out, item.([]any)...)
	}
	return out
}

func (f *Flattener) unprefixed(v any, depth, level int) (any, error) {
	if depth == 0 {
		return v, nil
	}
	if level > f.cfg.recursionLimit {
		return nil, fmt.Errorf("%w: %d levels", ErrDepthExceeded, f.cfg.recursionLimit)
	}

	switch tree.KindOf(v) {
	case tree.KindMap:
		return f.records(v, key{}, depth, level)
	case tree.KindSequence:
		seq := v.([]any)
		switch classify(seq) {
		case shapeLeaves:
			return v, nil
		case shapeMaps:
			return f.concatRecords(seq, key{}, depth, level)
		case shapeSequences:
			return f.unprefixed(concat(seq), depth, level+1)
		default:
			return nil, f.mismatch(key{}, seq)
		}
	case tree.KindNull, tree.KindBool, tree.KindNumber, tree.KindString, tree.KindOpaque:
		return v, nil
	}
	return v, nil
}

func (f *Flattener) records(v any, k key, depth, level int) ([]Record, error) {
	if level > f.cfg.recursionLimit {
		return nil, fmt.Errorf("%w: %d levels", ErrDepthExceeded, f.cfg.recursionLimit)
	}

	kind := tree.KindOf(v)
	if f.trace {
		f.cfg.logger.Debug("flatten node", "prefix", k.name, "kind", kind.String(), "depth", depth)
	}

	if depth == 0 {
		if !k.set {
			if kind != tree.KindMap {
				return nil, fmt.Errorf("%w: %s", ErrNotTabular, tree.Describe(v))
			}
			return []Record{copyRecord(v.(map[string]any))}, nil
		}
		return []Record{{k.name: v}}, nil
	}

	switch kind {
	case tree.KindMap:
		return f.mapRecords(v.(map[string]any), k, depth, level)
	case tree.KindSequence:
		return f.sequenceRecords(v.([]any), k, depth, level)
	case tree.KindNull, tree.KindBool, tree.KindNumber, tree.KindString, tree.KindOpaque:
	}

	if !k.set {
		return nil, fmt.Errorf("%w: %s", ErrNotTabular, tree.Describe(v))
	}
	leaf, err := f.leaf(v, k)
	if err != nil {
		return nil, err
	}
	return []Record{{k.name: leaf}}, nil
}

func (f *Flattener) sequenceRecords(seq []any, k key, depth, level int) ([]Record, error) {
	switch classify(seq) {
	case shapeMaps:
		return f.concatRecords(seq, k, depth, level)
	case shapeSequences:
		return f.records(concat(seq), k, depth, level+1)
	case shapeMixed:
		return nil, f.mismatch(k, seq)
	case shapeLeaves:
	}

	if !k.set {
		return nil, fmt.Errorf("%w: %s", ErrNotTabular, tree.Describe(seq))
	}

	leaves := make([]any, len(seq))
	for i, item := range seq {
		leaf, err := f.leaf(item, k)
		if err != nil {
			return nil, err
		}
		leaves[i] = leaf
	}

	if !f.explodes(k.name) {
		return []Record{{k.name: leaves}}, nil
	}

	out := make([]Record, len(leaves))
	for i, leaf := range leaves {
		out[i] = Record{k.name: leaf}
	}
	return out, nil
}

func (f *Flattener) concatRecords(seq []any, k key, depth, level int) ([]Record, error) {
	var out []Record
	for _, item := range seq {
		records, err := f.records(item, k, descend(depth), level+1)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	if out == nil {
		out = []Record{}
	}
	return out, nil
}

func (f *Flattener) mapRecords(m map[string]any, k key, depth, level int) ([]Record, error) {
	keys := tree.SortedKeys(m)

	if depth == 1 {
		record := make(Record, len(m))
		for _, name := range keys {
			record[k.join(f.cfg.separator, name).name] = m[name]
		}
		return []Record{record}, nil
	}

	parts := make([][]Record, 0, len(keys))
	for _, name := range keys {
		records, err := f.records(m[name], k.join(f.cfg.separator, name), descend(depth), level+1)
		if err != nil {
			return nil, err
		}
		parts = append(parts, records)
	}
	return product(parts), nil
}

// product merges one record from every part into each row. The first part
// varies slowest. Keys never collide because every part carries its own prefix.
func product(parts [][]Record) []Record {
	rows := []Record{{}}
	for _, part := range parts {
		next := make([]Record, 0, len(rows)*len(part))
		for _, row := range rows {
			for _, rec := range part {
				merged := make(Record, len(row)+len(rec))
				for k, v := range row {
					merged[k] = v
				}
				for k, v := range rec {
					merged[k] = v
				}
				next = append(next, merged)
			}
		}
		rows = next
	}
	return rows
}

func (f *Flattener) explodes(prefix string) bool {
	if f.cfg.leaves {
		return true
	}
	_, ok := f.cfg.leavesAt[prefix]
	return ok
}

// leaf applies the serialization policy to opaque leaves.
func (f *Flattener) leaf(v any, k key) (any, error) {
	if tree.KindOf(v) != tree.KindOpaque {
		return v, nil
	}
	err := tree.Serializable(v)
	if err == nil {
		return v, nil
	}
	if f.cfg.strict {
		return nil, fmt.Errorf("%w: %q: %v", ErrNotSerializable, k.name, err)
	}
	if f.trace {
		f.cfg.logger.Debug("replacing unserializable leaf", "prefix", k.name, "type", fmt.Sprintf("%T", v))
	}
	return fmt.Sprint(v), nil
}

func (f *Flattener) mismatch(k key, seq []any) error {
	return &tree.MismatchError{
		Path:   k.name,
		Node:   seq,
		Reason: "sequence mixes maps, sequences and scalars",
	}
}

func copyRecord(m map[string]any) Record {
	out := make(Record, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
