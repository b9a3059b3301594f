package flatten

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/tq/internal/tree"
)

func TestFlattenScalarIdentity(t *testing.T) {
	t.Parallel()

	for _, v := range []any{nil, true, 3, 1.5, json.Number("7"), "x", uuid.New(), make(chan int)} {
		got, err := Flatten(v)
		require.NoError(t, err)
		if tree.KindOf(v) == tree.KindOpaque {
			assert.Equal(t, fmt.Sprint(v), fmt.Sprint(got))
			continue
		}
		assert.Equal(t, v, got)
	}
}

func TestFlattenMaxDepthZeroIdentity(t *testing.T) {
	t.Parallel()

	trees := []any{
		"x",
		[]any{1, map[string]any{"a": 1}, []any{2}},
		map[string]any{"a": []any{map[string]any{"b": 1}}},
	}
	for _, v := range trees {
		got, err := Flatten(v, WithMaxDepth(0))
		require.NoError(t, err)
		assert.Equal(t, v, got)

		got, err = Flatten(v, WithMaxDepth(0), WithPrefix("p"))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tree any
		opts []Option
		want any
	}{
		{
			name: "scalar with prefix",
			tree: 42,
			opts: []Option{WithPrefix("answer")},
			want: []Record{{"answer": 42}},
		},
		{
			name: "leaf sequence without prefix",
			tree: []any{1, 2, 3},
			want: []any{1, 2, 3},
		},
		{
			name: "leaf sequence kept as list field",
			tree: map[string]any{"tags": []any{"a", "b"}},
			want: []Record{{"tags": []any{"a", "b"}}},
		},
		{
			name: "leaf sequence exploded",
			tree: map[string]any{"tags": []any{"a", "b"}, "n": 1},
			opts: []Option{WithFlattenLeaves(true)},
			want: []Record{{"n": 1, "tags": "a"}, {"n": 1, "tags": "b"}},
		},
		{
			name: "leaf sequence exploded at prefix only",
			tree: map[string]any{
				"a": []any{1, 2},
				"b": []any{3, 4},
			},
			opts: []Option{WithFlattenLeavesAt("b")},
			want: []Record{
				{"a": []any{1, 2}, "b": 3},
				{"a": []any{1, 2}, "b": 4},
			},
		},
		{
			name: "empty sequence is a list field when not exploding",
			tree: map[string]any{"tags": []any{}, "n": 1},
			want: []Record{{"n": 1, "tags": []any{}}},
		},
		{
			name: "exploded empty sequence empties the product",
			tree: map[string]any{"tags": []any{}, "n": 1},
			opts: []Option{WithFlattenLeaves(true)},
			want: []Record{},
		},
		{
			name: "exploded empty sequence at prefix only",
			tree: map[string]any{"tags": []any{}, "ids": []any{}, "n": 1},
			opts: []Option{WithFlattenLeavesAt("ids")},
			want: []Record{},
		},
		{
			name: "nested maps",
			tree: map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}, "d": "x"},
			want: []Record{{"a.b.c": 1, "d": "x"}},
		},
		{
			name: "empty map is one empty record",
			tree: map[string]any{},
			want: []Record{{}},
		},
		{
			name: "empty nested map contributes nothing",
			tree: map[string]any{"a": map[string]any{}, "b": 1},
			want: []Record{{"b": 1}},
		},
		{
			name: "custom separator",
			tree: map[string]any{"a": map[string]any{"b": 1}},
			opts: []Option{WithSeparator("/")},
			want: []Record{{"a/b": 1}},
		},
		{
			name: "prefix",
			tree: map[string]any{"a": map[string]any{"b": 1}},
			opts: []Option{WithPrefix("root")},
			want: []Record{{"root.a.b": 1}},
		},
		{
			name: "sequence of maps concatenates",
			tree: map[string]any{"a": []any{
				map[string]any{"x": 1},
				map[string]any{"x": 2, "y": []any{map[string]any{"z": 1}, map[string]any{"z": 2}}},
			}},
			want: []Record{
				{"a.x": 1},
				{"a.x": 2, "a.y.z": 1},
				{"a.x": 2, "a.y.z": 2},
			},
		},
		{
			name: "top level sequence of maps",
			tree: []any{map[string]any{"a": 1}, map[string]any{"a": 2}},
			want: []Record{{"a": 1}, {"a": 2}},
		},
		{
			name: "nested sequences concatenate",
			tree: map[string]any{"m": []any{
				[]any{map[string]any{"x": 1}},
				[]any{map[string]any{"x": 2}, map[string]any{"x": 3}},
			}},
			want: []Record{{"m.x": 1}, {"m.x": 2}, {"m.x": 3}},
		},
		{
			name: "nested scalar sequences concatenate into a list field",
			tree: map[string]any{"m": []any{[]any{1, 2}, []any{3}}},
			want: []Record{{"m": []any{1, 2, 3}}},
		},
		{
			name: "top level nested scalar sequences",
			tree: []any{[]any{1}, []any{2}},
			want: []any{1, 2},
		},
		{
			name: "max depth one keeps children",
			tree: map[string]any{"a": map[string]any{"b": 1}, "c": 2},
			opts: []Option{WithMaxDepth(1)},
			want: []Record{{"a": map[string]any{"b": 1}, "c": 2}},
		},
		{
			name: "max depth two",
			tree: map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}},
			opts: []Option{WithMaxDepth(2)},
			want: []Record{{"a.b": map[string]any{"c": 1}}},
		},
		{
			name: "max depth reached inside sequence",
			tree: map[string]any{"a": []any{map[string]any{"b": 1}, map[string]any{"b": 2}}},
			opts: []Option{WithMaxDepth(2)},
			want: []Record{{"a": map[string]any{"b": 1}}, {"a": map[string]any{"b": 2}}},
		},
		{
			name: "top level sequence at depth one",
			tree: []any{map[string]any{"a": map[string]any{"b": 1}}},
			opts: []Option{WithMaxDepth(1)},
			want: []Record{{"a": map[string]any{"b": 1}}},
		},
		{
			name: "null leaves survive",
			tree: map[string]any{"a": nil, "b": []any{nil, 1}},
			want: []Record{{"a": nil, "b": []any{nil, 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Flatten(tt.tree, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlattenProductSize(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"a": []any{map[string]any{"x": 1}, map[string]any{"x": 2}, map[string]any{"x": 3}},
		"b": []any{map[string]any{"y": 1}, map[string]any{"y": 2}},
	}

	records, err := Records(doc)
	require.NoError(t, err)
	require.Len(t, records, 6)

	seen := make(map[[2]int]bool)
	for _, r := range records {
		seen[[2]int{r["a.x"].(int), r["b.y"].(int)}] = true
	}
	assert.Len(t, seen, 6)
}

func TestFlattenConcatenationLaw(t *testing.T) {
	t.Parallel()

	elements := []any{
		map[string]any{"p": []any{map[string]any{"q": 1}, map[string]any{"q": 2}}},
		map[string]any{"p": 1},
		map[string]any{"p": []any{map[string]any{"q": 1}}, "r": []any{map[string]any{"s": 1}, map[string]any{"s": 2}}},
	}

	want := 0
	for _, e := range elements {
		records, err := Records(e)
		require.NoError(t, err)
		want += len(records)
	}

	records, err := Records(map[string]any{"k": elements})
	require.NoError(t, err)
	assert.Len(t, records, want)
}

func TestFlattenEndToEnd(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"a": []any{map[string]any{"x": 1, "y": 2}, map[string]any{"x": 11, "y": 12}},
		"b": []any{map[string]any{"x": 3, "y": 4}, map[string]any{"x": 13, "y": 14}},
	}

	records, err := Records(doc)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Record{
		{"a.x": 1, "a.y": 2, "b.x": 3, "b.y": 4},
		{"a.x": 1, "a.y": 2, "b.x": 13, "b.y": 14},
		{"a.x": 11, "a.y": 12, "b.x": 3, "b.y": 4},
		{"a.x": 11, "a.y": 12, "b.x": 13, "b.y": 14},
	}, records)
}

func TestFlattenDeterministicOrder(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"c": []any{map[string]any{"v": 1}, map[string]any{"v": 2}},
		"a": []any{map[string]any{"v": 1}, map[string]any{"v": 2}},
		"b": []any{"x", "y"},
	}

	first, err := Records(doc, WithFlattenLeaves(true))
	require.NoError(t, err)
	for range 20 {
		again, err := Records(doc, WithFlattenLeaves(true))
		require.NoError(t, err)
		require.Equal(t, first, again)
	}

	assert.Equal(t, Record{"a.v": 1, "b": "x", "c.v": 1}, first[0])
	assert.Equal(t, Record{"a.v": 1, "b": "x", "c.v": 2}, first[1])
}

func TestFlattenDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	doc := map[string]any{"a": []any{map[string]any{"x": 1}}, "b": []any{1, 2}}
	before := fmt.Sprint(doc)

	_, err := Records(doc, WithFlattenLeaves(true))
	require.NoError(t, err)
	assert.Equal(t, before, fmt.Sprint(doc))
}

func TestFlattenErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tree    any
		opts    []Option
		wantErr error
	}{
		{
			name:    "heterogeneous top level sequence",
			tree:    []any{map[string]any{"a": 1}, []any{1, 2}},
			wantErr: tree.ErrStructuralMismatch,
		},
		{
			name:    "maps mixed with scalars",
			tree:    map[string]any{"a": []any{map[string]any{"x": 1}, 2}},
			wantErr: tree.ErrStructuralMismatch,
		},
		{
			name:    "unserializable leaf with strict policy",
			tree:    map[string]any{"ch": make(chan int)},
			opts:    []Option{WithRequireSerializable(true)},
			wantErr: ErrNotSerializable,
		},
		{
			name:    "unserializable element with strict policy",
			tree:    map[string]any{"fns": []any{func() {}}},
			opts:    []Option{WithRequireSerializable(true)},
			wantErr: ErrNotSerializable,
		},
		{
			name:    "recursion limit",
			tree:    nest(50),
			opts:    []Option{WithRecursionLimit(10)},
			wantErr: ErrDepthExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Flatten(tt.tree, tt.opts...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFlattenMismatchNamesPrefix(t *testing.T) {
	t.Parallel()

	_, err := Flatten(map[string]any{"outer": map[string]any{"inner": []any{1, map[string]any{}}}})

	var mismatch *tree.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "outer.inner", mismatch.Path)
}

func TestFlattenSerializationFallback(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	ch := make(chan int)

	records, err := Records(map[string]any{"id": id, "ch": ch})
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, id, records[0]["id"], "serializable opaque leaves are kept")
	assert.Equal(t, fmt.Sprint(ch), records[0]["ch"], "unserializable leaves become strings")
}

func TestRecordsNotTabular(t *testing.T) {
	t.Parallel()

	_, err := Records([]any{1, 2})
	require.ErrorIs(t, err, ErrNotTabular)

	_, err = Records("x")
	require.ErrorIs(t, err, ErrNotTabular)
}

func TestDisjoint(t *testing.T) {
	t.Parallel()

	a := map[string]any{"x": []any{map[string]any{"v": 1}, map[string]any{"v": 2}}}
	b := map[string]any{"y": []any{map[string]any{"v": 3}, map[string]any{"v": 4}}}

	got, err := Disjoint([]any{a, b})
	require.NoError(t, err)
	assert.Equal(t, []Record{{"x.v": 1}, {"x.v": 2}, {"y.v": 3}, {"y.v": 4}}, got)

	got, err = Disjoint([]any{a, b}, WithMaxDepth(0))
	require.NoError(t, err)
	assert.Equal(t, []any{a, b}, got)

	_, err = Disjoint([]any{a, "scalar"})
	require.ErrorIs(t, err, ErrNotTabular)
}

func TestFlattenTrace(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Records(map[string]any{"a": 1}, WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "flatten node")
	assert.Contains(t, buf.String(), "prefix=a")
}

func nest(depth int) any {
	var v any = 1
	for range depth {
		v = map[string]any{"n": v}
	}
	return v
}
