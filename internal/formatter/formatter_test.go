package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/tq/internal/flatten"
)

func render(t *testing.T, format Format, v any) string {
	t.Helper()

	var buf bytes.Buffer
	f, err := New(format, &buf)
	require.NoError(t, err)
	require.NoError(t, f.Format(v))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, name := range Formats() {
		got, err := ParseFormat(strings.ToUpper(name))
		require.NoError(t, err)
		assert.Equal(t, Format(name), got)
	}

	_, err := ParseFormat("csv")
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = New("csv", &bytes.Buffer{})
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestJSON(t *testing.T) {
	t.Parallel()

	records := []flatten.Record{{"a.x": json.Number("1"), "b": "<x>"}}
	got := render(t, FormatJSON, records)
	assert.JSONEq(t, `[{"a.x": 1, "b": "<x>"}]`, got)
	assert.Contains(t, got, "<x>")
	assert.True(t, strings.HasSuffix(got, "\n"))
}

func TestNDJSON(t *testing.T) {
	t.Parallel()

	got := render(t, FormatNDJSON, []flatten.Record{{"a": 1}, {"a": 2}})
	assert.Equal(t, "{\"a\":1}\n{\"a\":2}\n", got)

	got = render(t, FormatNDJSON, map[string]any{"a": 1})
	assert.Equal(t, "{\"a\":1}\n", got)
}

func TestJSONUnserializable(t *testing.T) {
	t.Parallel()

	f, err := New(FormatJSON, &bytes.Buffer{})
	require.NoError(t, err)
	require.Error(t, f.Format(map[string]any{"c": make(chan int)}))
}

func TestYAML(t *testing.T) {
	t.Parallel()

	got := render(t, FormatYAML, map[string][]any{
		"items.id": {json.Number("1"), json.Number("2.5")},
	})
	assert.Contains(t, got, "items.id:")
	assert.Contains(t, got, "- 1\n")
	assert.Contains(t, got, "- 2.5\n")
	assert.NotContains(t, got, `"1"`)
}

func TestPlain(t *testing.T) {
	t.Parallel()

	got := plain([]flatten.Record{{"n": json.Number("3"), "s": []any{json.Number("1.5")}}})
	assert.Equal(t, []any{map[string]any{"n": int64(3), "s": []any{1.5}}}, got)
}

func TestTableRecords(t *testing.T) {
	t.Parallel()

	got := render(t, FormatTable, []flatten.Record{
		{"Cities.Name": "Paris", "Cities.Population": 2100000},
		{"Cities.Name": "Lyon", "Cities.Population": nil},
	})
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, strings.ToUpper(lines[0]), "CITIES.NAME")
	assert.Contains(t, got, "Paris")
	assert.Contains(t, got, "2100000")
	assert.Contains(t, got, "Lyon")
}

func TestTableShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    any
		want []string
	}{
		{name: "leaves", v: map[string][]any{"a": {"x", "y"}}, want: []string{"PATH", "x", "y"}},
		{name: "sequence of maps", v: []any{map[string]any{"k": "v"}}, want: []string{"K", "v"}},
		{name: "scalar sequence", v: []any{1, []any{2}}, want: []string{"VALUE", "1", "[2]"}},
		{name: "map", v: map[string]any{"k": map[string]any{"n": true}}, want: []string{"KEY", `{"n":true}`}},
		{name: "scalar", v: "hello", want: []string{"VALUE", "hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := render(t, FormatTable, tt.v)
			for _, want := range tt.want {
				assert.Contains(t, got, want)
			}
		})
	}
}
