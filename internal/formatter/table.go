package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jacoelho/tq/internal/flatten"
	"github.com/jacoelho/tq/internal/tree"
)

type tableFormatter struct {
	writer io.Writer
}

func (f *tableFormatter) Format(v any) error {
	t := table.NewWriter()
	t.SetOutputMirror(f.writer)

	switch current := v.(type) {
	case []flatten.Record:
		appendRecords(t, current)
	case map[string][]any:
		t.AppendHeader(table.Row{"PATH", "VALUE"})
		for _, k := range sortedLeafKeys(current) {
			for _, value := range current[k] {
				t.AppendRow(table.Row{k, cell(value)})
			}
		}
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}})
	default:
		appendTree(t, v)
	}

	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return nil
}

func appendRecords(t table.Writer, records []flatten.Record) {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, r := range records {
		row := make(table.Row, len(columns))
		for i, c := range columns {
			row[i] = cell(r[c])
		}
		t.AppendRow(row)
	}
}

// appendTree lays out a sequence of maps as records, a map as key/value
// rows and anything else as a single column.
func appendTree(t table.Writer, v any) {
	switch tree.KindOf(v) {
	case tree.KindSequence:
		seq := v.([]any)
		records := make([]flatten.Record, 0, len(seq))
		for _, item := range seq {
			m, ok := item.(map[string]any)
			if !ok {
				break
			}
			records = append(records, flatten.Record(m))
		}
		if len(seq) > 0 && len(records) == len(seq) {
			appendRecords(t, records)
			return
		}
		t.AppendHeader(table.Row{"VALUE"})
		for _, item := range seq {
			t.AppendRow(table.Row{cell(item)})
		}
	case tree.KindMap:
		m := v.(map[string]any)
		t.AppendHeader(table.Row{"KEY", "VALUE"})
		for _, k := range tree.SortedKeys(m) {
			t.AppendRow(table.Row{k, cell(m[k])})
		}
	case tree.KindNull, tree.KindBool, tree.KindNumber, tree.KindString, tree.KindOpaque:
		t.AppendHeader(table.Row{"VALUE"})
		t.AppendRow(table.Row{cell(v)})
	}
}

// cell renders scalars as text and containers as compact JSON. Null is empty.
func cell(v any) string {
	switch tree.KindOf(v) {
	case tree.KindNull:
		return ""
	case tree.KindString:
		return v.(string)
	case tree.KindSequence, tree.KindMap:
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(payload)
	case tree.KindBool, tree.KindNumber, tree.KindOpaque:
	}
	return fmt.Sprint(v)
}

func sortedLeafKeys(m map[string][]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
