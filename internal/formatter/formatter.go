// Package formatter renders trees, leaf maps and flat records.
package formatter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jacoelho/tq/internal/flatten"
	"github.com/jacoelho/tq/internal/number"
	"github.com/jacoelho/tq/internal/tree"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Format is an output encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
	FormatTable  Format = "table"
)

var allFormats = []Format{FormatJSON, FormatNDJSON, FormatYAML, FormatTable}

// Formats returns every supported format name.
func Formats() []string {
	out := make([]string, len(allFormats))
	for i, f := range allFormats {
		out[i] = string(f)
	}
	return out
}

func ParseFormat(s string) (Format, error) {
	normalized := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range allFormats {
		if f == normalized {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownFormat, s, strings.Join(Formats(), ", "))
}

// Formatter writes one result value. The formatter decides the layout from
// the value's shape: []flatten.Record, map[string][]any, or any tree.
type Formatter interface {
	Format(v any) error
}

// New returns the formatter for format writing to w.
func New(format Format, w io.Writer) (Formatter, error) {
	switch format {
	case FormatJSON:
		return &jsonFormatter{writer: w}, nil
	case FormatNDJSON:
		return &jsonFormatter{writer: w, lines: true}, nil
	case FormatYAML:
		return &yamlFormatter{writer: w}, nil
	case FormatTable:
		return &tableFormatter{writer: w}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// plain rewrites results into generic trees: records and leaf maps become
// map[string]any, json.Number becomes int64, uint64 or float64.
func plain(v any) any {
	switch current := v.(type) {
	case []flatten.Record:
		out := make([]any, len(current))
		for i, r := range current {
			out[i] = plain(map[string]any(r))
		}
		return out
	case flatten.Record:
		return plain(map[string]any(current))
	case map[string][]any:
		out := make(map[string]any, len(current))
		for k, values := range current {
			out[k] = plain(values)
		}
		return out
	case json.Number:
		if key, ok := number.Key(current); ok {
			return key
		}
		return current.String()
	}

	switch tree.KindOf(v) {
	case tree.KindSequence:
		seq := v.([]any)
		out := make([]any, len(seq))
		for i, item := range seq {
			out[i] = plain(item)
		}
		return out
	case tree.KindMap:
		m := v.(map[string]any)
		out := make(map[string]any, len(m))
		for k, item := range m {
			out[k] = plain(item)
		}
		return out
	case tree.KindNull, tree.KindBool, tree.KindNumber, tree.KindString, tree.KindOpaque:
	}
	return v
}

// items splits a result into NDJSON lines.
func items(v any) []any {
	switch current := v.(type) {
	case []flatten.Record:
		out := make([]any, len(current))
		for i, r := range current {
			out[i] = r
		}
		return out
	case []any:
		return current
	default:
		return []any{v}
	}
}
