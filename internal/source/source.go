// Package source decodes documents into trees and selects parts of them.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	yaml "github.com/goccy/go-yaml"
	"github.com/theory/jsonpath"
)

var (
	ErrInvalidInput = errors.New("invalid source input")
	ErrDecode       = errors.New("source decode failed")
)

// Format is a document encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml", "yml" and the empty string (auto).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", ErrInvalidInput, s)
	}
}

// FormatFor infers the format from a file name; JSON unless the extension
// says YAML.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Read decodes a single document. JSON numbers are kept as json.Number so
// large integers survive unchanged.
func Read(r io.Reader, format Format) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Decode(data, format)
}

// Decode is Read over a byte slice.
func Decode(data []byte, format Format) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrInvalidInput)
	}

	switch format {
	case FormatYAML:
		var out any
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%w: failed to parse YAML data: %v", ErrDecode, err)
		}
		return normalizeYAML(out), nil
	case FormatJSON, FormatAuto:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()

		var out any
		if err := decoder.Decode(&out); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON data: %v", ErrDecode, err)
		}
		if decoder.More() {
			return nil, fmt.Errorf("%w: trailing data after JSON document", ErrDecode)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidInput, format)
	}
}

// ReadFile reads the named document; "-" is standard input. FormatAuto
// infers the format from the name.
func ReadFile(name string, format Format) (any, error) {
	if format == FormatAuto {
		format = FormatFor(name)
	}

	if name == "-" {
		return Read(os.Stdin, format)
	}

	fh, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer fh.Close()

	out, err := Read(fh, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Select returns every node matched by an RFC 9535 JSONPath expression, in
// document order.
func Select(tree any, expr string) ([]any, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: JSONPath expression is empty", ErrInvalidInput)
	}

	path, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSONPath %s: %v", ErrInvalidInput, expr, err)
	}

	results := path.Select(tree)
	out := make([]any, 0, len(results))
	out = append(out, results...)
	return out, nil
}

// normalizeYAML rewrites mappings with non-string keys into map[string]any.
func normalizeYAML(v any) any {
	switch current := v.(type) {
	case map[string]any:
		for k, item := range current {
			current[k] = normalizeYAML(item)
		}
		return current
	case map[any]any:
		out := make(map[string]any, len(current))
		for k, item := range current {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []any:
		for i, item := range current {
			current[i] = normalizeYAML(item)
		}
		return current
	default:
		return v
	}
}
