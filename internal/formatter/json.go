package formatter

import (
	"encoding/json"
	"fmt"
	"io"
)

type jsonFormatter struct {
	writer io.Writer
	lines  bool
}

func (f *jsonFormatter) Format(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetEscapeHTML(false)

	if !f.lines {
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encoding JSON failed: %w", err)
		}
		return nil
	}

	for i, item := range items(v) {
		if err := encoder.Encode(item); err != nil {
			return fmt.Errorf("encoding JSON line %d failed: %w", i, err)
		}
	}
	return nil
}
