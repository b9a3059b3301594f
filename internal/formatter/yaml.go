package formatter

import (
	"fmt"
	"io"

	yaml "github.com/goccy/go-yaml"
)

type yamlFormatter struct {
	writer io.Writer
}

func (f *yamlFormatter) Format(v any) error {
	payload, err := yaml.Marshal(plain(v))
	if err != nil {
		return fmt.Errorf("encoding YAML failed: %w", err)
	}
	_, err = f.writer.Write(payload)
	return err
}
