// internal/output/yaml.go
package output

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes rows as a YAML sequence of mappings.
type YAMLWriter struct {
	file *os.File
}

// NewYAMLWriter opens the target file for writing, truncating it.
func NewYAMLWriter(path string) (*YAMLWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create YAML file: %w", err)
	}
	return &YAMLWriter{file: file}, nil
}

// Write encodes the rows as a YAML document.
func (w *YAMLWriter) Write(rows []map[string]interface{}) error {
	encoder := yaml.NewEncoder(w.file)
	encoder.SetIndent(2)
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// Close closes the underlying file.
func (w *YAMLWriter) Close() error {
	return w.file.Close()
}
