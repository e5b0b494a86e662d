// internal/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"os"
)

// JSONWriter writes rows as a single pretty-printed JSON array.
type JSONWriter struct {
	file *os.File
}

// NewJSONWriter opens the target file for writing, truncating it.
func NewJSONWriter(path string) (*JSONWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSON file: %w", err)
	}
	return &JSONWriter{file: file}, nil
}

// Write encodes the rows as an indented JSON array.
func (w *JSONWriter) Write(rows []map[string]interface{}) error {
	encoder := json.NewEncoder(w.file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *JSONWriter) Close() error {
	return w.file.Close()
}
