// internal/output/csv.go
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
)

// CSVWriter writes rows to a CSV file. Column order is the sorted set of
// every key seen across the batch, so headers stay stable between runs.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter opens the target file for writing, truncating it.
func NewCSVWriter(path string) (*CSVWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}
	return &CSVWriter{
		file:   file,
		writer: csv.NewWriter(file),
	}, nil
}

// Write writes the header row followed by one record per row map.
func (w *CSVWriter) Write(rows []map[string]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	headers := collectHeaders(rows)
	if err := w.writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := make([]string, len(headers))
		for i, header := range headers {
			if value, ok := row[header]; ok && value != nil {
				record[i] = fmt.Sprintf("%v", value)
			}
		}
		if err := w.writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.writer.Flush()
	return w.writer.Error()
}

// Close flushes buffered records and closes the file.
func (w *CSVWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// collectHeaders returns the sorted union of keys across all rows.
func collectHeaders(rows []map[string]interface{}) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for key := range row {
			seen[key] = true
		}
	}
	headers := make([]string, 0, len(seen))
	for key := range seen {
		headers = append(headers, key)
	}
	sort.Strings(headers)
	return headers
}
