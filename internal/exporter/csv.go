package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"vgpulse/internal/infrastructure"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	exportDir string
	logger    *slog.Logger
}

// NewCSVWriter creates a CSV writer that resolves relative paths against exportDir
func NewCSVWriter(exportDir string, logger *slog.Logger) *CSVWriter {
	return &CSVWriter{
		exportDir: exportDir,
		logger:    infrastructure.WithComponent(logger, "csv_exporter"),
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (string, error) {
	fullPath := resolvePath(w.exportDir, filePath)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if err := writeCSV(file, options); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", fullPath, err)
	}
	return fullPath, nil
}

// WriteTable streams a table as CSV to out
func (w *CSVWriter) WriteTable(out io.Writer, t Table, bom bool) error {
	return writeCSV(out, WriteOptions{Headers: t.Headers, Records: t.Records(), BOMPrefix: bom})
}

// WriteTableFile writes a table to <name>.csv, or to name when it already
// carries an extension.
func (w *CSVWriter) WriteTableFile(name string, t Table) (string, error) {
	if filepath.Ext(name) == "" {
		name += ".csv"
	}
	return w.WriteCSV(name, WriteOptions{Headers: t.Headers, Records: t.Records(), BOMPrefix: true})
}

func writeCSV(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// resolvePath places relative paths inside dir
func resolvePath(dir, filePath string) string {
	if filepath.IsAbs(filePath) || dir == "" {
		return filePath
	}
	return filepath.Join(dir, filePath)
}
