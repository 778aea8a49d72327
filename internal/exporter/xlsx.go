package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"vgpulse/internal/infrastructure"
)

// maxSheetName is the longest sheet name Excel accepts
const maxSheetName = 31

// WorkbookWriter exports tables as an XLSX workbook with one sheet per table
type WorkbookWriter struct {
	exportDir string
	logger    *slog.Logger
}

// NewWorkbookWriter creates a workbook writer that resolves relative paths
// against exportDir
func NewWorkbookWriter(exportDir string, logger *slog.Logger) *WorkbookWriter {
	return &WorkbookWriter{
		exportDir: exportDir,
		logger:    infrastructure.WithComponent(logger, "xlsx_exporter"),
	}
}

// Write streams the workbook to out
func (w *WorkbookWriter) Write(out io.Writer, tables []Table) error {
	f, err := buildWorkbook(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile saves the workbook to <name>.xlsx inside the export directory
func (w *WorkbookWriter) WriteFile(name string, tables []Table) (string, error) {
	if filepath.Ext(name) == "" {
		name += ".xlsx"
	}
	fullPath := resolvePath(w.exportDir, name)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := buildWorkbook(tables)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("save workbook %s: %w", fullPath, err)
	}

	w.logger.Info("Workbook written",
		slog.String("full_path", fullPath),
		slog.Int("sheets", len(tables)))
	return fullPath, nil
}

func buildWorkbook(tables []Table) (*excelize.File, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("workbook needs at least one table")
	}

	f := excelize.NewFile()
	first := f.GetSheetName(0)

	for i, t := range tables {
		name := sheetName(t.Name)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("add sheet %s: %w", name, err)
		}

		if err := writeSheet(f, name, t); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, name string, t Table) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("sheet %s: %w", name, err)
	}

	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("sheet %s header: %w", name, err)
	}

	for i, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			if p, ok := v.(Precise); ok {
				v = float64(p)
			}
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", name, i+2, err)
		}
	}

	return sw.Flush()
}

func sheetName(name string) string {
	if name == "" {
		return "Sheet"
	}
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}
