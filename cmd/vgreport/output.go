package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"vgpulse/internal/exporter"
	"vgpulse/pkg/contracts/domain"
)

// emit writes data as JSON, the first table as CSV or every table as a workbook
func (rt *runtime) emit(opts *options, data interface{}, tables ...exporter.Table) (err error) {
	out := rt.stdout
	if opts.output != "" {
		f, createErr := os.Create(opts.output)
		if createErr != nil {
			return fmt.Errorf("create output: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		out = f
	}

	switch opts.format {
	case formatJSON:
		return writeJSON(out, data)
	case formatXLSX:
		return exporter.NewWorkbookWriter("", rt.logger).Write(out, tables)
	default:
		if len(tables) == 0 {
			return fmt.Errorf("nothing to write as csv")
		}
		return exporter.NewCSVWriter("", rt.logger).WriteTable(out, tables[0], opts.output != "")
	}
}

func writeJSON(out io.Writer, data interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// warnEmpty logs results that were computed over no data
func (rt *runtime) warnEmpty(err error) {
	if errors.Is(err, domain.ErrEmptyResult) {
		rt.logger.Warn("result is empty", slog.String("dataset", rt.cfg.DatasetPath()))
	}
}
