package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"vgpulse/pkg/contracts/domain"
)

// Supported dataset formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Dataset column headers
const (
	ColumnName     = "Name"
	ColumnPlatform = "Platform"
	ColumnYear     = "Year_of_Release"
	ColumnGenre    = "Genre"
	ColumnRating   = "Rating"
	ColumnSales    = "Global_Sales"
)

// Reasons a row is dropped during loading
const (
	SkipMissingYear     = "missing_year"
	SkipMissingPlatform = "missing_platform"
	SkipMissingSales    = "missing_sales"
	SkipNegativeSales   = "negative_sales"
	SkipAfterCutoff     = "after_cutoff"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// missingTokens are cell values treated as absent
var missingTokens = map[string]struct{}{
	"":     {},
	"n/a":  {},
	"na":   {},
	"nan":  {},
	"null": {},
	"none": {},
	"#n/a": {},
	"<na>": {},
	"tbd":  {},
}

// DetectFormat picks the reader for a dataset path from its extension
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported dataset extension %q", filepath.Ext(path))
	}
}

// rowSource yields raw rows until io.EOF
type rowSource interface {
	Next() ([]string, error)
	Close() error
}

type csvSource struct {
	file   *os.File
	reader *csv.Reader
}

func openCSVSource(path string) (*csvSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(f)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	return &csvSource{file: f, reader: r}, nil
}

func (s *csvSource) Next() ([]string, error) {
	return s.reader.Read()
}

func (s *csvSource) Close() error {
	return s.file.Close()
}

type xlsxSource struct {
	file *excelize.File
	rows *excelize.Rows
}

func openXLSXSource(path string) (*xlsxSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	return &xlsxSource{file: f, rows: rows}, nil
}

func (s *xlsxSource) Next() ([]string, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return s.rows.Columns()
}

func (s *xlsxSource) Close() error {
	rowsErr := s.rows.Close()
	if err := s.file.Close(); err != nil {
		return err
	}
	return rowsErr
}

func openRowSource(path, format string) (rowSource, error) {
	if format == FormatXLSX {
		return openXLSXSource(path)
	}
	return openCSVSource(path)
}

// columnIndices holds the positions of the dataset columns, -1 when absent
type columnIndices struct {
	name     int
	platform int
	year     int
	genre    int
	rating   int
	sales    int
}

// findColumnIndices maps header names to positions, ignoring case and a BOM
func findColumnIndices(header []string) (columnIndices, error) {
	indices := columnIndices{name: -1, platform: -1, year: -1, genre: -1, rating: -1, sales: -1}

	for i, col := range header {
		clean := strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		switch {
		case strings.EqualFold(clean, ColumnName):
			indices.name = i
		case strings.EqualFold(clean, ColumnPlatform):
			indices.platform = i
		case strings.EqualFold(clean, ColumnYear):
			indices.year = i
		case strings.EqualFold(clean, ColumnGenre):
			indices.genre = i
		case strings.EqualFold(clean, ColumnRating):
			indices.rating = i
		case strings.EqualFold(clean, ColumnSales):
			indices.sales = i
		}
	}

	var missing []string
	for _, req := range []struct {
		name string
		idx  int
	}{
		{ColumnYear, indices.year},
		{ColumnPlatform, indices.platform},
		{ColumnGenre, indices.genre},
		{ColumnRating, indices.rating},
		{ColumnSales, indices.sales},
	} {
		if req.idx < 0 {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return indices, fmt.Errorf("required columns not found: %s", strings.Join(missing, ", "))
	}

	return indices, nil
}

// cell returns the trimmed value at idx, or "" for short rows
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isMissing(v string) bool {
	_, ok := missingTokens[strings.ToLower(v)]
	return ok
}

// parseYear accepts integral years, including the float form "2006.0"
func parseYear(v string) (int, bool) {
	if isMissing(v) {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func parseSales(v string) (float64, bool) {
	if isMissing(v) {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseRecord converts a raw row into a record. A non-empty reason means the
// row must be dropped.
func parseRecord(row []string, cols columnIndices, cutoffYear int) (domain.SalesRecord, string) {
	year, ok := parseYear(cell(row, cols.year))
	if !ok {
		return domain.SalesRecord{}, SkipMissingYear
	}

	platform := cell(row, cols.platform)
	if isMissing(platform) {
		return domain.SalesRecord{}, SkipMissingPlatform
	}

	sales, ok := parseSales(cell(row, cols.sales))
	if !ok {
		return domain.SalesRecord{}, SkipMissingSales
	}
	if sales < 0 {
		return domain.SalesRecord{}, SkipNegativeSales
	}

	if year > cutoffYear {
		return domain.SalesRecord{}, SkipAfterCutoff
	}

	return domain.SalesRecord{
		Name:        cell(row, cols.name),
		Platform:    platform,
		Genre:       optional(cell(row, cols.genre)),
		Rating:      optional(cell(row, cols.rating)),
		Year:        year,
		GlobalSales: sales,
	}, ""
}

func optional(v string) string {
	if isMissing(v) {
		return ""
	}
	return v
}

// isBlankRow reports whether every cell of the row is empty
func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
