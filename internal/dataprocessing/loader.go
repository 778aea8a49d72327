package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"vgpulse/internal/infrastructure"
	"vgpulse/pkg/contracts/domain"
)

// Dataset is a filtered, immutable snapshot of the sales file. Callers must
// not modify Records.
type Dataset struct {
	Source      string
	Format      string
	Records     []domain.SalesRecord
	RowsRead    int
	Skipped     int
	SkipReasons map[string]int
	LoadedAt    time.Time
}

// Loader reads the sales dataset and drops rows the pipeline cannot use
type Loader struct {
	cutoffYear int
	logger     *slog.Logger
	metrics    *infrastructure.BusinessMetrics
}

// NewLoader creates a loader that drops releases after cutoffYear.
// metrics may be nil.
func NewLoader(cutoffYear int, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Loader {
	return &Loader{
		cutoffYear: cutoffYear,
		logger:     infrastructure.WithComponent(logger, "loader"),
		metrics:    metrics,
	}
}

// Load reads path as CSV or XLSX. Any failure to read or interpret the file
// wraps domain.ErrDataUnavailable.
func (l *Loader) Load(ctx context.Context, path string) (ds *Dataset, err error) {
	start := time.Now()
	format, formatErr := DetectFormat(path)

	ctx, span := infrastructure.StartSpan(ctx, "dataset.load",
		attribute.String("dataset.path", path),
		attribute.String("dataset.format", format),
	)
	defer func() {
		skipped := 0
		if ds != nil {
			skipped = ds.Skipped
		}
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		l.metrics.RecordDatasetLoad(ctx, format, skipped, time.Since(start), err)
		span.End()
	}()

	if formatErr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, formatErr)
	}

	if _, statErr := os.Stat(path); statErr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, statErr)
	}

	src, err := openRowSource(path, format)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrDataUnavailable, filepath.Base(path), err)
	}
	defer src.Close()

	ds, err = l.read(ctx, src)
	if err != nil {
		return nil, err
	}
	ds.Source = path
	ds.Format = format

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", path),
		slog.String("format", format),
		slog.Int("rows_read", ds.RowsRead),
		slog.Int("records", len(ds.Records)),
		slog.Int("skipped", ds.Skipped),
		slog.Any("skip_reasons", ds.SkipReasons),
		slog.Duration("duration", time.Since(start)),
	)

	return ds, nil
}

func (l *Loader) read(ctx context.Context, src rowSource) (*Dataset, error) {
	header, err := src.Next()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: dataset file is empty", domain.ErrDataUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrDataUnavailable, err)
	}

	cols, err := findColumnIndices(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}

	ds := &Dataset{
		SkipReasons: make(map[string]int),
		LoadedAt:    time.Now(),
	}

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrDataUnavailable, line, err)
		}
		if isBlankRow(row) {
			continue
		}

		ds.RowsRead++
		record, reason := parseRecord(row, cols, l.cutoffYear)
		if reason != "" {
			ds.Skipped++
			ds.SkipReasons[reason]++
			l.logger.DebugContext(ctx, "row skipped",
				slog.Int("line", line),
				slog.String("reason", reason),
			)
			continue
		}
		ds.Records = append(ds.Records, record)
	}

	return ds, nil
}
