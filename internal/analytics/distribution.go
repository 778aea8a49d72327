package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"vgpulse/internal/infrastructure"
	"vgpulse/pkg/contracts/domain"
)

// Distribution defaults
const (
	DefaultTopN           = 10
	DefaultSteps          = 200
	DefaultExtentQuantile = 0.95
)

// DistributionConfig controls category selection and density sampling
type DistributionConfig struct {
	TopN           int
	Steps          int
	ExtentQuantile float64
}

// DefaultDistributionConfig returns the top-10, 200-step, p95 configuration
func DefaultDistributionConfig() DistributionConfig {
	return DistributionConfig{
		TopN:           DefaultTopN,
		Steps:          DefaultSteps,
		ExtentQuantile: DefaultExtentQuantile,
	}
}

// DistributionBuilder estimates per-category sales densities
type DistributionBuilder struct {
	cfg    DistributionConfig
	logger *slog.Logger
}

// NewDistributionBuilder creates a builder. Non-positive settings fall back
// to the defaults.
func NewDistributionBuilder(cfg DistributionConfig, logger *slog.Logger) *DistributionBuilder {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.Steps < 2 {
		cfg.Steps = DefaultSteps
	}
	if cfg.ExtentQuantile <= 0 || cfg.ExtentQuantile > 1 {
		cfg.ExtentQuantile = DefaultExtentQuantile
	}
	return &DistributionBuilder{
		cfg:    cfg,
		logger: infrastructure.WithComponent(logger, "distribution"),
	}
}

// TopCategories ranks the dimension's non-empty values by total sales,
// descending with ties broken by name, and keeps the first TopN.
func (b *DistributionBuilder) TopCategories(records []domain.SalesRecord, dim domain.CategoryDimension) ([]domain.CategoryTotal, error) {
	if !validDimension(dim) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDimension, dim)
	}
	return topCategories(records, dim, b.cfg.TopN), nil
}

func topCategories(records []domain.SalesRecord, dim domain.CategoryDimension, n int) []domain.CategoryTotal {
	totals := make(map[string]*domain.CategoryTotal)
	for _, r := range records {
		v := dim.Value(r)
		if v == "" {
			continue
		}
		t, ok := totals[v]
		if !ok {
			t = &domain.CategoryTotal{Category: v}
			totals[v] = t
		}
		t.Total += r.GlobalSales
		t.Records++
	}

	ranked := make([]domain.CategoryTotal, 0, len(totals))
	for _, t := range totals {
		ranked = append(ranked, *t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		return ranked[i].Category < ranked[j].Category
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Build returns DistributionConfig.Steps density points per selected
// category, categories in rank order and values ascending. Density is scaled
// by the category's sample count. An empty selection returns an empty slice
// and no error.
func (b *DistributionBuilder) Build(ctx context.Context, records []domain.SalesRecord, req domain.DistributionRequest) ([]domain.CategoryDensityPoint, error) {
	top, err := b.TopCategories(records, req.Dimension)
	if err != nil {
		return nil, err
	}

	if req.Mode == domain.ModeSingleCategory {
		var chosen []domain.CategoryTotal
		for _, t := range top {
			if t.Category == req.Category {
				chosen = append(chosen, t)
				break
			}
		}
		if len(chosen) == 0 && len(top) > 0 {
			return nil, fmt.Errorf("%w: %q for %s", domain.ErrInvalidCategory, req.Category, req.Dimension)
		}
		top = chosen
	}

	if len(top) == 0 {
		b.logger.DebugContext(ctx, "no categories to estimate", slog.String("dimension", string(req.Dimension)))
		return []domain.CategoryDensityPoint{}, nil
	}

	samples := groupSales(records, req.Dimension, top)

	var pooled []float64
	for _, t := range top {
		pooled = append(pooled, samples[t.Category]...)
	}
	sort.Float64s(pooled)

	hi := quantile(pooled, b.cfg.ExtentQuantile)
	if !(hi > 0) {
		hi = pooled[len(pooled)-1]
	}
	if !(hi > 0) {
		b.logger.DebugContext(ctx, "degenerate sales extent",
			slog.String("dimension", string(req.Dimension)),
			slog.Int("samples", len(pooled)),
		)
		return []domain.CategoryDensityPoint{}, nil
	}
	grid := linspace(0, hi, b.cfg.Steps)

	points := make([]domain.CategoryDensityPoint, 0, len(top)*len(grid))
	for _, t := range top {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		values := samples[t.Category]
		sort.Float64s(values)
		bw := bandwidth(values)
		count := float64(len(values))

		for _, x := range grid {
			points = append(points, domain.CategoryDensityPoint{
				Category: t.Category,
				Value:    x,
				Density:  gaussianKDE(values, bw, x) * count,
			})
		}
	}

	b.logger.DebugContext(ctx, "distribution built",
		slog.String("dimension", string(req.Dimension)),
		slog.String("mode", string(req.Mode)),
		slog.Int("categories", len(top)),
		slog.Float64("extent_max", hi),
		slog.Int("points", len(points)),
	)

	return points, nil
}

// groupSales collects sales values for the selected categories
func groupSales(records []domain.SalesRecord, dim domain.CategoryDimension, selected []domain.CategoryTotal) map[string][]float64 {
	out := make(map[string][]float64, len(selected))
	for _, t := range selected {
		out[t.Category] = make([]float64, 0, t.Records)
	}
	for _, r := range records {
		v := dim.Value(r)
		if values, ok := out[v]; ok {
			out[v] = append(values, r.GlobalSales)
		}
	}
	return out
}

func validDimension(dim domain.CategoryDimension) bool {
	for _, d := range domain.Dimensions {
		if d == dim {
			return true
		}
	}
	return false
}
