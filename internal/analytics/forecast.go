package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"vgpulse/internal/infrastructure"
	"vgpulse/pkg/contracts/domain"
)

// Forecast horizon defaults
const (
	DefaultHorizonStart = 2016
	DefaultHorizonEnd   = 2020
)

// ForecastConfig sets the inclusive range of projected years
type ForecastConfig struct {
	HorizonStart int
	HorizonEnd   int
}

// DefaultForecastConfig projects 2016 through 2020
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{HorizonStart: DefaultHorizonStart, HorizonEnd: DefaultHorizonEnd}
}

// Years lists the horizon years in order
func (c ForecastConfig) Years() []int {
	if c.HorizonEnd < c.HorizonStart {
		return nil
	}
	years := make([]int, 0, c.HorizonEnd-c.HorizonStart+1)
	for y := c.HorizonStart; y <= c.HorizonEnd; y++ {
		years = append(years, y)
	}
	return years
}

// ForecastResult is the combined actual and predicted series plus the fitted
// models. Skipped names manufacturers that had too little history to fit.
type ForecastResult struct {
	Points  []domain.ForecastPoint `json:"points"`
	Fits    []domain.TrendFit      `json:"fits"`
	Skipped []string               `json:"skipped"`
}

// ForecastProjector extrapolates each manufacturer's share with a linear trend
type ForecastProjector struct {
	manufacturers *ManufacturerMap
	cfg           ForecastConfig
	logger        *slog.Logger
	metrics       *infrastructure.BusinessMetrics
}

// NewForecastProjector creates a projector. metrics may be nil.
func NewForecastProjector(manufacturers *ManufacturerMap, cfg ForecastConfig, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *ForecastProjector {
	return &ForecastProjector{
		manufacturers: manufacturers,
		cfg:           cfg,
		logger:        infrastructure.WithComponent(logger, "forecast"),
		metrics:       metrics,
	}
}

// manufacturerForecast is one manufacturer's share of the result
type manufacturerForecast struct {
	actual    []domain.ForecastPoint
	predicted []domain.ForecastPoint
	fit       *domain.TrendFit
	err       error
}

// Project fits every manufacturer independently and concurrently. Actual
// points come first, then predicted points, each in mapping order and then
// by year. A manufacturer with fewer than two distinct years keeps its actual
// points, gets no predictions and is listed in Skipped.
func (p *ForecastProjector) Project(ctx context.Context, shares []domain.YearShareRow) (*ForecastResult, error) {
	names := p.manufacturers.Names()
	series := SharesByManufacturer(shares)
	horizon := p.cfg.Years()

	results := make([]manufacturerForecast, len(names))
	g, gctx := errgroup.WithContext(ctx)

	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = projectOne(name, series[name], horizon)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}

	result := &ForecastResult{
		Points:  []domain.ForecastPoint{},
		Fits:    []domain.TrendFit{},
		Skipped: []string{},
	}
	for i, r := range results {
		result.Points = append(result.Points, r.actual...)
		if r.err != nil {
			result.Skipped = append(result.Skipped, names[i])
			p.metrics.RecordForecastSkip(ctx, names[i])
			p.logger.WarnContext(ctx, "manufacturer not projected",
				slog.String("manufacturer", names[i]),
				slog.Int("history_points", len(r.actual)),
				slog.String("error", r.err.Error()),
			)
			continue
		}
		result.Fits = append(result.Fits, *r.fit)
	}
	for _, r := range results {
		result.Points = append(result.Points, r.predicted...)
	}

	p.logger.DebugContext(ctx, "forecast projected",
		slog.Int("manufacturers", len(names)),
		slog.Int("skipped", len(result.Skipped)),
		slog.Int("points", len(result.Points)),
	)

	return result, nil
}

// projectOne fits one manufacturer's history and evaluates it over horizon
func projectOne(name string, history []domain.YearShareRow, horizon []int) manufacturerForecast {
	rows := append([]domain.YearShareRow(nil), history...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })

	out := manufacturerForecast{actual: make([]domain.ForecastPoint, 0, len(rows))}
	xs := make([]float64, 0, len(rows))
	ys := make([]float64, 0, len(rows))
	distinct := make(map[int]struct{}, len(rows))

	for _, r := range rows {
		out.actual = append(out.actual, domain.ForecastPoint{
			Year:         r.Year,
			Manufacturer: name,
			Share:        r.Share,
			Type:         domain.SeriesActual,
		})
		xs = append(xs, float64(r.Year))
		ys = append(ys, r.Share)
		distinct[r.Year] = struct{}{}
	}

	if len(distinct) < 2 {
		out.err = fmt.Errorf("%s: %w (%d)", name, domain.ErrInsufficientHistory, len(distinct))
		return out
	}

	intercept, slope, r2 := linearFit(xs, ys)
	out.fit = &domain.TrendFit{
		Manufacturer: name,
		Slope:        slope,
		Intercept:    intercept,
		RSquared:     r2,
		Points:       len(xs),
	}

	out.predicted = make([]domain.ForecastPoint, 0, len(horizon))
	for _, year := range horizon {
		out.predicted = append(out.predicted, domain.ForecastPoint{
			Year:         year,
			Manufacturer: name,
			Share:        intercept + slope*float64(year),
			Type:         domain.SeriesPredicted,
		})
	}

	return out
}
