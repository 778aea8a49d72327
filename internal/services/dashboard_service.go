package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"vgpulse/internal/analytics"
	"vgpulse/internal/config"
	"vgpulse/internal/dataprocessing"
	"vgpulse/internal/infrastructure"
	"vgpulse/pkg/contracts/domain"
)

// DatasetSource provides cached access to the sales dataset
type DatasetSource interface {
	Get(ctx context.Context, path string) (*dataprocessing.Dataset, error)
	Invalidate(path string)
	Stats() dataprocessing.CacheStats
}

// MarketShareResult holds the manufacturer share table
type MarketShareResult struct {
	Manufacturers []string              `json:"manufacturers"`
	Rows          []domain.YearShareRow `json:"rows"`
	Empty         bool                  `json:"empty"`
}

// Err reports ErrEmptyResult when the table has no rows
func (r *MarketShareResult) Err() error {
	if r.Empty {
		return domain.ErrEmptyResult
	}
	return nil
}

// DistributionResult holds the density curves for a distribution request
type DistributionResult struct {
	Request    domain.DistributionRequest    `json:"request"`
	Categories []domain.CategoryTotal        `json:"categories"`
	Points     []domain.CategoryDensityPoint `json:"points"`
	Empty      bool                          `json:"empty"`
}

// Err reports ErrEmptyResult when no curve could be built
func (r *DistributionResult) Err() error {
	if r.Empty {
		return domain.ErrEmptyResult
	}
	return nil
}

// Snapshot is every dashboard table computed from one dataset
type Snapshot struct {
	MarketShare  *MarketShareResult        `json:"market_share"`
	Distribution *DistributionResult       `json:"distribution"`
	Forecast     *analytics.ForecastResult `json:"forecast"`
	Summary      domain.DatasetSummary     `json:"summary"`
}

// DatasetStatus combines the dataset summary with cache counters
type DatasetStatus struct {
	Summary domain.DatasetSummary     `json:"summary"`
	Cache   dataprocessing.CacheStats `json:"cache"`
}

// DashboardService computes the dashboard tables from the cached dataset
type DashboardService struct {
	source        DatasetSource
	path          string
	loadTimeout   time.Duration
	manufacturers *analytics.ManufacturerMap
	shares        *analytics.ShareAggregator
	distribution  *analytics.DistributionBuilder
	forecast      *analytics.ForecastProjector
	logger        *slog.Logger
	metrics       *infrastructure.BusinessMetrics
}

// NewDashboardService creates the dashboard service from the pipeline configuration
func NewDashboardService(cfg *config.Config, source DatasetSource, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) (*DashboardService, error) {
	manufacturers, err := analytics.NewManufacturerMap(cfg.Pipeline.Manufacturers)
	if err != nil {
		return nil, fmt.Errorf("manufacturer mapping: %w", err)
	}

	logger = infrastructure.WithComponent(logger, "dashboard_service")

	s := &DashboardService{
		source:        source,
		path:          cfg.DatasetPath(),
		loadTimeout:   cfg.Pipeline.LoadTimeout,
		manufacturers: manufacturers,
		shares:        analytics.NewShareAggregator(manufacturers),
		distribution: analytics.NewDistributionBuilder(analytics.DistributionConfig{
			TopN:           cfg.Pipeline.TopCategories,
			Steps:          cfg.Pipeline.DensitySteps,
			ExtentQuantile: cfg.Pipeline.ExtentQuantile,
		}, logger),
		forecast: analytics.NewForecastProjector(manufacturers, analytics.ForecastConfig{
			HorizonStart: cfg.Pipeline.HorizonStart,
			HorizonEnd:   cfg.Pipeline.HorizonEnd,
		}, logger, metrics),
		logger:  logger,
		metrics: metrics,
	}

	logger.Info("DashboardService initialized",
		slog.String("dataset", s.path),
		slog.Any("manufacturers", manufacturers.Names()),
	)
	return s, nil
}

// DatasetPath returns the dataset location the service reads
func (s *DashboardService) DatasetPath() string {
	return s.path
}

// Manufacturers returns the manufacturer names in display order
func (s *DashboardService) Manufacturers() []string {
	return s.manufacturers.Names()
}

// dataset fetches the dataset through the cache, bounded by the load timeout
func (s *DashboardService) dataset(ctx context.Context) (*dataprocessing.Dataset, error) {
	if s.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.loadTimeout)
		defer cancel()
	}
	return s.source.Get(ctx, s.path)
}

// stage runs fn inside a span and records its duration
func (s *DashboardService) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := infrastructure.StartSpan(ctx, "dashboard."+name, attribute.String("dataset", s.path))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	s.metrics.RecordStage(ctx, name, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		level := slog.LevelError
		if isRequestError(err) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "dashboard stage failed",
			slog.String("stage", name),
			slog.String("error", err.Error()),
		)
	}
	return err
}

// MarketShare returns the manufacturer share of global sales per year
func (s *DashboardService) MarketShare(ctx context.Context) (*MarketShareResult, error) {
	var result *MarketShareResult
	err := s.stage(ctx, "market_share", func(ctx context.Context) error {
		ds, err := s.dataset(ctx)
		if err != nil {
			return err
		}
		result = s.marketShare(ds)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *DashboardService) marketShare(ds *dataprocessing.Dataset) *MarketShareResult {
	rows := s.shares.Aggregate(ds.Records)
	return &MarketShareResult{
		Manufacturers: s.manufacturers.Names(),
		Rows:          rows,
		Empty:         len(rows) == 0,
	}
}

// Distribution returns the per-category sales density curves for req
func (s *DashboardService) Distribution(ctx context.Context, req domain.DistributionRequest) (*DistributionResult, error) {
	var result *DistributionResult
	err := s.stage(ctx, "distribution", func(ctx context.Context) error {
		ds, err := s.dataset(ctx)
		if err != nil {
			return err
		}
		result, err = s.buildDistribution(ctx, ds, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *DashboardService) buildDistribution(ctx context.Context, ds *dataprocessing.Dataset, req domain.DistributionRequest) (*DistributionResult, error) {
	top, err := s.distribution.TopCategories(ds.Records, req.Dimension)
	if err != nil {
		return nil, err
	}

	points, err := s.distribution.Build(ctx, ds.Records, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCategory) {
			return nil, &InvalidCategoryError{
				Dimension: req.Dimension,
				Category:  req.Category,
				Allowed:   categoryNames(top),
				err:       err,
			}
		}
		return nil, err
	}

	if len(points) == 0 {
		s.logger.InfoContext(ctx, "distribution has no data",
			slog.String("dimension", string(req.Dimension)),
			slog.String("mode", string(req.Mode)),
			slog.String("category", req.Category),
		)
	}

	return &DistributionResult{
		Request:    req,
		Categories: top,
		Points:     points,
		Empty:      len(points) == 0,
	}, nil
}

// Categories returns the top categories for a dimension
func (s *DashboardService) Categories(ctx context.Context, dim domain.CategoryDimension) ([]domain.CategoryTotal, error) {
	var top []domain.CategoryTotal
	err := s.stage(ctx, "categories", func(ctx context.Context) error {
		ds, err := s.dataset(ctx)
		if err != nil {
			return err
		}
		top, err = s.distribution.TopCategories(ds.Records, dim)
		return err
	})
	if err != nil {
		return nil, err
	}
	return top, nil
}

// Forecast returns the actual and projected manufacturer shares
func (s *DashboardService) Forecast(ctx context.Context) (*analytics.ForecastResult, error) {
	var result *analytics.ForecastResult
	err := s.stage(ctx, "forecast", func(ctx context.Context) error {
		ds, err := s.dataset(ctx)
		if err != nil {
			return err
		}
		result, err = s.forecast.Project(ctx, s.shares.Aggregate(ds.Records))
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Snapshot computes every dashboard table from a single dataset read
func (s *DashboardService) Snapshot(ctx context.Context, req domain.DistributionRequest) (*Snapshot, error) {
	snap := &Snapshot{}
	err := s.stage(ctx, "snapshot", func(ctx context.Context) error {
		ds, err := s.dataset(ctx)
		if err != nil {
			return err
		}
		snap.Summary = dataprocessing.Summarize(ds)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			snap.MarketShare = s.marketShare(ds)
			forecast, err := s.forecast.Project(gctx, snap.MarketShare.Rows)
			if err != nil {
				return err
			}
			snap.Forecast = forecast
			return nil
		})
		g.Go(func() error {
			dist, err := s.buildDistribution(gctx, ds, req)
			if err != nil {
				return err
			}
			snap.Distribution = dist
			return nil
		})
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Summary describes the loaded dataset and the cache state
func (s *DashboardService) Summary(ctx context.Context) (*DatasetStatus, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return &DatasetStatus{
		Summary: dataprocessing.Summarize(ds),
		Cache:   s.source.Stats(),
	}, nil
}

// Reload drops the cached dataset and loads it again
func (s *DashboardService) Reload(ctx context.Context) (*DatasetStatus, error) {
	s.source.Invalidate(s.path)
	s.logger.InfoContext(ctx, "dataset reload requested", slog.String("dataset", s.path))

	status, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "dataset reloaded",
		slog.Int("records", status.Summary.Records),
		slog.Int("skipped", status.Summary.Skipped),
	)
	return status, nil
}

func categoryNames(totals []domain.CategoryTotal) []string {
	names := make([]string, len(totals))
	for i, t := range totals {
		names[i] = t.Category
	}
	return names
}
