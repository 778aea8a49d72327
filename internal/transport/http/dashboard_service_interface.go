package http

import (
	"context"

	"vgpulse/internal/analytics"
	"vgpulse/internal/services"
	"vgpulse/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers call
type DashboardServiceInterface interface {
	MarketShare(ctx context.Context) (*services.MarketShareResult, error)
	Distribution(ctx context.Context, req domain.DistributionRequest) (*services.DistributionResult, error)
	Categories(ctx context.Context, dim domain.CategoryDimension) ([]domain.CategoryTotal, error)
	Forecast(ctx context.Context) (*analytics.ForecastResult, error)
	Snapshot(ctx context.Context, req domain.DistributionRequest) (*services.Snapshot, error)
	Summary(ctx context.Context) (*services.DatasetStatus, error)
	Reload(ctx context.Context) (*services.DatasetStatus, error)
}

var _ DashboardServiceInterface = (*services.DashboardService)(nil)
