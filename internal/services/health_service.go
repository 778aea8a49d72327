package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"vgpulse/internal/infrastructure"
	"vgpulse/pkg/contracts"
)

// Health states reported by HealthService
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	source    DatasetSource
	path      string
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service that reports the dataset at path
// as ready once source can load it.
func NewHealthService(version string, source DatasetSource, path string, logger *slog.Logger) *HealthService {
	logger = infrastructure.WithComponent(logger, "health_service")
	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("dataset", path),
	)

	return &HealthService{
		version:   version,
		source:    source,
		path:      path,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready when the dataset can be loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"dataset": hs.checkDataset(ctx),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != StatusReady {
			status.Status = StatusNotReady
			break
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      hs.version,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"api_version":  info.APIVersion,
		"data_format":  info.DataFormat,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

// checkDataset loads the dataset through the cache
func (hs *HealthService) checkDataset(ctx context.Context) ServiceHealth {
	if hs.source == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "dataset source not configured"}
	}

	ds, err := hs.source.Get(ctx, hs.path)
	if err != nil {
		hs.logger.WarnContext(ctx, "dataset not ready",
			slog.String("dataset", hs.path),
			slog.String("error", err.Error()),
		)
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("dataset unavailable: %v", err),
		}
	}

	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d records loaded", len(ds.Records)),
		Uptime:  time.Since(ds.LoadedAt).Round(time.Second).String(),
	}
}
