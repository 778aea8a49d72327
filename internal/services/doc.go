// Package services implements the business logic layer of VGPulse. It sits
// between the HTTP handlers and the analytics pipeline.
//
// DashboardService reads the sales dataset through a DatasetSource (normally
// a *dataprocessing.DatasetCache) and runs the analytics stages on it:
//
//	svc, err := services.NewDashboardService(cfg, cache, logger, metrics)
//	if err != nil {
//	    return err
//	}
//	shares, err := svc.MarketShare(ctx)
//
// Every stage runs in its own span and records its duration. Pipeline errors
// are returned wrapped; ToAPIError turns them into API errors for the
// transport layer.
//
// HealthService reports liveness, and readiness based on whether the dataset
// can be loaded.
package services
