// Package analytics turns filtered sales records into the three chart tables
// served by VGPulse.
//
// # Components
//
//   - manufacturers.go: immutable platform to manufacturer mapping
//   - share.go: yearly manufacturer market share
//   - distribution.go: top-N categories and per-category sales density
//   - stats.go: quantile, bandwidth and Gaussian kernel estimate helpers
//   - forecast.go: per-manufacturer linear trend projection
//
// Every stage is a pure function of its inputs. Stage values hold only
// configuration and a logger, so a single instance may be shared by
// concurrent requests.
//
// # Usage Example
//
//	mapping, err := analytics.NewManufacturerMap(cfg.Pipeline.Manufacturers)
//	if err != nil {
//	    return err
//	}
//	shares := analytics.NewShareAggregator(mapping).Aggregate(ds.Records)
//	result, err := analytics.NewForecastProjector(mapping, analytics.DefaultForecastConfig(), logger, nil).
//	    Project(ctx, shares)
//
// Statistical primitives come from gonum: ordinary least squares and R² from
// stat, sample standard deviation from stat and the standard normal density
// from stat/distuv.
package analytics
