// Package shared holds code used by several VGPulse packages that belongs to
// no single layer.
//
// The testutil subpackage provides a log-capturing slog handler and sample
// sales datasets (as records, CSV files and XLSX workbooks) for tests across
// the loader, analytics, services and transport packages.
package shared
