// Package exporter writes the dashboard result tables to CSV and XLSX.
//
// Table values are built from the domain rows with MarketShareTable,
// DistributionTable, CategoriesTable, ForecastTable and TrendFitsTable, or
// all at once from a Report.
//
// CSVWriter writes one table per file, with a UTF-8 BOM so Excel detects the
// encoding. WorkbookWriter writes every table into a single workbook, one
// sheet per table:
//
//	tables := exporter.Report{MarketShare: shares, Forecast: points}.Tables()
//	path, err := exporter.NewWorkbookWriter(cfg.Paths.ExportDir, logger).WriteFile("dashboard", tables)
//
// Both writers can also stream to an io.Writer such as an HTTP response.
package exporter
