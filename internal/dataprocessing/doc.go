// Package dataprocessing loads the video game sales dataset and keeps it in
// memory.
//
// The Loader reads a CSV file (optionally with a UTF-8 BOM) or the first
// sheet of an XLSX workbook. Columns are located by header name, so extra or
// reordered columns are fine:
//
//	loader := dataprocessing.NewLoader(2016, logger, metrics)
//	ds, err := loader.Load(ctx, "data/Video_Games_Sales_as_at_22_Dec_2016.csv")
//	if errors.Is(err, domain.ErrDataUnavailable) {
//	    // missing file, unreadable file or missing required column
//	}
//
// Rows without a year, platform or global sales figure are skipped, as are
// rows released after the cutoff year. Skips are counted per reason in
// Dataset.SkipReasons.
//
// DatasetCache memoizes loaded datasets by their absolute path. Concurrent
// misses for one path share a single load and failed loads are not cached.
// Datasets handed out by the cache are shared and must not be modified.
package dataprocessing
