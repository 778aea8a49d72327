package dataprocessing

import (
	"vgpulse/pkg/contracts/domain"
)

// Summarize describes a loaded dataset: record count, year span, total sales
// and the number of distinct values per category dimension.
func Summarize(ds *Dataset) domain.DatasetSummary {
	summary := domain.DatasetSummary{
		Distinct: make(map[domain.CategoryDimension]int, len(domain.Dimensions)),
	}
	if ds == nil {
		return summary
	}

	summary.Source = ds.Source
	summary.Records = len(ds.Records)
	summary.Skipped = ds.Skipped
	summary.LoadedAt = ds.LoadedAt

	distinct := make(map[domain.CategoryDimension]map[string]struct{}, len(domain.Dimensions))
	for _, d := range domain.Dimensions {
		distinct[d] = make(map[string]struct{})
	}

	for i, r := range ds.Records {
		if i == 0 || r.Year < summary.FirstYear {
			summary.FirstYear = r.Year
		}
		if r.Year > summary.LastYear {
			summary.LastYear = r.Year
		}
		summary.TotalSales += r.GlobalSales

		for _, d := range domain.Dimensions {
			if v := d.Value(r); v != "" {
				distinct[d][v] = struct{}{}
			}
		}
	}

	for d, values := range distinct {
		summary.Distinct[d] = len(values)
	}

	return summary
}
