package analytics

import (
	"sort"

	"vgpulse/pkg/contracts/domain"
)

// ShareAggregator computes each manufacturer's yearly share of global sales
type ShareAggregator struct {
	manufacturers *ManufacturerMap
}

// NewShareAggregator creates an aggregator over the given mapping
func NewShareAggregator(manufacturers *ManufacturerMap) *ShareAggregator {
	return &ShareAggregator{manufacturers: manufacturers}
}

// Aggregate returns one row per (year, manufacturer) for every year present
// in records, ordered by year then mapping order. Shares are percentages of
// the year's total sales across all platforms, so unmapped platforms lower
// the sum below 100. A year whose total is zero yields zero for everyone.
func (a *ShareAggregator) Aggregate(records []domain.SalesRecord) []domain.YearShareRow {
	if len(records) == 0 {
		return []domain.YearShareRow{}
	}

	platformSales := make(map[int]map[string]float64)
	for _, r := range records {
		byPlatform, ok := platformSales[r.Year]
		if !ok {
			byPlatform = make(map[string]float64)
			platformSales[r.Year] = byPlatform
		}
		byPlatform[r.Platform] += r.GlobalSales
	}

	years := make([]int, 0, len(platformSales))
	for y := range platformSales {
		years = append(years, y)
	}
	sort.Ints(years)

	groups := a.manufacturers.groups
	rows := make([]domain.YearShareRow, 0, len(years)*len(groups))

	for _, year := range years {
		byPlatform := platformSales[year]
		total := yearTotal(byPlatform)

		for _, g := range groups {
			share := 0.0
			if total != 0 {
				for _, p := range g.Platforms {
					share += byPlatform[p] / total
				}
			}
			rows = append(rows, domain.YearShareRow{
				Year:         year,
				Manufacturer: g.Name,
				Share:        share * 100,
			})
		}
	}

	return rows
}

// yearTotal sums platform sales in platform order so repeated runs add the
// same values in the same sequence
func yearTotal(byPlatform map[string]float64) float64 {
	platforms := make([]string, 0, len(byPlatform))
	for p := range byPlatform {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)

	total := 0.0
	for _, p := range platforms {
		total += byPlatform[p]
	}
	return total
}

// SharesByManufacturer splits rows into per-manufacturer series keyed by name
func SharesByManufacturer(rows []domain.YearShareRow) map[string][]domain.YearShareRow {
	out := make(map[string][]domain.YearShareRow)
	for _, r := range rows {
		out[r.Manufacturer] = append(out[r.Manufacturer], r)
	}
	return out
}
