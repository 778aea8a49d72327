package exporter

import (
	"vgpulse/pkg/contracts/domain"
)

// Table is one exportable result table. Cells hold string, int, float64 or
// Precise values.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// Records renders the rows as CSV text
func (t Table) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = formatCell(v)
		}
		out[i] = rec
	}
	return out
}

// Table names
const (
	TableMarketShare  = "market_share"
	TableDistribution = "distribution"
	TableCategories   = "categories"
	TableForecast     = "forecast"
	TableTrendFits    = "trend_fits"
)

// MarketShareTable lists manufacturer shares per year
func MarketShareTable(rows []domain.YearShareRow) Table {
	t := Table{Name: TableMarketShare, Headers: []string{"Year_of_Release", "Company", "Share"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.Year, r.Manufacturer, r.Share})
	}
	return t
}

// DistributionTable lists the density curve points
func DistributionTable(points []domain.CategoryDensityPoint) Table {
	t := Table{Name: TableDistribution, Headers: []string{"Category_Value", "Global_Sales", "density"}}
	for _, p := range points {
		t.Rows = append(t.Rows, []interface{}{p.Category, Precise(p.Value), Precise(p.Density)})
	}
	return t
}

// CategoriesTable lists category totals in rank order
func CategoriesTable(totals []domain.CategoryTotal) Table {
	t := Table{Name: TableCategories, Headers: []string{"Rank", "Category", "Global_Sales", "Records"}}
	for i, c := range totals {
		t.Rows = append(t.Rows, []interface{}{i + 1, c.Category, c.Total, c.Records})
	}
	return t
}

// ForecastTable lists the actual and predicted share series
func ForecastTable(points []domain.ForecastPoint) Table {
	t := Table{Name: TableForecast, Headers: []string{"Year", "Company", "Share", "Type"}}
	for _, p := range points {
		t.Rows = append(t.Rows, []interface{}{p.Year, p.Manufacturer, p.Share, string(p.Type)})
	}
	return t
}

// TrendFitsTable lists the fitted trend lines
func TrendFitsTable(fits []domain.TrendFit) Table {
	t := Table{Name: TableTrendFits, Headers: []string{"Company", "Slope", "Intercept", "R_Squared", "Points"}}
	for _, f := range fits {
		t.Rows = append(t.Rows, []interface{}{f.Manufacturer, Precise(f.Slope), Precise(f.Intercept), Precise(f.RSquared), f.Points})
	}
	return t
}

// Report gathers the dashboard tables for a workbook export
type Report struct {
	MarketShare  []domain.YearShareRow
	Categories   []domain.CategoryTotal
	Distribution []domain.CategoryDensityPoint
	Forecast     []domain.ForecastPoint
	Fits         []domain.TrendFit
}

// Tables returns the report tables in workbook order
func (r Report) Tables() []Table {
	return []Table{
		MarketShareTable(r.MarketShare),
		CategoriesTable(r.Categories),
		DistributionTable(r.Distribution),
		ForecastTable(r.Forecast),
		TrendFitsTable(r.Fits),
	}
}
