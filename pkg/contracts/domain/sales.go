package domain

import (
	"fmt"
	"strings"
	"time"
)

// SalesRecord is one row of the video game sales dataset after filtering
type SalesRecord struct {
	Name        string  `json:"name,omitempty"`
	Platform    string  `json:"platform" validate:"required"`
	Genre       string  `json:"genre"`
	Rating      string  `json:"rating,omitempty"`
	Year        int     `json:"year_of_release" validate:"required"`
	GlobalSales float64 `json:"global_sales" validate:"min=0"`
}

// ManufacturerGroup names a hardware vendor and the platform codes it owns
type ManufacturerGroup struct {
	Name      string   `json:"name" yaml:"name" validate:"required"`
	Platforms []string `json:"platforms" yaml:"platforms" validate:"required,min=1,dive,required"`
}

// YearShareRow is a manufacturer's share of one year's global sales, in percent
type YearShareRow struct {
	Year         int     `json:"Year_of_Release"`
	Manufacturer string  `json:"Company"`
	Share        float64 `json:"Share"`
}

// CategoryDimension selects which column the distribution chart groups by
type CategoryDimension string

const (
	DimensionPlatform CategoryDimension = "Platform"
	DimensionGenre    CategoryDimension = "Genre"
	DimensionRating   CategoryDimension = "Rating"
)

// Dimensions lists the supported category dimensions in display order
var Dimensions = []CategoryDimension{DimensionPlatform, DimensionGenre, DimensionRating}

// ParseCategoryDimension accepts a dimension name case-insensitively
func ParseCategoryDimension(s string) (CategoryDimension, error) {
	for _, d := range Dimensions {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown category dimension %q", s)
}

// Value returns the record's value for the dimension.
func (d CategoryDimension) Value(r SalesRecord) string {
	switch d {
	case DimensionPlatform:
		return r.Platform
	case DimensionGenre:
		return r.Genre
	case DimensionRating:
		return r.Rating
	default:
		return ""
	}
}

// DisplayMode controls whether the distribution covers every top category or one
type DisplayMode string

const (
	ModeAllCategories  DisplayMode = "All Categories"
	ModeSingleCategory DisplayMode = "Single Category"
)

// ParseDisplayMode accepts the display label or the short forms "all" and "single"
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "all categories":
		return ModeAllCategories, nil
	case "single", "single category":
		return ModeSingleCategory, nil
	}
	return "", fmt.Errorf("unknown display mode %q", s)
}

// DistributionRequest carries the user-controlled distribution parameters
type DistributionRequest struct {
	Dimension CategoryDimension `json:"dimension" validate:"required,oneof=Platform Genre Rating"`
	Mode      DisplayMode       `json:"mode" validate:"required,oneof='All Categories' 'Single Category'"`
	Category  string            `json:"category,omitempty" validate:"required_if=Mode 'Single Category'"`
}

// CategoryDensityPoint is one sample of a category's sales density curve
type CategoryDensityPoint struct {
	Category string  `json:"Category_Value"`
	Value    float64 `json:"Global_Sales"`
	Density  float64 `json:"density"`
}

// SeriesType distinguishes observed shares from projected ones
type SeriesType string

const (
	SeriesActual    SeriesType = "Actual"
	SeriesPredicted SeriesType = "Predicted"
)

// ForecastPoint is one point of the combined actual and predicted share series
type ForecastPoint struct {
	Year         int        `json:"Year"`
	Manufacturer string     `json:"Company"`
	Share        float64    `json:"Share"`
	Type         SeriesType `json:"Type"`
}

// TrendFit summarises the linear model fitted for one manufacturer
type TrendFit struct {
	Manufacturer string  `json:"manufacturer"`
	Slope        float64 `json:"slope"`
	Intercept    float64 `json:"intercept"`
	RSquared     float64 `json:"r_squared"`
	Points       int     `json:"points"`
}

// CategoryTotal is a category value with its summed global sales
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Records  int     `json:"records"`
}

// DatasetSummary describes a loaded dataset
type DatasetSummary struct {
	Source     string                    `json:"source"`
	Records    int                       `json:"records"`
	Skipped    int                       `json:"skipped"`
	FirstYear  int                       `json:"first_year"`
	LastYear   int                       `json:"last_year"`
	TotalSales float64                   `json:"total_sales"`
	Distinct   map[CategoryDimension]int `json:"distinct"`
	LoadedAt   time.Time                 `json:"loaded_at"`
}
