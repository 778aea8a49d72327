package exporter

import (
	"math"
	"strconv"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatPrecise keeps six significant digits for values such as densities
// that are too small for fixed decimals.
func formatPrecise(f float64) string {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return formatFloat(f)
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatCell renders one table cell as CSV text
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return formatInt(int64(x))
	case int64:
		return formatInt(x)
	case float64:
		return formatFloat(x)
	case Precise:
		return formatPrecise(float64(x))
	default:
		return ""
	}
}

// Precise marks a float cell that must not be rounded to 2 decimals
type Precise float64
