package exporter

import (
	"fmt"
	"strconv"
	"time"

	"bikepulse/pkg/contracts/domain"
)

// formatFloat formats a float64 value with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatNullable formats a mean; undefined means become empty cells.
func formatNullable(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// cellValue converts a nullable mean for a spreadsheet cell. Nil leaves the
// cell blank.
func cellValue(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
