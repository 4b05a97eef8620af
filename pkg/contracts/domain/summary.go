package domain

import "time"

// Summary rows hold means as *float64. A nil mean is the mean of an empty
// group and serializes as JSON null. Sums of empty groups are 0.

// DailyUsageRow aggregates one calendar day.
type DailyUsageRow struct {
	Date         time.Time `json:"date"`
	TotalRentals int64     `json:"total_rentals"`
	AvgTemp      *float64  `json:"avg_temp"`
	AvgHumidity  *float64  `json:"avg_humidity"`
}

// SeasonalUsageRow aggregates one season.
type SeasonalUsageRow struct {
	Season     Season   `json:"season"`
	SeasonName string   `json:"season_name"`
	AvgRentals *float64 `json:"avg_rentals"`
}

// YearlyUsageRow aggregates one dataset year.
type YearlyUsageRow struct {
	YearIndex    int      `json:"year_index"`
	YearLabel    string   `json:"year_label"`
	TotalRentals int64    `json:"total_rentals"`
	AvgTemp      *float64 `json:"avg_temp"`
}

// HolidayUsageRow aggregates holidays or non-holidays.
type HolidayUsageRow struct {
	Holiday     HolidayFlag `json:"holiday"`
	HolidayType string      `json:"holiday_type"`
	AvgRentals  *float64    `json:"avg_rentals"`
}

// WeekdayUsageRow aggregates one day of the week.
type WeekdayUsageRow struct {
	Weekday     Weekday  `json:"weekday"`
	WeekdayName string   `json:"weekday_name"`
	AvgRentals  *float64 `json:"avg_rentals"`
}

// SummaryTables bundles the output of all five aggregators for one range.
type SummaryTables struct {
	Daily    []DailyUsageRow    `json:"daily"`
	Seasonal []SeasonalUsageRow `json:"seasonal"`
	Yearly   []YearlyUsageRow   `json:"yearly"`
	Holiday  []HolidayUsageRow  `json:"holiday"`
	Weekday  []WeekdayUsageRow  `json:"weekday"`
}

// Float returns a pointer to v, for building summary rows.
func Float(v float64) *float64 {
	return &v
}
