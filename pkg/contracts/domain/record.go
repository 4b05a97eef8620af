package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Season is the meteorological season code used by the rental dataset.
type Season int

const (
	SeasonSpring Season = 1
	SeasonSummer Season = 2
	SeasonFall   Season = 3
	SeasonWinter Season = 4
)

// Seasons lists every season key in key order.
var Seasons = []Season{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter}

var seasonNames = map[Season]string{
	SeasonSpring: "Spring",
	SeasonSummer: "Summer",
	SeasonFall:   "Fall",
	SeasonWinter: "Winter",
}

// String returns the display label of the season.
func (s Season) String() string {
	if name, ok := seasonNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Season(%d)", int(s))
}

// Valid reports whether s is one of the four known seasons.
func (s Season) Valid() bool {
	_, ok := seasonNames[s]
	return ok
}

// HolidayFlag marks whether a day is a public holiday.
type HolidayFlag int

const (
	NonHoliday HolidayFlag = 0
	Holiday    HolidayFlag = 1
)

// HolidayFlags lists both holiday keys in key order.
var HolidayFlags = []HolidayFlag{NonHoliday, Holiday}

var holidayNames = map[HolidayFlag]string{
	NonHoliday: "Non-Holiday",
	Holiday:    "Holiday",
}

func (h HolidayFlag) String() string {
	if name, ok := holidayNames[h]; ok {
		return name
	}
	return fmt.Sprintf("HolidayFlag(%d)", int(h))
}

func (h HolidayFlag) Valid() bool {
	_, ok := holidayNames[h]
	return ok
}

// Weekday is the day of week with 0 for Sunday, matching time.Weekday.
type Weekday int

// Weekdays lists all seven weekday keys, Sunday first.
var Weekdays = []Weekday{0, 1, 2, 3, 4, 5, 6}

func (w Weekday) String() string {
	if w.Valid() {
		return time.Weekday(w).String()
	}
	return fmt.Sprintf("Weekday(%d)", int(w))
}

func (w Weekday) Valid() bool {
	return w >= 0 && w <= 6
}

// YearIndexes lists the two year keys of the dataset.
var YearIndexes = []int{0, 1}

// BaseYear is the calendar year of year index 0.
const BaseYear = 2011

// YearLabel returns the calendar year for a dataset year index.
func YearLabel(yearIndex int) string {
	return fmt.Sprintf("%d", BaseYear+yearIndex)
}

// Record is one row of daily rental data.
type Record struct {
	Date        time.Time   `json:"date" validate:"required"`
	Season      Season      `json:"season" validate:"min=1,max=4"`
	YearIndex   int         `json:"year_index" validate:"min=0,max=1"`
	Holiday     HolidayFlag `json:"holiday" validate:"min=0,max=1"`
	Weekday     Weekday     `json:"weekday" validate:"min=0,max=6"`
	Temperature float64     `json:"temperature"`
	Humidity    float64     `json:"humidity"`
	RentalCount int64       `json:"rental_count" validate:"min=0"`
}

// ErrDuplicateDate is returned when two records share the same calendar date.
var ErrDuplicateDate = errors.New("duplicate record date")

// ErrEmptyTable is returned when a table is built from zero records.
var ErrEmptyTable = errors.New("record table is empty")

// RecordTable is the immutable, date-ordered set of records loaded at startup.
// Accessors hand out copies so callers can never change the shared table.
type RecordTable struct {
	records []Record
}

// NewRecordTable sorts a copy of records by date and rejects duplicate dates.
// Record dates are truncated to UTC midnight.
func NewRecordTable(records []Record) (*RecordTable, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	sorted := make([]Record, len(records))
	for i, r := range records {
		r.Date = TruncateDay(r.Date)
		sorted[i] = r
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, sorted[i].Date.Format(DateLayout))
		}
	}

	return &RecordTable{records: sorted}, nil
}

// Records returns a copy of the table rows in date order.
func (t *RecordTable) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Len returns the number of records.
func (t *RecordTable) Len() int {
	return len(t.records)
}

// MinDate returns the earliest record date.
func (t *RecordTable) MinDate() time.Time {
	return t.records[0].Date
}

// MaxDate returns the latest record date.
func (t *RecordTable) MaxDate() time.Time {
	return t.records[len(t.records)-1].Date
}

// DateLayout is the canonical day format used on the wire and in exports.
const DateLayout = "2006-01-02"

// TruncateDay drops the time of day and normalizes to UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
