package domain

import (
	"fmt"
	"time"
)

// ViewID identifies one of the fixed dashboard views.
type ViewID string

const (
	ViewDaily    ViewID = "daily"
	ViewSeasonal ViewID = "seasonal"
	ViewHoliday  ViewID = "holiday"
	ViewWeekday  ViewID = "weekday"
	ViewYearly   ViewID = "yearly"
)

// Views lists the views in display order.
var Views = []ViewID{ViewDaily, ViewSeasonal, ViewHoliday, ViewWeekday, ViewYearly}

// ParseViewID validates a view name from a URL or flag.
func ParseViewID(s string) (ViewID, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// ChartKind is the kind of chart a client should draw for a section.
type ChartKind string

const (
	ChartLine          ChartKind = "line"
	ChartHorizontalBar ChartKind = "horizontal_bar"
	ChartVerticalBar   ChartKind = "vertical_bar"
)

// ChartPoint is one category or date with its value. Nil values are gaps.
type ChartPoint struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// ChartSpec describes a chart without rendering it.
type ChartSpec struct {
	Kind   ChartKind    `json:"kind"`
	Title  string       `json:"title"`
	XLabel string       `json:"x_label"`
	YLabel string       `json:"y_label"`
	Points []ChartPoint `json:"points"`
}

// Metric is one headline statistic. Value is the display string, Raw the
// number behind it (nil when undefined).
type Metric struct {
	Label string   `json:"label"`
	Value string   `json:"value"`
	Raw   *float64 `json:"raw"`
}

// Section is one rendered dashboard view.
type Section struct {
	View       ViewID    `json:"view"`
	Subheading string    `json:"subheading"`
	Metrics    []Metric  `json:"metrics,omitempty"`
	Chart      ChartSpec `json:"chart"`
	Rows       any       `json:"rows"`
}

// DateRange is the effective filter window together with the dataset bounds.
type DateRange struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	MinDate     time.Time `json:"min_date"`
	MaxDate     time.Time `json:"max_date"`
	RecordCount int       `json:"record_count"`
}

// ViewModel is everything a client needs to draw the dashboard for one range.
type ViewModel struct {
	Header   string        `json:"header"`
	Caption  string        `json:"caption"`
	Range    DateRange     `json:"range"`
	Sections []Section     `json:"sections"`
	Tables   SummaryTables `json:"-"`
}

// Section returns the section for a view, or nil if absent.
func (vm *ViewModel) Section(id ViewID) *Section {
	for i := range vm.Sections {
		if vm.Sections[i].View == id {
			return &vm.Sections[i]
		}
	}
	return nil
}

// Headline returns the daily section's metrics.
func (vm *ViewModel) Headline() []Metric {
	if s := vm.Section(ViewDaily); s != nil {
		return s.Metrics
	}
	return nil
}
