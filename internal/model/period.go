package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
)

// Granularity is the length of one calendar period.
type Granularity string

const (
	Monthly   Granularity = "monthly"
	Quarterly Granularity = "quarterly"
	Yearly    Granularity = "yearly"
)

// anchorDay is the day of the period's first month used as its representative instant.
const anchorDay = 15

// ParseGranularity accepts the interval names used by clients.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "month":
		return Monthly, nil
	case "quarterly", "quarter":
		return Quarterly, nil
	case "yearly", "annual", "annually", "year":
		return Yearly, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidGranularity, s)
}

// MonthsPerPeriod returns 1, 3 or 12.
func (g Granularity) MonthsPerPeriod() int {
	switch g {
	case Quarterly:
		return 3
	case Yearly:
		return 12
	default:
		return 1
	}
}

// Period is one bucket of the portfolio calendar. Start is inclusive and End exclusive.
type Period struct {
	Key          string      `json:"key"`
	Granularity  Granularity `json:"granularity"`
	Start        time.Time   `json:"start"`
	End          time.Time   `json:"end"`
	Year         int         `json:"year"`
	Quarter      int         `json:"quarter,omitempty"`
	Month        *int        `json:"month,omitempty"`
	YearFraction float64     `json:"yearFraction"`
}

// PeriodFor returns the period of granularity g containing t.
func PeriodFor(g Granularity, t time.Time) Period {
	t = t.UTC()
	year := t.Year()
	month := int(t.Month())

	switch g {
	case Quarterly:
		q := (month-1)/3 + 1
		start := time.Date(year, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return Period{
			Key:          fmt.Sprintf("%d-Q%d", year, q),
			Granularity:  Quarterly,
			Start:        start,
			End:          start.AddDate(0, 3, 0),
			Year:         year,
			Quarter:      q,
			YearFraction: 0.25,
		}
	case Yearly:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return Period{
			Key:          fmt.Sprintf("%d", year),
			Granularity:  Yearly,
			Start:        start,
			End:          start.AddDate(1, 0, 0),
			Year:         year,
			YearFraction: 1,
		}
	default:
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		m := month
		return Period{
			Key:          fmt.Sprintf("%d-%02d", year, month),
			Granularity:  Monthly,
			Start:        start,
			End:          start.AddDate(0, 1, 0),
			Year:         year,
			Quarter:      (month-1)/3 + 1,
			Month:        &m,
			YearFraction: 1.0 / 12.0,
		}
	}
}

// Anchor is the instant that represents the whole period for phase classification:
// the 15th of its first month.
func (p Period) Anchor() time.Time {
	return time.Date(p.Start.Year(), p.Start.Month(), anchorDay, 0, 0, 0, 0, time.UTC)
}

// Months returns the number of calendar months the period spans.
func (p Period) Months() int {
	return p.Granularity.MonthsPerPeriod()
}

// MonthStarts returns the first day of every month in the period, in order.
func (p Period) MonthStarts() []time.Time {
	out := make([]time.Time, 0, p.Months())
	for m := p.Start; m.Before(p.End); m = m.AddDate(0, 1, 0) {
		out = append(out, m)
	}
	return out
}

// Next returns the following period of the same granularity.
func (p Period) Next() Period {
	return PeriodFor(p.Granularity, p.End)
}

// Prev returns the preceding period of the same granularity.
func (p Period) Prev() Period {
	return PeriodFor(p.Granularity, p.Start.AddDate(0, 0, -1))
}

// Calendar is the ordered list of periods covering a portfolio's life.
type Calendar struct {
	Granularity Granularity    `json:"granularity"`
	Periods     []Period       `json:"periods"`
	Bounds      CalendarBounds `json:"bounds"`
	Stats       CalendarStats  `json:"stats"`
}

// CalendarBounds are the portfolio-wide phase boundaries the calendar was built from.
type CalendarBounds struct {
	EarliestConstructionStart time.Time `json:"earliestConstructionStart"`
	EarliestOperationalStart  time.Time `json:"earliestOperationalStart"`
	LatestOperationalEnd      time.Time `json:"latestOperationalEnd"`
}

// CalendarStats summarises a calendar for diagnostic reporting. The
// construction/operations split is portfolio-wide and never feeds per-asset
// cash flows.
type CalendarStats struct {
	PeriodCount int    `json:"periodCount"`
	AssetCount  int    `json:"assetCount"`
	FirstPeriod string `json:"firstPeriod"`
	LastPeriod  string `json:"lastPeriod"`

	// Periods whose anchor falls before / on or after the earliest operations start.
	ConstructionDominantPeriods int `json:"constructionDominantPeriods"`
	OperationsDominantPeriods   int `json:"operationsDominantPeriods"`

	TotalMonths        int `json:"totalMonths"`
	ConstructionMonths int `json:"constructionMonths"`
	OperationalMonths  int `json:"operationalMonths"`
}
