package service

import (
	"fmt"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// BuildCalendar enumerates the periods spanning a portfolio, from the period
// containing the earliest construction start through the period containing the
// latest operational end, inclusive. Periods advance by one calendar unit of g.
//
// An empty timeline map fails with *apperrors.EmptyPortfolioError so that a
// portfolio without valid assets never yields an empty "successful" result.
func BuildCalendar(timelines map[string]model.PhaseTimeline, g model.Granularity) (model.Calendar, error) {
	if len(timelines) == 0 {
		return model.Calendar{}, &apperrors.EmptyPortfolioError{}
	}
	switch g {
	case model.Monthly, model.Quarterly, model.Yearly:
	default:
		return model.Calendar{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidGranularity, g)
	}

	var bounds model.CalendarBounds
	first := true
	for _, tl := range timelines {
		if first {
			bounds = model.CalendarBounds{
				EarliestConstructionStart: tl.ConstructionStart,
				EarliestOperationalStart:  tl.OperationalStart,
				LatestOperationalEnd:      tl.OperationalEnd,
			}
			first = false
			continue
		}
		if tl.ConstructionStart.Before(bounds.EarliestConstructionStart) {
			bounds.EarliestConstructionStart = tl.ConstructionStart
		}
		if tl.OperationalStart.Before(bounds.EarliestOperationalStart) {
			bounds.EarliestOperationalStart = tl.OperationalStart
		}
		if tl.OperationalEnd.After(bounds.LatestOperationalEnd) {
			bounds.LatestOperationalEnd = tl.OperationalEnd
		}
	}

	last := model.PeriodFor(g, bounds.LatestOperationalEnd)
	periods := make([]model.Period, 0, monthsBetween(bounds.EarliestConstructionStart, bounds.LatestOperationalEnd)/g.MonthsPerPeriod()+1)
	for p := model.PeriodFor(g, bounds.EarliestConstructionStart); !p.Start.After(last.Start); p = p.Next() {
		periods = append(periods, p)
	}

	cal := model.Calendar{
		Granularity: g,
		Periods:     periods,
		Bounds:      bounds,
		Stats:       calendarStats(periods, bounds, len(timelines)),
	}
	return cal, nil
}

func calendarStats(periods []model.Period, bounds model.CalendarBounds, assets int) model.CalendarStats {
	stats := model.CalendarStats{
		PeriodCount:        len(periods),
		AssetCount:         assets,
		TotalMonths:        monthsBetween(bounds.EarliestConstructionStart, bounds.LatestOperationalEnd),
		ConstructionMonths: monthsBetween(bounds.EarliestConstructionStart, bounds.EarliestOperationalStart),
		OperationalMonths:  monthsBetween(bounds.EarliestOperationalStart, bounds.LatestOperationalEnd),
	}
	if len(periods) > 0 {
		stats.FirstPeriod = periods[0].Key
		stats.LastPeriod = periods[len(periods)-1].Key
	}
	for _, p := range periods {
		if p.Anchor().Before(bounds.EarliestOperationalStart) {
			stats.ConstructionDominantPeriods++
		} else {
			stats.OperationsDominantPeriods++
		}
	}
	return stats
}

// PortfolioBounds converts calendar bounds into the reported diagnostics block.
func PortfolioBounds(cal model.Calendar) *model.PortfolioBounds {
	return &model.PortfolioBounds{
		EarliestConstructionStart: cal.Bounds.EarliestConstructionStart,
		LatestOperationalEnd:      cal.Bounds.LatestOperationalEnd,
		TotalMonths:               cal.Stats.TotalMonths,
		ConstructionMonths:        cal.Stats.ConstructionMonths,
		OperationalMonths:         cal.Stats.OperationalMonths,
	}
}

// spanYears is the calendar's length in years, used for annual averages.
func spanYears(cal model.Calendar) float64 {
	if len(cal.Periods) == 0 {
		return 0
	}
	start := cal.Periods[0].Start
	end := cal.Periods[len(cal.Periods)-1].End
	return end.Sub(start).Hours() / 24 / 365.25
}
