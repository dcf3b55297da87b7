package service

import (
	"time"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// Classify places an asset in a period. Every comparison uses the period's
// anchor (the 15th of its first month), so an asset whose construction starts
// on the 1st is in construction for that month and one starting on the 20th is
// not. The operational end is exclusive: an anchor equal to it is post-operations.
//
// Classify is total; every (period, timeline) pair yields exactly one phase,
// and across an ordered calendar phases only move forward.
func Classify(p model.Period, tl model.PhaseTimeline) model.PhaseClassification {
	at := p.Anchor()

	switch {
	case at.Before(tl.ConstructionStart):
		return model.PhaseClassification{
			Phase:                model.PhasePreConstruction,
			DaysRemainingInPhase: daysBetween(at, tl.ConstructionStart),
		}
	case at.Before(tl.OperationalStart):
		return model.PhaseClassification{
			Phase:                  model.PhaseConstruction,
			IsConstructionPhase:    true,
			DaysIntoPhase:          daysBetween(tl.ConstructionStart, at),
			DaysRemainingInPhase:   daysBetween(at, tl.OperationalStart),
			MonthsIntoConstruction: monthsIntoConstruction(p, tl),
		}
	case at.Before(tl.OperationalEnd):
		return model.PhaseClassification{
			Phase:                model.PhaseOperations,
			IsOperationalPhase:   true,
			DaysIntoPhase:        daysBetween(tl.OperationalStart, at),
			DaysRemainingInPhase: daysBetween(at, tl.OperationalEnd),
		}
	default:
		return model.PhaseClassification{
			Phase:         model.PhasePostOperations,
			DaysIntoPhase: daysBetween(tl.OperationalEnd, at),
		}
	}
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// monthAnchor is the 15th of t's month.
func monthAnchor(t time.Time) time.Time {
	return model.PeriodFor(model.Monthly, t).Anchor()
}

// constructionMonths returns the month index of the first construction month
// and the number of construction months. A construction month is a calendar
// month whose anchor lies in [ConstructionStart, OperationalStart), which is
// exactly the set of months Classify reports as construction at monthly
// granularity.
func constructionMonths(tl model.PhaseTimeline) (first, count int) {
	first = monthIndex(tl.ConstructionStart)
	if monthAnchor(tl.ConstructionStart).Before(tl.ConstructionStart) {
		first++
	}
	last := monthIndex(tl.OperationalStart)
	if !monthAnchor(tl.OperationalStart).Before(tl.OperationalStart) {
		last--
	}
	if last < first {
		return first, 0
	}
	return first, last - first + 1
}

// monthsIntoConstruction is the 1-indexed construction month of the period's first month.
func monthsIntoConstruction(p model.Period, tl model.PhaseTimeline) int {
	first, _ := constructionMonths(tl)
	return monthIndex(p.Start) - first + 1
}
