package model

import "time"

// CalculationEvent is published when a build has been stored, for downstream
// project-finance and sensitivity consumers.
type CalculationEvent struct {
	CalculationID  string      `json:"calculationId"`
	PortfolioID    string      `json:"portfolioId"`
	IntervalType   Granularity `json:"intervalType"`
	PeriodCount    int         `json:"periodCount"`
	FirstPeriod    string      `json:"firstPeriod"`
	LastPeriod     string      `json:"lastPeriod"`
	ValidAssets    int         `json:"validAssets"`
	ExcludedAssets int         `json:"excludedAssets"`
	CellErrors     int         `json:"cellErrors"`
	Summary        Summary     `json:"summary"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// NewCalculationEvent describes a stored calculation.
func NewCalculationEvent(c Calculation) CalculationEvent {
	e := CalculationEvent{
		CalculationID: c.ID,
		PortfolioID:   c.PortfolioID,
		CreatedAt:     c.CreatedAt,
	}
	if ts := c.Result; ts != nil {
		e.IntervalType = ts.IntervalType
		e.PeriodCount = len(ts.Periods)
		if n := len(ts.Periods); n > 0 {
			e.FirstPeriod = ts.Periods[0].Period.Key
			e.LastPeriod = ts.Periods[n-1].Period.Key
		}
		e.ValidAssets = ts.Diagnostics.ValidAssets
		e.ExcludedAssets = ts.Diagnostics.ExcludedAssets
		e.CellErrors = len(ts.Diagnostics.CellErrors)
		e.Summary = ts.Summary
	}
	return e
}
