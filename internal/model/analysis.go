package model

import "time"

// Scenario selects a stress case for the revenue model.
type Scenario string

const (
	ScenarioBase   Scenario = "base"
	ScenarioWorst  Scenario = "worst"
	ScenarioVolume Scenario = "volume"
	ScenarioPrice  Scenario = "price"
)

// Valid reports whether s is a known scenario. The empty scenario means base.
func (s Scenario) Valid() bool {
	switch s {
	case "", ScenarioBase, ScenarioWorst, ScenarioVolume, ScenarioPrice:
		return true
	}
	return false
}

// RevenueFilter restricts reported revenue to one product.
type RevenueFilter string

const (
	RevenueAll    RevenueFilter = "all"
	RevenueEnergy RevenueFilter = "energy"
	RevenueGreen  RevenueFilter = "green"
)

// Valid reports whether f is a known filter. The empty filter means all.
func (f RevenueFilter) Valid() bool {
	switch f {
	case "", RevenueAll, RevenueEnergy, RevenueGreen:
		return true
	}
	return false
}

// EscalationSettings control merchant price escalation. They are passed through
// to the price lookup untouched.
type EscalationSettings struct {
	Enabled           bool    `json:"enabled"`
	Rate              float64 `json:"rate"` // % per year
	ReferenceYear     int     `json:"referenceYear"`
	ApplyToStorage    bool    `json:"applyToStorage"`
	ApplyToRenewables bool    `json:"applyToRenewables"`
}

// AnalysisConfig are the options of one build.
type AnalysisConfig struct {
	IntervalType  Granularity         `json:"intervalType"`
	StartYear     int                 `json:"startYear,omitempty"`
	Periods       int                 `json:"periods"` // horizon in years
	Scenario      Scenario            `json:"scenario,omitempty"`
	RevenueFilter RevenueFilter       `json:"revenueFilter,omitempty"`
	Escalation    *EscalationSettings `json:"escalationSettings,omitempty"`
}

// Calculation is a stored build result.
type Calculation struct {
	ID          string         `json:"id"`
	PortfolioID string         `json:"portfolioId"`
	Options     AnalysisConfig `json:"options"`
	Result      *TimeSeries    `json:"result"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// CalculationResponse is returned after a build is stored.
type CalculationResponse struct {
	CalculationID string      `json:"calculationId"`
	ExportToken   string      `json:"exportToken"`
	Result        *TimeSeries `json:"result"`
}
