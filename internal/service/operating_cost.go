package service

import (
	"math"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// ComputeOperatingCost returns the asset's opex in $M for an operations period:
// the annual operatingCosts pro-rated by the period's year fraction and
// escalated by operatingCostEscalation % per year since the COD year.
// Periods outside operations cost nothing.
func ComputeOperatingCost(asset model.AssetConfig, period model.Period, tl model.PhaseTimeline, costs model.PortfolioConstants) float64 {
	if Classify(period, tl).Phase != model.PhaseOperations {
		return 0
	}
	cost := costs.CostFor(asset.Name)
	if cost.OperatingCosts <= 0 {
		return 0
	}
	years := period.Year - tl.OperationalStart.Year()
	if years < 0 {
		years = 0
	}
	escalation := math.Pow(1+cost.OperatingCostEscalation/100, float64(years))
	return cost.OperatingCosts * period.YearFraction * escalation
}
