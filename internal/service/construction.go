package service

import (
	"fmt"
	"math"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// DefaultGearing is the debt fraction used when an asset has no calculatedGearing.
const DefaultGearing = 0.7

// DefaultUnitCosts is the capex in $M per MW used when an asset has no capex entry.
var DefaultUnitCosts = map[model.AssetType]float64{
	model.AssetSolar:   1.2,
	model.AssetWind:    2.5,
	model.AssetStorage: 1.6,
	model.AssetBattery: 1.6,
	model.AssetHydro:   4.0,
	model.AssetGas:     1.5,
}

// fallbackUnitCost covers asset types missing from DefaultUnitCosts.
const fallbackUnitCost = 2.0

// ResolveCapex returns the asset's total capex in $M and where it came from.
func ResolveCapex(asset model.AssetConfig, cost model.AssetCost) (float64, string) {
	if cost.Capex != nil {
		return math.Max(0, *cost.Capex), "asset"
	}
	unit, ok := DefaultUnitCosts[asset.Type]
	if !ok {
		unit = fallbackUnitCost
	}
	return unit * asset.Capacity, "default"
}

// ResolveGearing returns the debt fraction in [0, 1]. Values above 1 are read as percentages.
func ResolveGearing(cost model.AssetCost) float64 {
	if cost.CalculatedGearing == nil {
		return DefaultGearing
	}
	g := *cost.CalculatedGearing
	if g > 1 {
		g /= 100
	}
	return math.Min(1, math.Max(0, g))
}

// ComputeConstructionPeriod computes one asset's capital draw for a period.
//
// Draws are derived from a cumulative schedule over the asset's construction
// months (see constructionMonths):
//   - straight-line: cumulative(k) = capex * k / N, clamped to [0, capex] and
//     exactly capex from month N on
//   - upfront: cumulative(k) = capex for k >= 1
//
// A period's draw is cumulative at its last month minus cumulative at the end
// of the previous period, so the draws of all construction periods sum to capex
// at any granularity. The period must not be computed from a running
// accumulator; the result depends only on the arguments.
//
// Parameters:
//   - asset: The asset record (type and capacity feed the default capex)
//   - period: A period classified as construction for this asset
//   - tl: The asset's timeline; nil fails with apperrors.ErrMissingTimeline
//   - costs: Portfolio constants holding the per-asset cost lookup
func ComputeConstructionPeriod(asset model.AssetConfig, period model.Period, tl *model.PhaseTimeline, costs model.PortfolioConstants) (model.ConstructionResult, error) {
	if tl == nil {
		return model.ConstructionResult{}, fmt.Errorf("%w: %s", apperrors.ErrMissingTimeline, asset.Name)
	}

	cost := costs.CostFor(asset.Name)
	capex, source := ResolveCapex(asset, cost)
	gearing := ResolveGearing(cost)
	timing := model.TimingStraightLine
	if cost.EquityTimingUpfront {
		timing = model.TimingUpfront
	}

	_, months := constructionMonths(*tl)
	result := model.ConstructionResult{
		TotalCapex:         capex,
		Gearing:            gearing,
		ConstructionMonths: months,
		Timing:             timing,
		CapexSource:        source,
	}

	class := Classify(period, *tl)
	if class.Phase != model.PhaseConstruction {
		return result, nil
	}

	cumulative := func(k int) float64 {
		return cumulativeCapex(capex, k, months, timing)
	}

	firstIdx := class.MonthsIntoConstruction
	lastIdx := firstIdx + period.Months() - 1
	prevIdx := 0
	if Classify(period.Prev(), *tl).Phase == model.PhaseConstruction {
		prevIdx = firstIdx - 1
	}

	draw := cumulative(lastIdx) - cumulative(prevIdx)
	result.CapexDraw = draw
	result.DebtDraw = draw * gearing
	result.EquityDraw = draw - result.DebtDraw
	result.CumulativeInvestment = cumulative(lastIdx)
	result.ProgressRatio = safeDivide(result.CumulativeInvestment, capex)
	result.MonthsIntoConstruction = firstIdx
	return result, nil
}

// cumulativeCapex is the capex drawn by the end of construction month k (1-indexed).
func cumulativeCapex(capex float64, k, months int, timing model.TimingPolicy) float64 {
	if k <= 0 {
		return 0
	}
	if timing == model.TimingUpfront {
		return capex
	}
	if months <= 0 || k >= months {
		return capex
	}
	return math.Min(capex, float64(k)*capex/float64(months))
}
