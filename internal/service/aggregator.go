package service

import (
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// UnitScale converts $M of revenue per MWh into $/MWh.
const UnitScale = 1e6

// PortfolioTotals accumulates asset results for a single period. Create one
// per period; counts are never carried across periods.
//
// Fold is plain summation, so folding order does not change the result beyond
// floating-point rounding. Derived metrics are only computed in Finalize.
type PortfolioTotals struct {
	agg model.PortfolioAggregate
}

// NewPortfolioTotals returns empty totals.
func NewPortfolioTotals() *PortfolioTotals {
	return &PortfolioTotals{}
}

// Fold adds one asset's period result. The result's phase decides which
// subtotals it may touch: construction results only add investment, and
// operations results only add revenue and operating cost, regardless of what
// else the result carries.
func (t *PortfolioTotals) Fold(r model.AssetPeriodResult) {
	a := &t.agg
	switch r.Phase {
	case model.PhaseConstruction:
		a.ConstructionAssets++
		if c := r.Construction; c != nil {
			a.TotalCapexDraw += c.CapexDraw
			a.TotalEquity += c.EquityDraw
			a.TotalDebt += c.DebtDraw
			a.ConstructionCumulativeInvestment += c.CumulativeInvestment
		}
	case model.PhaseOperations:
		a.OperationalAssets++
		if rev := r.Revenue; rev != nil {
			a.TotalRevenue += rev.Total
			a.ContractedGreen += rev.ContractedGreen
			a.ContractedEnergy += rev.ContractedEnergy
			a.MerchantGreen += rev.MerchantGreen
			a.MerchantEnergy += rev.MerchantEnergy
			a.TotalVolume += rev.Volume
		}
		a.TotalOperatingCost += r.OperatingCost
	case model.PhasePreConstruction:
		a.PreConstructionAssets++
	case model.PhasePostOperations:
		a.PostOperationsAssets++
	case model.PhaseError:
		a.ErrorAssets++
	}
}

// Finalize returns the aggregate with derived metrics computed from the
// accumulated totals.
func (t *PortfolioTotals) Finalize() model.PortfolioAggregate {
	a := t.agg
	a.NetCashFlow = a.TotalRevenue - a.TotalCapexDraw
	a.CFADS = a.TotalRevenue - a.TotalOperatingCost
	if a.TotalVolume > 0 {
		a.WeightedAvgPrice = a.TotalRevenue * UnitScale / a.TotalVolume
	}
	if a.TotalRevenue > 0 {
		a.ContractedPercentage = (a.ContractedGreen + a.ContractedEnergy) / a.TotalRevenue * 100
	}
	return a
}
