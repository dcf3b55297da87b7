package service

import (
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// Summarize derives whole-run totals from the period records.
//
// AverageAnnualRevenue divides total revenue by the number of years in which at
// least one asset was operating, so a long construction lead-in does not dilute it.
// Values are rounded for presentation.
func Summarize(portfolio model.Portfolio, timelines map[string]model.PhaseTimeline, cal model.Calendar, records []model.PortfolioPeriodRecord) model.Summary {
	s := model.Summary{
		AssetCount:  len(timelines),
		PeriodCount: len(records),
	}
	for id := range timelines {
		s.TotalCapacity += portfolio.Assets[id].Capacity
	}

	var contracted, operatingYears float64
	for _, r := range records {
		a := r.Aggregate
		s.TotalRevenue += a.TotalRevenue
		contracted += a.ContractedGreen + a.ContractedEnergy
		s.TotalCapex += a.TotalCapexDraw
		s.TotalEquity += a.TotalEquity
		s.TotalDebt += a.TotalDebt
		s.TotalOperatingCost += a.TotalOperatingCost
		s.TotalNetCashFlow += a.NetCashFlow
		if a.OperationalAssets > 0 {
			operatingYears += r.Period.YearFraction
		}
	}
	if operatingYears == 0 {
		operatingYears = spanYears(cal)
	}

	s.AverageAnnualRevenue = round(safeDivide(s.TotalRevenue, operatingYears))
	if s.TotalRevenue > 0 {
		s.ContractedPercentage = round(contracted / s.TotalRevenue * 100)
		s.MerchantPercentage = round(100 - contracted/s.TotalRevenue*100)
	}
	s.TotalRevenue = round(s.TotalRevenue)
	s.TotalCapex = round(s.TotalCapex)
	s.TotalEquity = round(s.TotalEquity)
	s.TotalDebt = round(s.TotalDebt)
	s.TotalOperatingCost = round(s.TotalOperatingCost)
	s.TotalNetCashFlow = round(s.TotalNetCashFlow)
	s.TotalCapacity = round(s.TotalCapacity)
	return s
}
