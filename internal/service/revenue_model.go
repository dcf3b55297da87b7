package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// Revenue model defaults.
const (
	HoursPerYear                = 8760
	DaysPerYear                 = 365.25
	DefaultVolumeLossAdjustment = 95.0 // %
	DefaultAnnualDegradation    = 0.5  // %/yr
	DefaultCapacityFactor       = 0.25
	DefaultStressPercentage     = 20.0
	DefaultStorageDuration      = 2.0 // hours
)

// DefaultCapacityFactors by asset type and state, used when an asset has no
// quarterly capacity factors.
var DefaultCapacityFactors = map[model.AssetType]map[string]float64{
	model.AssetSolar: {"QLD": 0.29, "NSW": 0.28, "VIC": 0.25, "SA": 0.27, "WA": 0.26, "TAS": 0.23},
	model.AssetWind:  {"QLD": 0.32, "NSW": 0.35, "VIC": 0.38, "SA": 0.40, "WA": 0.37, "TAS": 0.42},
}

// RevenueModel is the default RevenueCalculator: generation or storage
// throughput priced through active contracts first and merchant prices for the
// uncontracted share. All revenue is in $M.
type RevenueModel struct {
	prices PriceLookup
}

// NewRevenueModel creates a RevenueModel that prices merchant volume through prices.
func NewRevenueModel(prices PriceLookup) *RevenueModel {
	return &RevenueModel{prices: prices}
}

// ComputeAssetPeriodRevenue implements RevenueCalculator.
func (m *RevenueModel) ComputeAssetPeriodRevenue(ctx context.Context, req RevenueRequest) (model.RevenueResult, error) {
	if m.prices == nil {
		return model.RevenueResult{}, fmt.Errorf("revenue model has no price lookup")
	}
	active, err := activeContracts(req.Asset.Contracts, req.Period)
	if err != nil {
		return model.RevenueResult{}, err
	}

	var res model.RevenueResult
	if req.Asset.Type.IsStorage() {
		res, err = m.storageRevenue(ctx, req, active)
	} else {
		res, err = m.renewableRevenue(ctx, req, active)
	}
	if err != nil {
		return model.RevenueResult{}, err
	}
	applyScenarioStress(&res, req.Scenario, req.Constants)
	applyRevenueFilter(&res, req.RevenueFilter)
	res.Total = res.ContractedGreen + res.ContractedEnergy + res.MerchantGreen + res.MerchantEnergy
	return res, nil
}

type activeContract struct {
	model.Contract
	years int // whole years since the contract started, for indexation
}

// activeContracts returns the contracts whose [startDate, endDate] covers the
// period anchor. Missing bounds are open-ended; unparseable bounds are an error.
func activeContracts(contracts []model.Contract, period model.Period) ([]activeContract, error) {
	at := period.Anchor()
	var out []activeContract
	for _, c := range contracts {
		var start, end time.Time
		if !isAbsent(c.StartDate) {
			t, err := ResolveDate(c.StartDate)
			if err != nil {
				return nil, fmt.Errorf("contract %s start date: %w", c.ID, err)
			}
			start = t
		}
		if !isAbsent(c.EndDate) {
			t, err := ResolveDate(c.EndDate)
			if err != nil {
				return nil, fmt.Errorf("contract %s end date: %w", c.ID, err)
			}
			end = t
		}
		if !start.IsZero() && at.Before(start) {
			continue
		}
		if !end.IsZero() && at.After(end) {
			continue
		}
		years := 0
		if !start.IsZero() {
			years = max(0, period.Year-start.Year())
		}
		out = append(out, activeContract{Contract: c, years: years})
	}
	return out, nil
}

func (c activeContract) indexed(price float64) float64 {
	return price * math.Pow(1+c.Indexation/100, float64(c.years))
}

func yearsSinceCOD(req RevenueRequest) int {
	return max(0, req.Period.Year-req.Timeline.OperationalStart.Year())
}

func degradationFactor(asset model.AssetConfig, years int) float64 {
	rate := DefaultAnnualDegradation
	if asset.AnnualDegradation != nil {
		rate = *asset.AnnualDegradation
	}
	return math.Pow(1-rate/100, float64(years))
}

func volumeLoss(asset model.AssetConfig) float64 {
	if asset.VolumeLossAdjustment != nil {
		return *asset.VolumeLossAdjustment / 100
	}
	return DefaultVolumeLossAdjustment / 100
}

// capacityFactor picks the quarterly factor for the period's quarter, the mean
// of the provided quarters for yearly periods, then the state default.
func capacityFactor(asset model.AssetConfig, period model.Period) float64 {
	if period.Quarter > 0 {
		if cf, ok := asset.QuarterlyCapacityFactor(period.Quarter); ok {
			return cf / 100
		}
	}
	var sum float64
	var n int
	for q := 1; q <= 4; q++ {
		if cf, ok := asset.QuarterlyCapacityFactor(q); ok {
			sum += cf / 100
			n++
		}
	}
	if n > 0 {
		return sum / float64(n)
	}
	if cf, ok := DefaultCapacityFactors[asset.Type][asset.State]; ok {
		return cf
	}
	return DefaultCapacityFactor
}

func (m *RevenueModel) renewableRevenue(ctx context.Context, req RevenueRequest, contracts []activeContract) (model.RevenueResult, error) {
	asset := req.Asset
	generation := asset.Capacity * HoursPerYear * capacityFactor(asset, req.Period) *
		req.Period.YearFraction * degradationFactor(asset, yearsSinceCOD(req)) * volumeLoss(asset)

	var res model.RevenueResult
	for _, c := range contracts {
		share := c.BuyersPercentage / 100
		contractVolume := generation * share

		switch c.Type {
		case model.ContractBundled:
			green, energy := c.indexed(c.GreenPrice), c.indexed(c.EnergyPrice)
			if c.HasFloor && c.FloorValue > 0 && green+energy < c.FloorValue {
				if total := green + energy; total > 0 {
					green, energy = green/total*c.FloorValue, energy/total*c.FloorValue
				} else {
					green, energy = c.FloorValue/2, c.FloorValue/2
				}
			}
			res.ContractedGreen += contractVolume * green / UnitScale
			res.ContractedEnergy += contractVolume * energy / UnitScale
			res.GreenPercentage += c.BuyersPercentage
			res.EnergyPercentage += c.BuyersPercentage
		case model.ContractGreen:
			res.ContractedGreen += contractVolume * floored(c, c.indexed(c.StrikePrice)) / UnitScale
			res.GreenPercentage += c.BuyersPercentage
		case model.ContractEnergy:
			res.ContractedEnergy += contractVolume * floored(c, c.indexed(c.StrikePrice)) / UnitScale
			res.EnergyPercentage += c.BuyersPercentage
		case model.ContractFixed:
			res.ContractedEnergy += c.indexed(c.StrikePrice) * req.Period.YearFraction * share
			res.EnergyPercentage += c.BuyersPercentage
		}
	}
	res.GreenPercentage = math.Min(res.GreenPercentage, 100)
	res.EnergyPercentage = math.Min(res.EnergyPercentage, 100)

	profile := string(asset.Type)
	greenPrice, err := m.price(ctx, req, profile, model.PriceTypeGreen)
	if err != nil {
		return model.RevenueResult{}, err
	}
	energyPrice, err := m.price(ctx, req, profile, model.PriceTypeEnergy)
	if err != nil {
		return model.RevenueResult{}, err
	}
	res.MerchantGreen = generation * (100 - res.GreenPercentage) / 100 * greenPrice / UnitScale
	res.MerchantEnergy = generation * (100 - res.EnergyPercentage) / 100 * energyPrice / UnitScale
	res.Volume = generation
	return res, nil
}

func (m *RevenueModel) storageRevenue(ctx context.Context, req RevenueRequest, contracts []activeContract) (model.RevenueResult, error) {
	asset := req.Asset
	throughput := asset.Volume * DaysPerYear * req.Period.YearFraction *
		degradationFactor(asset, yearsSinceCOD(req)) * volumeLoss(asset)

	var res model.RevenueResult
	for _, c := range contracts {
		share := c.BuyersPercentage / 100
		switch c.Type {
		case model.ContractCfD:
			res.ContractedEnergy += throughput * c.indexed(c.StrikePrice) * share / UnitScale
		case model.ContractTolling:
			res.ContractedEnergy += asset.Capacity * HoursPerYear * req.Period.YearFraction * c.indexed(c.StrikePrice) * share / UnitScale
		case model.ContractFixed:
			res.ContractedEnergy += c.indexed(c.StrikePrice) * req.Period.YearFraction * share
		default:
			continue
		}
		res.EnergyPercentage += c.BuyersPercentage
	}
	res.EnergyPercentage = math.Min(res.EnergyPercentage, 100)

	duration := DefaultStorageDuration
	if asset.Capacity > 0 && asset.Volume > 0 {
		duration = asset.Volume / asset.Capacity
	}
	spread, err := m.price(ctx, req, model.ProfileStorage, strconv.FormatFloat(duration, 'f', -1, 64))
	if err != nil {
		return model.RevenueResult{}, err
	}
	res.MerchantEnergy = throughput * (100 - res.EnergyPercentage) / 100 * spread / UnitScale
	res.Volume = throughput
	return res, nil
}

func (m *RevenueModel) price(ctx context.Context, req RevenueRequest, profile, priceType string) (float64, error) {
	p, err := m.prices.MerchantPrice(ctx, PriceQuery{
		Profile:    profile,
		Type:       priceType,
		Region:     req.Asset.State,
		Period:     req.Period,
		Escalation: req.Escalation,
	})
	if err != nil {
		return 0, fmt.Errorf("merchant %s %s price: %w", profile, priceType, err)
	}
	return p, nil
}

func floored(c activeContract, price float64) float64 {
	if c.HasFloor && c.FloorValue > 0 {
		return math.Max(price, c.FloorValue)
	}
	return price
}

// applyScenarioStress scales revenue (and volume) for the stress scenarios.
// Stress percentages come from the portfolio constants, default 20%.
func applyScenarioStress(res *model.RevenueResult, scenario model.Scenario, constants model.PortfolioConstants) {
	volumeStress := stressOrDefault(constants.VolumeVariation)
	priceStress := stressOrDefault(math.Max(constants.GreenPriceVariation, constants.EnergyPriceVariation))

	switch scenario {
	case model.ScenarioWorst:
		res.ContractedGreen *= 1 - volumeStress
		res.ContractedEnergy *= 1 - volumeStress
		res.MerchantGreen *= (1 - volumeStress) * (1 - priceStress)
		res.MerchantEnergy *= (1 - volumeStress) * (1 - priceStress)
		res.Volume *= 1 - volumeStress
	case model.ScenarioVolume:
		res.ContractedGreen *= 1 - volumeStress
		res.ContractedEnergy *= 1 - volumeStress
		res.MerchantGreen *= 1 - volumeStress
		res.MerchantEnergy *= 1 - volumeStress
		res.Volume *= 1 - volumeStress
	case model.ScenarioPrice:
		res.MerchantGreen *= 1 - priceStress
		res.MerchantEnergy *= 1 - priceStress
	}
}

// applyRevenueFilter zeroes the product the filter excludes. Volume and the
// contracted percentages are left as computed.
func applyRevenueFilter(res *model.RevenueResult, filter model.RevenueFilter) {
	switch filter {
	case model.RevenueEnergy:
		res.ContractedGreen = 0
		res.MerchantGreen = 0
	case model.RevenueGreen:
		res.ContractedEnergy = 0
		res.MerchantEnergy = 0
	}
}

func stressOrDefault(pct float64) float64 {
	if pct <= 0 {
		pct = DefaultStressPercentage
	}
	return pct / 100
}
