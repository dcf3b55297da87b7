package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/api/request"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// MaxHorizonYears bounds the operational horizon of a single build.
const MaxHorizonYears = 100

func ValidateSavePortfolio(req request.SavePortfolioRequest) error {
	errors := make(map[string]string)

	// Required field
	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	validateAssets(req.Assets, errors)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateValidatePortfolio(req request.ValidatePortfolioRequest) error {
	errors := make(map[string]string)

	validateAssets(req.Assets, errors)
	validateHorizon(req.Periods, errors)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateTimeSeries checks build options and converts them.
func ValidateTimeSeries(req request.TimeSeriesRequest) (model.AnalysisConfig, error) {
	errors := make(map[string]string)

	cfg := model.AnalysisConfig{
		StartYear:     req.StartYear,
		Periods:       req.Periods,
		Scenario:      model.Scenario(strings.ToLower(strings.TrimSpace(req.Scenario))),
		RevenueFilter: model.RevenueFilter(strings.ToLower(strings.TrimSpace(req.RevenueFilter))),
		Escalation:    req.EscalationSettings,
	}

	if req.IntervalType != "" {
		g, err := model.ParseGranularity(req.IntervalType)
		if err != nil {
			errors["intervalType"] = "intervalType must be monthly, quarterly or yearly"
		}
		cfg.IntervalType = g
	}
	if !cfg.Scenario.Valid() {
		errors["scenario"] = "scenario must be base, worst, volume or price"
	}
	if !cfg.RevenueFilter.Valid() {
		errors["revenueFilter"] = "revenueFilter must be all, energy or green"
	}
	if req.StartYear != 0 && (req.StartYear < 1900 || req.StartYear > 2200) {
		errors["startYear"] = "startYear must be between 1900 and 2200"
	}
	validateHorizon(req.Periods, errors)
	if e := req.EscalationSettings; e != nil && e.Enabled && e.ReferenceYear == 0 {
		errors["escalationSettings.referenceYear"] = "referenceYear is required when escalation is enabled"
	}

	if len(errors) > 0 {
		return model.AnalysisConfig{}, &Error{Fields: errors}
	}
	return cfg, nil
}

// ValidatePriceQuery checks the price data path and query parameters.
func ValidatePriceQuery(region, assetType string, year int) error {
	errors := make(map[string]string)

	if strings.TrimSpace(region) == "" {
		errors["region"] = "region is required"
	}
	if !model.AssetType(strings.ToLower(assetType)).Valid() {
		errors["assetType"] = fmt.Sprintf("unknown asset type %q", assetType)
	}
	if year < 1900 || year > 2200 {
		errors["year"] = "year must be between 1900 and 2200"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// validateAssets checks structure only. Date problems are not rejected here:
// they exclude single assets from a build and are reported in diagnostics.
func validateAssets(assets map[string]model.AssetConfig, errors map[string]string) {
	for id, a := range assets {
		if strings.TrimSpace(id) == "" {
			errors["assets"] = "asset IDs must not be empty"
			continue
		}
		if a.Capacity < 0 {
			errors["assets."+id+".capacity"] = "capacity must not be negative"
		}
		if a.Type != "" && !a.Type.Valid() {
			errors["assets."+id+".type"] = fmt.Sprintf("unknown asset type %q", a.Type)
		}
		for i, c := range a.Contracts {
			if c.BuyersPercentage < 0 || c.BuyersPercentage > 100 {
				errors[fmt.Sprintf("assets.%s.contracts[%d].buyersPercentage", id, i)] = "buyersPercentage must be between 0 and 100"
			}
		}
	}
}

func validateHorizon(periods int, errors map[string]string) {
	if periods < 0 || periods > MaxHorizonYears {
		errors["periods"] = fmt.Sprintf("periods must be between 1 and %d years", MaxHorizonYears)
	}
}
