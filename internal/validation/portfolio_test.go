package validation_test

import (
	"errors"
	"testing"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/api/request"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/validation"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		return nil
	}
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *validation.Error, got %T", err)
	}
	return verr.Fields
}

// TestValidateSavePortfolio tests structural checks on stored documents.
//
// WHY: Unparseable dates are allowed in storage and surface as exclusions at
// build time. Only structure is rejected here.
func TestValidateSavePortfolio(t *testing.T) {
	tests := []struct {
		name      string
		req       request.SavePortfolioRequest
		wantField string
	}{
		{"valid with odd dates", request.SavePortfolioRequest{Name: "P", Assets: map[string]model.AssetConfig{
			"a1": {Type: model.AssetSolar, ConstructionStartDate: "someday"},
		}}, ""},
		{"missing name", request.SavePortfolioRequest{Name: " "}, "name"},
		{"long name", request.SavePortfolioRequest{Name: string(make([]byte, 101))}, "name"},
		{"empty asset ID", request.SavePortfolioRequest{Name: "P", Assets: map[string]model.AssetConfig{" ": {}}}, "assets"},
		{"negative capacity", request.SavePortfolioRequest{Name: "P", Assets: map[string]model.AssetConfig{
			"a1": {Capacity: -1},
		}}, "assets.a1.capacity"},
		{"unknown type", request.SavePortfolioRequest{Name: "P", Assets: map[string]model.AssetConfig{
			"a1": {Type: "tidal"},
		}}, "assets.a1.type"},
		{"contract share", request.SavePortfolioRequest{Name: "P", Assets: map[string]model.AssetConfig{
			"a1": {Contracts: []model.Contract{{BuyersPercentage: 50}, {BuyersPercentage: 120}}},
		}}, "assets.a1.contracts[1].buyersPercentage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := fieldErrors(t, validation.ValidateSavePortfolio(tt.req))

			if tt.wantField == "" {
				if len(fields) != 0 {
					t.Errorf("Expected no errors, got %v", fields)
				}
				return
			}
			if _, ok := fields[tt.wantField]; !ok {
				t.Errorf("Expected error on %s, got %v", tt.wantField, fields)
			}
		})
	}
}

// TestValidateTimeSeries tests build option validation and conversion.
func TestValidateTimeSeries(t *testing.T) {
	t.Run("converts options", func(t *testing.T) {
		cfg, err := validation.ValidateTimeSeries(request.TimeSeriesRequest{
			IntervalType:  "Quarter",
			StartYear:     2026,
			Periods:       30,
			Scenario:      " Worst ",
			RevenueFilter: "Energy",
		})
		if err != nil {
			t.Fatalf("ValidateTimeSeries() returned unexpected error: %v", err)
		}
		if cfg.IntervalType != model.Quarterly || cfg.Scenario != model.ScenarioWorst || cfg.Periods != 30 || cfg.StartYear != 2026 ||
			cfg.RevenueFilter != model.RevenueEnergy {
			t.Errorf("Unexpected config %+v", cfg)
		}
	})

	t.Run("empty request is valid", func(t *testing.T) {
		if _, err := validation.ValidateTimeSeries(request.TimeSeriesRequest{}); err != nil {
			t.Errorf("Expected empty options to be valid, got %v", err)
		}
	})

	tests := []struct {
		name      string
		req       request.TimeSeriesRequest
		wantField string
	}{
		{"interval", request.TimeSeriesRequest{IntervalType: "weekly"}, "intervalType"},
		{"scenario", request.TimeSeriesRequest{Scenario: "optimistic"}, "scenario"},
		{"revenue filter", request.TimeSeriesRequest{RevenueFilter: "capacity"}, "revenueFilter"},
		{"start year", request.TimeSeriesRequest{StartYear: 1800}, "startYear"},
		{"negative horizon", request.TimeSeriesRequest{Periods: -1}, "periods"},
		{"horizon too long", request.TimeSeriesRequest{Periods: validation.MaxHorizonYears + 1}, "periods"},
		{"escalation without reference year", request.TimeSeriesRequest{
			EscalationSettings: &model.EscalationSettings{Enabled: true, Rate: 2.5},
		}, "escalationSettings.referenceYear"},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			cfg, err := validation.ValidateTimeSeries(tt.req)
			fields := fieldErrors(t, err)
			if _, ok := fields[tt.wantField]; !ok {
				t.Errorf("Expected error on %s, got %v", tt.wantField, fields)
			}
			if cfg != (model.AnalysisConfig{}) {
				t.Errorf("Expected zero config on error, got %+v", cfg)
			}
		})
	}
}

// TestValidatePriceQuery tests the price data parameters.
func TestValidatePriceQuery(t *testing.T) {
	if err := validation.ValidatePriceQuery("NSW", "Battery", 2030); err != nil {
		t.Errorf("Expected valid query, got %v", err)
	}

	fields := fieldErrors(t, validation.ValidatePriceQuery(" ", "coal", 3000))
	for _, f := range []string{"region", "assetType", "year"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("Expected error on %s, got %v", f, fields)
		}
	}
}

// TestValidateUUID tests UUID parameter validation.
func TestValidateUUID(t *testing.T) {
	if err := validation.ValidateUUID("550e8400-e29b-41d4-a716-446655440000"); err != nil {
		t.Errorf("Expected valid UUID, got %v", err)
	}
	if err := validation.ValidateUUID("calc-1"); !errors.Is(err, validation.ErrInvalidUUID) {
		t.Errorf("Expected ErrInvalidUUID, got %v", err)
	}
}

// TestError tests the combined validation message.
//
// WHY: The message is returned in error details and logged. Map iteration
// order must not change it between identical requests.
func TestError(t *testing.T) {
	err := &validation.Error{Fields: map[string]string{
		"periods":       "too long",
		"intervalType":  "unknown",
		"assets.b.type": "unknown type",
	}}

	want := "assets.b.type: unknown type; intervalType: unknown; periods: too long"
	for range 5 {
		if got := err.Error(); got != want {
			t.Fatalf("Error() = %q, want %q", got, want)
		}
	}
}
