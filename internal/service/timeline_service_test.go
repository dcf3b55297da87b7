package service_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/service"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/testutil"
)

// TestBuildTimeline tests timeline derivation for valid assets.
//
// WHY: The timeline is the single source of truth for when an asset builds and
// operates. Every later stage (calendar, classification, draws) trusts it.
func TestBuildTimeline(t *testing.T) {
	t.Run("derives the worked example", func(t *testing.T) {
		asset := testutil.NewAsset().
			WithConstructionStart("1/1/2024").
			WithOperationsStart("2025-01-01").
			Build()

		tl, err := service.BuildTimeline("A", asset, 1)
		if err != nil {
			t.Fatalf("BuildTimeline() returned unexpected error: %v", err)
		}

		if !tl.ConstructionStart.Equal(date(2024, 1, 1)) {
			t.Errorf("ConstructionStart = %v, want 2024-01-01", tl.ConstructionStart)
		}
		if !tl.ConstructionEnd.Equal(date(2024, 12, 31)) {
			t.Errorf("ConstructionEnd = %v, want 2024-12-31", tl.ConstructionEnd)
		}
		if !tl.OperationalStart.Equal(date(2025, 1, 1)) {
			t.Errorf("OperationalStart = %v, want 2025-01-01", tl.OperationalStart)
		}
		if !tl.OperationalEnd.Equal(date(2026, 1, 1)) {
			t.Errorf("OperationalEnd = %v, want 2026-01-01", tl.OperationalEnd)
		}
		if tl.ConstructionDurationMonths != 12 {
			t.Errorf("ConstructionDurationMonths = %d, want 12", tl.ConstructionDurationMonths)
		}
		if tl.OperationalDurationMonths != 12 {
			t.Errorf("OperationalDurationMonths = %d, want 12", tl.OperationalDurationMonths)
		}
		if tl.ConstructionStartSource != service.FieldConstructionStartDate {
			t.Errorf("ConstructionStartSource = %q, want %q", tl.ConstructionStartSource, service.FieldConstructionStartDate)
		}
		if tl.AssetID != "A" {
			t.Errorf("AssetID = %q, want A", tl.AssetID)
		}
	})

	t.Run("reads legacy construction field", func(t *testing.T) {
		asset := testutil.NewAsset().WithLegacyConstructionStart("2023-07-01").Build()

		tl, err := service.BuildTimeline("A", asset, 25)
		if err != nil {
			t.Fatalf("BuildTimeline() returned unexpected error: %v", err)
		}
		if tl.ConstructionStartSource != service.FieldConstructionStart {
			t.Errorf("ConstructionStartSource = %q, want %q", tl.ConstructionStartSource, service.FieldConstructionStart)
		}
		if !tl.ConstructionStart.Equal(date(2023, 7, 1)) {
			t.Errorf("ConstructionStart = %v, want 2023-07-01", tl.ConstructionStart)
		}
	})

	t.Run("preferred field wins over legacy", func(t *testing.T) {
		asset := testutil.NewAsset().WithConstructionStart("2023-01-01").Build()
		asset.ConstructionStart = "2022-01-01"

		tl, err := service.BuildTimeline("A", asset, 25)
		if err != nil {
			t.Fatalf("BuildTimeline() returned unexpected error: %v", err)
		}
		if !tl.ConstructionStart.Equal(date(2023, 1, 1)) {
			t.Errorf("ConstructionStart = %v, want 2023-01-01", tl.ConstructionStart)
		}
	})

	t.Run("clamps leap day when adding horizon", func(t *testing.T) {
		asset := testutil.NewAsset().
			WithConstructionStart("2023-06-01").
			WithOperationsStart("2024-02-29").
			Build()

		tl, err := service.BuildTimeline("A", asset, 1)
		if err != nil {
			t.Fatalf("BuildTimeline() returned unexpected error: %v", err)
		}
		if !tl.OperationalEnd.Equal(date(2025, 2, 28)) {
			t.Errorf("OperationalEnd = %v, want 2025-02-28", tl.OperationalEnd)
		}
		if tl.ConstructionDurationMonths != 9 {
			t.Errorf("ConstructionDurationMonths = %d, want 9", tl.ConstructionDurationMonths)
		}
	})

	t.Run("accepts epoch millisecond dates", func(t *testing.T) {
		asset := testutil.NewAsset().
			WithConstructionStart(float64(1704067200000)).
			WithOperationsStart(float64(1735689600000)).
			Build()

		tl, err := service.BuildTimeline("A", asset, 1)
		if err != nil {
			t.Fatalf("BuildTimeline() returned unexpected error: %v", err)
		}
		if tl.ConstructionDurationMonths != 12 {
			t.Errorf("ConstructionDurationMonths = %d, want 12", tl.ConstructionDurationMonths)
		}
	})
}

// TestBuildTimeline_Idempotent tests that identical inputs give identical timelines.
//
// WHY: Timelines are rebuilt for validation, for every build and for every
// diagnostic. Any hidden state would make those disagree.
func TestBuildTimeline_Idempotent(t *testing.T) {
	asset := testutil.NewAsset().WithConstructionStart("15/6/2023").WithOperationsStart("1/3/2025").Build()

	first, err := service.BuildTimeline("A", asset, 20)
	if err != nil {
		t.Fatalf("BuildTimeline() returned unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := service.BuildTimeline("A", asset, 20)
		if err != nil {
			t.Fatalf("BuildTimeline() returned unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("BuildTimeline() not idempotent:\nfirst: %+v\nagain: %+v", first, again)
		}
	}
}

// TestBuildTimeline_Errors tests that invalid assets fail with typed errors.
//
// WHY: An invalid asset must be excluded rather than placed at a default date.
// The typed error tells the caller which field to fix.
func TestBuildTimeline_Errors(t *testing.T) {
	tests := []struct {
		name      string
		asset     model.AssetConfig
		horizon   int
		wantErr   error
		wantField string
	}{
		{
			name:      "missing construction start",
			asset:     testutil.NewAsset().WithConstructionStart(nil).Build(),
			horizon:   25,
			wantErr:   apperrors.ErrMissingConstructionDate,
			wantField: service.FieldConstructionStartDate,
		},
		{
			name:      "empty construction start",
			asset:     testutil.NewAsset().WithConstructionStart("").Build(),
			horizon:   25,
			wantErr:   apperrors.ErrMissingConstructionDate,
			wantField: service.FieldConstructionStartDate,
		},
		{
			name:      "missing operations start",
			asset:     testutil.NewAsset().WithOperationsStart(nil).Build(),
			horizon:   25,
			wantErr:   apperrors.ErrMissingOperationsDate,
			wantField: service.FieldOperationsStart,
		},
		{
			name:      "unparseable construction start",
			asset:     testutil.NewAsset().WithConstructionStart("next spring").Build(),
			horizon:   25,
			wantErr:   apperrors.ErrDateParse,
			wantField: service.FieldConstructionStartDate,
		},
		{
			name:      "unparseable legacy construction start",
			asset:     testutil.NewAsset().WithLegacyConstructionStart("31/2/2024").Build(),
			horizon:   25,
			wantErr:   apperrors.ErrDateParse,
			wantField: service.FieldConstructionStart,
		},
		{
			name:      "construction equal to operations",
			asset:     testutil.NewAsset().WithConstructionStart("2025-01-01").Build(),
			horizon:   25,
			wantErr:   apperrors.ErrInvalidPhaseOrder,
			wantField: service.FieldConstructionStartDate,
		},
		{
			name:      "construction after operations",
			asset:     testutil.NewAsset().WithConstructionStart("2026-01-01").Build(),
			horizon:   25,
			wantErr:   apperrors.ErrInvalidPhaseOrder,
			wantField: service.FieldConstructionStartDate,
		},
		{
			name:      "zero horizon",
			asset:     testutil.NewAsset().Build(),
			horizon:   0,
			wantErr:   apperrors.ErrInvalidHorizon,
			wantField: service.FieldHorizon,
		},
		{
			name:      "negative horizon",
			asset:     testutil.NewAsset().Build(),
			horizon:   -3,
			wantErr:   apperrors.ErrInvalidHorizon,
			wantField: service.FieldHorizon,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.BuildTimeline("A", tt.asset, tt.horizon)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			var te *apperrors.TimelineError
			if !errors.As(err, &te) {
				t.Fatalf("Expected *TimelineError, got %T", err)
			}
			if te.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", te.Field, tt.wantField)
			}
			if te.AssetID != "A" {
				t.Errorf("AssetID = %q, want A", te.AssetID)
			}
		})
	}

	t.Run("horizon error is not reported as phase order", func(t *testing.T) {
		_, err := service.BuildTimeline("A", testutil.NewAsset().Build(), 0)
		if errors.Is(err, apperrors.ErrInvalidPhaseOrder) {
			t.Errorf("Expected horizon error without ErrInvalidPhaseOrder, got %v", err)
		}
	})

	t.Run("present but invalid preferred field does not fall through", func(t *testing.T) {
		asset := testutil.NewAsset().WithConstructionStart("garbage").Build()
		asset.ConstructionStart = "2023-01-01"

		_, err := service.BuildTimeline("A", asset, 25)
		if !errors.Is(err, apperrors.ErrDateParse) {
			t.Errorf("Expected ErrDateParse, got %v", err)
		}
	})
}

// TestResolveTimelines tests the per-portfolio resolution with exclusions.
//
// WHY: One bad asset must not take down the portfolio, and every excluded
// asset has to appear in diagnostics with its raw inputs.
func TestResolveTimelines(t *testing.T) {
	assets := map[string]model.AssetConfig{
		"b-valid":   testutil.NewAsset().WithName("Valid").Build(),
		"a-missing": testutil.NewAsset().WithName("Missing").WithOperationsStart(nil).Build(),
		"c-order":   testutil.NewAsset().WithName("Order").WithConstructionStart("2030-01-01").Build(),
	}

	timelines, diag, failures := service.ResolveTimelines(assets, 25)

	if len(timelines) != 1 {
		t.Fatalf("Expected 1 timeline, got %d", len(timelines))
	}
	if _, ok := timelines["b-valid"]; !ok {
		t.Error("Expected timeline for b-valid")
	}
	if diag.ValidAssets != 1 || diag.ExcludedAssets != 2 {
		t.Errorf("Expected 1 valid / 2 excluded, got %d / %d", diag.ValidAssets, diag.ExcludedAssets)
	}
	if len(failures) != 2 {
		t.Fatalf("Expected 2 failures, got %d", len(failures))
	}

	// Diagnostics are in asset ID order.
	wantOrder := []string{"a-missing", "b-valid", "c-order"}
	for i, d := range diag.Assets {
		if d.AssetID != wantOrder[i] {
			t.Errorf("diag.Assets[%d] = %q, want %q", i, d.AssetID, wantOrder[i])
		}
	}

	missing := diag.Assets[0]
	if missing.Status != model.AssetExcluded {
		t.Errorf("Expected a-missing excluded, got %s", missing.Status)
	}
	if missing.Field != service.FieldOperationsStart {
		t.Errorf("Expected field %q, got %q", service.FieldOperationsStart, missing.Field)
	}
	if missing.RawConstructionStart != "2024-01-01" {
		t.Errorf("Expected raw construction echoed, got %v", missing.RawConstructionStart)
	}

	valid := diag.Assets[1]
	if valid.Status != model.AssetValid {
		t.Errorf("Expected b-valid valid, got %s", valid.Status)
	}
	if valid.ConstructionStart == nil || valid.OperationalEnd == nil {
		t.Fatal("Expected resolved dates on valid asset")
	}
	if valid.ConstructionDurationMonths != 12 {
		t.Errorf("Expected 12 construction months, got %d", valid.ConstructionDurationMonths)
	}

	order := diag.Assets[2]
	if order.ConstructionStart == nil || order.OperationalStart == nil {
		t.Error("Expected resolved dates echoed for phase-order failure")
	}
}
