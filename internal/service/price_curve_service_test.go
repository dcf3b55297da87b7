package service_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/service"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/testutil"
)

func energyQuery(region string, period model.Period) service.PriceQuery {
	return service.PriceQuery{
		Profile: model.ProfileSolar,
		Type:    model.PriceTypeEnergy,
		Region:  region,
		Period:  period,
	}
}

// TestPriceCurveService_MerchantPrice tests monthly price lookups.
//
// WHY: Price curves are sparse. Missing months must carry the latest known
// price forward rather than dropping revenue to zero.
func TestPriceCurveService_MerchantPrice(t *testing.T) {
	ctx := context.Background()

	t.Run("returns default when no prices exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPriceCurveService(t, db)

		price, err := svc.MerchantPrice(ctx, energyQuery("NSW", model.PeriodFor(model.Monthly, date(2025, 1, 1))))
		if err != nil {
			t.Fatalf("MerchantPrice() returned unexpected error: %v", err)
		}
		if price != service.DefaultMerchantPrice {
			t.Errorf("Expected default price %v, got %v", service.DefaultMerchantPrice, price)
		}
	})

	t.Run("returns exact month and carries it forward", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPriceCurveService(t, db)
		testutil.CreatePrice(t, db, model.ProfileSolar, model.PriceTypeEnergy, "NSW", date(2025, 1, 1), 80)

		jan, err := svc.MerchantPrice(ctx, energyQuery("NSW", model.PeriodFor(model.Monthly, date(2025, 1, 1))))
		if err != nil {
			t.Fatalf("MerchantPrice() returned unexpected error: %v", err)
		}
		feb, err := svc.MerchantPrice(ctx, energyQuery("nsw", model.PeriodFor(model.Monthly, date(2025, 2, 1))))
		if err != nil {
			t.Fatalf("MerchantPrice() returned unexpected error: %v", err)
		}
		if jan != 80 || feb != 80 {
			t.Errorf("Expected 80/80, got %v/%v", jan, feb)
		}
	})

	t.Run("averages months within a quarter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPriceCurveService(t, db)
		testutil.CreatePrice(t, db, model.ProfileSolar, model.PriceTypeEnergy, "QLD", date(2025, 1, 1), 60)
		testutil.CreatePrice(t, db, model.ProfileSolar, model.PriceTypeEnergy, "QLD", date(2025, 2, 1), 90)

		price, err := svc.MerchantPrice(ctx, energyQuery("QLD", model.PeriodFor(model.Quarterly, date(2025, 1, 1))))
		if err != nil {
			t.Fatalf("MerchantPrice() returned unexpected error: %v", err)
		}
		// March carries February forward.
		if math.Abs(price-80) > 1e-9 {
			t.Errorf("Expected 80, got %v", price)
		}
	})

	t.Run("ignores prices older than the search window", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPriceCurveService(t, db)
		testutil.CreatePrice(t, db, model.ProfileSolar, model.PriceTypeEnergy, "VIC", date(2018, 1, 1), 120)

		price, err := svc.MerchantPrice(ctx, energyQuery("VIC", model.PeriodFor(model.Monthly, date(2025, 1, 1))))
		if err != nil {
			t.Fatalf("MerchantPrice() returned unexpected error: %v", err)
		}
		if price != service.DefaultMerchantPrice {
			t.Errorf("Expected default price, got %v", price)
		}
	})

	t.Run("applies escalation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPriceCurveService(t, db)
		testutil.CreatePrice(t, db, model.ProfileSolar, model.PriceTypeEnergy, "NSW", date(2027, 1, 1), 100)

		q := energyQuery("NSW", model.PeriodFor(model.Monthly, date(2027, 1, 1)))
		q.Escalation = &model.EscalationSettings{Enabled: true, Rate: 2.5, ReferenceYear: 2025, ApplyToRenewables: true}

		price, err := svc.MerchantPrice(ctx, q)
		if err != nil {
			t.Fatalf("MerchantPrice() returned unexpected error: %v", err)
		}
		if want := 100 * 1.025 * 1.025; math.Abs(price-want) > 1e-9 {
			t.Errorf("Expected %v, got %v", want, price)
		}
	})

	t.Run("storage spread interpolated by duration", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPriceCurveService(t, db)
		testutil.CreateSpread(t, db, "SA", 2025, 1, 80)
		testutil.CreateSpread(t, db, "SA", 2025, 4, 140)

		price, err := svc.MerchantPrice(ctx, service.PriceQuery{
			Profile: model.ProfileStorage,
			Type:    "2",
			Region:  "sa",
			Period:  model.PeriodFor(model.Yearly, date(2025, 1, 1)),
		})
		if err != nil {
			t.Fatalf("MerchantPrice() returned unexpected error: %v", err)
		}
		if math.Abs(price-100) > 1e-9 {
			t.Errorf("Expected 100, got %v", price)
		}
	})

	t.Run("invalid storage duration", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPriceCurveService(t, db)

		_, err := svc.MerchantPrice(ctx, service.PriceQuery{Profile: model.ProfileStorage, Type: "long", Region: "SA"})
		if err == nil {
			t.Error("Expected error for invalid duration")
		}
	})
}

// TestInterpolateSpread tests duration interpolation edge cases.
func TestInterpolateSpread(t *testing.T) {
	spreads := []model.StorageSpread{
		{Duration: 1, Spread: 80},
		{Duration: 2, Spread: 100},
		{Duration: 4, Spread: 140},
	}

	tests := []struct {
		name     string
		spreads  []model.StorageSpread
		duration float64
		want     float64
	}{
		{"exact match", spreads, 2, 100},
		{"between points", spreads, 3, 120},
		{"below range uses first", spreads, 0.5, 80},
		{"above range uses last", spreads, 8, 140},
		{"empty uses default", nil, 2, service.DefaultMerchantPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.InterpolateSpread(tt.spreads, tt.duration); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("InterpolateSpread(%v) = %v, want %v", tt.duration, got, tt.want)
			}
		})
	}
}

// TestEscalationFactor tests which prices escalate.
func TestEscalationFactor(t *testing.T) {
	renewables := &model.EscalationSettings{Enabled: true, Rate: 10, ReferenceYear: 2025, ApplyToRenewables: true}

	tests := []struct {
		name    string
		esc     *model.EscalationSettings
		storage bool
		year    int
		want    float64
	}{
		{"nil settings", nil, false, 2030, 1},
		{"disabled", &model.EscalationSettings{Rate: 10, ReferenceYear: 2025, ApplyToRenewables: true}, false, 2030, 1},
		{"renewables one year", renewables, false, 2026, 1.1},
		{"reference year", renewables, false, 2025, 1},
		{"before reference not de-escalated", renewables, false, 2020, 1},
		{"storage excluded", renewables, true, 2027, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.EscalationFactor(tt.esc, tt.storage, tt.year); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EscalationFactor() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPriceCurveService_ImportPrices tests CSV price import.
//
// WHY: Price files are hand-edited. Bad rows must be skipped and reported
// without losing the good rows around them.
func TestPriceCurveService_ImportPrices(t *testing.T) {
	t.Run("imports valid rows and reports bad ones", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPriceCurveService(t, db)

		csvData := strings.Join([]string{
			"\ufeffprofile,type,region,time,price",
			"solar,Energy,nsw,1/1/2025,80.5",
			"solar,green,NSW,2025-02-01,20",
			"solar,Energy,NSW,not a date,50",
			"solar,Energy,NSW,1/3/2025,abc",
			"solar,Energy,NSW",
		}, "\n")

		result, err := svc.ImportPrices(strings.NewReader(csvData))
		if err != nil {
			t.Fatalf("ImportPrices() returned unexpected error: %v", err)
		}
		if result.Imported != 2 {
			t.Errorf("Imported = %d, want 2", result.Imported)
		}
		if result.Skipped != 3 || len(result.Errors) != 3 {
			t.Errorf("Skipped = %d with %d errors, want 3", result.Skipped, len(result.Errors))
		}
		if len(result.Errors) > 0 && !strings.HasPrefix(result.Errors[0], "row 4:") {
			t.Errorf("Expected first error on row 4, got %q", result.Errors[0])
		}

		prices, err := svc.GetPriceData("NSW", model.AssetSolar, 2025)
		if err != nil {
			t.Fatalf("GetPriceData() returned unexpected error: %v", err)
		}
		if len(prices) != 2 {
			t.Fatalf("Expected 2 stored prices, got %d", len(prices))
		}
		if prices[0].Price != 80.5 || prices[0].Region != "NSW" {
			t.Errorf("Unexpected first price %+v", prices[0])
		}
	})

	t.Run("reimport replaces existing month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPriceCurveService(t, db)

		for _, price := range []string{"70", "75"} {
			if _, err := svc.ImportPrices(strings.NewReader("profile,type,region,time,price\nwind,Energy,VIC,2025-01-01," + price)); err != nil {
				t.Fatalf("ImportPrices() returned unexpected error: %v", err)
			}
		}

		prices, err := svc.GetPriceData("VIC", model.AssetWind, 0)
		if err != nil {
			t.Fatalf("GetPriceData() returned unexpected error: %v", err)
		}
		if len(prices) != 1 || prices[0].Price != 75 {
			t.Errorf("Expected single price 75, got %+v", prices)
		}
	})

	t.Run("rejects wrong headers", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPriceCurveService(t, db)

		_, err := svc.ImportPrices(strings.NewReader("date,value\n2025-01-01,50"))
		if !errors.Is(err, apperrors.ErrInvalidCSVHeaders) {
			t.Errorf("Expected ErrInvalidCSVHeaders, got %v", err)
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPriceCurveService(t, db)

		_, err := svc.ImportPrices(strings.NewReader(""))
		if !errors.Is(err, apperrors.ErrInvalidCSVHeaders) {
			t.Errorf("Expected ErrInvalidCSVHeaders, got %v", err)
		}
	})
}

// TestPriceCurveService_ImportSpreads tests CSV spread import.
func TestPriceCurveService_ImportSpreads(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestPriceCurveService(t, db)

	csvData := "region,year,duration,spread\nsa,2025,2,110\nSA,2025,4,150\nSA,twenty,4,150\n"
	result, err := svc.ImportSpreads(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ImportSpreads() returned unexpected error: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 1 {
		t.Errorf("Imported/Skipped = %d/%d, want 2/1", result.Imported, result.Skipped)
	}

	price, err := svc.MerchantPrice(context.Background(), service.PriceQuery{
		Profile: model.ProfileStorage,
		Type:    "3",
		Region:  "SA",
		Period:  model.PeriodFor(model.Monthly, date(2025, 6, 1)),
	})
	if err != nil {
		t.Fatalf("MerchantPrice() returned unexpected error: %v", err)
	}
	if math.Abs(price-130) > 1e-9 {
		t.Errorf("Expected interpolated spread 130, got %v", price)
	}
}

// TestSamplePrices tests the diagnostic price samples.
func TestSamplePrices(t *testing.T) {
	prices := solarPrices()
	assets := map[string]model.AssetConfig{
		"A": flatSolar().Build(),
		"B": flatSolar().Build(),
		"S": testutil.NewAsset().WithType(model.AssetBattery).WithCapacity(50).WithVolume(100).Build(),
	}
	timelines := map[string]model.PhaseTimeline{
		"A": timeline("A", date(2024, 1, 1), date(2025, 1, 1), date(2050, 1, 1)),
		"B": timeline("B", date(2024, 1, 1), date(2025, 1, 1), date(2050, 1, 1)),
		"S": timeline("S", date(2024, 1, 1), date(2025, 1, 1), date(2050, 1, 1)),
	}

	samples, warnings := service.SamplePrices(context.Background(), prices, assets, timelines,
		model.AnalysisConfig{StartYear: 2026})

	if len(warnings) != 0 {
		t.Errorf("Unexpected warnings: %v", warnings)
	}
	// A and B share profile, type and region; S adds one storage sample.
	if len(samples) != 3 {
		t.Fatalf("Expected 3 samples, got %d: %+v", len(samples), samples)
	}
	for _, s := range samples {
		if s.Period != "2026-01" {
			t.Errorf("Sample period = %q, want 2026-01", s.Period)
		}
	}
}
