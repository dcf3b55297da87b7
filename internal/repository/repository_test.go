package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/repository"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/testutil"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// TestPriceRepository_GetLatestPrice tests the carry-forward price lookup.
//
// WHY: Price curves are sparse. A period with no row of its own must use the
// most recent earlier month, but never one older than the lookback window.
func TestPriceRepository_GetLatestPrice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPriceRepository(db)
	ctx := context.Background()

	testutil.CreatePrice(t, db, "solar", "Energy", "NSW", month(2025, 1), 60)
	testutil.CreatePrice(t, db, "solar", "Energy", "NSW", month(2025, 4), 70)
	testutil.CreatePrice(t, db, "solar", "green", "NSW", month(2025, 4), 30)

	tests := []struct {
		name      string
		priceType string
		month     time.Time
		earliest  time.Time
		wantPrice float64
		wantMonth time.Time
		wantErr   error
	}{
		{"exact month", "Energy", month(2025, 4), month(2020, 1), 70, month(2025, 4), nil},
		{"carried forward", "Energy", month(2025, 3), month(2020, 1), 60, month(2025, 1), nil},
		{"mid-month date", "Energy", time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), month(2020, 1), 70, month(2025, 4), nil},
		{"type filter", "green", month(2025, 6), month(2020, 1), 30, month(2025, 4), nil},
		{"before first row", "Energy", month(2024, 12), month(2020, 1), 0, time.Time{}, apperrors.ErrPriceNotFound},
		{"outside window", "Energy", month(2025, 3), month(2025, 2), 0, time.Time{}, apperrors.ErrPriceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, found, err := repo.GetLatestPrice(ctx, "solar", tt.priceType, "NSW", tt.month, tt.earliest)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("GetLatestPrice() error = %v, want %v", err, tt.wantErr)
			}
			if price != tt.wantPrice || !found.Equal(tt.wantMonth) {
				t.Errorf("GetLatestPrice() = %v @ %v, want %v @ %v", price, found, tt.wantPrice, tt.wantMonth)
			}
		})
	}
}

// TestPriceRepository_Upserts tests replacing prices and spreads.
func TestPriceRepository_Upserts(t *testing.T) {
	t.Run("prices replace on conflict", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPriceRepository(db)

		testutil.CreatePrice(t, db, "wind", "Energy", "VIC", month(2026, 2), 40)
		testutil.CreatePrice(t, db, "wind", "Energy", "VIC", month(2026, 2), 45)
		testutil.CreatePrice(t, db, "wind", "Energy", "VIC", month(2027, 1), 50)

		all, err := repo.GetPrices("VIC", "wind", 0)
		if err != nil {
			t.Fatalf("GetPrices() returned unexpected error: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("Expected 2 prices, got %d", len(all))
		}
		if all[0].Price != 45 || !all[0].Month.Equal(month(2026, 2)) {
			t.Errorf("Expected replaced price 45 for 2026-02, got %+v", all[0])
		}

		year, err := repo.GetPrices("VIC", "wind", 2027)
		if err != nil {
			t.Fatalf("GetPrices() returned unexpected error: %v", err)
		}
		if len(year) != 1 || year[0].Price != 50 {
			t.Errorf("Expected only the 2027 price, got %+v", year)
		}
	})

	t.Run("spreads ordered by duration", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPriceRepository(db)

		testutil.CreateSpread(t, db, "SA", 2026, 4, 160)
		testutil.CreateSpread(t, db, "SA", 2026, 1, 90)
		testutil.CreateSpread(t, db, "SA", 2026, 2, 120)
		testutil.CreateSpread(t, db, "SA", 2026, 2, 125)
		testutil.CreateSpread(t, db, "SA", 2027, 2, 200)

		spreads, err := repo.GetSpreads(context.Background(), "SA", 2026)
		if err != nil {
			t.Fatalf("GetSpreads() returned unexpected error: %v", err)
		}
		want := []float64{90, 125, 160}
		if len(spreads) != len(want) {
			t.Fatalf("Expected %d spreads, got %d", len(want), len(spreads))
		}
		for i, s := range spreads {
			if s.Spread != want[i] {
				t.Errorf("spreads[%d] = %v, want %v", i, s.Spread, want[i])
			}
		}
	})

	t.Run("empty upsert is a no-op", func(t *testing.T) {
		repo := repository.NewPriceRepository(testutil.SetupTestDB(t))

		n, err := repo.UpsertPrices(nil)
		if err != nil || n != 0 {
			t.Errorf("UpsertPrices(nil) = %d, %v; want 0, nil", n, err)
		}
	})
}

// TestCalculationRepository tests storing, streaming and deleting calculations.
//
// WHY: Exports stream periods straight from storage, so the stored order must
// be the build order. Deleting a portfolio must take its calculations with it.
func TestCalculationRepository(t *testing.T) {
	newCalc := func(id, portfolioID string, created time.Time) model.Calculation {
		return model.Calculation{
			ID:          id,
			PortfolioID: portfolioID,
			Options:     model.AnalysisConfig{IntervalType: model.Quarterly, Periods: 2},
			Result: &model.TimeSeries{
				IntervalType: model.Quarterly,
				Periods: []model.PortfolioPeriodRecord{
					{Period: model.PeriodFor(model.Quarterly, month(2024, 1))},
					{Period: model.PeriodFor(model.Quarterly, month(2024, 4))},
					{Period: model.PeriodFor(model.Quarterly, month(2024, 7))},
				},
			},
			CreatedAt: created,
		}
	}

	t.Run("save and load", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewCalculationRepository(db)
		p := testutil.CreatePortfolio(t, db, "Calc")
		created := time.Date(2026, 3, 4, 5, 6, 7, 123000000, time.UTC)

		if err := repo.SaveCalculation(newCalc("c1", p.ID, created)); err != nil {
			t.Fatalf("SaveCalculation() returned unexpected error: %v", err)
		}

		got, err := repo.GetCalculation("c1")
		if err != nil {
			t.Fatalf("GetCalculation() returned unexpected error: %v", err)
		}
		if !got.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
		}
		if got.Options.IntervalType != model.Quarterly || got.Options.Periods != 2 {
			t.Errorf("Unexpected options %+v", got.Options)
		}
		if got.Result == nil || len(got.Result.Periods) != 3 {
			t.Error("Expected 3 stored periods")
		}
	})

	t.Run("stream in order and stop on error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewCalculationRepository(db)
		p := testutil.CreatePortfolio(t, db, "Stream")
		if err := repo.SaveCalculation(newCalc("c1", p.ID, time.Now())); err != nil {
			t.Fatalf("SaveCalculation() returned unexpected error: %v", err)
		}

		var keys []string
		err := repo.StreamPeriods("c1", func(rec model.PortfolioPeriodRecord) error {
			keys = append(keys, rec.Period.Key)
			return nil
		})
		if err != nil {
			t.Fatalf("StreamPeriods() returned unexpected error: %v", err)
		}
		if len(keys) != 3 || keys[0] != "2024-Q1" || keys[2] != "2024-Q3" {
			t.Errorf("Unexpected streamed keys %v", keys)
		}

		stop := errors.New("stop")
		calls := 0
		err = repo.StreamPeriods("c1", func(model.PortfolioPeriodRecord) error {
			calls++
			return stop
		})
		if !errors.Is(err, stop) || calls != 1 {
			t.Errorf("Expected stop after first record, got %v after %d calls", err, calls)
		}
	})

	t.Run("unknown calculation", func(t *testing.T) {
		repo := repository.NewCalculationRepository(testutil.SetupTestDB(t))

		if _, err := repo.GetCalculation("missing"); !errors.Is(err, apperrors.ErrCalculationNotFound) {
			t.Errorf("Expected ErrCalculationNotFound, got %v", err)
		}
		err := repo.StreamPeriods("missing", func(model.PortfolioPeriodRecord) error { return nil })
		if !errors.Is(err, apperrors.ErrCalculationNotFound) {
			t.Errorf("Expected ErrCalculationNotFound from StreamPeriods, got %v", err)
		}
	})

	t.Run("unknown portfolio is rejected", func(t *testing.T) {
		repo := repository.NewCalculationRepository(testutil.SetupTestDB(t))

		if err := repo.SaveCalculation(newCalc("c1", "no-such-portfolio", time.Now())); err == nil {
			t.Error("Expected foreign key error, got nil")
		}
	})

	t.Run("delete before cutoff", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewCalculationRepository(db)
		p := testutil.CreatePortfolio(t, db, "Cleanup")
		cutoff := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

		for id, created := range map[string]time.Time{
			"older":   cutoff.Add(-time.Microsecond),
			"at":      cutoff,
			"younger": cutoff.Add(time.Hour),
		} {
			if err := repo.SaveCalculation(newCalc(id, p.ID, created)); err != nil {
				t.Fatalf("SaveCalculation(%s) returned unexpected error: %v", id, err)
			}
		}

		n, err := repo.DeleteCalculationsBefore(cutoff)
		if err != nil {
			t.Fatalf("DeleteCalculationsBefore() returned unexpected error: %v", err)
		}
		if n != 1 {
			t.Errorf("Deleted %d, want 1", n)
		}
		if _, err := repo.GetCalculation("at"); err != nil {
			t.Errorf("Expected calculation at cutoff kept, got %v", err)
		}
	})

	t.Run("cascade on portfolio delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewCalculationRepository(db)
		p := testutil.CreatePortfolio(t, db, "Cascade")
		if err := repo.SaveCalculation(newCalc("c1", p.ID, time.Now())); err != nil {
			t.Fatalf("SaveCalculation() returned unexpected error: %v", err)
		}

		if _, err := db.Exec("DELETE FROM portfolio WHERE id = ?", p.ID); err != nil {
			t.Fatalf("Failed to delete portfolio: %v", err)
		}

		if _, err := repo.GetCalculation("c1"); !errors.Is(err, apperrors.ErrCalculationNotFound) {
			t.Errorf("Expected calculation removed with portfolio, got %v", err)
		}
	})
}

// TestParseTime tests the stored timestamp formats.
func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-01", month(2025, 3)},
		{"2025-03-01T10:20:30.000100Z", time.Date(2025, 3, 1, 10, 20, 30, 100000, time.UTC)},
		{"2025-03-01T12:00:00+02:00", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := repository.ParseTime(tt.in)
			if err != nil {
				t.Fatalf("ParseTime() returned unexpected error: %v", err)
			}
			if !got.Equal(tt.want) || got.Location() != time.UTC {
				t.Errorf("ParseTime() = %v, want %v in UTC", got, tt.want)
			}
		})
	}

	if _, err := repository.ParseTime("03/01/2025"); err == nil {
		t.Error("Expected error for unsupported layout")
	}
}
