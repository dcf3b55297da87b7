package testutil

import (
	"database/sql"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/repository"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/service"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		repository.NewPortfolioRepository(db),
		service.DefaultHorizonYears,
	)
}

func NewTestPriceCurveService(t *testing.T, db *sql.DB) *service.PriceCurveService {
	t.Helper()

	return service.NewPriceCurveService(repository.NewPriceRepository(db))
}

// NewTestExportTokens creates a token issuer with a fresh key.
func NewTestExportTokens(t *testing.T, ttl time.Duration) *service.ExportTokens {
	t.Helper()

	tokens, err := service.NewExportTokens("", ttl)
	if err != nil {
		t.Fatalf("Failed to create export tokens: %v", err)
	}
	return tokens
}

// NewTestCalculationService wires a CalculationService on db with the default
// revenue model backed by stored price curves. opts are applied last.
func NewTestCalculationService(t *testing.T, db *sql.DB, opts ...service.CalculationOption) *service.CalculationService {
	t.Helper()

	prices := NewTestPriceCurveService(t, db)
	builder := service.NewTimeSeriesBuilder(
		service.NewRevenueModel(prices),
		service.WithPriceLookup(prices),
	)

	opts = append([]service.CalculationOption{service.WithLogger(DiscardLogger())}, opts...)
	return service.NewCalculationService(
		repository.NewPortfolioRepository(db),
		repository.NewCalculationRepository(db),
		builder,
		NewTestExportTokens(t, time.Hour),
		opts...,
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, map[string]bool{"event_publishing": false},
		service.WithBuildDefaults(service.DefaultHorizonYears, 24*time.Hour))
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// MakeID generates a unique ID for testing.
func MakeID() string {
	return uuid.New().String()
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("Growth Portfolio")
//	// Returns: "Growth Portfolio ABC123"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// MakeAssetName generates a unique asset name for testing.
func MakeAssetName(base string) string {
	if base == "" {
		base = "Asset"
	}
	return base + " " + randomAlphanumeric(6)
}

func randomAlphanumeric(n int) string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))] //nolint:gosec // Test data
	}
	return string(b)
}
