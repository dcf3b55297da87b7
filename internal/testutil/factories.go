package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/repository"
)

// AssetBuilder provides a fluent interface for creating test assets.
//
// Example usage:
//
//	// Solar asset building through 2024, operating from 2025
//	asset := testutil.NewAsset().Build()
//
//	// Customized asset with raw record dates
//	asset := testutil.NewAsset().
//	    WithName("Wind Farm").
//	    WithType(model.AssetWind).
//	    WithConstructionStart("1/7/2023").
//	    WithOperationsStart("1/1/2025").
//	    Build()
type AssetBuilder struct {
	asset model.AssetConfig
}

// NewAsset creates an AssetBuilder with sensible defaults: a 100 MW solar
// asset in NSW under construction from 2024-01-01 and operating from 2025-01-01.
func NewAsset() *AssetBuilder {
	return &AssetBuilder{asset: model.AssetConfig{
		Name:                  MakeAssetName("Solar"),
		Type:                  model.AssetSolar,
		State:                 "NSW",
		Capacity:              100,
		ConstructionStartDate: "2024-01-01",
		AssetStartDate:        "2025-01-01",
	}}
}

// WithName sets a custom name.
func (b *AssetBuilder) WithName(name string) *AssetBuilder {
	b.asset.Name = name
	return b
}

// WithType sets the asset type.
func (b *AssetBuilder) WithType(t model.AssetType) *AssetBuilder {
	b.asset.Type = t
	return b
}

// WithState sets the region.
func (b *AssetBuilder) WithState(state string) *AssetBuilder {
	b.asset.State = state
	return b
}

// WithCapacity sets the capacity in MW.
func (b *AssetBuilder) WithCapacity(mw float64) *AssetBuilder {
	b.asset.Capacity = mw
	return b
}

// WithVolume sets the storage volume in MWh.
func (b *AssetBuilder) WithVolume(mwh float64) *AssetBuilder {
	b.asset.Volume = mwh
	return b
}

// WithConstructionStart sets the preferred construction start field to a raw value.
func (b *AssetBuilder) WithConstructionStart(raw any) *AssetBuilder {
	b.asset.ConstructionStartDate = raw
	return b
}

// WithLegacyConstructionStart clears the preferred field and sets the legacy one.
func (b *AssetBuilder) WithLegacyConstructionStart(raw any) *AssetBuilder {
	b.asset.ConstructionStartDate = nil
	b.asset.ConstructionStart = raw
	return b
}

// WithOperationsStart sets the operations start to a raw value.
func (b *AssetBuilder) WithOperationsStart(raw any) *AssetBuilder {
	b.asset.AssetStartDate = raw
	return b
}

// WithCapacityFactors sets the quarterly capacity factors in percent.
func (b *AssetBuilder) WithCapacityFactors(q1, q2, q3, q4 float64) *AssetBuilder {
	b.asset.QtrCapacityFactorQ1 = Float(q1)
	b.asset.QtrCapacityFactorQ2 = Float(q2)
	b.asset.QtrCapacityFactorQ3 = Float(q3)
	b.asset.QtrCapacityFactorQ4 = Float(q4)
	return b
}

// WithDegradation sets the annual degradation and volume loss adjustment in percent.
func (b *AssetBuilder) WithDegradation(annual, lossAdjustment float64) *AssetBuilder {
	b.asset.AnnualDegradation = Float(annual)
	b.asset.VolumeLossAdjustment = Float(lossAdjustment)
	return b
}

// WithContract appends an offtake contract.
func (b *AssetBuilder) WithContract(c model.Contract) *AssetBuilder {
	b.asset.Contracts = append(b.asset.Contracts, c)
	return b
}

// Build returns the asset.
func (b *AssetBuilder) Build() model.AssetConfig {
	return b.asset
}

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Document only
//	portfolio := testutil.NewPortfolio().
//	    WithAsset("a1", testutil.NewAsset().WithName("Solar A").Build()).
//	    WithCapex("Solar A", 200).
//	    Document()
//
//	// Stored in the database
//	portfolio := testutil.NewPortfolio().WithAsset("a1", asset).Build(t, db)
type PortfolioBuilder struct {
	portfolio model.Portfolio
}

// NewPortfolio creates a PortfolioBuilder with no assets.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{portfolio: model.Portfolio{
		ID:     MakeID(),
		Name:   MakePortfolioName("Test Portfolio"),
		Assets: map[string]model.AssetConfig{},
		Constants: model.PortfolioConstants{
			AssetCosts: map[string]model.AssetCost{},
		},
	}}
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.portfolio.Name = name
	return b
}

// WithAsset adds an asset under id.
func (b *PortfolioBuilder) WithAsset(id string, asset model.AssetConfig) *PortfolioBuilder {
	b.portfolio.Assets[id] = asset
	return b
}

// WithCapex sets the capex in $M for an asset name.
func (b *PortfolioBuilder) WithCapex(assetName string, capex float64) *PortfolioBuilder {
	cost := b.portfolio.Constants.AssetCosts[assetName]
	cost.Capex = Float(capex)
	b.portfolio.Constants.AssetCosts[assetName] = cost
	return b
}

// WithGearing sets the debt fraction for an asset name.
func (b *PortfolioBuilder) WithGearing(assetName string, gearing float64) *PortfolioBuilder {
	cost := b.portfolio.Constants.AssetCosts[assetName]
	cost.CalculatedGearing = Float(gearing)
	b.portfolio.Constants.AssetCosts[assetName] = cost
	return b
}

// WithOperatingCosts sets the annual opex ($M) and its escalation (%/yr) for an asset name.
func (b *PortfolioBuilder) WithOperatingCosts(assetName string, annual, escalation float64) *PortfolioBuilder {
	cost := b.portfolio.Constants.AssetCosts[assetName]
	cost.OperatingCosts = annual
	cost.OperatingCostEscalation = escalation
	b.portfolio.Constants.AssetCosts[assetName] = cost
	return b
}

// WithUpfrontEquity draws the whole capex in the first construction month for an asset name.
func (b *PortfolioBuilder) WithUpfrontEquity(assetName string) *PortfolioBuilder {
	cost := b.portfolio.Constants.AssetCosts[assetName]
	cost.EquityTimingUpfront = true
	b.portfolio.Constants.AssetCosts[assetName] = cost
	return b
}

// Document returns the portfolio without storing it.
func (b *PortfolioBuilder) Document() model.Portfolio {
	return b.portfolio
}

// Build stores the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	p := b.portfolio
	if err := repository.NewPortfolioRepository(db).SavePortfolio(&p); err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}
	return p
}

// Convenience functions

// CreatePortfolio stores a portfolio with the given name and a single default asset.
//
// Example usage:
//
//	portfolio := testutil.CreatePortfolio(t, db, "My Portfolio")
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).WithAsset("asset-1", NewAsset().Build()).Build(t, db)
}

// CreatePortfolios stores multiple portfolios with unique names.
func CreatePortfolios(t *testing.T, db *sql.DB, count int) []model.Portfolio {
	t.Helper()

	portfolios := make([]model.Portfolio, count)
	for i := 0; i < count; i++ {
		portfolios[i] = NewPortfolio().WithAsset("asset-1", NewAsset().Build()).Build(t, db)
	}
	return portfolios
}

// CreatePrice stores one monthly merchant price.
func CreatePrice(t *testing.T, db *sql.DB, profile, priceType, region string, month time.Time, price float64) {
	t.Helper()

	_, err := repository.NewPriceRepository(db).UpsertPrices([]model.MerchantPrice{{
		Profile: profile,
		Type:    priceType,
		Region:  region,
		Month:   month,
		Price:   price,
	}})
	if err != nil {
		t.Fatalf("Failed to create test price: %v", err)
	}
}

// CreateSpread stores one storage spread.
func CreateSpread(t *testing.T, db *sql.DB, region string, year int, duration, spread float64) {
	t.Helper()

	_, err := repository.NewPriceRepository(db).UpsertSpreads([]model.StorageSpread{{
		Region:   region,
		Year:     year,
		Duration: duration,
		Spread:   spread,
	}})
	if err != nil {
		t.Fatalf("Failed to create test spread: %v", err)
	}
}
