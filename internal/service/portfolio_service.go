package service

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/repository"
)

// PortfolioService handles portfolio document operations: listing, loading,
// storing, and validating asset timelines without running a full build.
type PortfolioService struct {
	portfolioRepo  *repository.PortfolioRepository
	defaultHorizon int
}

// NewPortfolioService creates a new PortfolioService.
//
// Parameters:
//   - portfolioRepo: storage for portfolio documents
//   - defaultHorizon: operational horizon in years used by ValidatePortfolio when none is given
func NewPortfolioService(portfolioRepo *repository.PortfolioRepository, defaultHorizon int) *PortfolioService {
	if defaultHorizon <= 0 {
		defaultHorizon = DefaultHorizonYears
	}
	return &PortfolioService{
		portfolioRepo:  portfolioRepo,
		defaultHorizon: defaultHorizon,
	}
}

// GetAllPortfolios retrieves a listing of every stored portfolio.
func (s *PortfolioService) GetAllPortfolios() ([]model.PortfolioListing, error) {
	return s.portfolioRepo.GetPortfolios()
}

// GetPortfolio retrieves one portfolio document.
// Returns apperrors.ErrPortfolioNotFound if it does not exist.
func (s *PortfolioService) GetPortfolio(portfolioID string) (model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolioOnID(portfolioID)
}

// SavePortfolio creates or replaces a portfolio document. A portfolio without
// an ID gets a new one.
func (s *PortfolioService) SavePortfolio(p *model.Portfolio) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Assets == nil {
		p.Assets = map[string]model.AssetConfig{}
	}
	if err := s.portfolioRepo.SavePortfolio(p); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	return nil
}

// ValidatePortfolio derives every asset timeline and reports which assets would
// take part in a build. It never fails: invalid assets are reported in the
// diagnostics. When at least one asset is valid the portfolio bounds are filled.
//
// Input that does not exclude an asset but would silently weaken its revenue
// (storage without volume, undated or unpriced contracts, renewables without
// capacity factors) is reported in Warnings.
func (s *PortfolioService) ValidatePortfolio(p model.Portfolio, horizonYears int) model.Diagnostics {
	if horizonYears <= 0 {
		horizonYears = s.defaultHorizon
	}
	timelines, diag, _ := ResolveTimelines(p.Assets, horizonYears)
	diag.AssetCount = len(p.Assets)
	diag.Warnings, diag.ContractCount = assetDataWarnings(p.Assets)
	if len(timelines) == 0 {
		return diag
	}
	cal, err := BuildCalendar(timelines, model.Monthly)
	if err != nil {
		diag.Warnings = append(diag.Warnings, err.Error())
		return diag
	}
	diag.Bounds = PortfolioBounds(cal)
	stats := cal.Stats
	diag.Calendar = &stats
	return diag
}

// assetDataWarnings checks the revenue inputs of every asset, in asset ID order,
// and counts contracts. Contracts are numbered from 1 as users see them.
func assetDataWarnings(assets map[string]model.AssetConfig) ([]string, int) {
	ids := make([]string, 0, len(assets))
	for id := range assets {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var warnings []string
	contracts := 0
	for _, id := range ids {
		a := assets[id]
		if a.Type.IsStorage() && a.Volume <= 0 {
			warnings = append(warnings, fmt.Sprintf("storage asset %s: missing volume", id))
		}
		for i, c := range a.Contracts {
			contracts++
			if isAbsent(c.StartDate) {
				warnings = append(warnings, fmt.Sprintf("asset %s, contract %d: missing start date", id, i+1))
			}
			if isAbsent(c.EndDate) {
				warnings = append(warnings, fmt.Sprintf("asset %s, contract %d: missing end date", id, i+1))
			}
			if c.StrikePrice == 0 && c.GreenPrice == 0 && c.EnergyPrice == 0 {
				warnings = append(warnings, fmt.Sprintf("asset %s, contract %d: no pricing specified", id, i+1))
			}
		}
		if (a.Type == model.AssetSolar || a.Type == model.AssetWind) && !hasCapacityFactors(a) {
			warnings = append(warnings, fmt.Sprintf("asset %s: no quarterly capacity factors specified", id))
		}
	}
	return warnings, contracts
}

func hasCapacityFactors(a model.AssetConfig) bool {
	for q := 1; q <= 4; q++ {
		if v, ok := a.QuarterlyCapacityFactor(q); ok && v != 0 {
			return true
		}
	}
	return false
}
