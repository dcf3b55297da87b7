package model

import "time"

// Portfolio is a stored portfolio document: a set of assets keyed by arbitrary ID
// plus the constants object shared by all of them.
type Portfolio struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	UserID    string                 `json:"userId,omitempty"`
	Assets    map[string]AssetConfig `json:"assets"`
	Constants PortfolioConstants     `json:"constants"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// PortfolioListing is the lightweight row returned when listing portfolios.
type PortfolioListing struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	AssetCount int       `json:"assetCount"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PortfolioConstants holds portfolio-wide modelling inputs. Only AssetCosts and
// the variation percentages are read by this service; everything else is kept
// for the consumers that own it.
type PortfolioConstants struct {
	AssetCosts map[string]AssetCost `json:"assetCosts,omitempty"`

	// Stress percentages used by the worst/volume/price scenarios. Zero means default.
	VolumeVariation      float64 `json:"volumeVariation,omitempty"`
	GreenPriceVariation  float64 `json:"greenPriceVariation,omitempty"`
	EnergyPriceVariation float64 `json:"EnergyPriceVariation,omitempty"`

	Escalation *EscalationSettings `json:"escalation,omitempty"`
}

// AssetCost is the per-asset cost lookup, keyed by asset name in PortfolioConstants.
type AssetCost struct {
	Capex                   *float64 `json:"capex,omitempty"`             // $M
	CalculatedGearing       *float64 `json:"calculatedGearing,omitempty"` // debt fraction 0..1
	EquityTimingUpfront     bool     `json:"equityTimingUpfront,omitempty"`
	OperatingCosts          float64  `json:"operatingCosts,omitempty"`          // $M per year
	OperatingCostEscalation float64  `json:"operatingCostEscalation,omitempty"` // % per year
}

// CostFor returns the cost entry for an asset name, or the zero value.
func (c PortfolioConstants) CostFor(assetName string) AssetCost {
	if c.AssetCosts == nil {
		return AssetCost{}
	}
	return c.AssetCosts[assetName]
}
