package service

import (
	"context"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// RevenueRequest is everything the revenue model may read for one asset in one
// operations period. Scenario, RevenueFilter and Escalation are passed through
// uninterpreted.
type RevenueRequest struct {
	AssetID        string
	Asset          model.AssetConfig
	Timeline       model.PhaseTimeline
	Period         model.Period
	Classification model.PhaseClassification
	Constants      model.PortfolioConstants
	Scenario       model.Scenario
	RevenueFilter  model.RevenueFilter
	Escalation     *model.EscalationSettings
}

// RevenueCalculator computes one asset's revenue for one operations period.
// Implementations may block on I/O and must be safe for concurrent use.
type RevenueCalculator interface {
	ComputeAssetPeriodRevenue(ctx context.Context, req RevenueRequest) (model.RevenueResult, error)
}

// PriceQuery identifies one merchant price. For storage, Profile is
// model.ProfileStorage and Type is the duration in hours ("2", "4", ...).
type PriceQuery struct {
	Profile    string
	Type       string
	Region     string
	Period     model.Period
	Escalation *model.EscalationSettings
}

// PriceLookup returns a merchant price in $/MWh.
// Implementations may block on I/O and must be safe for concurrent use.
type PriceLookup interface {
	MerchantPrice(ctx context.Context, q PriceQuery) (float64, error)
}

// zeroRevenue is used when a builder has no revenue model.
type zeroRevenue struct{}

func (zeroRevenue) ComputeAssetPeriodRevenue(context.Context, RevenueRequest) (model.RevenueResult, error) {
	return model.RevenueResult{}, nil
}
