package request

import "github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"

// SavePortfolioRequest is the body of PUT /api/portfolio/{uuid}.
type SavePortfolioRequest struct {
	Name      string                       `json:"name"`
	UserID    string                       `json:"userId,omitempty"`
	Assets    map[string]model.AssetConfig `json:"assets"`
	Constants model.PortfolioConstants     `json:"constants"`
}

// ValidatePortfolioRequest is the body of POST /api/portfolio/validate.
// Periods is the operational horizon in years; zero uses the server default.
type ValidatePortfolioRequest struct {
	Assets    map[string]model.AssetConfig `json:"assets"`
	Constants model.PortfolioConstants     `json:"constants"`
	Periods   int                          `json:"periods,omitempty"`
}

// TimeSeriesRequest is the body of POST /api/portfolio/{uuid}/timeseries.
type TimeSeriesRequest struct {
	IntervalType       string                    `json:"intervalType"`
	StartYear          int                       `json:"startYear,omitempty"`
	Periods            int                       `json:"periods,omitempty"`
	Scenario           string                    `json:"scenario,omitempty"`
	RevenueFilter      string                    `json:"revenueFilter,omitempty"`
	EscalationSettings *model.EscalationSettings `json:"escalationSettings,omitempty"`
}
