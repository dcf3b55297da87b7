package model

import "time"

// TimingPolicy selects how capex is drawn over construction.
type TimingPolicy string

const (
	TimingStraightLine TimingPolicy = "straight-line"
	TimingUpfront      TimingPolicy = "upfront"
)

// ConstructionResult is one asset's investment draw for one construction period.
// Monetary values are in $M.
type ConstructionResult struct {
	CapexDraw              float64      `json:"capexDraw"`
	EquityDraw             float64      `json:"equityDraw"`
	DebtDraw               float64      `json:"debtDraw"`
	CumulativeInvestment   float64      `json:"cumulativeInvestment"`
	TotalCapex             float64      `json:"totalCapex"`
	Gearing                float64      `json:"gearing"`
	ProgressRatio          float64      `json:"progressRatio"`
	MonthsIntoConstruction int          `json:"monthsIntoConstruction"`
	ConstructionMonths     int          `json:"constructionMonths"`
	Timing                 TimingPolicy `json:"timing"`
	CapexSource            string       `json:"capexSource"` // "asset" or "default"
}

// RevenueResult is one asset's operating revenue for one period.
// Revenue is in $M and Volume in MWh.
type RevenueResult struct {
	Total            float64 `json:"total"`
	ContractedGreen  float64 `json:"contractedGreen"`
	ContractedEnergy float64 `json:"contractedEnergy"`
	MerchantGreen    float64 `json:"merchantGreen"`
	MerchantEnergy   float64 `json:"merchantEnergy"`
	Volume           float64 `json:"volume"`
	GreenPercentage  float64 `json:"greenPercentage"`
	EnergyPercentage float64 `json:"energyPercentage"`
}

// AssetPeriodResult is the outcome for one asset in one period. At most one of
// Construction and Revenue is set; pre/post phases and failed cells carry neither.
type AssetPeriodResult struct {
	AssetID        string              `json:"assetId"`
	AssetName      string              `json:"assetName"`
	Phase          Phase               `json:"phase"`
	Classification PhaseClassification `json:"classification"`
	Construction   *ConstructionResult `json:"construction,omitempty"`
	Revenue        *RevenueResult      `json:"revenue,omitempty"`
	OperatingCost  float64             `json:"operatingCost"`
	Error          string              `json:"error,omitempty"`
}

// PortfolioAggregate is the portfolio rollup for one period.
type PortfolioAggregate struct {
	ConstructionAssets    int `json:"constructionAssets"`
	OperationalAssets     int `json:"operationalAssets"`
	PreConstructionAssets int `json:"preConstructionAssets"`
	PostOperationsAssets  int `json:"postOperationsAssets"`
	ErrorAssets           int `json:"errorAssets"`

	TotalRevenue     float64 `json:"totalRevenue"`
	ContractedGreen  float64 `json:"contractedGreen"`
	ContractedEnergy float64 `json:"contractedEnergy"`
	MerchantGreen    float64 `json:"merchantGreen"`
	MerchantEnergy   float64 `json:"merchantEnergy"`
	TotalVolume      float64 `json:"totalVolume"`

	TotalCapexDraw float64 `json:"totalCapexDraw"`
	TotalEquity    float64 `json:"totalEquity"`
	TotalDebt      float64 `json:"totalDebt"`

	// ConstructionCumulativeInvestment is the investment to date of the assets
	// under construction in this period. An asset drops out once it reaches
	// operations, so the value is not a portfolio running total.
	ConstructionCumulativeInvestment float64 `json:"constructionCumulativeInvestment"`

	TotalOperatingCost float64 `json:"totalOperatingCost"`
	CFADS              float64 `json:"cfads"`
	NetCashFlow        float64 `json:"netCashFlow"`

	WeightedAvgPrice     float64 `json:"weightedAvgPrice"` // $/MWh
	ContractedPercentage float64 `json:"contractedPercentage"`
}

// PortfolioPeriodRecord is one row of the time series. It is not modified after the build.
type PortfolioPeriodRecord struct {
	Period    Period                       `json:"period"`
	Aggregate PortfolioAggregate           `json:"aggregate"`
	Assets    map[string]AssetPeriodResult `json:"assets"`
}

// AssetStatus is the outcome of timeline derivation for one asset.
type AssetStatus string

const (
	AssetValid    AssetStatus = "valid"
	AssetExcluded AssetStatus = "excluded"
)

// AssetDiagnostic echoes the raw and resolved dates for one asset so callers can
// audit why it was included or excluded.
type AssetDiagnostic struct {
	AssetID                    string      `json:"assetId"`
	AssetName                  string      `json:"assetName"`
	Status                     AssetStatus `json:"status"`
	Reason                     string      `json:"reason,omitempty"`
	Field                      string      `json:"field,omitempty"`
	RawConstructionStart       any         `json:"rawConstructionStart"`
	RawOperationsStart         any         `json:"rawOperationsStart"`
	ConstructionStartSource    string      `json:"constructionStartSource,omitempty"`
	ConstructionStart          *time.Time  `json:"constructionStart,omitempty"`
	OperationalStart           *time.Time  `json:"operationalStart,omitempty"`
	OperationalEnd             *time.Time  `json:"operationalEnd,omitempty"`
	ConstructionDurationMonths int         `json:"constructionDurationMonths,omitempty"`
}

// CellError records an asset/period computation that was zeroed.
type CellError struct {
	AssetID   string `json:"assetId"`
	PeriodKey string `json:"periodKey"`
	Message   string `json:"message"`
}

// PortfolioBounds are the overall calendar bounds reported to callers.
type PortfolioBounds struct {
	EarliestConstructionStart time.Time `json:"earliestConstructionStart"`
	LatestOperationalEnd      time.Time `json:"latestOperationalEnd"`
	TotalMonths               int       `json:"totalMonths"`
	ConstructionMonths        int       `json:"constructionMonths"`
	OperationalMonths         int       `json:"operationalMonths"`
}

// SamplePrice is one merchant price reported in diagnostics for the analysis start year.
type SamplePrice struct {
	Profile string  `json:"profile"`
	Type    string  `json:"type"`
	Region  string  `json:"region"`
	Period  string  `json:"period"`
	Price   float64 `json:"price"`
}

// Diagnostics is returned next to every build result.
type Diagnostics struct {
	Assets         []AssetDiagnostic `json:"assets"`
	ValidAssets    int               `json:"validAssets"`
	ExcludedAssets int               `json:"excludedAssets"`
	Bounds         *PortfolioBounds  `json:"bounds,omitempty"`
	Calendar       *CalendarStats    `json:"calendar,omitempty"`
	CellErrors     []CellError       `json:"cellErrors,omitempty"`
	Warnings       []string          `json:"warnings,omitempty"`
	SamplePrices   []SamplePrice     `json:"samplePrices,omitempty"`

	// Set by portfolio validation only.
	AssetCount    int `json:"assetCount,omitempty"`
	ContractCount int `json:"contractCount,omitempty"`
}

// Summary holds whole-run totals derived from the time series.
type Summary struct {
	AssetCount           int     `json:"assetCount"`
	PeriodCount          int     `json:"periodCount"`
	TotalCapacity        float64 `json:"totalCapacity"` // MW
	TotalRevenue         float64 `json:"totalRevenue"`
	AverageAnnualRevenue float64 `json:"averageAnnualRevenue"`
	ContractedPercentage float64 `json:"contractedPercentage"`
	MerchantPercentage   float64 `json:"merchantPercentage"`
	TotalCapex           float64 `json:"totalCapex"`
	TotalEquity          float64 `json:"totalEquity"`
	TotalDebt            float64 `json:"totalDebt"`
	TotalOperatingCost   float64 `json:"totalOperatingCost"`
	TotalNetCashFlow     float64 `json:"totalNetCashFlow"`
}

// TimeSeries is the complete output of a portfolio build.
type TimeSeries struct {
	IntervalType Granularity             `json:"intervalType"`
	Periods      []PortfolioPeriodRecord `json:"periods"`
	Diagnostics  Diagnostics             `json:"diagnostics"`
	Summary      Summary                 `json:"summary"`
}
