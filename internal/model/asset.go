package model

// AssetType is the generation or storage technology of an asset.
type AssetType string

const (
	AssetSolar   AssetType = "solar"
	AssetWind    AssetType = "wind"
	AssetStorage AssetType = "storage"
	AssetBattery AssetType = "battery"
	AssetHydro   AssetType = "hydro"
	AssetGas     AssetType = "gas"
)

// IsStorage reports whether the asset earns spread revenue rather than generation revenue.
func (t AssetType) IsStorage() bool {
	return t == AssetStorage || t == AssetBattery
}

// Valid reports whether t is a known asset type.
func (t AssetType) Valid() bool {
	switch t {
	case AssetSolar, AssetWind, AssetStorage, AssetBattery, AssetHydro, AssetGas:
		return true
	}
	return false
}

// AssetConfig is one asset as stored in a portfolio document.
//
// Date fields are kept raw (string, epoch number or nil) because records are
// inconsistent about format; they are resolved when the timeline is built.
// The construction start lives under one of two names, see
// service.ConstructionStartFields for the preference order.
type AssetConfig struct {
	Name     string    `json:"name"`
	Type     AssetType `json:"type"`
	State    string    `json:"state"`
	Capacity float64   `json:"capacity"`         // MW
	Volume   float64   `json:"volume,omitempty"` // MWh, storage only

	ConstructionStartDate any `json:"constructionStartDate,omitempty"`
	ConstructionStart     any `json:"constructionStart,omitempty"`
	AssetStartDate        any `json:"assetStartDate,omitempty"`

	VolumeLossAdjustment *float64 `json:"volumeLossAdjustment,omitempty"` // %, default 95
	AnnualDegradation    *float64 `json:"annualDegradation,omitempty"`    // %/yr, default 0.5

	QtrCapacityFactorQ1 *float64 `json:"qtrCapacityFactor_q1,omitempty"`
	QtrCapacityFactorQ2 *float64 `json:"qtrCapacityFactor_q2,omitempty"`
	QtrCapacityFactorQ3 *float64 `json:"qtrCapacityFactor_q3,omitempty"`
	QtrCapacityFactorQ4 *float64 `json:"qtrCapacityFactor_q4,omitempty"`

	Contracts []Contract `json:"contracts,omitempty"`
}

// QuarterlyCapacityFactor returns the capacity factor percentage for quarter q (1..4), if set.
func (a AssetConfig) QuarterlyCapacityFactor(q int) (float64, bool) {
	var v *float64
	switch q {
	case 1:
		v = a.QtrCapacityFactorQ1
	case 2:
		v = a.QtrCapacityFactorQ2
	case 3:
		v = a.QtrCapacityFactorQ3
	case 4:
		v = a.QtrCapacityFactorQ4
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// ContractType is the product sold under an offtake contract.
type ContractType string

const (
	ContractBundled ContractType = "bundled"
	ContractGreen   ContractType = "green"
	ContractEnergy  ContractType = "Energy"
	ContractFixed   ContractType = "fixed"
	ContractCfD     ContractType = "cfd"
	ContractTolling ContractType = "tolling"
)

// Contract is an offtake agreement attached to an asset.
type Contract struct {
	ID               string       `json:"id,omitempty"`
	Counterparty     string       `json:"counterparty,omitempty"`
	Type             ContractType `json:"type"`
	StartDate        any          `json:"startDate"`
	EndDate          any          `json:"endDate"`
	BuyersPercentage float64      `json:"buyersPercentage"`
	StrikePrice      float64      `json:"strikePrice,omitempty"`
	GreenPrice       float64      `json:"greenPrice,omitempty"`
	EnergyPrice      float64      `json:"EnergyPrice,omitempty"`
	Indexation       float64      `json:"indexation,omitempty"`
	HasFloor         bool         `json:"hasFloor,omitempty"`
	FloorValue       float64      `json:"floorValue,omitempty"`
}
