package model

import "time"

// Phase is an asset's lifecycle state within a period.
type Phase string

const (
	PhasePreConstruction Phase = "pre-construction"
	PhaseConstruction    Phase = "construction"
	PhaseOperations      Phase = "operations"
	PhasePostOperations  Phase = "post-operations"

	// PhaseError marks a zeroed asset/period cell whose computation failed.
	PhaseError Phase = "error"
)

// PhaseTimeline is the validated lifecycle of one asset.
// ConstructionStart < OperationalStart < OperationalEnd always holds.
type PhaseTimeline struct {
	AssetID                    string    `json:"assetId"`
	AssetName                  string    `json:"assetName"`
	AssetType                  AssetType `json:"assetType"`
	ConstructionStart          time.Time `json:"constructionStart"`
	ConstructionStartSource    string    `json:"constructionStartSource"`
	ConstructionEnd            time.Time `json:"constructionEnd"` // day before OperationalStart
	OperationalStart           time.Time `json:"operationalStart"`
	OperationalEnd             time.Time `json:"operationalEnd"` // exclusive
	ConstructionDurationMonths int       `json:"constructionDurationMonths"`
	OperationalDurationMonths  int       `json:"operationalDurationMonths"`
	HorizonYears               int       `json:"horizonYears"`
}

// PhaseClassification places one asset in one period.
type PhaseClassification struct {
	Phase                  Phase `json:"phase"`
	IsConstructionPhase    bool  `json:"isConstructionPhase"`
	IsOperationalPhase     bool  `json:"isOperationalPhase"`
	DaysIntoPhase          int   `json:"daysIntoPhase"`
	DaysRemainingInPhase   int   `json:"daysRemainingInPhase"`
	MonthsIntoConstruction int   `json:"monthsIntoConstruction,omitempty"`
}
