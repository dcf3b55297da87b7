package model

// VersionInfo is reported by the version endpoint: the running build, the
// applied schema and what the time-series endpoint accepts.
type VersionInfo struct {
	AppVersion       string            `json:"app_version"`
	DbVersion        string            `json:"db_version"`
	Features         map[string]bool   `json:"features"`
	Build            BuildCapabilities `json:"build"`
	MigrationNeeded  bool              `json:"migration_needed"`
	MigrationMessage *string           `json:"migration_message,omitempty"`
}

// BuildCapabilities lists the accepted build options and the defaults applied
// when a request leaves them out.
type BuildCapabilities struct {
	IntervalTypes       []Granularity   `json:"interval_types"`
	Scenarios           []Scenario      `json:"scenarios"`
	RevenueFilters      []RevenueFilter `json:"revenue_filters"`
	AssetTypes          []AssetType     `json:"asset_types"`
	DefaultHorizonYears int             `json:"default_horizon_years"`
	ExportTokenTTL      string          `json:"export_token_ttl,omitempty"`
}
