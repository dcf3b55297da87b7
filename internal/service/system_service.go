package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/database"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db             *sql.DB
	features       map[string]bool
	defaultHorizon int
	exportTTL      time.Duration
}

// SystemOption configures a SystemService.
type SystemOption func(*SystemService)

// WithBuildDefaults reports the server's default horizon and export link
// lifetime in the version response.
func WithBuildDefaults(horizonYears int, exportTTL time.Duration) SystemOption {
	return func(s *SystemService) {
		if horizonYears > 0 {
			s.defaultHorizon = horizonYears
		}
		s.exportTTL = exportTTL
	}
}

// NewSystemService creates a new SystemService. features lists optional
// capabilities reported by the version endpoint, such as event publishing.
func NewSystemService(db *sql.DB, features map[string]bool, opts ...SystemOption) *SystemService {
	if features == nil {
		features = map[string]bool{}
	}
	s := &SystemService{
		db:             db,
		features:       features,
		defaultHorizon: DefaultHorizonYears,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion reports the application version, the applied schema version and
// whether the database is behind the migrations embedded in this build.
func (s *SystemService) CheckVersion() (model.VersionInfo, error) {
	applied, err := database.SchemaVersion(s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}
	latest, err := database.LatestMigration()
	if err != nil {
		return model.VersionInfo{}, err
	}

	features := make(map[string]bool, len(s.features))
	for k, v := range s.features {
		features[k] = v
	}

	info := model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  strconv.FormatInt(applied, 10),
		Features:   features,
		Build:      s.buildCapabilities(),
	}
	if applied < latest {
		msg := fmt.Sprintf("database schema %d is behind migration %d", applied, latest)
		info.MigrationNeeded = true
		info.MigrationMessage = &msg
	}
	return info, nil
}

func (s *SystemService) buildCapabilities() model.BuildCapabilities {
	c := model.BuildCapabilities{
		IntervalTypes:       []model.Granularity{model.Monthly, model.Quarterly, model.Yearly},
		Scenarios:           []model.Scenario{model.ScenarioBase, model.ScenarioWorst, model.ScenarioVolume, model.ScenarioPrice},
		RevenueFilters:      []model.RevenueFilter{model.RevenueAll, model.RevenueEnergy, model.RevenueGreen},
		AssetTypes:          []model.AssetType{model.AssetSolar, model.AssetWind, model.AssetStorage, model.AssetBattery, model.AssetHydro, model.AssetGas},
		DefaultHorizonYears: s.defaultHorizon,
	}
	if s.exportTTL > 0 {
		c.ExportTokenTTL = s.exportTTL.String()
	}
	return c
}
