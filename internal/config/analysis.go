package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// AnalysisFile is the on-disk shape (YAML) of a CLI build.
type AnalysisFile struct {
	IntervalType  string            `yaml:"interval_type"`
	StartYear     int               `yaml:"start_year"`
	Periods       int               `yaml:"periods"`
	Scenario      string            `yaml:"scenario"`
	RevenueFilter string            `yaml:"revenue_filter"`
	Concurrency   int               `yaml:"concurrency"`
	Escalation    *EscalationConfig `yaml:"escalation"`
}

// EscalationConfig mirrors model.EscalationSettings.
type EscalationConfig struct {
	Enabled           bool    `yaml:"enabled"`
	Rate              float64 `yaml:"rate"`
	ReferenceYear     int     `yaml:"reference_year"`
	ApplyToStorage    bool    `yaml:"apply_to_storage"`
	ApplyToRenewables bool    `yaml:"apply_to_renewables"`
}

// LoadAnalysisFile reads and validates an analysis file.
func LoadAnalysisFile(path string) (*AnalysisFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis file: %w", err)
	}
	var a AnalysisFile
	if err := yaml.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("failed to parse analysis file: %w", err)
	}
	if _, err := a.AnalysisConfig(); err != nil {
		return nil, err
	}
	return &a, nil
}

// AnalysisConfig converts the file into build options.
func (a AnalysisFile) AnalysisConfig() (model.AnalysisConfig, error) {
	cfg := model.AnalysisConfig{
		StartYear:     a.StartYear,
		Periods:       a.Periods,
		Scenario:      model.Scenario(a.Scenario),
		RevenueFilter: model.RevenueFilter(a.RevenueFilter),
	}
	if a.IntervalType != "" {
		g, err := model.ParseGranularity(a.IntervalType)
		if err != nil {
			return model.AnalysisConfig{}, err
		}
		cfg.IntervalType = g
	}
	if !cfg.Scenario.Valid() {
		return model.AnalysisConfig{}, fmt.Errorf("unknown scenario %q", a.Scenario)
	}
	if !cfg.RevenueFilter.Valid() {
		return model.AnalysisConfig{}, fmt.Errorf("unknown revenue filter %q", a.RevenueFilter)
	}
	if a.Periods < 0 {
		return model.AnalysisConfig{}, fmt.Errorf("periods must not be negative, got %d", a.Periods)
	}
	if a.Concurrency < 0 {
		return model.AnalysisConfig{}, fmt.Errorf("concurrency must not be negative, got %d", a.Concurrency)
	}
	if e := a.Escalation; e != nil {
		cfg.Escalation = &model.EscalationSettings{
			Enabled:           e.Enabled,
			Rate:              e.Rate,
			ReferenceYear:     e.ReferenceYear,
			ApplyToStorage:    e.ApplyToStorage,
			ApplyToRenewables: e.ApplyToRenewables,
		}
	}
	return cfg, nil
}
