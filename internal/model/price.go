package model

import (
	"fmt"
	"time"
)

// Price profiles and types as used in the merchant price tables.
const (
	ProfileBaseload = "baseload"
	ProfileSolar    = "solar"
	ProfileWind     = "wind"
	ProfileStorage  = "storage"

	PriceTypeEnergy = "Energy"
	PriceTypeGreen  = "green"
)

// MerchantPrice is one monthly merchant price row in $/MWh.
type MerchantPrice struct {
	Profile string    `json:"profile"`
	Type    string    `json:"type"`
	Region  string    `json:"region"`
	Month   time.Time `json:"month"`
	Price   float64   `json:"price"`
}

// StorageSpread is the annual arbitrage spread in $/MWh for a storage duration in hours.
type StorageSpread struct {
	Region   string  `json:"region"`
	Year     int     `json:"year"`
	Duration float64 `json:"duration"`
	Spread   float64 `json:"spread"`
}

// PriceImportResult reports a CSV import.
type PriceImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// AddRowError records a skipped CSV row.
func (r *PriceImportResult) AddRowError(line int, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("row %d: %v", line, err))
}
