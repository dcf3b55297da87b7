package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/repository"
)

// DefaultMerchantPrice is returned in $/MWh when no price row is found.
const DefaultMerchantPrice = 50.0

// PriceSearchYears is how far back a missing monthly price is searched.
const PriceSearchYears = 5

// PriceCurveService implements PriceLookup on top of the stored price tables.
type PriceCurveService struct {
	repo *repository.PriceRepository
}

// NewPriceCurveService creates a new PriceCurveService.
func NewPriceCurveService(repo *repository.PriceRepository) *PriceCurveService {
	return &PriceCurveService{repo: repo}
}

// MerchantPrice returns the escalated merchant price for a query.
//
// Generation prices are the mean over the period's months of each month's
// price, where a missing month falls back to the latest earlier price within
// PriceSearchYears and then to DefaultMerchantPrice. Storage prices are the
// spread for the period's year, linearly interpolated by duration (q.Type).
func (s *PriceCurveService) MerchantPrice(ctx context.Context, q PriceQuery) (float64, error) {
	var base float64
	var err error
	if q.Profile == model.ProfileStorage {
		base, err = s.storageSpread(ctx, q)
	} else {
		base, err = s.monthlyPrice(ctx, q)
	}
	if err != nil {
		return 0, err
	}
	return base * EscalationFactor(q.Escalation, q.Profile == model.ProfileStorage, q.Period.Year), nil
}

func (s *PriceCurveService) monthlyPrice(ctx context.Context, q PriceQuery) (float64, error) {
	months := q.Period.MonthStarts()
	var sum float64
	for _, m := range months {
		price, _, err := s.repo.GetLatestPrice(ctx, q.Profile, q.Type, strings.ToUpper(q.Region), m, m.AddDate(-PriceSearchYears, 0, 0))
		if errors.Is(err, apperrors.ErrPriceNotFound) {
			price = DefaultMerchantPrice
		} else if err != nil {
			return 0, fmt.Errorf("failed to look up %s %s price in %s: %w", q.Profile, q.Type, q.Region, err)
		}
		sum += price
	}
	return sum / float64(len(months)), nil
}

func (s *PriceCurveService) storageSpread(ctx context.Context, q PriceQuery) (float64, error) {
	duration, err := strconv.ParseFloat(q.Type, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid storage duration %q: %w", q.Type, err)
	}
	spreads, err := s.repo.GetSpreads(ctx, strings.ToUpper(q.Region), q.Period.Year)
	if err != nil {
		return 0, fmt.Errorf("failed to look up storage spreads in %s: %w", q.Region, err)
	}
	return InterpolateSpread(spreads, duration), nil
}

// InterpolateSpread returns the spread for duration from spreads sorted by
// duration: linear between the nearest durations on either side, the nearest
// one when duration is outside the range, DefaultMerchantPrice when empty.
func InterpolateSpread(spreads []model.StorageSpread, duration float64) float64 {
	if len(spreads) == 0 {
		return DefaultMerchantPrice
	}
	lower, upper := -1, -1
	for i, sp := range spreads {
		if sp.Duration <= duration {
			lower = i
		}
		if sp.Duration >= duration && upper == -1 {
			upper = i
		}
	}
	switch {
	case lower >= 0 && upper >= 0:
		lo, hi := spreads[lower], spreads[upper]
		if lo.Duration == hi.Duration {
			return lo.Spread
		}
		return lo.Spread + (hi.Spread-lo.Spread)*(duration-lo.Duration)/(hi.Duration-lo.Duration)
	case lower >= 0:
		return spreads[lower].Spread
	default:
		return spreads[upper].Spread
	}
}

// EscalationFactor is (1 + rate%)^(year - referenceYear) when escalation is
// enabled for the profile class, else 1. Years before the reference year are
// not de-escalated.
func EscalationFactor(esc *model.EscalationSettings, storage bool, year int) float64 {
	if esc == nil || !esc.Enabled {
		return 1
	}
	if storage && !esc.ApplyToStorage || !storage && !esc.ApplyToRenewables {
		return 1
	}
	years := max(0, year-esc.ReferenceYear)
	return math.Pow(1+esc.Rate/100, float64(years))
}

// GetPriceData returns stored monthly prices for a region and asset type.
func (s *PriceCurveService) GetPriceData(region string, assetType model.AssetType, year int) ([]model.MerchantPrice, error) {
	profile := string(assetType)
	if assetType.IsStorage() {
		profile = model.ProfileStorage
	}
	return s.repo.GetPrices(strings.ToUpper(region), profile, year)
}

var (
	priceCSVHeaders  = []string{"profile", "type", "region", "time", "price"}
	spreadCSVHeaders = []string{"region", "year", "duration", "spread"}
)

// ImportPrices reads monthly prices from CSV with the header
// profile,type,region,time,price. The time column follows the asset-record
// date policy (day/month/year). Invalid rows are skipped and reported.
func (s *PriceCurveService) ImportPrices(r io.Reader) (model.PriceImportResult, error) {
	var result model.PriceImportResult
	var prices []model.MerchantPrice

	err := readCSV(r, priceCSVHeaders, func(line int, rec []string) {
		month, err := ResolveDate(rec[3])
		if err != nil {
			result.AddRowError(line, err)
			return
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[4]), 64)
		if err != nil {
			result.AddRowError(line, fmt.Errorf("invalid price %q", rec[4]))
			return
		}
		prices = append(prices, model.MerchantPrice{
			Profile: strings.TrimSpace(rec[0]),
			Type:    strings.TrimSpace(rec[1]),
			Region:  strings.ToUpper(strings.TrimSpace(rec[2])),
			Month:   month,
			Price:   price,
		})
	}, result.AddRowError)
	if err != nil {
		return result, err
	}

	result.Skipped = len(result.Errors)
	if len(prices) == 0 {
		return result, nil
	}
	n, err := s.repo.UpsertPrices(prices)
	if err != nil {
		return result, fmt.Errorf("failed to store prices: %w", err)
	}
	result.Imported = n
	return result, nil
}

// ImportSpreads reads storage spreads from CSV with the header region,year,duration,spread.
func (s *PriceCurveService) ImportSpreads(r io.Reader) (model.PriceImportResult, error) {
	var result model.PriceImportResult
	var spreads []model.StorageSpread

	err := readCSV(r, spreadCSVHeaders, func(line int, rec []string) {
		year, yErr := strconv.Atoi(strings.TrimSpace(rec[1]))
		duration, dErr := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		spread, sErr := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if err := errors.Join(yErr, dErr, sErr); err != nil {
			result.AddRowError(line, err)
			return
		}
		spreads = append(spreads, model.StorageSpread{
			Region:   strings.ToUpper(strings.TrimSpace(rec[0])),
			Year:     year,
			Duration: duration,
			Spread:   spread,
		})
	}, result.AddRowError)
	if err != nil {
		return result, err
	}

	result.Skipped = len(result.Errors)
	if len(spreads) == 0 {
		return result, nil
	}
	n, err := s.repo.UpsertSpreads(spreads)
	if err != nil {
		return result, fmt.Errorf("failed to store spreads: %w", err)
	}
	result.Imported = n
	return result, nil
}

// readCSV checks the header row and calls row for every data row with its
// 1-indexed line number. Rows with the wrong number of fields go to rowErr.
func readCSV(r io.Reader, headers []string, row func(line int, rec []string), rowErr func(line int, err error)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(headers)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidCSVHeaders, err)
	}
	got := make([]string, len(header))
	for i, h := range header {
		got[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	if !slices.Equal(got, headers) {
		return fmt.Errorf("%w: expected %s, got %s", apperrors.ErrInvalidCSVHeaders,
			strings.Join(headers, ","), strings.Join(got, ","))
	}

	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if errors.Is(err, csv.ErrFieldCount) {
			rowErr(line, err)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		row(line, rec)
	}
}

// SamplePrices reports the January merchant prices of cfg.StartYear for every
// distinct profile, type and region among the valid assets. Lookup failures
// become warnings.
func SamplePrices(ctx context.Context, prices PriceLookup, assets map[string]model.AssetConfig, timelines map[string]model.PhaseTimeline, cfg model.AnalysisConfig) ([]model.SamplePrice, []string) {
	period := model.PeriodFor(model.Monthly, jan(cfg.StartYear))
	seen := map[string]bool{}
	var queries []PriceQuery

	ids := make([]string, 0, len(timelines))
	for id := range timelines {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		asset := assets[id]
		var qs []PriceQuery
		if asset.Type.IsStorage() {
			duration := DefaultStorageDuration
			if asset.Capacity > 0 && asset.Volume > 0 {
				duration = asset.Volume / asset.Capacity
			}
			qs = append(qs, PriceQuery{Profile: model.ProfileStorage, Type: strconv.FormatFloat(duration, 'f', -1, 64)})
		} else {
			qs = append(qs,
				PriceQuery{Profile: string(asset.Type), Type: model.PriceTypeEnergy},
				PriceQuery{Profile: string(asset.Type), Type: model.PriceTypeGreen})
		}
		for _, q := range qs {
			q.Region, q.Period, q.Escalation = asset.State, period, cfg.Escalation
			key := q.Profile + "|" + q.Type + "|" + q.Region
			if !seen[key] {
				seen[key] = true
				queries = append(queries, q)
			}
		}
	}

	var samples []model.SamplePrice
	var warnings []string
	for _, q := range queries {
		p, err := prices.MerchantPrice(ctx, q)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("sample price %s %s %s: %v", q.Profile, q.Type, q.Region, err))
			continue
		}
		samples = append(samples, model.SamplePrice{
			Profile: q.Profile, Type: q.Type, Region: q.Region, Period: period.Key, Price: round(p),
		})
	}
	return samples, warnings
}
