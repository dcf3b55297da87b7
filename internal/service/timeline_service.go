package service

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// Field names read from asset records.
const (
	FieldConstructionStartDate = "constructionStartDate"
	FieldConstructionStart     = "constructionStart"
	FieldOperationsStart       = "assetStartDate"
	FieldHorizon               = "periods"
)

// ConstructionStartFields is the preference order for the construction start:
// the first field that is present is used, and a present but unparseable value
// fails the asset rather than falling through to the next field.
var ConstructionStartFields = []string{FieldConstructionStartDate, FieldConstructionStart}

// DaysPerMonth is the month length used only for the reported
// constructionDurationMonths. A leap year of construction (366 days) counts as
// twelve months. Cash flows use calendar months.
const DaysPerMonth = 30.5

// ResolvedDate is the tagged outcome of a field lookup: the instant together
// with the field it came from and the raw value found there.
type ResolvedDate struct {
	Time  time.Time
	Field string
	Raw   any
}

func fieldValue(asset model.AssetConfig, field string) any {
	switch field {
	case FieldConstructionStartDate:
		return asset.ConstructionStartDate
	case FieldConstructionStart:
		return asset.ConstructionStart
	case FieldOperationsStart:
		return asset.AssetStartDate
	}
	return nil
}

func isAbsent(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case time.Time:
		return v.IsZero()
	}
	return false
}

// lookupDate resolves the first present field of fields. It returns missing
// when none is present.
func lookupDate(asset model.AssetConfig, fields []string, missing error) (ResolvedDate, error) {
	for _, f := range fields {
		raw := fieldValue(asset, f)
		if isAbsent(raw) {
			continue
		}
		t, err := ResolveDate(raw)
		if err != nil {
			return ResolvedDate{Field: f, Raw: raw}, err
		}
		return ResolvedDate{Time: t, Field: f, Raw: raw}, nil
	}
	return ResolvedDate{Field: fields[0]}, missing
}

// ResolveConstructionStart applies ConstructionStartFields to asset.
func ResolveConstructionStart(asset model.AssetConfig) (ResolvedDate, error) {
	return lookupDate(asset, ConstructionStartFields, apperrors.ErrMissingConstructionDate)
}

// ResolveOperationsStart reads the operations start field.
func ResolveOperationsStart(asset model.AssetConfig) (ResolvedDate, error) {
	return lookupDate(asset, []string{FieldOperationsStart}, apperrors.ErrMissingOperationsDate)
}

// BuildTimeline derives an asset's phase timeline.
//
// It never substitutes default dates. Failures are returned as
// *apperrors.TimelineError wrapping ErrMissingConstructionDate,
// ErrMissingOperationsDate, ErrInvalidPhaseOrder, ErrInvalidHorizon or a *DateParseError, and the
// asset must be excluded from the run.
//
// Parameters:
//   - id: The asset's key in the portfolio document
//   - asset: The raw asset record
//   - horizonYears: Analysis horizon; operationalEnd = operationalStart + horizonYears
//
// The result depends only on the arguments.
func BuildTimeline(id string, asset model.AssetConfig, horizonYears int) (model.PhaseTimeline, error) {
	fail := func(field string, raw any, err error) (model.PhaseTimeline, error) {
		return model.PhaseTimeline{}, &apperrors.TimelineError{
			AssetID:   id,
			AssetName: asset.Name,
			Field:     field,
			Raw:       raw,
			Err:       err,
		}
	}

	cs, err := ResolveConstructionStart(asset)
	if err != nil {
		return fail(cs.Field, cs.Raw, err)
	}
	ops, err := ResolveOperationsStart(asset)
	if err != nil {
		return fail(ops.Field, ops.Raw, err)
	}

	if !cs.Time.Before(ops.Time) {
		return model.PhaseTimeline{}, &apperrors.TimelineError{
			AssetID:           id,
			AssetName:         asset.Name,
			Field:             cs.Field,
			Raw:               cs.Raw,
			ConstructionStart: cs.Time,
			OperationsStart:   ops.Time,
			Err:               apperrors.ErrInvalidPhaseOrder,
		}
	}
	if horizonYears <= 0 {
		return fail(FieldHorizon, horizonYears,
			fmt.Errorf("%w, got %d", apperrors.ErrInvalidHorizon, horizonYears))
	}

	days := ops.Time.Sub(cs.Time).Hours() / 24
	return model.PhaseTimeline{
		AssetID:                    id,
		AssetName:                  asset.Name,
		AssetType:                  asset.Type,
		ConstructionStart:          cs.Time,
		ConstructionStartSource:    cs.Field,
		ConstructionEnd:            ops.Time.AddDate(0, 0, -1),
		OperationalStart:           ops.Time,
		OperationalEnd:             addYearsClamped(ops.Time, horizonYears),
		ConstructionDurationMonths: int(math.Ceil(days / DaysPerMonth)),
		OperationalDurationMonths:  horizonYears * 12,
		HorizonYears:               horizonYears,
	}, nil
}

// ResolveTimelines builds a timeline for every asset, in asset ID order.
// Failed assets are reported in the returned diagnostics and failure list and
// are absent from the timeline map.
func ResolveTimelines(assets map[string]model.AssetConfig, horizonYears int) (map[string]model.PhaseTimeline, model.Diagnostics, []*apperrors.TimelineError) {
	ids := make([]string, 0, len(assets))
	for id := range assets {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	timelines := make(map[string]model.PhaseTimeline, len(ids))
	diag := model.Diagnostics{Assets: make([]model.AssetDiagnostic, 0, len(ids))}
	var failures []*apperrors.TimelineError

	for _, id := range ids {
		asset := assets[id]
		tl, err := BuildTimeline(id, asset, horizonYears)
		diag.Assets = append(diag.Assets, assetDiagnostic(id, asset, tl, err))
		if err != nil {
			var te *apperrors.TimelineError
			if !errors.As(err, &te) {
				te = &apperrors.TimelineError{AssetID: id, AssetName: asset.Name, Err: err}
			}
			failures = append(failures, te)
			diag.ExcludedAssets++
			continue
		}
		timelines[id] = tl
		diag.ValidAssets++
	}
	return timelines, diag, failures
}

func assetDiagnostic(id string, asset model.AssetConfig, tl model.PhaseTimeline, err error) model.AssetDiagnostic {
	d := model.AssetDiagnostic{
		AssetID:            id,
		AssetName:          asset.Name,
		RawOperationsStart: asset.AssetStartDate,
	}
	// Echo whichever construction field the lookup would have read.
	d.RawConstructionStart = asset.ConstructionStartDate
	if isAbsent(d.RawConstructionStart) {
		d.RawConstructionStart = asset.ConstructionStart
	}

	if err != nil {
		d.Status = model.AssetExcluded
		d.Reason = err.Error()
		var te *apperrors.TimelineError
		if errors.As(err, &te) {
			d.Field = te.Field
			if !te.ConstructionStart.IsZero() {
				cs, os := te.ConstructionStart, te.OperationsStart
				d.ConstructionStart, d.OperationalStart = &cs, &os
			}
		}
		return d
	}

	d.Status = model.AssetValid
	d.ConstructionStartSource = tl.ConstructionStartSource
	d.ConstructionStart = &tl.ConstructionStart
	d.OperationalStart = &tl.OperationalStart
	d.OperationalEnd = &tl.OperationalEnd
	d.ConstructionDurationMonths = tl.ConstructionDurationMonths
	return d
}
