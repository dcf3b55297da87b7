package service

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// DefaultConcurrency bounds per-asset fan-out within a period when none is configured.
const DefaultConcurrency = 8

// DefaultHorizonYears is used when a build does not specify one.
const DefaultHorizonYears = 25

// TimeSeriesBuilder turns a portfolio document into a period-by-period cash-flow
// time series. A builder holds no per-build state and may be shared.
type TimeSeriesBuilder struct {
	revenue        RevenueCalculator
	prices         PriceLookup
	concurrency    int
	defaultHorizon int
}

// BuilderOption customises a TimeSeriesBuilder.
type BuilderOption func(*TimeSeriesBuilder)

// WithConcurrency bounds how many assets are computed at once within a period.
func WithConcurrency(n int) BuilderOption {
	return func(b *TimeSeriesBuilder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithDefaultHorizon sets the horizon used when AnalysisConfig.Periods is zero.
func WithDefaultHorizon(years int) BuilderOption {
	return func(b *TimeSeriesBuilder) {
		if years > 0 {
			b.defaultHorizon = years
		}
	}
}

// WithPriceLookup enables sample prices in diagnostics.
func WithPriceLookup(p PriceLookup) BuilderOption {
	return func(b *TimeSeriesBuilder) {
		b.prices = p
	}
}

// NewTimeSeriesBuilder creates a builder. A nil revenue calculator yields zero
// revenue for every operations period.
func NewTimeSeriesBuilder(revenue RevenueCalculator, opts ...BuilderOption) *TimeSeriesBuilder {
	if revenue == nil {
		revenue = zeroRevenue{}
	}
	b := &TimeSeriesBuilder{
		revenue:        revenue,
		concurrency:    DefaultConcurrency,
		defaultHorizon: DefaultHorizonYears,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs the whole pipeline for one portfolio:
//
//  1. derive a timeline per asset, excluding failures into diagnostics
//  2. fail with *apperrors.EmptyPortfolioError if no asset survived
//  3. build the calendar at the requested granularity
//  4. for each period in order, classify every asset and compute its cell
//     (construction draw, revenue, or zero), folding the cells into the
//     period aggregate once all of them are done
//
// A failing cell is zeroed with phase "error" and recorded in
// Diagnostics.CellErrors; it never aborts the build. Cancelling ctx does.
func (b *TimeSeriesBuilder) Build(ctx context.Context, portfolio model.Portfolio, cfg model.AnalysisConfig) (*model.TimeSeries, error) {
	granularity := cfg.IntervalType
	if granularity == "" {
		granularity = model.Monthly
	}
	horizon := cfg.Periods
	if horizon == 0 {
		horizon = b.defaultHorizon
	}
	if cfg.Escalation == nil {
		cfg.Escalation = portfolio.Constants.Escalation
	}

	timelines, diag, failures := ResolveTimelines(portfolio.Assets, horizon)
	if len(timelines) == 0 {
		return nil, &apperrors.EmptyPortfolioError{Failures: failures}
	}

	cal, err := BuildCalendar(timelines, granularity)
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar: %w", err)
	}
	diag.Bounds = PortfolioBounds(cal)
	diag.Calendar = &cal.Stats

	ids := make([]string, 0, len(timelines))
	for id := range timelines {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	records := make([]model.PortfolioPeriodRecord, 0, len(cal.Periods))
	constructionSeen := make(map[string]bool, len(ids))

	for _, period := range cal.Periods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cells, err := b.computePeriod(ctx, ids, timelines, portfolio, cfg, period)
		if err != nil {
			return nil, err
		}

		totals := NewPortfolioTotals()
		assets := make(map[string]model.AssetPeriodResult, len(ids))
		for i, id := range ids {
			cell := cells[i]
			totals.Fold(cell)
			assets[id] = cell
			if cell.Classification.Phase == model.PhaseConstruction {
				constructionSeen[id] = true
			}
			if cell.Phase == model.PhaseError {
				diag.CellErrors = append(diag.CellErrors, model.CellError{
					AssetID:   id,
					PeriodKey: period.Key,
					Message:   cell.Error,
				})
			}
		}
		records = append(records, model.PortfolioPeriodRecord{
			Period:    period,
			Aggregate: totals.Finalize(),
			Assets:    assets,
		})
	}

	for _, id := range ids {
		if !constructionSeen[id] {
			tl := timelines[id]
			diag.Warnings = append(diag.Warnings, fmt.Sprintf(
				"asset %s: construction %s to %s contains no %s period anchor; no capex drawn",
				id, tl.ConstructionStart.Format("2006-01-02"), tl.OperationalStart.Format("2006-01-02"), granularity))
		}
	}

	if b.prices != nil && cfg.StartYear > 0 {
		samples, warnings := SamplePrices(ctx, b.prices, portfolio.Assets, timelines, cfg)
		diag.SamplePrices = samples
		diag.Warnings = append(diag.Warnings, warnings...)
	}

	ts := &model.TimeSeries{
		IntervalType: granularity,
		Periods:      records,
		Diagnostics:  diag,
	}
	ts.Summary = Summarize(portfolio, timelines, cal, records)
	return ts, nil
}

// computePeriod computes every asset's cell for one period with bounded
// concurrency. Results are indexed like ids.
func (b *TimeSeriesBuilder) computePeriod(
	ctx context.Context,
	ids []string,
	timelines map[string]model.PhaseTimeline,
	portfolio model.Portfolio,
	cfg model.AnalysisConfig,
	period model.Period,
) ([]model.AssetPeriodResult, error) {
	cells := make([]model.AssetPeriodResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			cells[i] = b.computeCell(gctx, id, portfolio.Assets[id], timelines[id], portfolio, cfg, period)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cells, nil
}

// computeCell computes one asset in one period. Errors and panics are converted
// into a zeroed cell with phase "error".
func (b *TimeSeriesBuilder) computeCell(
	ctx context.Context,
	id string,
	asset model.AssetConfig,
	tl model.PhaseTimeline,
	portfolio model.Portfolio,
	cfg model.AnalysisConfig,
	period model.Period,
) (cell model.AssetPeriodResult) {
	class := Classify(period, tl)
	cell = model.AssetPeriodResult{
		AssetID:        id,
		AssetName:      asset.Name,
		Phase:          class.Phase,
		Classification: class,
	}

	fail := func(err error) model.AssetPeriodResult {
		return model.AssetPeriodResult{
			AssetID:        id,
			AssetName:      asset.Name,
			Phase:          model.PhaseError,
			Classification: class,
			Error:          (&apperrors.AssetComputationError{AssetID: id, PeriodKey: period.Key, Err: err}).Error(),
		}
	}
	defer func() {
		if r := recover(); r != nil {
			cell = fail(fmt.Errorf("panic: %v", r))
		}
	}()

	switch class.Phase {
	case model.PhaseConstruction:
		cr, err := ComputeConstructionPeriod(asset, period, &tl, portfolio.Constants)
		if err != nil {
			return fail(err)
		}
		cell.Construction = &cr
	case model.PhaseOperations:
		rev, err := b.revenue.ComputeAssetPeriodRevenue(ctx, RevenueRequest{
			AssetID:        id,
			Asset:          asset,
			Timeline:       tl,
			Period:         period,
			Classification: class,
			Constants:      portfolio.Constants,
			Scenario:       cfg.Scenario,
			RevenueFilter:  cfg.RevenueFilter,
			Escalation:     cfg.Escalation,
		})
		if err != nil {
			return fail(err)
		}
		cell.Revenue = &rev
		cell.OperatingCost = ComputeOperatingCost(asset, period, tl, portfolio.Constants)
	}
	return cell
}
