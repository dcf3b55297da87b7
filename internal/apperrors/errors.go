package apperrors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Date and timeline errors describe why an asset could not be placed on the
// portfolio calendar. Every one of them excludes the asset from the run.
var (
	// ErrDateParse indicates that a raw date value could not be turned into an instant.
	ErrDateParse = errors.New("unparseable date")

	// ErrMissingConstructionDate indicates that neither construction start field is present.
	ErrMissingConstructionDate = errors.New("missing construction start date")

	// ErrMissingOperationsDate indicates that the operations start field is absent.
	ErrMissingOperationsDate = errors.New("missing operations start date")

	// ErrInvalidPhaseOrder indicates that construction does not start strictly before operations.
	ErrInvalidPhaseOrder = errors.New("construction start must be before operations start")

	// ErrInvalidHorizon indicates an analysis horizon that leaves no operating window.
	ErrInvalidHorizon = errors.New("analysis horizon must be at least one year")
)

// Build errors.
var (
	// ErrEmptyPortfolio indicates that no asset survived timeline validation.
	ErrEmptyPortfolio = errors.New("no valid assets in portfolio")

	// ErrAssetComputation marks a single asset/period cell that failed and was zeroed.
	ErrAssetComputation = errors.New("asset period computation failed")

	// ErrMissingTimeline indicates the construction calculator was called without a timeline.
	ErrMissingTimeline = errors.New("asset timeline missing")

	// ErrInvalidGranularity indicates an unknown calendar interval type.
	ErrInvalidGranularity = errors.New("invalid interval type")
)

// Storage and lookup errors.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrCalculationNotFound indicates that a stored calculation with the given ID does not exist.
	ErrCalculationNotFound = errors.New("calculation not found")

	// ErrPriceNotFound indicates that no merchant price row matches the lookup.
	ErrPriceNotFound = errors.New("merchant price not found")

	// ErrInvalidExportToken indicates an export token that is malformed, tampered with or expired.
	ErrInvalidExportToken = errors.New("export token is invalid or expired")

	// ErrInvalidCSVHeaders indicates a price import whose header row does not match.
	ErrInvalidCSVHeaders = errors.New("invalid CSV headers")
)

// DateParseError carries the raw value that failed to parse.
type DateParseError struct {
	Raw any
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrDateParse, e.Raw)
}

func (e *DateParseError) Unwrap() error {
	return ErrDateParse
}

// TimelineError records why one asset's phase timeline could not be derived.
// Err is one of ErrMissingConstructionDate, ErrMissingOperationsDate,
// ErrInvalidPhaseOrder, ErrInvalidHorizon or a *DateParseError.
type TimelineError struct {
	AssetID           string
	AssetName         string
	Field             string
	Raw               any
	ConstructionStart time.Time
	OperationsStart   time.Time
	Err               error
}

func (e *TimelineError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "asset %s", e.AssetID)
	if e.AssetName != "" {
		fmt.Fprintf(&b, " (%s)", e.AssetName)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %s", e.Field)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if errors.Is(e.Err, ErrInvalidPhaseOrder) {
		fmt.Fprintf(&b, " (construction %s, operations %s)",
			e.ConstructionStart.Format(time.DateOnly), e.OperationsStart.Format(time.DateOnly))
	}
	return b.String()
}

func (e *TimelineError) Unwrap() error {
	return e.Err
}

// EmptyPortfolioError lists every asset failure that left the portfolio empty.
type EmptyPortfolioError struct {
	Failures []*TimelineError
}

func (e *EmptyPortfolioError) Error() string {
	if len(e.Failures) == 0 {
		return ErrEmptyPortfolio.Error() + ": portfolio has no assets"
	}
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%s: %s", ErrEmptyPortfolio, strings.Join(msgs, "; "))
}

func (e *EmptyPortfolioError) Unwrap() error {
	return ErrEmptyPortfolio
}

// AssetComputationError wraps the failure of one asset in one period.
type AssetComputationError struct {
	AssetID   string
	PeriodKey string
	Err       error
}

func (e *AssetComputationError) Error() string {
	return fmt.Sprintf("asset %s period %s: %v", e.AssetID, e.PeriodKey, e.Err)
}

func (e *AssetComputationError) Unwrap() []error {
	return []error{ErrAssetComputation, e.Err}
}
