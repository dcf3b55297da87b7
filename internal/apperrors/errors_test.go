package apperrors_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
)

// TestErrorWrapping tests that typed errors match their sentinels.
//
// WHY: Handlers map errors to status codes with errors.Is and errors.As, so
// every typed error must unwrap to the sentinel callers check for.
func TestErrorWrapping(t *testing.T) {
	parse := &apperrors.DateParseError{Raw: "31/2/2024"}
	timeline := &apperrors.TimelineError{AssetID: "a1", AssetName: "Solar A", Field: "assetStartDate", Err: parse}
	empty := &apperrors.EmptyPortfolioError{Failures: []*apperrors.TimelineError{timeline}}
	cell := &apperrors.AssetComputationError{AssetID: "a1", PeriodKey: "2025-03", Err: errors.New("no price")}

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"date parse", parse, apperrors.ErrDateParse},
		{"timeline through date parse", timeline, apperrors.ErrDateParse},
		{"empty portfolio", empty, apperrors.ErrEmptyPortfolio},
		{"asset computation", cell, apperrors.ErrAssetComputation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.target)
			}
		})
	}

	var got *apperrors.DateParseError
	if !errors.As(timeline, &got) || got.Raw != "31/2/2024" {
		t.Errorf("Expected DateParseError with raw value through TimelineError, got %v", got)
	}
}

// TestErrorMessages tests the text shown in diagnostics.
func TestErrorMessages(t *testing.T) {
	t.Run("phase order includes dates", func(t *testing.T) {
		err := &apperrors.TimelineError{
			AssetID:           "a1",
			ConstructionStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			OperationsStart:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Err:               apperrors.ErrInvalidPhaseOrder,
		}
		msg := err.Error()
		if !strings.Contains(msg, "2026-01-01") || !strings.Contains(msg, "2025-01-01") {
			t.Errorf("Expected both dates in %q", msg)
		}
	})

	t.Run("empty portfolio lists every failure", func(t *testing.T) {
		err := &apperrors.EmptyPortfolioError{Failures: []*apperrors.TimelineError{
			{AssetID: "a1", Err: apperrors.ErrMissingOperationsDate},
			{AssetID: "b2", Err: apperrors.ErrMissingConstructionDate},
		}}
		msg := err.Error()
		if !strings.Contains(msg, "a1") || !strings.Contains(msg, "b2") {
			t.Errorf("Expected both asset IDs in %q", msg)
		}
	})

	t.Run("empty portfolio without assets", func(t *testing.T) {
		msg := (&apperrors.EmptyPortfolioError{}).Error()
		if !strings.Contains(msg, "no assets") {
			t.Errorf("Unexpected message %q", msg)
		}
	})
}
