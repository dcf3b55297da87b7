package service_test

import (
	"testing"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/service"
)

var phaseOrder = map[model.Phase]int{
	model.PhasePreConstruction: 0,
	model.PhaseConstruction:    1,
	model.PhaseOperations:      2,
	model.PhasePostOperations:  3,
}

// TestClassify_Boundaries tests the mid-month anchor rule.
//
// WHY: A month counts as construction only if construction has started by the
// 15th. Off-by-one here shifts a whole month of capex or revenue.
func TestClassify_Boundaries(t *testing.T) {
	jan2024 := model.PeriodFor(model.Monthly, date(2024, 1, 1))

	tests := []struct {
		name   string
		period model.Period
		tl     model.PhaseTimeline
		want   model.Phase
	}{
		{
			name:   "construction starting on the 1st counts",
			period: jan2024,
			tl:     timeline("A", date(2024, 1, 1), date(2025, 1, 1), date(2026, 1, 1)),
			want:   model.PhaseConstruction,
		},
		{
			name:   "construction starting on the 15th counts",
			period: jan2024,
			tl:     timeline("A", date(2024, 1, 15), date(2025, 1, 1), date(2026, 1, 1)),
			want:   model.PhaseConstruction,
		},
		{
			name:   "construction starting on the 20th does not",
			period: jan2024,
			tl:     timeline("A", date(2024, 1, 20), date(2025, 1, 1), date(2026, 1, 1)),
			want:   model.PhasePreConstruction,
		},
		{
			name:   "operations starting on the 1st",
			period: model.PeriodFor(model.Monthly, date(2025, 1, 1)),
			tl:     timeline("A", date(2024, 1, 1), date(2025, 1, 1), date(2026, 1, 1)),
			want:   model.PhaseOperations,
		},
		{
			name:   "operations starting on the 20th leaves month in construction",
			period: model.PeriodFor(model.Monthly, date(2025, 1, 1)),
			tl:     timeline("A", date(2024, 1, 1), date(2025, 1, 20), date(2026, 1, 20)),
			want:   model.PhaseConstruction,
		},
		{
			name:   "operational end equal to anchor is post-operations",
			period: model.PeriodFor(model.Monthly, date(2026, 1, 1)),
			tl:     timeline("A", date(2024, 1, 1), date(2025, 1, 15), date(2026, 1, 15)),
			want:   model.PhasePostOperations,
		},
		{
			name:   "operational end after anchor is still operations",
			period: model.PeriodFor(model.Monthly, date(2026, 1, 1)),
			tl:     timeline("A", date(2024, 1, 1), date(2025, 1, 16), date(2026, 1, 16)),
			want:   model.PhaseOperations,
		},
		{
			name:   "quarter uses the 15th of its first month",
			period: model.PeriodFor(model.Quarterly, date(2024, 2, 1)),
			tl:     timeline("A", date(2024, 2, 1), date(2025, 1, 1), date(2026, 1, 1)),
			want:   model.PhasePreConstruction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.Classify(tt.period, tt.tl)
			if got.Phase != tt.want {
				t.Errorf("Classify(%s) = %s, want %s", tt.period.Key, got.Phase, tt.want)
			}
			if got.IsConstructionPhase != (tt.want == model.PhaseConstruction) {
				t.Errorf("IsConstructionPhase = %v for phase %s", got.IsConstructionPhase, got.Phase)
			}
			if got.IsOperationalPhase != (tt.want == model.PhaseOperations) {
				t.Errorf("IsOperationalPhase = %v for phase %s", got.IsOperationalPhase, got.Phase)
			}
		})
	}
}

// TestClassify_Monotonic tests that phases only move forward across a calendar.
//
// WHY: An asset that drops back into construction after operating would draw
// capex twice. The classifier must be total and ordered for every granularity.
func TestClassify_Monotonic(t *testing.T) {
	timelines := map[string]model.PhaseTimeline{
		"A": timeline("A", date(2024, 1, 20), date(2025, 3, 1), date(2030, 3, 1)),
		"B": timeline("B", date(2022, 6, 1), date(2023, 1, 1), date(2026, 1, 1)),
	}

	for _, g := range []model.Granularity{model.Monthly, model.Quarterly, model.Yearly} {
		t.Run(string(g), func(t *testing.T) {
			cal, err := service.BuildCalendar(timelines, g)
			if err != nil {
				t.Fatalf("BuildCalendar() returned unexpected error: %v", err)
			}
			for id, tl := range timelines {
				prev := -1
				for _, p := range cal.Periods {
					phase := service.Classify(p, tl).Phase
					rank, ok := phaseOrder[phase]
					if !ok {
						t.Fatalf("asset %s period %s: unexpected phase %q", id, p.Key, phase)
					}
					if rank < prev {
						t.Errorf("asset %s period %s: phase %s after a later phase", id, p.Key, phase)
					}
					prev = rank
				}
			}
		})
	}
}

// TestClassify_Counters tests the day and month counters.
func TestClassify_Counters(t *testing.T) {
	tl := timeline("A", date(2024, 1, 1), date(2025, 1, 1), date(2026, 1, 1))

	c := service.Classify(model.PeriodFor(model.Monthly, date(2024, 3, 1)), tl)
	if c.MonthsIntoConstruction != 3 {
		t.Errorf("MonthsIntoConstruction = %d, want 3", c.MonthsIntoConstruction)
	}
	// Jan 1 to Mar 15 2024.
	if c.DaysIntoPhase != 74 {
		t.Errorf("DaysIntoPhase = %d, want 74", c.DaysIntoPhase)
	}

	c = service.Classify(model.PeriodFor(model.Monthly, date(2023, 12, 1)), tl)
	if c.Phase != model.PhasePreConstruction {
		t.Fatalf("Expected pre-construction, got %s", c.Phase)
	}
	if c.DaysRemainingInPhase != 17 {
		t.Errorf("DaysRemainingInPhase = %d, want 17", c.DaysRemainingInPhase)
	}
}
