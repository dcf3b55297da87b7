package model_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// TestResultJSONKeys tests the output keys clients read.
//
// WHY: Output fields are camelCase. Contract input keeps the capitalised
// EnergyPrice key, which must not leak into results.
func TestResultJSONKeys(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
		avoid []string
	}{
		{
			name:  "revenue result",
			value: model.RevenueResult{EnergyPercentage: 40, GreenPercentage: 60},
			want:  []string{`"energyPercentage":40`, `"greenPercentage":60`},
			avoid: []string{`"EnergyPercentage"`},
		},
		{
			name:  "portfolio aggregate",
			value: model.PortfolioAggregate{ConstructionCumulativeInvestment: 21},
			want:  []string{`"constructionCumulativeInvestment":21`},
			avoid: []string{`"cumulativeInvestment"`},
		},
		{
			name:  "contract input",
			value: model.Contract{EnergyPrice: 70},
			want:  []string{`"EnergyPrice":70`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("Marshal() returned unexpected error: %v", err)
			}
			out := string(b)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("Expected %s in %s", w, out)
				}
			}
			for _, a := range tt.avoid {
				if strings.Contains(out, a) {
					t.Errorf("Unexpected %s in %s", a, out)
				}
			}
		})
	}
}
