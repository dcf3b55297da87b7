package service

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

var timeSeriesCSVHeader = []string{
	"period",
	"period_start",
	"pre_construction_assets",
	"construction_assets",
	"operational_assets",
	"post_operations_assets",
	"error_assets",
	"total_revenue",
	"contracted_green",
	"contracted_energy",
	"merchant_green",
	"merchant_energy",
	"total_volume_mwh",
	"capex_draw",
	"equity",
	"debt",
	"construction_cumulative_investment",
	"operating_cost",
	"cfads",
	"net_cash_flow",
	"weighted_avg_price",
	"contracted_percentage",
}

// TimeSeriesCSVWriter writes portfolio period records as CSV rows, one per
// period. Call Close to flush.
type TimeSeriesCSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewTimeSeriesCSVWriter wraps out.
func NewTimeSeriesCSVWriter(out io.Writer) *TimeSeriesCSVWriter {
	return &TimeSeriesCSVWriter{w: csv.NewWriter(out)}
}

// Write appends one period record, writing the header first if needed.
func (t *TimeSeriesCSVWriter) Write(r model.PortfolioPeriodRecord) error {
	if !t.wroteHeader {
		if err := t.w.Write(timeSeriesCSVHeader); err != nil {
			return err
		}
		t.wroteHeader = true
	}
	a := r.Aggregate
	row := []string{
		r.Period.Key,
		r.Period.Start.Format("2006-01-02"),
		strconv.Itoa(a.PreConstructionAssets),
		strconv.Itoa(a.ConstructionAssets),
		strconv.Itoa(a.OperationalAssets),
		strconv.Itoa(a.PostOperationsAssets),
		strconv.Itoa(a.ErrorAssets),
		fmtFloat(a.TotalRevenue),
		fmtFloat(a.ContractedGreen),
		fmtFloat(a.ContractedEnergy),
		fmtFloat(a.MerchantGreen),
		fmtFloat(a.MerchantEnergy),
		fmtFloat(a.TotalVolume),
		fmtFloat(a.TotalCapexDraw),
		fmtFloat(a.TotalEquity),
		fmtFloat(a.TotalDebt),
		fmtFloat(a.ConstructionCumulativeInvestment),
		fmtFloat(a.TotalOperatingCost),
		fmtFloat(a.CFADS),
		fmtFloat(a.NetCashFlow),
		fmtFloat(a.WeightedAvgPrice),
		fmtFloat(a.ContractedPercentage),
	}
	return t.w.Write(row)
}

// Close flushes buffered rows. An empty series still gets a header.
func (t *TimeSeriesCSVWriter) Close() error {
	if !t.wroteHeader {
		if err := t.w.Write(timeSeriesCSVHeader); err != nil {
			return err
		}
		t.wroteHeader = true
	}
	t.w.Flush()
	return t.w.Error()
}

// WriteTimeSeriesCSV writes a whole series.
func WriteTimeSeriesCSV(out io.Writer, records []model.PortfolioPeriodRecord) error {
	w := NewTimeSeriesCSVWriter(out)
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return w.Close()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(round(x), 'f', -1, 64)
}
