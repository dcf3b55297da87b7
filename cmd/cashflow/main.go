package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/config"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/database"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/repository"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger := config.NewLogger(config.LogConfig{Level: os.Getenv("LOG_LEVEL")}, os.Stderr)

	var err error
	switch os.Args[1] {
	case "build":
		err = cmdBuild(os.Args[2:], logger)
	case "validate":
		err = cmdValidate(os.Args[2:])
	case "import-prices":
		err = cmdImportPrices(os.Args[2:], logger)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error(os.Args[1]+" failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cashflow build --portfolio portfolio.json --analysis analysis.yaml [--db prices.db] [--out results/cashflow.csv] [--json results/cashflow.json]")
	fmt.Println("  cashflow validate --portfolio portfolio.json [--periods 25]")
	fmt.Println("  cashflow import-prices --db prices.db [--prices prices.csv] [--spreads spreads.csv]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - without --db every merchant price falls back to the default price")
	fmt.Println("  - build writes one CSV row per period; diagnostics go to stderr")
}

func cmdBuild(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	portfolioPath := fs.String("portfolio", "", "Path to portfolio JSON document")
	analysisPath := fs.String("analysis", "", "Path to YAML analysis file")
	dbPath := fs.String("db", ":memory:", "SQLite database holding price curves")
	outPath := fs.String("out", "results/cashflow.csv", "Output CSV path")
	jsonPath := fs.String("json", "", "Optional: also write the full time series as JSON")
	_ = fs.Parse(args)

	if *portfolioPath == "" || *analysisPath == "" {
		return fmt.Errorf("--portfolio and --analysis are required")
	}

	portfolio, err := loadPortfolio(*portfolioPath)
	if err != nil {
		return err
	}
	analysis, err := config.LoadAnalysisFile(*analysisPath)
	if err != nil {
		return err
	}
	cfg, err := analysis.AnalysisConfig()
	if err != nil {
		return err
	}

	db, err := openMigrated(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	prices := service.NewPriceCurveService(repository.NewPriceRepository(db))
	builder := service.NewTimeSeriesBuilder(
		service.NewRevenueModel(prices),
		service.WithConcurrency(analysis.Concurrency),
		service.WithPriceLookup(prices),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ts, err := builder.Build(ctx, portfolio, cfg)
	if err != nil {
		return err
	}

	if err := writeFile(*outPath, func(w io.Writer) error {
		return service.WriteTimeSeriesCSV(w, ts.Periods)
	}); err != nil {
		return err
	}
	if *jsonPath != "" {
		if err := writeFile(*jsonPath, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(ts)
		}); err != nil {
			return err
		}
	}

	logDiagnostics(logger, ts.Diagnostics)
	fmt.Printf("Wrote %d %s periods to %s\n", len(ts.Periods), ts.IntervalType, *outPath)
	fmt.Printf("Total revenue=$%.2fM capex=$%.2fM net cash flow=$%.2fM\n",
		ts.Summary.TotalRevenue, ts.Summary.TotalCapex, ts.Summary.TotalNetCashFlow)
	return nil
}

func cmdValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	portfolioPath := fs.String("portfolio", "", "Path to portfolio JSON document")
	periods := fs.Int("periods", service.DefaultHorizonYears, "Operational horizon in years")
	_ = fs.Parse(args)

	if *portfolioPath == "" {
		return fmt.Errorf("--portfolio is required")
	}
	portfolio, err := loadPortfolio(*portfolioPath)
	if err != nil {
		return err
	}

	svc := service.NewPortfolioService(nil, *periods)
	diag := svc.ValidatePortfolio(portfolio, *periods)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(diag)
}

func cmdImportPrices(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("import-prices", flag.ExitOnError)
	dbPath := fs.String("db", "", "SQLite database to import into")
	pricesPath := fs.String("prices", "", "CSV with profile,type,region,time,price")
	spreadsPath := fs.String("spreads", "", "CSV with region,year,duration,spread")
	_ = fs.Parse(args)

	if *dbPath == "" || (*pricesPath == "" && *spreadsPath == "") {
		return fmt.Errorf("--db and at least one of --prices or --spreads are required")
	}

	db, err := openMigrated(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := service.NewPriceCurveService(repository.NewPriceRepository(db))
	imports := []struct {
		path string
		fn   func(io.Reader) (model.PriceImportResult, error)
	}{
		{*pricesPath, svc.ImportPrices},
		{*spreadsPath, svc.ImportSpreads},
	}
	for _, imp := range imports {
		if imp.path == "" {
			continue
		}
		f, err := os.Open(imp.path)
		if err != nil {
			return err
		}
		res, err := imp.fn(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", imp.path, err)
		}
		for _, e := range res.Errors {
			logger.Warn("skipped row", slog.String("file", imp.path), slog.String("error", e))
		}
		fmt.Printf("%s: imported %d rows, skipped %d\n", imp.path, res.Imported, res.Skipped)
	}
	return nil
}

// loadPortfolio reads a portfolio document. Numbers in raw date fields stay
// json.Number so epoch values resolve exactly.
func loadPortfolio(path string) (model.Portfolio, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to read portfolio: %w", err)
	}
	var p model.Portfolio
	if err := repository.DecodeDocument(raw, &p); err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to parse portfolio: %w", err)
	}
	if p.ID == "" {
		p.ID = filepath.Base(path)
	}
	return p, nil
}

func openMigrated(path string) (*sql.DB, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func logDiagnostics(logger *slog.Logger, diag model.Diagnostics) {
	for _, a := range diag.Assets {
		if a.Status == model.AssetExcluded {
			logger.Warn("asset excluded",
				slog.String("asset_id", a.AssetID),
				slog.String("field", a.Field),
				slog.String("reason", a.Reason))
		}
	}
	for _, e := range diag.CellErrors {
		logger.Warn("asset period failed",
			slog.String("asset_id", e.AssetID),
			slog.String("period", e.PeriodKey),
			slog.String("error", e.Message))
	}
	for _, w := range diag.Warnings {
		logger.Warn(w)
	}
}
