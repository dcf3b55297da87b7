package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/api"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/config"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/database"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/events"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/metrics"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/repository"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/scheduler"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/service"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	logger.Info("connected to database", slog.String("path", cfg.Database.Path))

	m := metrics.New()

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	calculationRepo := repository.NewCalculationRepository(db)

	// Event publishing is optional
	var publisher interface {
		service.CalculationPublisher
		Close() error
	} = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		logger.Info("publishing calculation events",
			slog.Any("brokers", cfg.Kafka.Brokers),
			slog.String("topic", cfg.Kafka.Topic))
	}
	defer publisher.Close()

	tokens, err := service.NewExportTokens(cfg.Calculation.ExportTokenKey, cfg.Calculation.ExportTokenTTL)
	if err != nil {
		return err
	}
	if cfg.Calculation.ExportTokenKey == "" {
		logger.Warn("EXPORT_TOKEN_KEY not set; export links will not survive a restart")
	}

	// Create services
	priceService := service.NewPriceCurveService(priceRepo)
	builder := service.NewTimeSeriesBuilder(
		service.NewRevenueModel(priceService),
		service.WithConcurrency(cfg.Build.Concurrency),
		service.WithDefaultHorizon(cfg.Build.DefaultHorizonYears),
		service.WithPriceLookup(priceService),
	)
	calculationService := service.NewCalculationService(
		portfolioRepo,
		calculationRepo,
		builder,
		tokens,
		service.WithPublisher(publisher),
		service.WithRecorder(m),
		service.WithLogger(logger),
	)
	systemService := service.NewSystemService(db, map[string]bool{
		"event_publishing": cfg.Kafka.Enabled(),
		"csv_export":       true,
		"price_import":     true,
	}, service.WithBuildDefaults(cfg.Build.DefaultHorizonYears, cfg.Calculation.ExportTokenTTL))
	portfolioService := service.NewPortfolioService(portfolioRepo, cfg.Build.DefaultHorizonYears)

	sched, err := scheduler.New(cfg.Calculation.CleanupSchedule, cfg.Calculation.Retention, calculationService, logger)
	if err != nil {
		return err
	}
	sched.Start()

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Portfolio:   portfolioService,
		Calculation: calculationService,
		Price:       priceService,
	}, m, logger, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			slog.String("addr", cfg.Server.Addr),
			slog.String("version", version.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Warn("scheduler did not stop in time", slog.String("error", err.Error()))
	}

	logger.Info("server exited")
	return nil
}
