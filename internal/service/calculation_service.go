package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/repository"
)

// CalculationPublisher announces stored calculations to downstream consumers.
type CalculationPublisher interface {
	PublishCalculation(ctx context.Context, e model.CalculationEvent) error
}

// CalculationRecorder receives build and retention observations.
type CalculationRecorder interface {
	ObserveBuild(d time.Duration, ts *model.TimeSeries, err error)
	ObserveCleanup(deleted int64)
	ObservePublish(err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveBuild(time.Duration, *model.TimeSeries, error) {}
func (nopRecorder) ObserveCleanup(int64)                                 {}
func (nopRecorder) ObservePublish(error)                                 {}

// CalculationService runs portfolio builds, stores their results, and serves
// them back by ID or as CSV exports.
type CalculationService struct {
	portfolioRepo   *repository.PortfolioRepository
	calculationRepo *repository.CalculationRepository
	builder         *TimeSeriesBuilder
	tokens          *ExportTokens
	publisher       CalculationPublisher
	recorder        CalculationRecorder
	log             *slog.Logger
	now             func() time.Time
}

// CalculationOption customises a CalculationService.
type CalculationOption func(*CalculationService)

// WithPublisher publishes an event after each stored calculation.
func WithPublisher(p CalculationPublisher) CalculationOption {
	return func(s *CalculationService) { s.publisher = p }
}

// WithRecorder records build metrics.
func WithRecorder(r CalculationRecorder) CalculationOption {
	return func(s *CalculationService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CalculationOption {
	return func(s *CalculationService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source used for created_at and retention.
func WithClock(now func() time.Time) CalculationOption {
	return func(s *CalculationService) { s.now = now }
}

// NewCalculationService creates a new CalculationService.
func NewCalculationService(
	portfolioRepo *repository.PortfolioRepository,
	calculationRepo *repository.CalculationRepository,
	builder *TimeSeriesBuilder,
	tokens *ExportTokens,
	opts ...CalculationOption,
) *CalculationService {
	s := &CalculationService{
		portfolioRepo:   portfolioRepo,
		calculationRepo: calculationRepo,
		builder:         builder,
		tokens:          tokens,
		recorder:        nopRecorder{},
		log:             slog.Default(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunCalculation loads the portfolio, builds its time series, stores the
// result and returns it with the new calculation ID and an export token.
//
// Build errors (for example *apperrors.EmptyPortfolioError) are returned
// unchanged so callers can inspect them. Publishing failures are logged and
// do not fail the calculation.
func (s *CalculationService) RunCalculation(ctx context.Context, portfolioID string, cfg model.AnalysisConfig) (model.CalculationResponse, error) {
	portfolio, err := s.portfolioRepo.GetPortfolioOnID(portfolioID)
	if err != nil {
		return model.CalculationResponse{}, err
	}

	start := time.Now()
	ts, err := s.builder.Build(ctx, portfolio, cfg)
	s.recorder.ObserveBuild(time.Since(start), ts, err)
	if err != nil {
		return model.CalculationResponse{}, err
	}

	calc := model.Calculation{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Options:     cfg,
		Result:      ts,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.calculationRepo.SaveCalculation(calc); err != nil {
		return model.CalculationResponse{}, fmt.Errorf("failed to store calculation: %w", err)
	}

	token, err := s.tokens.Issue(calc.ID)
	if err != nil {
		return model.CalculationResponse{}, err
	}

	s.log.Info("calculation stored",
		slog.String("calculation_id", calc.ID),
		slog.String("portfolio_id", portfolioID),
		slog.Int("periods", len(ts.Periods)),
		slog.Int("excluded_assets", ts.Diagnostics.ExcludedAssets),
		slog.Int("cell_errors", len(ts.Diagnostics.CellErrors)),
		slog.Duration("duration", time.Since(start)))

	if s.publisher != nil {
		perr := s.publisher.PublishCalculation(ctx, model.NewCalculationEvent(calc))
		s.recorder.ObservePublish(perr)
		if perr != nil {
			s.log.Warn("failed to publish calculation event",
				slog.String("calculation_id", calc.ID),
				slog.String("error", perr.Error()))
		}
	}

	return model.CalculationResponse{
		CalculationID: calc.ID,
		ExportToken:   token,
		Result:        ts,
	}, nil
}

// GetCalculation returns a stored calculation.
// Returns apperrors.ErrCalculationNotFound if it does not exist.
func (s *CalculationService) GetCalculation(id string) (model.Calculation, error) {
	return s.calculationRepo.GetCalculation(id)
}

// ExportCalculation verifies an export token and writes the referenced
// calculation to w as CSV. It returns the calculation ID for naming the file.
func (s *CalculationService) ExportCalculation(token string, w io.Writer) (string, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	// Surface not-found before anything is written.
	if _, err := s.calculationRepo.GetCalculation(id); err != nil {
		return "", err
	}

	csvw := NewTimeSeriesCSVWriter(w)
	if err := s.calculationRepo.StreamPeriods(id, csvw.Write); err != nil {
		return "", err
	}
	if err := csvw.Close(); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return id, nil
}

// CleanupCalculations deletes calculations older than retention.
func (s *CalculationService) CleanupCalculations(retention time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-retention)
	n, err := s.calculationRepo.DeleteCalculationsBefore(cutoff)
	if err != nil {
		return 0, err
	}
	s.recorder.ObserveCleanup(n)
	s.log.Info("calculation cleanup finished",
		slog.Int64("deleted", n),
		slog.Time("cutoff", cutoff))
	return n, nil
}
