package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// CalculationRepository stores finished builds in the calculation table.
type CalculationRepository struct {
	db *sql.DB
}

// NewCalculationRepository creates a new repository instance.
func NewCalculationRepository(db *sql.DB) *CalculationRepository {
	return &CalculationRepository{db: db}
}

// SaveCalculation stores a build result. The options and result are kept as JSON.
func (r *CalculationRepository) SaveCalculation(c model.Calculation) error {
	options, err := json.Marshal(c.Options)
	if err != nil {
		return fmt.Errorf("failed to encode calculation options: %w", err)
	}
	result, err := json.Marshal(c.Result)
	if err != nil {
		return fmt.Errorf("failed to encode calculation result: %w", err)
	}

	query := `
          INSERT INTO calculation (id, portfolio_id, options, result, created_at)
          VALUES (?, ?, ?, ?, ?)
      `
	if _, err := r.db.Exec(query, c.ID, c.PortfolioID, string(options), string(result), formatTime(c.CreatedAt)); err != nil {
		return fmt.Errorf("failed to insert calculation: %w", err)
	}
	return nil
}

// GetCalculation loads a stored build.
// Returns apperrors.ErrCalculationNotFound if no row matches.
func (r *CalculationRepository) GetCalculation(id string) (model.Calculation, error) {
	query := `
          SELECT id, portfolio_id, options, result, created_at
          FROM calculation
          WHERE id = ?
      `
	var c model.Calculation
	var options, result, createdStr string

	err := r.db.QueryRow(query, id).Scan(&c.ID, &c.PortfolioID, &options, &result, &createdStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Calculation{}, apperrors.ErrCalculationNotFound
		}
		return model.Calculation{}, fmt.Errorf("failed to query calculation: %w", err)
	}

	if err := json.Unmarshal([]byte(options), &c.Options); err != nil {
		return model.Calculation{}, fmt.Errorf("failed to decode calculation options: %w", err)
	}
	if err := DecodeDocument([]byte(result), &c.Result); err != nil {
		return model.Calculation{}, fmt.Errorf("failed to decode calculation result: %w", err)
	}
	c.CreatedAt, err = ParseTime(createdStr)
	if err != nil {
		return model.Calculation{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return c, nil
}

// StreamPeriods decodes a stored result and calls callback for each period
// record in order, stopping at the first callback error. It lets exporters
// write rows without holding a second copy of the series.
func (r *CalculationRepository) StreamPeriods(id string, callback func(model.PortfolioPeriodRecord) error) error {
	c, err := r.GetCalculation(id)
	if err != nil {
		return err
	}
	if c.Result == nil {
		return nil
	}
	for _, rec := range c.Result.Periods {
		if err := callback(rec); err != nil {
			return fmt.Errorf("failed to process period %s: %w", rec.Period.Key, err)
		}
	}
	return nil
}

// DeleteCalculationsBefore removes calculations created before cutoff and
// returns how many were deleted.
func (r *CalculationRepository) DeleteCalculationsBefore(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM calculation WHERE created_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete calculations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted calculations: %w", err)
	}
	return n, nil
}
