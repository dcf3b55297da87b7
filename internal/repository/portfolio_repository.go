package repository

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// PortfolioRepository stores portfolio documents. The assets and constants are
// kept as one JSON document per portfolio because asset records are
// heterogeneous and are only interpreted by the timeline and revenue code.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

type portfolioDocument struct {
	Assets    map[string]model.AssetConfig `json:"assets"`
	Constants model.PortfolioConstants     `json:"constants"`
}

// DecodeDocument decodes JSON with numbers preserved as json.Number so that raw
// epoch dates in asset records keep their exact value.
func DecodeDocument(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// GetPortfolios lists stored portfolios ordered by name.
// Returns an empty slice if there are none.
func (r *PortfolioRepository) GetPortfolios() ([]model.PortfolioListing, error) {
	query := `
          SELECT id, name, document, updated_at
          FROM portfolio
          ORDER BY name ASC
      `
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.PortfolioListing{}

	for rows.Next() {
		var p model.PortfolioListing
		var doc, updatedStr string

		if err := rows.Scan(&p.ID, &p.Name, &doc, &updatedStr); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio table results: %w", err)
		}

		var d portfolioDocument
		if err := DecodeDocument([]byte(doc), &d); err != nil {
			return nil, fmt.Errorf("failed to decode portfolio %s: %w", p.ID, err)
		}
		p.AssetCount = len(d.Assets)

		p.UpdatedAt, err = ParseTime(updatedStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

// GetPortfolioOnID retrieves one portfolio document.
// Returns apperrors.ErrPortfolioNotFound if no row matches.
func (r *PortfolioRepository) GetPortfolioOnID(portfolioID string) (model.Portfolio, error) {
	query := `
          SELECT id, name, user_id, document, updated_at
          FROM portfolio
          WHERE id = ?
      `
	var p model.Portfolio
	var userID sql.NullString
	var doc, updatedStr string

	err := r.db.QueryRow(query, portfolioID).Scan(&p.ID, &p.Name, &userID, &doc, &updatedStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Portfolio{}, apperrors.ErrPortfolioNotFound
		}
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio: %w", err)
	}

	var d portfolioDocument
	if err := DecodeDocument([]byte(doc), &d); err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to decode portfolio %s: %w", p.ID, err)
	}
	p.Assets = d.Assets
	p.Constants = d.Constants
	if p.Assets == nil {
		p.Assets = map[string]model.AssetConfig{}
	}
	if userID.Valid {
		p.UserID = userID.String
	}
	p.UpdatedAt, err = ParseTime(updatedStr)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return p, nil
}

// SavePortfolio inserts or replaces a portfolio document and sets its UpdatedAt.
func (r *PortfolioRepository) SavePortfolio(p *model.Portfolio) error {
	doc, err := json.Marshal(portfolioDocument{Assets: p.Assets, Constants: p.Constants})
	if err != nil {
		return fmt.Errorf("failed to encode portfolio document: %w", err)
	}

	p.UpdatedAt = time.Now().UTC()

	query := `
          INSERT INTO portfolio (id, name, user_id, document, updated_at)
          VALUES (?, ?, ?, ?, ?)
          ON CONFLICT(id) DO UPDATE SET
              name = excluded.name,
              user_id = excluded.user_id,
              document = excluded.document,
              updated_at = excluded.updated_at
      `
	var userID any
	if p.UserID != "" {
		userID = p.UserID
	}

	if _, err := r.db.Exec(query, p.ID, p.Name, userID, string(doc), formatTime(p.UpdatedAt)); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	return nil
}
