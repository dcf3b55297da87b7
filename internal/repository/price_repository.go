package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// PriceRepository provides access to the merchant_price and storage_spread tables.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// GetLatestPrice returns the most recent monthly price at or before month and
// not earlier than earliest, together with the month it was recorded for.
// Returns apperrors.ErrPriceNotFound if no row lies in that window.
func (r *PriceRepository) GetLatestPrice(ctx context.Context, profile, priceType, region string, month, earliest time.Time) (float64, time.Time, error) {
	query := `
          SELECT price, month
          FROM merchant_price
          WHERE profile = ? AND type = ? AND region = ?
            AND month <= ? AND month >= ?
          ORDER BY month DESC
          LIMIT 1
      `
	var price float64
	var monthStr string

	err := r.db.QueryRowContext(ctx, query, profile, priceType, region, formatMonth(month), formatMonth(earliest)).
		Scan(&price, &monthStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, time.Time{}, apperrors.ErrPriceNotFound
		}
		return 0, time.Time{}, fmt.Errorf("failed to query merchant_price: %w", err)
	}

	found, err := ParseTime(monthStr)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to parse price month: %w", err)
	}
	return price, found, nil
}

// GetSpreads returns the storage spreads for a region and year ordered by duration.
func (r *PriceRepository) GetSpreads(ctx context.Context, region string, year int) ([]model.StorageSpread, error) {
	query := `
          SELECT region, year, duration, spread
          FROM storage_spread
          WHERE region = ? AND year = ?
          ORDER BY duration ASC
      `
	rows, err := r.db.QueryContext(ctx, query, region, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query storage_spread: %w", err)
	}
	defer rows.Close()

	spreads := []model.StorageSpread{}
	for rows.Next() {
		var s model.StorageSpread
		if err := rows.Scan(&s.Region, &s.Year, &s.Duration, &s.Spread); err != nil {
			return nil, fmt.Errorf("failed to scan storage_spread results: %w", err)
		}
		spreads = append(spreads, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating storage_spread: %w", err)
	}
	return spreads, nil
}

// GetPrices returns the monthly prices of one region and profile ordered by
// month, type. A zero year returns every year.
func (r *PriceRepository) GetPrices(region, profile string, year int) ([]model.MerchantPrice, error) {
	query := `
          SELECT profile, type, region, month, price
          FROM merchant_price
          WHERE region = ? AND profile = ?
      `
	args := []any{region, profile}
	if year > 0 {
		query += " AND month >= ? AND month < ?"
		args = append(args, fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-01-01", year+1))
	}
	query += " ORDER BY month ASC, type ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchant_price: %w", err)
	}
	defer rows.Close()

	prices := []model.MerchantPrice{}
	for rows.Next() {
		var p model.MerchantPrice
		var monthStr string
		if err := rows.Scan(&p.Profile, &p.Type, &p.Region, &monthStr, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan merchant_price results: %w", err)
		}
		p.Month, err = ParseTime(monthStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price month: %w", err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating merchant_price: %w", err)
	}
	return prices, nil
}

// UpsertPrices writes monthly prices in one transaction, replacing existing
// rows for the same profile, type, region and month.
func (r *PriceRepository) UpsertPrices(prices []model.MerchantPrice) (int, error) {
	query := `
          INSERT INTO merchant_price (profile, type, region, month, price)
          VALUES (?, ?, ?, ?, ?)
          ON CONFLICT(profile, type, region, month) DO UPDATE SET price = excluded.price
      `
	return r.upsert(query, len(prices), func(stmt *sql.Stmt, i int) error {
		p := prices[i]
		_, err := stmt.Exec(p.Profile, p.Type, p.Region, formatMonth(p.Month), p.Price)
		return err
	})
}

// UpsertSpreads writes storage spreads in one transaction.
func (r *PriceRepository) UpsertSpreads(spreads []model.StorageSpread) (int, error) {
	query := `
          INSERT INTO storage_spread (region, year, duration, spread)
          VALUES (?, ?, ?, ?)
          ON CONFLICT(region, year, duration) DO UPDATE SET spread = excluded.spread
      `
	return r.upsert(query, len(spreads), func(stmt *sql.Stmt, i int) error {
		s := spreads[i]
		_, err := stmt.Exec(s.Region, s.Year, s.Duration, s.Spread)
		return err
	})
}

func (r *PriceRepository) upsert(query string, n int, exec func(*sql.Stmt, int) error) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if err := exec(stmt, i); err != nil {
			return 0, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return n, nil
}
