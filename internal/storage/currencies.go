package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gnomeshade/internal/core"
)

const currencyColumns = "id, created_at, name, alphabetic_code, numeric_code, minor_unit"

// CurrencyRepository reads the global currency list.
type CurrencyRepository struct {
	db      DBTX
	dialect Dialect
}

func scanCurrency(s interface{ Scan(...any) error }) (core.Currency, error) {
	var c core.Currency
	err := s.Scan(&c.ID, &c.CreatedAt, &c.Name, &c.AlphabeticCode, &c.NumericCode, &c.MinorUnit)
	return c, err
}

// Get lists all currencies ordered by code.
func (r *CurrencyRepository) Get(ctx context.Context) ([]core.Currency, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+currencyColumns+" FROM currencies ORDER BY alphabetic_code")
	if err != nil {
		return nil, fmt.Errorf("query currencies: %w", err)
	}
	defer rows.Close()

	var out []core.Currency
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// FindByID returns one currency.
func (r *CurrencyRepository) FindByID(ctx context.Context, id uuid.UUID) (*core.Currency, error) {
	return r.find(ctx, "id = ?", id)
}

// FindByCode returns a currency by its ISO 4217 alphabetic code.
func (r *CurrencyRepository) FindByCode(ctx context.Context, code string) (*core.Currency, error) {
	return r.find(ctx, "alphabetic_code = ?", strings.ToUpper(code))
}

func (r *CurrencyRepository) find(ctx context.Context, where string, arg any) (*core.Currency, error) {
	c, err := scanCurrency(r.db.QueryRowContext(ctx, r.dialect.Rebind("SELECT "+currencyColumns+" FROM currencies WHERE "+where), arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get currency: %w", err)
	}
	return &c, nil
}

// Add inserts a currency. Duplicate codes are a conflict.
func (r *CurrencyRepository) Add(ctx context.Context, c *core.Currency) error {
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(
		"INSERT INTO currencies ("+currencyColumns+") VALUES (?, ?, ?, ?, ?, ?)"),
		c.ID, utc(c.CreatedAt), c.Name, strings.ToUpper(c.AlphabeticCode), c.NumericCode, c.MinorUnit)
	if err != nil {
		return fmt.Errorf("insert currency: %w", mapError(err))
	}
	return nil
}
