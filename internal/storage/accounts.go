package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gnomeshade/internal/core"
)

// AccountRepository stores accounts together with their in-currency rows.
type AccountRepository struct {
	*Repository[core.Account]
	inCurrency *Repository[core.AccountInCurrency]
}

// Get lists accounts with their currencies.
func (r *AccountRepository) Get(ctx context.Context, ownerID uuid.UUID) ([]core.Account, error) {
	accounts, err := r.Repository.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return r.attach(ctx, ownerID, accounts)
}

// GetActive lists accounts that have not been disabled.
func (r *AccountRepository) GetActive(ctx context.Context, ownerID uuid.UUID) ([]core.Account, error) {
	accounts, err := r.query(ctx, "owner_id = ? AND disabled_at IS NULL", "ORDER BY created_at, id", ownerID)
	if err != nil {
		return nil, err
	}
	return r.attach(ctx, ownerID, accounts)
}

// FindByID returns one account with its currencies.
func (r *AccountRepository) FindByID(ctx context.Context, id, ownerID uuid.UUID) (*core.Account, error) {
	account, err := r.Repository.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return r.attachOne(ctx, account)
}

// FindByName looks an account up by its normalized name within a counterparty.
func (r *AccountRepository) FindByName(ctx context.Context, name string, counterpartyID, ownerID uuid.UUID) (*core.Account, error) {
	account, err := r.one(ctx, "normalized_name = ? AND counterparty_id = ? AND owner_id = ?",
		core.NormalizeName(name), counterpartyID, ownerID)
	if err != nil {
		return nil, err
	}
	return r.attachOne(ctx, account)
}

// AddCurrency inserts an in-currency row.
func (r *AccountRepository) AddCurrency(ctx context.Context, c *core.AccountInCurrency) error {
	return r.inCurrency.Add(ctx, c)
}

// RemoveCurrency soft-deletes the account's row for currencyID.
func (r *AccountRepository) RemoveCurrency(ctx context.Context, accountID, currencyID, userID uuid.UUID) error {
	n, err := r.inCurrency.deleteWhere(ctx, userID, "account_id = ? AND currency_id = ? AND owner_id = ?", accountID, currencyID, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// RemoveCurrencies soft-deletes every in-currency row of an account.
func (r *AccountRepository) RemoveCurrencies(ctx context.Context, accountID, userID uuid.UUID) error {
	_, err := r.inCurrency.deleteWhere(ctx, userID, "account_id = ? AND owner_id = ?", accountID, userID)
	return err
}

// FindInCurrency returns one in-currency row by its own id.
func (r *AccountRepository) FindInCurrency(ctx context.Context, id, ownerID uuid.UUID) (*core.AccountInCurrency, error) {
	return r.inCurrency.FindByID(ctx, id, ownerID)
}

func (r *AccountRepository) attachOne(ctx context.Context, account *core.Account) (*core.Account, error) {
	accounts, err := r.attach(ctx, account.OwnerID, []core.Account{*account})
	if err != nil {
		return nil, err
	}
	return &accounts[0], nil
}

func (r *AccountRepository) attach(ctx context.Context, ownerID uuid.UUID, accounts []core.Account) ([]core.Account, error) {
	if len(accounts) == 0 {
		return accounts, nil
	}
	rows, err := r.inCurrency.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	codes, err := r.currencyCodes(ctx)
	if err != nil {
		return nil, err
	}

	byAccount := make(map[uuid.UUID][]core.AccountInCurrency)
	for _, c := range rows {
		c.CurrencyAlphabeticCode = codes[c.CurrencyID]
		byAccount[c.AccountID] = append(byAccount[c.AccountID], c)
	}
	for i := range accounts {
		accounts[i].Currencies = byAccount[accounts[i].ID]
	}
	return accounts, nil
}

func (r *AccountRepository) currencyCodes(ctx context.Context) (map[uuid.UUID]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, alphabetic_code FROM currencies")
	if err != nil {
		return nil, fmt.Errorf("query currency codes: %w", err)
	}
	defer rows.Close()

	codes := make(map[uuid.UUID]string)
	for rows.Next() {
		var id uuid.UUID
		var code string
		if err := rows.Scan(&id, &code); err != nil {
			return nil, fmt.Errorf("scan currency code: %w", err)
		}
		codes[id] = code
	}
	return codes, rows.Err()
}
