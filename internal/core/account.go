package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Account is a bank account, wallet or any other place money is held.
// It holds money in one or more currencies.
type Account struct {
	Entity
	Name                string
	NormalizedName      string
	CounterpartyID      uuid.UUID
	PreferredCurrencyID uuid.UUID
	Bic                 *string
	Iban                *string
	AccountNumber       *string
	DisabledAt          *time.Time
	DisabledByUserID    *uuid.UUID
	Currencies          []AccountInCurrency
}

// AccountInCurrency is the per-currency sub-account transfers move money between.
type AccountInCurrency struct {
	Entity
	AccountID              uuid.UUID
	CurrencyID             uuid.UUID
	CurrencyAlphabeticCode string
}

func (a *Account) Validate() error {
	var errs []error
	if err := requireName(a.Name); err != nil {
		errs = append(errs, err)
	}
	if a.CounterpartyID == uuid.Nil {
		errs = append(errs, invalid("counterpartyId", "is required"))
	}
	if a.PreferredCurrencyID == uuid.Nil {
		errs = append(errs, invalid("preferredCurrencyId", "is required"))
	}
	return errors.Join(errs...)
}

// Active reports whether the account has not been disabled.
func (a *Account) Active() bool { return a.DisabledAt == nil }

// Currency returns the account's in-currency row for currencyID.
func (a *Account) Currency(currencyID uuid.UUID) (AccountInCurrency, bool) {
	for _, c := range a.Currencies {
		if c.CurrencyID == currencyID {
			return c, true
		}
	}
	return AccountInCurrency{}, false
}

// CurrencyIDs returns the distinct currencies the account should hold,
// always including the preferred currency first.
func CurrencyIDs(preferred uuid.UUID, others []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]bool{preferred: true}
	ids := []uuid.UUID{preferred}
	for _, id := range others {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
