package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Account struct {
	Entity
	Name                string              `json:"name"`
	CounterpartyID      uuid.UUID           `json:"counterpartyId"`
	PreferredCurrencyID uuid.UUID           `json:"preferredCurrencyId"`
	Bic                 *string             `json:"bic,omitempty"`
	Iban                *string             `json:"iban,omitempty"`
	AccountNumber       *string             `json:"accountNumber,omitempty"`
	DisabledAt          *time.Time          `json:"disabledAt,omitempty"`
	Currencies          []AccountInCurrency `json:"currencies"`
}

type AccountInCurrency struct {
	ID           uuid.UUID `json:"id"`
	CurrencyID   uuid.UUID `json:"currencyId"`
	CurrencyCode string    `json:"currencyCode"`
	CreatedAt    time.Time `json:"createdAt"`
	OwnerID      uuid.UUID `json:"ownerId"`
}

// AccountCreation creates or replaces an account. Currencies lists the
// currencies held besides the preferred one and is only read on creation.
type AccountCreation struct {
	Name                string      `json:"name" validate:"required,max=256"`
	CounterpartyID      uuid.UUID   `json:"counterpartyId" validate:"required"`
	PreferredCurrencyID uuid.UUID   `json:"preferredCurrencyId" validate:"required"`
	Bic                 *string     `json:"bic,omitempty" validate:"omitempty,max=11"`
	Iban                *string     `json:"iban,omitempty" validate:"omitempty,max=34"`
	AccountNumber       *string     `json:"accountNumber,omitempty" validate:"omitempty,max=64"`
	Disabled            bool        `json:"disabled,omitempty"`
	Currencies          []uuid.UUID `json:"currencies,omitempty"`
}

type AccountInCurrencyCreation struct {
	CurrencyID uuid.UUID `json:"currencyId" validate:"required"`
}

// Balance is the money moved into and out of one account in one currency.
type Balance struct {
	AccountID           uuid.UUID       `json:"accountId"`
	AccountInCurrencyID uuid.UUID       `json:"accountInCurrencyId"`
	CurrencyID          uuid.UUID       `json:"currencyId"`
	TargetAmount        decimal.Decimal `json:"targetAmount"`
	SourceAmount        decimal.Decimal `json:"sourceAmount"`
	Total               decimal.Decimal `json:"total"`
}

// BalancePoint is one period of an account's running balance.
type BalancePoint struct {
	Period time.Time       `json:"period"`
	Open   decimal.Decimal `json:"open"`
	Close  decimal.Decimal `json:"close"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
}

type CategoryReport struct {
	Periods []time.Time      `json:"periods"`
	Series  []CategorySeries `json:"series"`
}

type CategorySeries struct {
	CategoryID *uuid.UUID        `json:"categoryId,omitempty"`
	Name       string            `json:"name"`
	Values     []decimal.Decimal `json:"values"`
}
