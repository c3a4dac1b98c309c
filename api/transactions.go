package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Transaction struct {
	Entity
	Description  *string    `json:"description,omitempty"`
	ImportedAt   *time.Time `json:"importedAt,omitempty"`
	ReconciledAt *time.Time `json:"reconciledAt,omitempty"`
	Reconciled   bool       `json:"reconciled"`
	RefundedBy   *uuid.UUID `json:"refundedBy,omitempty"`
}

type TransactionCreation struct {
	Description  *string    `json:"description,omitempty" validate:"omitempty,max=2048"`
	ImportedAt   *time.Time `json:"importedAt,omitempty"`
	ReconciledAt *time.Time `json:"reconciledAt,omitempty"`
	RefundedBy   *uuid.UUID `json:"refundedBy,omitempty"`
}

// DetailedTransaction is a transaction with its items. TransferBalance is
// signed from the caller's point of view: negative when money left the
// caller's own accounts.
type DetailedTransaction struct {
	Transaction
	Transfers       []Transfer      `json:"transfers"`
	Purchases       []Purchase      `json:"purchases"`
	LoanPayments    []LoanPayment   `json:"loanPayments"`
	TransferBalance decimal.Decimal `json:"transferBalance"`
	PurchaseTotal   decimal.Decimal `json:"purchaseTotal"`
	LoanTotal       decimal.Decimal `json:"loanTotal"`
}

// DetailedTransactionCreation creates a transaction and its items at once.
// The items' transactionId is ignored.
type DetailedTransactionCreation struct {
	TransactionCreation
	Transfers    []TransferCreation    `json:"transfers,omitempty" validate:"dive"`
	Purchases    []PurchaseCreation    `json:"purchases,omitempty" validate:"dive"`
	LoanPayments []LoanPaymentCreation `json:"loanPayments,omitempty" validate:"dive"`
}

type Transfer struct {
	Entity
	TransactionID     uuid.UUID       `json:"transactionId"`
	SourceAmount      decimal.Decimal `json:"sourceAmount"`
	SourceAccountID   uuid.UUID       `json:"sourceAccountId"`
	TargetAmount      decimal.Decimal `json:"targetAmount"`
	TargetAccountID   uuid.UUID       `json:"targetAccountId"`
	BankReference     *string         `json:"bankReference,omitempty"`
	ExternalReference *string         `json:"externalReference,omitempty"`
	InternalReference *string         `json:"internalReference,omitempty"`
	Order             *int            `json:"order,omitempty"`
	BookedAt          *time.Time      `json:"bookedAt,omitempty"`
	ValuedAt          *time.Time      `json:"valuedAt,omitempty"`
}

// TransferCreation moves money between two account-in-currency rows.
type TransferCreation struct {
	TransactionID     uuid.UUID  `json:"transactionId"`
	SourceAmount      Amount     `json:"sourceAmount"`
	SourceAccountID   uuid.UUID  `json:"sourceAccountId" validate:"required"`
	TargetAmount      Amount     `json:"targetAmount"`
	TargetAccountID   uuid.UUID  `json:"targetAccountId" validate:"required"`
	BankReference     *string    `json:"bankReference,omitempty" validate:"omitempty,max=256"`
	ExternalReference *string    `json:"externalReference,omitempty" validate:"omitempty,max=256"`
	InternalReference *string    `json:"internalReference,omitempty" validate:"omitempty,max=256"`
	Order             *int       `json:"order,omitempty" validate:"omitempty,min=0"`
	BookedAt          *time.Time `json:"bookedAt,omitempty"`
	ValuedAt          *time.Time `json:"valuedAt,omitempty"`
}

type Purchase struct {
	Entity
	TransactionID uuid.UUID       `json:"transactionId"`
	Price         decimal.Decimal `json:"price"`
	CurrencyID    uuid.UUID       `json:"currencyId"`
	ProductID     uuid.UUID       `json:"productId"`
	Amount        decimal.Decimal `json:"amount"`
	DeliveryDate  *time.Time      `json:"deliveryDate,omitempty"`
	Order         *int            `json:"order,omitempty"`
}

type PurchaseCreation struct {
	TransactionID uuid.UUID  `json:"transactionId"`
	Price         Amount     `json:"price"`
	CurrencyID    uuid.UUID  `json:"currencyId" validate:"required"`
	ProductID     uuid.UUID  `json:"productId" validate:"required"`
	Amount        Amount     `json:"amount"`
	DeliveryDate  *time.Time `json:"deliveryDate,omitempty"`
	Order         *int       `json:"order,omitempty" validate:"omitempty,min=0"`
}

type Loan struct {
	Entity
	Name                    string          `json:"name"`
	IssuingCounterpartyID   uuid.UUID       `json:"issuingCounterpartyId"`
	ReceivingCounterpartyID uuid.UUID       `json:"receivingCounterpartyId"`
	Principal               decimal.Decimal `json:"principal"`
	CurrencyID              uuid.UUID       `json:"currencyId"`
}

type LoanCreation struct {
	Name                    string    `json:"name" validate:"required,max=256"`
	IssuingCounterpartyID   uuid.UUID `json:"issuingCounterpartyId" validate:"required"`
	ReceivingCounterpartyID uuid.UUID `json:"receivingCounterpartyId" validate:"required"`
	Principal               Amount    `json:"principal"`
	CurrencyID              uuid.UUID `json:"currencyId" validate:"required"`
}

type LoanPayment struct {
	Entity
	LoanID        uuid.UUID       `json:"loanId"`
	TransactionID uuid.UUID       `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	Interest      decimal.Decimal `json:"interest"`
}

type LoanPaymentCreation struct {
	LoanID        uuid.UUID `json:"loanId" validate:"required"`
	TransactionID uuid.UUID `json:"transactionId"`
	Amount        Amount    `json:"amount"`
	Interest      Amount    `json:"interest"`
}

// LoanSummary is the repayment state of a loan.
type LoanSummary struct {
	Loan          Loan            `json:"loan"`
	Paid          decimal.Decimal `json:"paid"`
	InterestPaid  decimal.Decimal `json:"interestPaid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	PaymentsCount int             `json:"paymentsCount"`
}
