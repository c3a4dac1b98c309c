package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction groups the transfers, purchases and loan payments that make
// up one real-world financial event.
type Transaction struct {
	Entity
	Description  *string
	ImportedAt   *time.Time
	ReconciledAt *time.Time
	RefundedBy   *uuid.UUID
}

func (t *Transaction) Validate() error {
	if t.RefundedBy != nil && *t.RefundedBy == t.ID && t.ID != uuid.Nil {
		return invalid("refundedBy", "cannot reference itself")
	}
	return nil
}

// Reconciled reports whether the transaction was matched against a statement.
func (t *Transaction) Reconciled() bool { return t.ReconciledAt != nil }

// Transfer moves money between two account-in-currency rows.
type Transfer struct {
	Entity
	TransactionID     uuid.UUID
	SourceAmount      decimal.Decimal
	SourceAccountID   uuid.UUID
	TargetAmount      decimal.Decimal
	TargetAccountID   uuid.UUID
	BankReference     *string
	ExternalReference *string
	InternalReference *string
	Order             *int
	BookedAt          *time.Time
	ValuedAt          *time.Time
}

func (t *Transfer) Validate() error {
	var errs []error
	if t.TransactionID == uuid.Nil {
		errs = append(errs, invalid("transactionId", "is required"))
	}
	if t.SourceAccountID == uuid.Nil {
		errs = append(errs, invalid("sourceAccountId", "is required"))
	}
	if t.TargetAccountID == uuid.Nil {
		errs = append(errs, invalid("targetAccountId", "is required"))
	}
	if t.SourceAccountID != uuid.Nil && t.SourceAccountID == t.TargetAccountID {
		errs = append(errs, invalid("targetAccountId", "must differ from sourceAccountId"))
	}
	if err := requirePositive("sourceAmount", t.SourceAmount); err != nil {
		errs = append(errs, err)
	}
	if err := requirePositive("targetAmount", t.TargetAmount); err != nil {
		errs = append(errs, err)
	}
	if t.BookedAt == nil && t.ValuedAt == nil {
		errs = append(errs, invalid("bookedAt", "either bookedAt or valuedAt is required"))
	}
	return errors.Join(errs...)
}

// Date is the value date, falling back to the booking date.
func (t *Transfer) Date() time.Time {
	if t.ValuedAt != nil {
		return *t.ValuedAt
	}
	if t.BookedAt != nil {
		return *t.BookedAt
	}
	return time.Time{}
}

// Purchase records buying Amount units of a product for Price.
type Purchase struct {
	Entity
	TransactionID uuid.UUID
	Price         decimal.Decimal
	CurrencyID    uuid.UUID
	ProductID     uuid.UUID
	Amount        decimal.Decimal
	DeliveryDate  *time.Time
	Order         *int
}

func (p *Purchase) Validate() error {
	var errs []error
	if p.TransactionID == uuid.Nil {
		errs = append(errs, invalid("transactionId", "is required"))
	}
	if p.CurrencyID == uuid.Nil {
		errs = append(errs, invalid("currencyId", "is required"))
	}
	if p.ProductID == uuid.Nil {
		errs = append(errs, invalid("productId", "is required"))
	}
	if err := requireNonNegative("price", p.Price); err != nil {
		errs = append(errs, err)
	}
	if err := requireNonNegative("amount", p.Amount); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// DetailedTransaction is a transaction with all of its items and totals
// from the point of view of one user's accounts.
type DetailedTransaction struct {
	Transaction
	Transfers       []Transfer
	Purchases       []Purchase
	LoanPayments    []LoanPayment
	TransferBalance decimal.Decimal
	PurchaseTotal   decimal.Decimal
	LoanTotal       decimal.Decimal
}

// NewDetailedTransaction computes totals. ownAccounts holds the ids of the
// account-in-currency rows belonging to the viewing user: money leaving them
// counts negative, money arriving positive, internal moves zero.
func NewDetailedTransaction(t Transaction, transfers []Transfer, purchases []Purchase, payments []LoanPayment, ownAccounts map[uuid.UUID]bool) DetailedTransaction {
	d := DetailedTransaction{
		Transaction:  t,
		Transfers:    transfers,
		Purchases:    purchases,
		LoanPayments: payments,
	}
	for _, tr := range transfers {
		fromOwn, toOwn := ownAccounts[tr.SourceAccountID], ownAccounts[tr.TargetAccountID]
		switch {
		case fromOwn && !toOwn:
			d.TransferBalance = d.TransferBalance.Sub(tr.SourceAmount)
		case toOwn && !fromOwn:
			d.TransferBalance = d.TransferBalance.Add(tr.TargetAmount)
		}
	}
	for _, p := range purchases {
		d.PurchaseTotal = d.PurchaseTotal.Add(p.Price)
	}
	for _, lp := range payments {
		d.LoanTotal = d.LoanTotal.Add(lp.Amount)
	}
	return d
}

// Date is the earliest transfer date, or zero without transfers.
func (d *DetailedTransaction) Date() time.Time {
	var earliest time.Time
	for i := range d.Transfers {
		date := d.Transfers[i].Date()
		if date.IsZero() {
			continue
		}
		if earliest.IsZero() || date.Before(earliest) {
			earliest = date
		}
	}
	return earliest
}
