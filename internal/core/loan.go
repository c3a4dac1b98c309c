package core

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan is money lent by the issuing counterparty to the receiving one.
type Loan struct {
	Entity
	Name                    string
	IssuingCounterpartyID   uuid.UUID
	ReceivingCounterpartyID uuid.UUID
	Principal               decimal.Decimal
	CurrencyID              uuid.UUID
}

func (l *Loan) Validate() error {
	var errs []error
	if err := requireName(l.Name); err != nil {
		errs = append(errs, err)
	}
	if l.IssuingCounterpartyID == uuid.Nil {
		errs = append(errs, invalid("issuingCounterpartyId", "is required"))
	}
	if l.ReceivingCounterpartyID == uuid.Nil {
		errs = append(errs, invalid("receivingCounterpartyId", "is required"))
	}
	if l.IssuingCounterpartyID != uuid.Nil && l.IssuingCounterpartyID == l.ReceivingCounterpartyID {
		errs = append(errs, invalid("receivingCounterpartyId", "must differ from issuingCounterpartyId"))
	}
	if l.CurrencyID == uuid.Nil {
		errs = append(errs, invalid("currencyId", "is required"))
	}
	if err := requirePositive("principal", l.Principal); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LoanPayment is a part of a transaction that repays a loan. Amount is the
// principal part, Interest the cost on top of it. A negative amount is
// an additional borrowing.
type LoanPayment struct {
	Entity
	LoanID        uuid.UUID
	TransactionID uuid.UUID
	Amount        decimal.Decimal
	Interest      decimal.Decimal
}

func (p *LoanPayment) Validate() error {
	var errs []error
	if p.LoanID == uuid.Nil {
		errs = append(errs, invalid("loanId", "is required"))
	}
	if p.TransactionID == uuid.Nil {
		errs = append(errs, invalid("transactionId", "is required"))
	}
	if p.Amount.IsZero() && p.Interest.IsZero() {
		errs = append(errs, invalid("amount", "amount or interest must be non-zero"))
	}
	if err := requireNonNegative("interest", p.Interest); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LoanSummary is the outstanding state of one loan.
type LoanSummary struct {
	Loan          Loan
	Paid          decimal.Decimal
	InterestPaid  decimal.Decimal
	Outstanding   decimal.Decimal
	PaymentsCount int
}

// SummarizeLoan totals the payments made against a loan.
func SummarizeLoan(loan Loan, payments []LoanPayment) LoanSummary {
	s := LoanSummary{Loan: loan}
	for _, p := range payments {
		if p.LoanID != loan.ID {
			continue
		}
		s.Paid = s.Paid.Add(p.Amount)
		s.InterestPaid = s.InterestPaid.Add(p.Interest)
		s.PaymentsCount++
	}
	s.Outstanding = loan.Principal.Sub(s.Paid)
	return s
}
