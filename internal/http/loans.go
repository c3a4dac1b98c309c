package http

import (
	"context"
	"net/http"

	"gnomeshade/api"
	"gnomeshade/internal/core"
)

func (s *Server) loanRoutes() {
	loans := &resource[core.Loan, api.LoanCreation, api.Loan]{
		entity:   core.EntityLoans,
		repo:     s.store.Loans,
		header:   func(l *core.Loan) *core.Entity { return &l.Entity },
		validate: (*core.Loan).Validate,
		build:    loanFromAPI,
		toAPI:    loanToAPI,
		check: func(ctx context.Context, l *core.Loan, user *core.User) error {
			if _, err := s.store.Counterparties.FindByID(ctx, l.IssuingCounterpartyID, user.ID); err != nil {
				return mustExist(err, "issuingCounterpartyId")
			}
			if _, err := s.store.Counterparties.FindByID(ctx, l.ReceivingCounterpartyID, user.ID); err != nil {
				return mustExist(err, "receivingCounterpartyId")
			}
			_, err := s.store.Currencies.FindByID(ctx, l.CurrencyID)
			return mustExist(err, "currencyId")
		},
	}
	loans.register(s, api.V2+"/loans")
	s.handle("GET "+api.V2+"/loans/{id}/payments", s.handleLoanPayments)
	s.handle("GET "+api.V2+"/loans/{id}/summary", s.handleLoanSummary)

	payments := &resource[core.LoanPayment, api.LoanPaymentCreation, api.LoanPayment]{
		entity:   core.EntityLoanPayments,
		repo:     s.store.LoanPayments,
		header:   func(p *core.LoanPayment) *core.Entity { return &p.Entity },
		validate: (*core.LoanPayment).Validate,
		build:    loanPaymentFromAPI,
		toAPI:    loanPaymentToAPI,
		check: func(ctx context.Context, p *core.LoanPayment, user *core.User) error {
			if err := s.checkTransaction(ctx, p.TransactionID, user); err != nil {
				return err
			}
			return s.checkLoanPayment(ctx, p, user, "")
		},
		list: itemLister(s.store.LoanPayments),
	}
	payments.register(s, api.V2+"/loan-payments")
}

func (s *Server) handleLoanPayments(w http.ResponseWriter, r *http.Request, user *core.User) error {
	id, err := PathID(r, "id")
	if err != nil {
		return err
	}
	if _, err := s.store.Loans.FindByID(r.Context(), id, user.ID); err != nil {
		return err
	}
	payments, err := s.store.PaymentsOfLoan(r.Context(), id, user.ID)
	if err != nil {
		return err
	}
	NewResponse().JSON(mapSlice(payments, loanPaymentToAPI)).Write(w)
	return nil
}

func (s *Server) handleLoanSummary(w http.ResponseWriter, r *http.Request, user *core.User) error {
	id, err := PathID(r, "id")
	if err != nil {
		return err
	}
	loan, err := s.store.Loans.FindByID(r.Context(), id, user.ID)
	if err != nil {
		return err
	}
	payments, err := s.store.PaymentsOfLoan(r.Context(), id, user.ID)
	if err != nil {
		return err
	}
	NewResponse().JSON(loanSummaryToAPI(core.SummarizeLoan(*loan, payments))).Write(w)
	return nil
}
