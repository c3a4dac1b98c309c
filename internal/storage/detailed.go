package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gnomeshade/internal/core"
)

// OwnAccountIDs returns the in-currency row ids of the accounts that belong
// to the user's own counterparty.
func (s *Store) OwnAccountIDs(ctx context.Context, ownerID, counterpartyID uuid.UUID) (map[uuid.UUID]bool, error) {
	accounts, err := s.Accounts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return ownAccounts(accounts, counterpartyID), nil
}

func ownAccounts(accounts []core.Account, counterpartyID uuid.UUID) map[uuid.UUID]bool {
	own := make(map[uuid.UUID]bool)
	for _, a := range accounts {
		if a.CounterpartyID != counterpartyID {
			continue
		}
		for _, c := range a.Currencies {
			own[c.ID] = true
		}
	}
	return own
}

// DetailedTransaction loads one transaction with its items and totals.
func (s *Store) DetailedTransaction(ctx context.Context, id, ownerID, counterpartyID uuid.UUID) (*core.DetailedTransaction, error) {
	t, err := s.Transactions.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	own, err := s.OwnAccountIDs(ctx, ownerID, counterpartyID)
	if err != nil {
		return nil, err
	}
	transfers, err := s.Transfers.ByTransaction(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	purchases, err := s.Purchases.ByTransaction(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	payments, err := s.LoanPayments.ByTransaction(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	d := core.NewDetailedTransaction(*t, transfers, purchases, payments, own)
	return &d, nil
}

// DetailedTransactions loads every transaction dated within [from, to) with
// its items. Items are read once per table and grouped in memory.
func (s *Store) DetailedTransactions(ctx context.Context, ownerID, counterpartyID uuid.UUID, from, to *time.Time) ([]core.DetailedTransaction, error) {
	transactions, err := s.Transactions.Range(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return []core.DetailedTransaction{}, nil
	}

	own, err := s.OwnAccountIDs(ctx, ownerID, counterpartyID)
	if err != nil {
		return nil, err
	}
	transfers, err := s.Transfers.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	purchases, err := s.Purchases.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	payments, err := s.LoanPayments.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	transfersOf := groupBy(transfers, func(t core.Transfer) uuid.UUID { return t.TransactionID })
	purchasesOf := groupBy(purchases, func(p core.Purchase) uuid.UUID { return p.TransactionID })
	paymentsOf := groupBy(payments, func(p core.LoanPayment) uuid.UUID { return p.TransactionID })

	out := make([]core.DetailedTransaction, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, core.NewDetailedTransaction(t, transfersOf[t.ID], purchasesOf[t.ID], paymentsOf[t.ID], own))
	}
	return out, nil
}

func groupBy[T any](items []T, key func(T) uuid.UUID) map[uuid.UUID][]T {
	out := make(map[uuid.UUID][]T)
	for _, item := range items {
		k := key(item)
		out[k] = append(out[k], item)
	}
	return out
}
