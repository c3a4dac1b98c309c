package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"gnomeshade/api"
	"gnomeshade/internal/core"
	"gnomeshade/internal/storage"
)

func (s *Server) transactionRoutes() {
	transactions := &resource[core.Transaction, api.TransactionCreation, api.Transaction]{
		entity:   core.EntityTransactions,
		repo:     s.store.Transactions,
		header:   func(t *core.Transaction) *core.Entity { return &t.Entity },
		validate: (*core.Transaction).Validate,
		build:    transactionFromAPI,
		toAPI:    transactionToAPI,
		check: func(ctx context.Context, t *core.Transaction, user *core.User) error {
			if t.RefundedBy == nil {
				return nil
			}
			_, err := s.store.Transactions.FindByID(ctx, *t.RefundedBy, user.ID)
			return mustExist(err, "refundedBy")
		},
		list: func(r *http.Request, user *core.User) ([]core.Transaction, error) {
			rng, err := ParseTimeRange(r.URL.Query())
			if err != nil {
				return nil, err
			}
			return s.store.Transactions.Range(r.Context(), user.ID, rng.From, rng.To)
		},
		remove: func(ctx context.Context, id uuid.UUID, user *core.User) error {
			return storage.NewTransactionUnitOfWork(s.store).Delete(ctx, id, user.ID)
		},
	}
	transactions.register(s, api.V1+"/transactions")
	s.handle("POST "+api.V1+"/transactions/detailed", s.handleCreateDetailedTransaction)
	s.handle("GET "+api.V1+"/transactions/{id}/details", s.handleTransactionDetails)
	s.handle("GET "+api.V2+"/transactions", s.handleDetailedTransactions)
	s.handle("POST "+api.V1+"/transactions/{targetId}/merge/{sourceId}", s.handleMergeTransactions)

	transfers := &resource[core.Transfer, api.TransferCreation, api.Transfer]{
		entity:   core.EntityTransfers,
		repo:     s.store.Transfers,
		header:   func(t *core.Transfer) *core.Entity { return &t.Entity },
		validate: (*core.Transfer).Validate,
		build:    transferFromAPI,
		toAPI:    transferToAPI,
		check: func(ctx context.Context, t *core.Transfer, user *core.User) error {
			if err := s.checkTransaction(ctx, t.TransactionID, user); err != nil {
				return err
			}
			return s.checkTransfer(ctx, t, user, "")
		},
		list: itemLister(s.store.Transfers),
	}
	transfers.register(s, api.V1+"/transfers")

	purchases := &resource[core.Purchase, api.PurchaseCreation, api.Purchase]{
		entity:   core.EntityPurchases,
		repo:     s.store.Purchases,
		header:   func(p *core.Purchase) *core.Entity { return &p.Entity },
		validate: (*core.Purchase).Validate,
		build:    purchaseFromAPI,
		toAPI:    purchaseToAPI,
		check: func(ctx context.Context, p *core.Purchase, user *core.User) error {
			if err := s.checkTransaction(ctx, p.TransactionID, user); err != nil {
				return err
			}
			return s.checkPurchase(ctx, p, user, "")
		},
		list: itemLister(s.store.Purchases),
	}
	purchases.register(s, api.V1+"/purchases")
}

// itemLister lists the caller's items, optionally only those of the
// transaction named by the transactionId query parameter.
func itemLister[T any](repo *storage.ItemRepository[T]) func(*http.Request, *core.User) ([]T, error) {
	return func(r *http.Request, user *core.User) ([]T, error) {
		transactionID, err := QueryUUID(r.URL.Query(), "transactionId")
		if err != nil {
			return nil, err
		}
		if transactionID != nil {
			return repo.ByTransaction(r.Context(), *transactionID, user.ID)
		}
		return repo.Get(r.Context(), user.ID)
	}
}

func (s *Server) checkTransaction(ctx context.Context, id uuid.UUID, user *core.User) error {
	_, err := s.store.Transactions.FindByID(ctx, id, user.ID)
	return mustExist(err, "transactionId")
}

func (s *Server) checkTransfer(ctx context.Context, t *core.Transfer, user *core.User, prefix string) error {
	if _, err := s.store.Accounts.FindInCurrency(ctx, t.SourceAccountID, user.ID); err != nil {
		return mustExist(err, prefix+"sourceAccountId")
	}
	if _, err := s.store.Accounts.FindInCurrency(ctx, t.TargetAccountID, user.ID); err != nil {
		return mustExist(err, prefix+"targetAccountId")
	}
	return nil
}

func (s *Server) checkPurchase(ctx context.Context, p *core.Purchase, user *core.User, prefix string) error {
	if _, err := s.store.Products.FindByID(ctx, p.ProductID, user.ID); err != nil {
		return mustExist(err, prefix+"productId")
	}
	if _, err := s.store.Currencies.FindByID(ctx, p.CurrencyID); err != nil {
		return mustExist(err, prefix+"currencyId")
	}
	return nil
}

func (s *Server) checkLoanPayment(ctx context.Context, p *core.LoanPayment, user *core.User, prefix string) error {
	_, err := s.store.Loans.FindByID(ctx, p.LoanID, user.ID)
	return mustExist(err, prefix+"loanId")
}

// handleCreateDetailedTransaction creates a transaction with all of its
// items in one database transaction.
func (s *Server) handleCreateDetailedTransaction(w http.ResponseWriter, r *http.Request, user *core.User) error {
	var in api.DetailedTransactionCreation
	if err := DecodeJSON(w, r, &in); err != nil {
		return err
	}
	d := detailedFromAPI(in)
	ctx := r.Context()
	for i := range d.Transfers {
		if err := s.checkTransfer(ctx, &d.Transfers[i], user, fmt.Sprintf("transfers[%d].", i)); err != nil {
			return err
		}
	}
	for i := range d.Purchases {
		if err := s.checkPurchase(ctx, &d.Purchases[i], user, fmt.Sprintf("purchases[%d].", i)); err != nil {
			return err
		}
	}
	for i := range d.LoanPayments {
		if err := s.checkLoanPayment(ctx, &d.LoanPayments[i], user, fmt.Sprintf("loanPayments[%d].", i)); err != nil {
			return err
		}
	}
	if d.RefundedBy != nil {
		if _, err := s.store.Transactions.FindByID(ctx, *d.RefundedBy, user.ID); err != nil {
			return mustExist(err, "refundedBy")
		}
	}

	if err := storage.NewTransactionUnitOfWork(s.store).Add(ctx, d, user.ID); err != nil {
		return err
	}
	s.notifier.Created(ctx, core.EntityTransactions, d.ID, user.ID)
	for _, t := range d.Transfers {
		s.notifier.Created(ctx, core.EntityTransfers, t.ID, user.ID)
	}
	for _, p := range d.Purchases {
		s.notifier.Created(ctx, core.EntityPurchases, p.ID, user.ID)
	}
	for _, lp := range d.LoanPayments {
		s.notifier.Created(ctx, core.EntityLoanPayments, lp.ID, user.ID)
	}
	created(w, api.V1+"/transactions/"+d.ID.String(), d.ID)
	return nil
}

func (s *Server) handleTransactionDetails(w http.ResponseWriter, r *http.Request, user *core.User) error {
	id, err := PathID(r, "id")
	if err != nil {
		return err
	}
	d, err := s.store.DetailedTransaction(r.Context(), id, user.ID, user.CounterpartyID)
	if err != nil {
		return err
	}
	NewResponse().JSON(detailedToAPI(*d)).Write(w)
	return nil
}

func (s *Server) handleDetailedTransactions(w http.ResponseWriter, r *http.Request, user *core.User) error {
	rng, err := ParseTimeRange(r.URL.Query())
	if err != nil {
		return err
	}
	details, err := s.store.DetailedTransactions(r.Context(), user.ID, user.CounterpartyID, rng.From, rng.To)
	if err != nil {
		return err
	}
	NewResponse().JSON(mapSlice(details, detailedToAPI)).Write(w)
	return nil
}

// handleMergeTransactions moves the items of sourceId into targetId and
// deletes sourceId.
func (s *Server) handleMergeTransactions(w http.ResponseWriter, r *http.Request, user *core.User) error {
	targetID, sourceID, err := mergeIDs(r)
	if err != nil {
		return err
	}
	if err := storage.NewTransactionUnitOfWork(s.store).Merge(r.Context(), targetID, sourceID, user.ID); err != nil {
		return err
	}
	s.notifier.Updated(r.Context(), core.EntityTransactions, targetID, user.ID)
	s.notifier.Deleted(r.Context(), core.EntityTransactions, sourceID, user.ID)
	NewResponse().Status(http.StatusNoContent).Write(w)
	return nil
}

func mergeIDs(r *http.Request) (target, source uuid.UUID, err error) {
	if target, err = PathID(r, "targetId"); err != nil {
		return
	}
	source, err = PathID(r, "sourceId")
	return
}
