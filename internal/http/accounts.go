package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"gnomeshade/api"
	"gnomeshade/internal/core"
	"gnomeshade/internal/storage"
)

func (s *Server) accountRoutes() {
	base := api.V1 + "/accounts"
	s.handle("GET "+base, s.handleListAccounts)
	s.handle("POST "+base, s.handleCreateAccount)
	s.handle("GET "+base+"/{id}", s.handleGetAccount)
	s.handle("PUT "+base+"/{id}", s.handlePutAccount)
	s.handle("DELETE "+base+"/{id}", s.handleDeleteAccount)
	s.handle("POST "+base+"/{id}/currencies", s.handleAddAccountCurrency)
	s.handle("DELETE "+base+"/{id}/currencies/{currencyId}", s.handleRemoveAccountCurrency)
	s.handle("GET "+base+"/{id}/balance", s.handleAccountBalance)
	s.handle("GET "+base+"/{id}/balance/history", s.handleAccountBalanceHistory)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request, user *core.User) error {
	onlyActive, err := QueryBool(r.URL.Query(), "onlyActive")
	if err != nil {
		return err
	}
	var accounts []core.Account
	if onlyActive {
		accounts, err = s.store.Accounts.GetActive(r.Context(), user.ID)
	} else {
		accounts, err = s.store.Accounts.Get(r.Context(), user.ID)
	}
	if err != nil {
		return err
	}
	NewResponse().JSON(mapSlice(accounts, accountToAPI)).Write(w)
	return nil
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request, user *core.User) error {
	id, err := PathID(r, "id")
	if err != nil {
		return err
	}
	account, err := s.store.Accounts.FindByID(r.Context(), id, user.ID)
	if err != nil {
		return err
	}
	NewResponse().JSON(accountToAPI(*account)).Write(w)
	return nil
}

// checkAccount validates the account and its references. The name must be
// unique among the accounts of the same counterparty.
func (s *Server) checkAccount(r *http.Request, account *core.Account, user *core.User) error {
	if err := account.Validate(); err != nil {
		return err
	}
	if _, err := s.store.Counterparties.FindByID(r.Context(), account.CounterpartyID, user.ID); err != nil {
		return mustExist(err, "counterpartyId")
	}
	if _, err := s.store.Currencies.FindByID(r.Context(), account.PreferredCurrencyID); err != nil {
		return mustExist(err, "preferredCurrencyId")
	}
	existing, err := s.store.Accounts.FindByName(r.Context(), account.Name, account.CounterpartyID, user.ID)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != account.ID:
		return core.ErrConflict
	}
	return nil
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request, user *core.User) error {
	var in api.AccountCreation
	if err := DecodeJSON(w, r, &in); err != nil {
		return err
	}
	return s.createAccount(w, r, user, uuid.Nil, in, r.URL.Path+"/")
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request, user *core.User, id uuid.UUID, in api.AccountCreation, locationPrefix string) error {
	account := &core.Account{}
	account.ID = id
	accountFromAPI(in, account, user.ID, s.now().UTC())
	if err := s.checkAccount(r, account, user); err != nil {
		return err
	}
	for _, currencyID := range in.Currencies {
		if _, err := s.store.Currencies.FindByID(r.Context(), currencyID); err != nil {
			return mustExist(err, "currencies")
		}
	}
	if err := storage.NewAccountUnitOfWork(s.store).Add(r.Context(), account, in.Currencies, user.ID); err != nil {
		return err
	}
	s.notifier.Created(r.Context(), core.EntityAccounts, account.ID, account.OwnerID)

	location := locationPrefix + account.ID.String()
	if id != uuid.Nil {
		location = r.URL.Path
	}
	created(w, location, account.ID)
	return nil
}

func (s *Server) handlePutAccount(w http.ResponseWriter, r *http.Request, user *core.User) error {
	id, err := PathID(r, "id")
	if err != nil {
		return err
	}
	var in api.AccountCreation
	if err := DecodeJSON(w, r, &in); err != nil {
		return err
	}

	existing, err := s.store.Accounts.FindAnyByID(r.Context(), id)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return s.createAccount(w, r, user, id, in, "")
	case err != nil:
		return err
	case existing.OwnerID != user.ID:
		return core.ErrForbidden
	}

	account := *existing
	accountFromAPI(in, &account, user.ID, s.now().UTC())
	if err := s.checkAccount(r, &account, user); err != nil {
		return err
	}
	if err := storage.NewAccountUnitOfWork(s.store).Update(r.Context(), &account, user.ID); err != nil {
		return err
	}
	s.notifier.Updated(r.Context(), core.EntityAccounts, account.ID, user.ID)
	NewResponse().Status(http.StatusNoContent).Write(w)
	return nil
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, user *core.User) error {
	id, err := PathID(r, "id")
	if err != nil {
		return err
	}
	if _, err := s.store.Accounts.FindByID(r.Context(), id, user.ID); err != nil {
		return err
	}
	if err := storage.NewAccountUnitOfWork(s.store).Delete(r.Context(), id, user.ID); err != nil {
		return err
	}
	s.notifier.Deleted(r.Context(), core.EntityAccounts, id, user.ID)
	NewResponse().Status(http.StatusNoContent).Write(w)
	return nil
}

// handleAddAccountCurrency adds a currency the account does not hold yet.
func (s *Server) handleAddAccountCurrency(w http.ResponseWriter, r *http.Request, user *core.User) error {
	id, err := PathID(r, "id")
	if err != nil {
		return err
	}
	var in api.AccountInCurrencyCreation
	if err := DecodeJSON(w, r, &in); err != nil {
		return err
	}
	account, err := s.store.Accounts.FindByID(r.Context(), id, user.ID)
	if err != nil {
		return err
	}
	if _, ok := account.Currency(in.CurrencyID); ok {
		return core.ErrConflict
	}
	if _, err := s.store.Currencies.FindByID(r.Context(), in.CurrencyID); err != nil {
		return mustExist(err, "currencyId")
	}

	c := core.AccountInCurrency{AccountID: account.ID, CurrencyID: in.CurrencyID}
	c.Stamp(user.ID, s.now().UTC())
	c.OwnerID = account.OwnerID
	if err := s.store.Accounts.AddCurrency(r.Context(), &c); err != nil {
		return err
	}
	s.notifier.Updated(r.Context(), core.EntityAccounts, account.ID, user.ID)
	created(w, api.V1+"/accounts/"+account.ID.String(), c.ID)
	return nil
}

// handleRemoveAccountCurrency removes a held currency other than the
// preferred one.
func (s *Server) handleRemoveAccountCurrency(w http.ResponseWriter, r *http.Request, user *core.User) error {
	id, err := PathID(r, "id")
	if err != nil {
		return err
	}
	currencyID, err := PathID(r, "currencyId")
	if err != nil {
		return err
	}
	account, err := s.store.Accounts.FindByID(r.Context(), id, user.ID)
	if err != nil {
		return err
	}
	if account.PreferredCurrencyID == currencyID {
		return &core.ValidationError{Field: "currencyId", Message: "the preferred currency cannot be removed"}
	}
	if err := s.store.Accounts.RemoveCurrency(r.Context(), id, currencyID, user.ID); err != nil {
		return err
	}
	s.notifier.Updated(r.Context(), core.EntityAccounts, id, user.ID)
	NewResponse().Status(http.StatusNoContent).Write(w)
	return nil
}

func (s *Server) handleAccountBalance(w http.ResponseWriter, r *http.Request, user *core.User) error {
	id, err := PathID(r, "id")
	if err != nil {
		return err
	}
	balances, err := s.reports.AccountBalance(r.Context(), id, user.ID)
	if err != nil {
		return err
	}
	NewResponse().JSON(mapSlice(balances, balanceToAPI)).Write(w)
	return nil
}

func (s *Server) handleAccountBalanceHistory(w http.ResponseWriter, r *http.Request, user *core.User) error {
	id, err := PathID(r, "id")
	if err != nil {
		return err
	}
	split, err := ParseSplit(r.URL.Query())
	if err != nil {
		return err
	}
	points, err := s.reports.BalanceHistory(r.Context(), id, user.ID, split)
	if err != nil {
		return err
	}
	NewResponse().JSON(mapSlice(points, balancePointToAPI)).Write(w)
	return nil
}
