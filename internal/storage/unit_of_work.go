package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gnomeshade/internal/core"
)

// AccountUnitOfWork writes an account and its in-currency rows atomically.
type AccountUnitOfWork struct {
	store *Store
	now   func() time.Time
}

func NewAccountUnitOfWork(store *Store) *AccountUnitOfWork {
	return &AccountUnitOfWork{store: store, now: time.Now}
}

// Add inserts the account and one in-currency row per currency. The
// preferred currency is always included.
func (u *AccountUnitOfWork) Add(ctx context.Context, account *core.Account, currencyIDs []uuid.UUID, userID uuid.UUID) error {
	now := u.now().UTC()
	account.Stamp(userID, now)
	account.NormalizedName = core.NormalizeName(account.Name)

	return u.store.InTx(ctx, func(tx *Store) error {
		if err := tx.Accounts.Add(ctx, account); err != nil {
			return err
		}
		account.Currencies = account.Currencies[:0]
		for _, currencyID := range core.CurrencyIDs(account.PreferredCurrencyID, currencyIDs) {
			c := core.AccountInCurrency{AccountID: account.ID, CurrencyID: currencyID}
			c.Stamp(userID, now)
			c.OwnerID = account.OwnerID
			if err := tx.Accounts.AddCurrency(ctx, &c); err != nil {
				return fmt.Errorf("add account currency: %w", err)
			}
			account.Currencies = append(account.Currencies, c)
		}
		return nil
	})
}

// Update saves the account. A new preferred currency the account does not
// hold yet is added in the same transaction.
func (u *AccountUnitOfWork) Update(ctx context.Context, account *core.Account, userID uuid.UUID) error {
	now := u.now().UTC()
	account.Touch(userID, now)
	account.NormalizedName = core.NormalizeName(account.Name)

	return u.store.InTx(ctx, func(tx *Store) error {
		existing, err := tx.Accounts.FindByID(ctx, account.ID, account.OwnerID)
		if err != nil {
			return err
		}
		if err := tx.Accounts.Update(ctx, account); err != nil {
			return err
		}
		account.Currencies = existing.Currencies
		if _, ok := existing.Currency(account.PreferredCurrencyID); ok {
			return nil
		}
		c := core.AccountInCurrency{AccountID: account.ID, CurrencyID: account.PreferredCurrencyID}
		c.Stamp(userID, now)
		c.OwnerID = account.OwnerID
		if err := tx.Accounts.AddCurrency(ctx, &c); err != nil {
			return fmt.Errorf("add preferred currency: %w", err)
		}
		account.Currencies = append(account.Currencies, c)
		return nil
	})
}

// Delete removes the in-currency rows and then the account.
func (u *AccountUnitOfWork) Delete(ctx context.Context, accountID, userID uuid.UUID) error {
	return u.store.InTx(ctx, func(tx *Store) error {
		if err := tx.Accounts.RemoveCurrencies(ctx, accountID, userID); err != nil {
			return err
		}
		return tx.Accounts.Delete(ctx, accountID, userID)
	})
}

// TransactionUnitOfWork writes a transaction together with its items.
type TransactionUnitOfWork struct {
	store *Store
	now   func() time.Time
}

func NewTransactionUnitOfWork(store *Store) *TransactionUnitOfWork {
	return &TransactionUnitOfWork{store: store, now: time.Now}
}

// Add inserts the transaction and its items, which receive its id.
// At least one item is required.
func (u *TransactionUnitOfWork) Add(ctx context.Context, d *core.DetailedTransaction, userID uuid.UUID) error {
	if len(d.Transfers)+len(d.Purchases)+len(d.LoanPayments) == 0 {
		return core.ErrNoItems
	}

	now := u.now().UTC()
	d.Transaction.Stamp(userID, now)
	if err := d.Transaction.Validate(); err != nil {
		return err
	}

	var errs []error
	for i := range d.Transfers {
		t := &d.Transfers[i]
		t.ID, t.OwnerID = uuid.Nil, uuid.Nil
		t.Stamp(userID, now)
		t.TransactionID = d.ID
		errs = append(errs, t.Validate())
	}
	for i := range d.Purchases {
		p := &d.Purchases[i]
		p.ID, p.OwnerID = uuid.Nil, uuid.Nil
		p.Stamp(userID, now)
		p.TransactionID = d.ID
		errs = append(errs, p.Validate())
	}
	for i := range d.LoanPayments {
		lp := &d.LoanPayments[i]
		lp.ID, lp.OwnerID = uuid.Nil, uuid.Nil
		lp.Stamp(userID, now)
		lp.TransactionID = d.ID
		errs = append(errs, lp.Validate())
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	return u.store.InTx(ctx, func(tx *Store) error {
		if err := tx.Transactions.Add(ctx, &d.Transaction); err != nil {
			return err
		}
		for i := range d.Transfers {
			if err := tx.Transfers.Add(ctx, &d.Transfers[i]); err != nil {
				return err
			}
		}
		for i := range d.Purchases {
			if err := tx.Purchases.Add(ctx, &d.Purchases[i]); err != nil {
				return err
			}
		}
		for i := range d.LoanPayments {
			if err := tx.LoanPayments.Add(ctx, &d.LoanPayments[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete soft-deletes every item and then the transaction.
func (u *TransactionUnitOfWork) Delete(ctx context.Context, transactionID, userID uuid.UUID) error {
	return u.store.InTx(ctx, func(tx *Store) error {
		if _, err := tx.Transactions.FindByID(ctx, transactionID, userID); err != nil {
			return err
		}
		if _, err := tx.Transfers.DeleteByTransaction(ctx, transactionID, userID); err != nil {
			return err
		}
		if _, err := tx.Purchases.DeleteByTransaction(ctx, transactionID, userID); err != nil {
			return err
		}
		if _, err := tx.LoanPayments.DeleteByTransaction(ctx, transactionID, userID); err != nil {
			return err
		}
		return tx.Transactions.Delete(ctx, transactionID, userID)
	})
}

// Merge moves every item of source into target and deletes source.
// Transactions refunded by source become refunded by target.
func (u *TransactionUnitOfWork) Merge(ctx context.Context, targetID, sourceID, userID uuid.UUID) error {
	if targetID == sourceID {
		return &core.ValidationError{Field: "sourceId", Message: "cannot merge a transaction into itself"}
	}
	return u.store.InTx(ctx, func(tx *Store) error {
		if _, err := tx.Transactions.FindByID(ctx, targetID, userID); err != nil {
			return err
		}
		if _, err := tx.Transactions.FindByID(ctx, sourceID, userID); err != nil {
			return err
		}
		moves := []struct {
			repo interface {
				reassign(context.Context, string, uuid.UUID, uuid.UUID, uuid.UUID) (int64, error)
			}
			column string
		}{
			{tx.Transfers, "transaction_id"},
			{tx.Purchases, "transaction_id"},
			{tx.LoanPayments, "transaction_id"},
			{tx.Transactions, "refunded_by"},
		}
		for _, m := range moves {
			if _, err := m.repo.reassign(ctx, m.column, sourceID, targetID, userID); err != nil {
				return err
			}
		}
		return tx.Transactions.Delete(ctx, sourceID, userID)
	})
}

// CounterpartyUnitOfWork merges counterparties.
type CounterpartyUnitOfWork struct {
	store *Store
}

func NewCounterpartyUnitOfWork(store *Store) *CounterpartyUnitOfWork {
	return &CounterpartyUnitOfWork{store: store}
}

// Merge moves the accounts and loans of source to target and deletes
// source. The user's own counterparty cannot be merged away, and a loan
// between the two would become a loan with itself.
func (u *CounterpartyUnitOfWork) Merge(ctx context.Context, targetID, sourceID, userID uuid.UUID) error {
	if targetID == sourceID {
		return &core.ValidationError{Field: "sourceId", Message: "cannot merge a counterparty into itself"}
	}
	return u.store.InTx(ctx, func(tx *Store) error {
		user, err := tx.Users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user.CounterpartyID == sourceID {
			return &core.ValidationError{Field: "sourceId", Message: "the user's own counterparty cannot be merged into another"}
		}
		if _, err := tx.Counterparties.FindByID(ctx, targetID, userID); err != nil {
			return err
		}
		if _, err := tx.Counterparties.FindByID(ctx, sourceID, userID); err != nil {
			return err
		}

		between, err := tx.Loans.query(ctx,
			"owner_id = ? AND ((issuing_counterparty_id = ? AND receiving_counterparty_id = ?) OR (issuing_counterparty_id = ? AND receiving_counterparty_id = ?))",
			"", userID, sourceID, targetID, targetID, sourceID)
		if err != nil {
			return err
		}
		if len(between) > 0 {
			return &core.ValidationError{Field: "sourceId", Message: "the counterparties have loans between them"}
		}

		if _, err := tx.Accounts.reassign(ctx, "counterparty_id", sourceID, targetID, userID); err != nil {
			return err
		}
		for _, column := range []string{"issuing_counterparty_id", "receiving_counterparty_id"} {
			if _, err := tx.Loans.reassign(ctx, column, sourceID, targetID, userID); err != nil {
				return err
			}
		}
		return tx.Counterparties.Delete(ctx, sourceID, userID)
	})
}

// UserUnitOfWork creates users.
type UserUnitOfWork struct {
	store *Store
	now   func() time.Time
}

func NewUserUnitOfWork(store *Store) *UserUnitOfWork {
	return &UserUnitOfWork{store: store, now: time.Now}
}

// CreateUser inserts the user and a counterparty representing them, owned
// by the user and named after their full name, then links the two.
func (u *UserUnitOfWork) CreateUser(ctx context.Context, user *core.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	now := u.now().UTC()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt, user.ModifiedAt = now, now

	return u.store.InTx(ctx, func(tx *Store) error {
		if err := tx.Users.Add(ctx, user); err != nil {
			return err
		}
		counterparty := core.Counterparty{Name: user.FullName}
		counterparty.Stamp(user.ID, now)
		if err := tx.Counterparties.Add(ctx, &counterparty); err != nil {
			return fmt.Errorf("add user counterparty: %w", err)
		}
		if err := tx.Users.SetCounterparty(ctx, user.ID, counterparty.ID); err != nil {
			return err
		}
		user.CounterpartyID = counterparty.ID
		return nil
	})
}
