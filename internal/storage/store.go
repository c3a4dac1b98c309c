package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gnomeshade/internal/core"
	"gnomeshade/internal/log"
)

// Store aggregates every repository over one connection or transaction.
type Store struct {
	db     *DB
	logger *log.Logger

	Users          *UserRepository
	Currencies     *CurrencyRepository
	Counterparties *Repository[core.Counterparty]
	Accounts       *AccountRepository
	Transactions   *TransactionRepository
	Transfers      *ItemRepository[core.Transfer]
	Purchases      *ItemRepository[core.Purchase]
	LoanPayments   *ItemRepository[core.LoanPayment]
	Loans          *Repository[core.Loan]
	Categories     *Repository[core.Category]
	Products       *Repository[core.Product]
	Units          *Repository[core.Unit]
}

// NewStore builds repositories over db.
func NewStore(db *DB) *Store {
	return newStore(db, db, db.logger)
}

func newStore(db *DB, q DBTX, logger *log.Logger) *Store {
	d := db.Dialect
	return &Store{
		db:     db,
		logger: logger,

		Users:          &UserRepository{db: q, dialect: d, logger: logger},
		Currencies:     &CurrencyRepository{db: q, dialect: d},
		Counterparties: newRepository(q, d, logger, counterpartyMapping),
		Accounts: &AccountRepository{
			Repository: newRepository(q, d, logger, accountMapping),
			inCurrency: newRepository(q, d, logger, accountInCurrencyMapping),
		},
		Transactions: &TransactionRepository{Repository: newRepository(q, d, logger, transactionMapping)},
		Transfers:    &ItemRepository[core.Transfer]{Repository: newRepository(q, d, logger, transferMapping)},
		Purchases:    &ItemRepository[core.Purchase]{Repository: newRepository(q, d, logger, purchaseMapping)},
		LoanPayments: &ItemRepository[core.LoanPayment]{Repository: newRepository(q, d, logger, loanPaymentMapping)},
		Loans:        newRepository(q, d, logger, loanMapping),
		Categories:   newRepository(q, d, logger, categoryMapping),
		Products:     newRepository(q, d, logger, productMapping),
		Units:        newRepository(q, d, logger, unitMapping),
	}
}

// InTx runs fn with a Store bound to a single database transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newStore(s.db, tx, s.logger)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ItemRepository stores rows that belong to a transaction.
type ItemRepository[T any] struct {
	*Repository[T]
}

// ByTransaction lists the items of one transaction.
func (r *ItemRepository[T]) ByTransaction(ctx context.Context, transactionID, ownerID uuid.UUID) ([]T, error) {
	return r.query(ctx, "transaction_id = ? AND owner_id = ?", "ORDER BY created_at, id", transactionID, ownerID)
}

// by lists items whose reference column equals id.
func (r *ItemRepository[T]) by(ctx context.Context, column string, id, ownerID uuid.UUID) ([]T, error) {
	return r.query(ctx, column+" = ? AND owner_id = ?", "ORDER BY created_at, id", id, ownerID)
}

// DeleteByTransaction soft-deletes every item of a transaction.
func (r *ItemRepository[T]) DeleteByTransaction(ctx context.Context, transactionID, userID uuid.UUID) (int64, error) {
	return r.deleteWhere(ctx, userID, "transaction_id = ? AND owner_id = ?", transactionID, userID)
}

// PurchasesOfProduct lists every purchase of a product.
func (s *Store) PurchasesOfProduct(ctx context.Context, productID, ownerID uuid.UUID) ([]core.Purchase, error) {
	return s.Purchases.by(ctx, "product_id", productID, ownerID)
}

// PaymentsOfLoan lists every payment made against a loan.
func (s *Store) PaymentsOfLoan(ctx context.Context, loanID, ownerID uuid.UUID) ([]core.LoanPayment, error) {
	return s.LoanPayments.by(ctx, "loan_id", loanID, ownerID)
}

// TransactionRepository adds date filtering to transactions.
type TransactionRepository struct {
	*Repository[core.Transaction]
}

// Range lists transactions with a transfer dated within [from, to).
// A nil bound is open. With both bounds nil every transaction is returned.
func (r *TransactionRepository) Range(ctx context.Context, ownerID uuid.UUID, from, to *time.Time) ([]core.Transaction, error) {
	if from == nil && to == nil {
		return r.Get(ctx, ownerID)
	}

	where := "owner_id = ? AND id IN (SELECT transaction_id FROM transfers WHERE deleted_at IS NULL"
	args := []any{ownerID}
	if from != nil {
		where += " AND COALESCE(valued_at, booked_at) >= ?"
		args = append(args, from.UTC())
	}
	if to != nil {
		where += " AND COALESCE(valued_at, booked_at) < ?"
		args = append(args, to.UTC())
	}
	where += ")"
	return r.query(ctx, where, "ORDER BY created_at, id", args...)
}
