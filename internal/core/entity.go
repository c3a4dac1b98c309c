// Package core holds the Gnomeshade domain model and the pure functions that
// operate on it. Nothing in this package touches storage or transport.
package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
	ErrNoItems    = errors.New("transaction must have at least one item")
	ErrBadLogin   = errors.New("invalid username or password")
)

// Entity names as they appear in change events and the journal.
const (
	EntityCounterparties = "counterparties"
	EntityAccounts       = "accounts"
	EntityTransactions   = "transactions"
	EntityTransfers      = "transfers"
	EntityPurchases      = "purchases"
	EntityLoans          = "loans"
	EntityLoanPayments   = "loan_payments"
	EntityCategories     = "categories"
	EntityProducts       = "products"
	EntityUnits          = "units"
)

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Entity is the header every owned row carries.
type Entity struct {
	ID               uuid.UUID
	CreatedAt        time.Time
	CreatedByUserID  uuid.UUID
	OwnerID          uuid.UUID
	ModifiedAt       time.Time
	ModifiedByUserID uuid.UUID
	DeletedAt        *time.Time
	DeletedByUserID  *uuid.UUID
}

// Stamp fills the creation fields. An ID or owner already set is kept.
func (e *Entity) Stamp(userID uuid.UUID, now time.Time) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OwnerID == uuid.Nil {
		e.OwnerID = userID
	}
	e.CreatedAt = now
	e.CreatedByUserID = userID
	e.Touch(userID, now)
}

// Touch records a modification.
func (e *Entity) Touch(userID uuid.UUID, now time.Time) {
	e.ModifiedAt = now
	e.ModifiedByUserID = userID
}

// Deleted reports whether the row was soft-deleted.
func (e Entity) Deleted() bool { return e.DeletedAt != nil }

// NormalizeName is the key used for case-insensitive name uniqueness.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "is required")
	}
	return nil
}
