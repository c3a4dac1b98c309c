package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Counterparty is a person or organization on the other side of a transfer.
type Counterparty struct {
	Entity
	Name string
}

func (c *Counterparty) Validate() error {
	return requireName(c.Name)
}

// Currency is global reference data and is not owned by any user.
type Currency struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Name           string
	AlphabeticCode string
	NumericCode    int
	MinorUnit      int
}

func (c *Currency) Validate() error {
	var errs []error
	if err := requireName(c.Name); err != nil {
		errs = append(errs, err)
	}
	code := strings.TrimSpace(c.AlphabeticCode)
	if len(code) != 3 || strings.ToUpper(code) != code {
		errs = append(errs, invalid("alphabeticCode", "must be three upper-case letters"))
	}
	if c.MinorUnit < 0 || c.MinorUnit > 4 {
		errs = append(errs, invalid("minorUnit", "must be between 0 and 4"))
	}
	return errors.Join(errs...)
}

// User is a login. Its counterparty represents the user in transfers.
type User struct {
	ID             uuid.UUID
	Username       string
	PasswordHash   string
	FullName       string
	CounterpartyID uuid.UUID
	CreatedAt      time.Time
	ModifiedAt     time.Time
}

func (u *User) Validate() error {
	var errs []error
	if len(strings.TrimSpace(u.Username)) < 3 {
		errs = append(errs, invalid("username", "must be at least 3 characters"))
	}
	if strings.TrimSpace(u.FullName) == "" {
		errs = append(errs, invalid("fullName", "is required"))
	}
	return errors.Join(errs...)
}
