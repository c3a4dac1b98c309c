package core

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products, and optionally other categories.
type Category struct {
	Entity
	Name           string
	NormalizedName string
	Description    *string
	CategoryID     *uuid.UUID
}

func (c *Category) Validate() error {
	var errs []error
	if err := requireName(c.Name); err != nil {
		errs = append(errs, err)
	}
	if c.CategoryID != nil && *c.CategoryID == c.ID {
		errs = append(errs, invalid("categoryId", "cannot reference itself"))
	}
	return errors.Join(errs...)
}

// Product is anything that can be purchased.
type Product struct {
	Entity
	Name           string
	NormalizedName string
	Sku            *string
	Description    *string
	UnitID         *uuid.UUID
	CategoryID     *uuid.UUID
}

func (p *Product) Validate() error {
	return requireName(p.Name)
}

// Unit measures product amounts. A unit derived from a parent converts
// to it through Multiplier.
type Unit struct {
	Entity
	Name           string
	NormalizedName string
	Symbol         *string
	ParentUnitID   *uuid.UUID
	Multiplier     *decimal.Decimal
}

func (u *Unit) Validate() error {
	var errs []error
	if err := requireName(u.Name); err != nil {
		errs = append(errs, err)
	}
	if u.ParentUnitID != nil && u.Multiplier == nil {
		errs = append(errs, invalid("multiplier", "is required when parentUnitId is set"))
	}
	if u.ParentUnitID == nil && u.Multiplier != nil {
		errs = append(errs, invalid("parentUnitId", "is required when multiplier is set"))
	}
	if u.Multiplier != nil && !u.Multiplier.IsPositive() {
		errs = append(errs, invalid("multiplier", "must be greater than zero"))
	}
	return errors.Join(errs...)
}
