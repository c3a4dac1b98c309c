package api

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	Entity
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
}

type CategoryCreation struct {
	Name        string     `json:"name" validate:"required,max=256"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2048"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
}

type Product struct {
	Entity
	Name        string     `json:"name"`
	Sku         *string    `json:"sku,omitempty"`
	Description *string    `json:"description,omitempty"`
	UnitID      *uuid.UUID `json:"unitId,omitempty"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
}

type ProductCreation struct {
	Name        string     `json:"name" validate:"required,max=256"`
	Sku         *string    `json:"sku,omitempty" validate:"omitempty,max=128"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2048"`
	UnitID      *uuid.UUID `json:"unitId,omitempty"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
}

type Unit struct {
	Entity
	Name         string           `json:"name"`
	Symbol       *string          `json:"symbol,omitempty"`
	ParentUnitID *uuid.UUID       `json:"parentUnitId,omitempty"`
	Multiplier   *decimal.Decimal `json:"multiplier,omitempty"`
}

type UnitCreation struct {
	Name         string           `json:"name" validate:"required,max=256"`
	Symbol       *string          `json:"symbol,omitempty" validate:"omitempty,max=16"`
	ParentUnitID *uuid.UUID       `json:"parentUnitId,omitempty"`
	Multiplier   *decimal.Decimal `json:"multiplier,omitempty"`
}
