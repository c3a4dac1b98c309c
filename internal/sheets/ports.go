package sheets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Header is the first row of a journal sheet.
var Header = []any{"Timestamp", "Entity", "Action", "ID", "Owner", "Source amount", "Target amount", "Transfer date"}

// JournalEntry is one line of the append-only change journal. Amounts and
// TransferDate are set for transfers only. TransferDate is the value date,
// falling back to the booking date.
type JournalEntry struct {
	Timestamp    time.Time
	Entity       string
	Action       string
	ID           uuid.UUID
	OwnerID      uuid.UUID
	SourceAmount *decimal.Decimal
	TargetAmount *decimal.Decimal
	TransferDate *time.Time
}

func (e JournalEntry) Validate() error {
	if e.Entity == "" || e.Action == "" {
		return errors.New("journal entry needs entity and action")
	}
	if e.ID == uuid.Nil {
		return errors.New("journal entry needs an id")
	}
	return nil
}

// Row renders the entry in Header column order. Missing values are empty
// cells.
func (e JournalEntry) Row() []any {
	amount := func(d *decimal.Decimal) any {
		if d == nil {
			return ""
		}
		return d.StringFixed(2)
	}
	date := ""
	if e.TransferDate != nil {
		date = e.TransferDate.UTC().Format(time.RFC3339)
	}
	return []any{
		e.Timestamp.UTC().Format(time.RFC3339),
		e.Entity,
		e.Action,
		e.ID.String(),
		e.OwnerID.String(),
		amount(e.SourceAmount),
		amount(e.TargetAmount),
		date,
	}
}

// Ports for outbound adapters.
type (
	JournalWriter interface {
		AppendEntry(ctx context.Context, e JournalEntry) (rowRef string, err error)
	}
)
