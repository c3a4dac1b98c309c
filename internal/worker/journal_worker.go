package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"gnomeshade/internal/amqp"
	"gnomeshade/internal/core"
	"gnomeshade/internal/log"
	"gnomeshade/internal/sheets"
)

// TransferFinder loads a transfer regardless of owner.
type TransferFinder interface {
	FindAnyByID(ctx context.Context, id uuid.UUID) (*core.Transfer, error)
}

// JournalWorker turns entity events into journal rows.
type JournalWorker struct {
	transfers TransferFinder
	journal   sheets.JournalWriter
	logger    *log.Logger
}

func NewJournalWorker(transfers TransferFinder, journal sheets.JournalWriter, logger *log.Logger) *JournalWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &JournalWorker{
		transfers: transfers,
		journal:   journal,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent appends one row per event. Transfer rows carry amounts and the
// booking date when the transfer can still be read; deleted or vanished
// transfers are journaled without them.
func (w *JournalWorker) HandleEvent(ctx context.Context, event amqp.EntityEvent) error {
	entry := sheets.JournalEntry{
		Timestamp: event.Timestamp,
		Entity:    event.Entity,
		Action:    event.Action,
		ID:        event.ID,
		OwnerID:   event.OwnerID,
	}

	if event.Entity == core.EntityTransfers && event.Action != amqp.ActionDeleted {
		transfer, err := w.transfers.FindAnyByID(ctx, event.ID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			w.logger.WarnContext(ctx, "Transfer no longer exists, journaling without amounts",
				log.FieldEntityID, event.ID.String())
		case err != nil:
			return fmt.Errorf("load transfer: %w", err)
		default:
			entry.SourceAmount = &transfer.SourceAmount
			entry.TargetAmount = &transfer.TargetAmount
			if date := transfer.Date(); !date.IsZero() {
				entry.TransferDate = &date
			}
		}
	}

	ref, err := w.journal.AppendEntry(ctx, entry)
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	w.logger.InfoContext(ctx, "Journaled entity event",
		log.FieldEntity, event.Entity,
		log.FieldAction, event.Action,
		log.FieldEntityID, event.ID.String(),
		"row", ref)
	return nil
}
