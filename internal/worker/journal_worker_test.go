package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnomeshade/internal/amqp"
	"gnomeshade/internal/core"
	"gnomeshade/internal/sheets"
	"gnomeshade/internal/sheets/memory"
)

type fakeTransfers map[uuid.UUID]*core.Transfer

func (f fakeTransfers) FindAnyByID(_ context.Context, id uuid.UUID) (*core.Transfer, error) {
	if id == uuid.Nil {
		return nil, errors.New("database is locked")
	}
	t, ok := f[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return t, nil
}

type failingJournal struct{}

func (failingJournal) AppendEntry(context.Context, sheets.JournalEntry) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestJournalWorker_HandleEvent(t *testing.T) {
	booked := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	transferID := uuid.New()
	transfers := fakeTransfers{transferID: {
		Entity:       core.Entity{ID: transferID},
		SourceAmount: decimal.NewFromInt(20),
		TargetAmount: decimal.NewFromInt(19),
		BookedAt:     &booked,
	}}
	ctx := context.Background()

	t.Run("transfer carries amounts", func(t *testing.T) {
		journal := memory.New()
		w := NewJournalWorker(transfers, journal, nil)
		require.NoError(t, w.HandleEvent(ctx, amqp.NewEntityEvent(core.EntityTransfers, amqp.ActionCreated, transferID, uuid.New())))

		entries := journal.Entries()
		require.Len(t, entries, 1)
		require.NotNil(t, entries[0].SourceAmount)
		assert.True(t, decimal.NewFromInt(20).Equal(*entries[0].SourceAmount))
		assert.True(t, decimal.NewFromInt(19).Equal(*entries[0].TargetAmount))
		require.NotNil(t, entries[0].TransferDate)
		assert.True(t, booked.Equal(*entries[0].TransferDate))
	})

	t.Run("value date wins over booking date", func(t *testing.T) {
		valued := booked.AddDate(0, 0, 2)
		id := uuid.New()
		journal := memory.New()
		w := NewJournalWorker(fakeTransfers{id: {
			Entity: core.Entity{ID: id}, SourceAmount: decimal.NewFromInt(1), TargetAmount: decimal.NewFromInt(1),
			BookedAt: &booked, ValuedAt: &valued,
		}}, journal, nil)
		require.NoError(t, w.HandleEvent(ctx, amqp.NewEntityEvent(core.EntityTransfers, amqp.ActionUpdated, id, uuid.New())))

		entries := journal.Entries()
		require.Len(t, entries, 1)
		require.NotNil(t, entries[0].TransferDate)
		assert.True(t, valued.Equal(*entries[0].TransferDate))
	})

	t.Run("deleted and other entities have no amounts", func(t *testing.T) {
		journal := memory.New()
		w := NewJournalWorker(transfers, journal, nil)
		require.NoError(t, w.HandleEvent(ctx, amqp.NewEntityEvent(core.EntityTransfers, amqp.ActionDeleted, transferID, uuid.New())))
		require.NoError(t, w.HandleEvent(ctx, amqp.NewEntityEvent(core.EntityAccounts, amqp.ActionCreated, uuid.New(), uuid.New())))
		require.NoError(t, w.HandleEvent(ctx, amqp.NewEntityEvent(core.EntityTransfers, amqp.ActionUpdated, uuid.New(), uuid.New())))

		entries := journal.Entries()
		require.Len(t, entries, 3)
		for _, e := range entries {
			assert.Nil(t, e.SourceAmount)
			assert.Nil(t, e.TransferDate)
		}
		assert.Equal(t, amqp.ActionDeleted, entries[0].Action)
	})

	t.Run("storage failure is retried", func(t *testing.T) {
		w := NewJournalWorker(transfers, memory.New(), nil)
		err := w.HandleEvent(ctx, amqp.EntityEvent{Entity: core.EntityTransfers, Action: amqp.ActionCreated})
		assert.ErrorContains(t, err, "load transfer")
	})

	t.Run("journal failure is returned", func(t *testing.T) {
		w := NewJournalWorker(transfers, failingJournal{}, nil)
		err := w.HandleEvent(ctx, amqp.NewEntityEvent(core.EntityUnits, amqp.ActionCreated, uuid.New(), uuid.New()))
		assert.ErrorContains(t, err, "quota exceeded")
	})
}
