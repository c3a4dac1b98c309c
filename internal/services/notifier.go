package services

import (
	"context"

	"github.com/google/uuid"

	"gnomeshade/internal/amqp"
	"gnomeshade/internal/log"
)

// Publisher sends entity events to the broker.
type Publisher interface {
	PublishEvent(ctx context.Context, event amqp.EntityEvent) error
}

// Invalidator drops cached data for an owner after a write.
type Invalidator interface {
	Invalidate(ownerID uuid.UUID)
}

// Notifier fans a committed write out to the report cache and the event
// broker. Publish failures are logged and never fail the write.
type Notifier struct {
	publisher   Publisher
	invalidator Invalidator
	logger      *log.Logger
}

// NewNotifier accepts a nil publisher when no broker is configured.
func NewNotifier(publisher Publisher, invalidator Invalidator, logger *log.Logger) *Notifier {
	if logger == nil {
		logger = log.Discard()
	}
	return &Notifier{
		publisher:   publisher,
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentNotifier),
	}
}

func (n *Notifier) Created(ctx context.Context, entity string, id, ownerID uuid.UUID) {
	n.notify(ctx, entity, amqp.ActionCreated, id, ownerID)
}

func (n *Notifier) Updated(ctx context.Context, entity string, id, ownerID uuid.UUID) {
	n.notify(ctx, entity, amqp.ActionUpdated, id, ownerID)
}

func (n *Notifier) Deleted(ctx context.Context, entity string, id, ownerID uuid.UUID) {
	n.notify(ctx, entity, amqp.ActionDeleted, id, ownerID)
}

func (n *Notifier) notify(ctx context.Context, entity, action string, id, ownerID uuid.UUID) {
	if n == nil {
		return
	}
	if n.invalidator != nil {
		n.invalidator.Invalidate(ownerID)
	}
	if n.publisher == nil {
		return
	}
	event := amqp.NewEntityEvent(entity, action, id, ownerID)
	if err := n.publisher.PublishEvent(ctx, event); err != nil {
		n.logger.WarnContext(ctx, "Failed to publish entity event",
			log.FieldError, err,
			log.FieldOperation, log.OpPublish,
			log.FieldEntity, entity,
			log.FieldEntityID, id.String(),
			log.FieldAction, action)
	}
}
