package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Actions carried by EntityEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// EntityEvent announces a committed write. Consumers load the current state
// themselves; the event carries identifiers only.
type EntityEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntityEvent(entity, action string, id, ownerID uuid.UUID) EntityEvent {
	return EntityEvent{
		Entity:    entity,
		Action:    action,
		ID:        id,
		OwnerID:   ownerID,
		Timestamp: time.Now().UTC(),
	}
}

func (e EntityEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EntityEventFromJSON decodes an event and rejects bodies missing the entity
// name or id.
func EntityEventFromJSON(data []byte) (EntityEvent, error) {
	var e EntityEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return EntityEvent{}, err
	}
	if e.Entity == "" || e.ID == uuid.Nil {
		return EntityEvent{}, fmt.Errorf("event missing entity or id")
	}
	return e, nil
}
