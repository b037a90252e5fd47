// Package entity provides core domain entities shared across event types.
package entity

import (
	"time"

	"ladle/internal/core/id"
)

// EventState is the tagged lifecycle state of a stock-affecting event.
// Events are append-only: after creation the only mutation ever applied
// to them is the Active -> Deleted transition set by the reversal engine.
type EventState struct {
	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}

// IsDeleted reports whether the event has been reversed.
func (s EventState) IsDeleted() bool {
	return s.DeletedAt != nil
}

// MarkDeleted records the reversal timestamp. The persistence layer
// enforces the same transition with a guarded UPDATE so a concurrent
// double-reversal loses the race and observes zero affected rows.
func (s *EventState) MarkDeleted(at time.Time) {
	t := at.UTC()
	s.DeletedAt = &t
}

// Event contains the common fields of every stock-affecting event row.
type Event struct {
	ID       id.ID  `db:"id" json:"id"`
	TenantID string `db:"tenant_id" json:"tenantId"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`

	EventState
}

// NewEvent creates a new Event with generated ID and timestamp.
func NewEvent(tenantID string) Event {
	return Event{
		ID:        id.New(),
		TenantID:  tenantID,
		CreatedAt: time.Now().UTC(),
	}
}
