package waste

import (
	"context"
	"time"

	"ladle/internal/core/id"
)

// Repository persists waste events.
type Repository interface {
	Create(ctx context.Context, events []*WasteEvent) error

	// GetActive returns the event if it exists and is not reversed;
	// otherwise NotFound.
	GetActive(ctx context.Context, tenantID string, eventID id.ID) (*WasteEvent, error)

	// MarkDeleted soft-deletes the event guarded on deleted_at IS NULL.
	// ok = false means a concurrent reversal won.
	MarkDeleted(ctx context.Context, tenantID string, eventID id.ID, at time.Time) (ok bool, err error)
}
