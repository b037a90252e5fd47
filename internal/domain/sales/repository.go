package sales

import (
	"context"
	"time"

	"ladle/internal/core/id"
)

// Repository defines storage for sale events. Read paths return active
// (non-deleted) events only; reversal must never see a deleted event as
// actionable.
type Repository interface {
	// Create persists the event together with its applied deductions.
	// Must run in the same transaction as the ledger writes it records.
	Create(ctx context.Context, event *SaleEvent) error

	// GetActive returns an active sale event with its deductions.
	// A missing or already-deleted event is NotFound.
	GetActive(ctx context.Context, saleID id.ID) (*SaleEvent, error)

	// MarkDeleted flags the event deleted, guarded on it still being
	// active. Returns false when the guard fails (already deleted or
	// missing) - the idempotency backstop for concurrent reversals.
	MarkDeleted(ctx context.Context, saleID id.ID, at time.Time) (bool, error)
}
