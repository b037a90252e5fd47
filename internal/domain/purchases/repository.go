package purchases

import (
	"context"
	"time"

	"ladle/internal/core/id"
)

// Repository persists purchase receipt events.
type Repository interface {
	CreateReceipts(ctx context.Context, tenantID string, events []*PurchaseReceiptEvent) error

	// ListActiveByOrder returns the non-reversed receipts of exactly one
	// order. Reversal iterates this list and nothing else.
	ListActiveByOrder(ctx context.Context, tenantID string, orderID id.ID) ([]*PurchaseReceiptEvent, error)

	// MarkOrderDeleted soft-deletes every active receipt of the order and
	// returns how many rows it touched. Zero means the order was unknown
	// or already reversed.
	MarkOrderDeleted(ctx context.Context, tenantID string, orderID id.ID, at time.Time) (int64, error)
}

// PendingRepository persists pending-purchase candidates.
type PendingRepository interface {
	CreateBatch(ctx context.Context, tenantID string, candidates []*PendingPurchaseCandidate) error

	Get(ctx context.Context, tenantID string, candidateID id.ID) (*PendingPurchaseCandidate, error)

	// Decide moves a candidate out of pending. The update is guarded on
	// state = pending so a concurrent double-decide loses cleanly: the
	// second caller sees ok = false.
	Decide(ctx context.Context, tenantID string, candidateID id.ID, state CandidateState, at time.Time) (ok bool, err error)

	ListByBatch(ctx context.Context, tenantID string, batchID id.ID) ([]*PendingPurchaseCandidate, error)
}
