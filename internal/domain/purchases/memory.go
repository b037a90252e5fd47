package purchases

import (
	"context"
	"sync"
	"time"

	"ladle/internal/core/apperror"
	"ladle/internal/core/id"
)

// MemoryRepository is the in-memory receipt store used in tests.
type MemoryRepository struct {
	mu       sync.Mutex
	receipts map[id.ID]*PurchaseReceiptEvent
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{receipts: make(map[id.ID]*PurchaseReceiptEvent)}
}

func (r *MemoryRepository) CreateReceipts(_ context.Context, tenantID string, events []*PurchaseReceiptEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range events {
		cp := *ev
		cp.TenantID = tenantID
		r.receipts[ev.ID] = &cp
	}
	return nil
}

func (r *MemoryRepository) ListActiveByOrder(_ context.Context, tenantID string, orderID id.ID) ([]*PurchaseReceiptEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*PurchaseReceiptEvent
	for _, ev := range r.receipts {
		if ev.TenantID == tenantID && ev.OrderID == orderID && !ev.IsDeleted() {
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryRepository) MarkOrderDeleted(_ context.Context, tenantID string, orderID id.ID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, ev := range r.receipts {
		if ev.TenantID == tenantID && ev.OrderID == orderID && !ev.IsDeleted() {
			ev.MarkDeleted(at)
			n++
		}
	}
	return n, nil
}

// ActiveCount reports live receipts for an order, for test assertions.
func (r *MemoryRepository) ActiveCount(orderID id.ID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.receipts {
		if ev.OrderID == orderID && !ev.IsDeleted() {
			n++
		}
	}
	return n
}

// MemoryPendingRepository is the in-memory candidate store used in tests.
type MemoryPendingRepository struct {
	mu         sync.Mutex
	candidates map[id.ID]*PendingPurchaseCandidate
}

func NewMemoryPendingRepository() *MemoryPendingRepository {
	return &MemoryPendingRepository{candidates: make(map[id.ID]*PendingPurchaseCandidate)}
}

func (r *MemoryPendingRepository) CreateBatch(_ context.Context, tenantID string, candidates []*PendingPurchaseCandidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range candidates {
		cp := *c
		cp.TenantID = tenantID
		r.candidates[c.ID] = &cp
	}
	return nil
}

func (r *MemoryPendingRepository) Get(_ context.Context, tenantID string, candidateID id.ID) (*PendingPurchaseCandidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[candidateID]
	if !ok || c.TenantID != tenantID {
		return nil, apperror.NewNotFound("pending purchase", candidateID)
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryPendingRepository) Decide(_ context.Context, tenantID string, candidateID id.ID, state CandidateState, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[candidateID]
	if !ok || c.TenantID != tenantID {
		return false, nil
	}
	if c.State != CandidatePending {
		return false, nil
	}
	c.State = state
	t := at.UTC()
	c.DecidedAt = &t
	return true, nil
}

func (r *MemoryPendingRepository) ListByBatch(_ context.Context, tenantID string, batchID id.ID) ([]*PendingPurchaseCandidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*PendingPurchaseCandidate
	for _, c := range r.candidates {
		if c.TenantID == tenantID && c.BatchID == batchID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

var (
	_ Repository        = (*MemoryRepository)(nil)
	_ PendingRepository = (*MemoryPendingRepository)(nil)
)
