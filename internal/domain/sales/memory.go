package sales

import (
	"context"
	"sync"
	"time"

	"ladle/internal/core/apperror"
	"ladle/internal/core/id"
)

// MemoryRepository is an in-memory Repository for unit tests.
type MemoryRepository struct {
	mu     sync.Mutex
	events map[id.ID]*SaleEvent
}

// NewMemoryRepository creates an empty in-memory sale event store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{events: make(map[id.ID]*SaleEvent)}
}

// Create implements Repository.
func (m *MemoryRepository) Create(ctx context.Context, event *SaleEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *event
	cp.AppliedDeductions = append([]AppliedDeduction(nil), event.AppliedDeductions...)
	m.events[event.ID] = &cp
	return nil
}

// GetActive implements Repository.
func (m *MemoryRepository) GetActive(ctx context.Context, saleID id.ID) (*SaleEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[saleID]
	if !ok || event.IsDeleted() {
		return nil, apperror.NewNotFound("sale event", saleID.String())
	}
	cp := *event
	cp.AppliedDeductions = append([]AppliedDeduction(nil), event.AppliedDeductions...)
	return &cp, nil
}

// MarkDeleted implements Repository.
func (m *MemoryRepository) MarkDeleted(ctx context.Context, saleID id.ID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[saleID]
	if !ok || event.IsDeleted() {
		return false, nil
	}
	event.MarkDeleted(at)
	return true, nil
}

// Ensure interface compliance.
var _ Repository = (*MemoryRepository)(nil)
