package waste

import (
	"context"
	"sync"
	"time"

	"ladle/internal/core/apperror"
	"ladle/internal/core/id"
)

// MemoryRepository is the in-memory waste event store used in tests.
type MemoryRepository struct {
	mu     sync.Mutex
	events map[id.ID]*WasteEvent
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{events: make(map[id.ID]*WasteEvent)}
}

func (r *MemoryRepository) Create(_ context.Context, events []*WasteEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range events {
		cp := *ev
		r.events[ev.ID] = &cp
	}
	return nil
}

func (r *MemoryRepository) GetActive(_ context.Context, tenantID string, eventID id.ID) (*WasteEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[eventID]
	if !ok || ev.TenantID != tenantID || ev.IsDeleted() {
		return nil, apperror.NewNotFound("waste event", eventID)
	}
	cp := *ev
	return &cp, nil
}

func (r *MemoryRepository) MarkDeleted(_ context.Context, tenantID string, eventID id.ID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[eventID]
	if !ok || ev.TenantID != tenantID || ev.IsDeleted() {
		return false, nil
	}
	ev.MarkDeleted(at)
	return true, nil
}

var _ Repository = (*MemoryRepository)(nil)
