package ledger

import (
	"context"
	"sync"
	"time"

	"ladle/internal/core/apperror"
	"ladle/internal/core/id"
	"ladle/internal/core/types"
)

// MemoryRepository is an in-memory Repository for unit tests. It
// reproduces the row-lock discipline with one mutex per ingredient:
// GetForUpdate blocks until the previous holder finishes its
// UpdateQuantity, so concurrent adjustments on the same ingredient
// serialize exactly as they would behind SELECT ... FOR UPDATE.
// It emulates per-row serialization only, not transactional rollback.
type MemoryRepository struct {
	mu    sync.Mutex
	rows  map[id.ID]*LockedIngredient
	locks map[id.ID]*sync.Mutex
}

// NewMemoryRepository creates an empty in-memory ledger store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rows:  make(map[id.ID]*LockedIngredient),
		locks: make(map[id.ID]*sync.Mutex),
	}
}

// Seed inserts an ingredient row.
func (m *MemoryRepository) Seed(ingredientID id.ID, tenantID string, quantity types.Quantity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[ingredientID] = &LockedIngredient{
		ID:             ingredientID,
		TenantID:       tenantID,
		QuantityOnHand: quantity,
		UpdatedAt:      time.Now().UTC(),
	}
	m.locks[ingredientID] = &sync.Mutex{}
}

// Set overwrites an ingredient's quantity outside the ledger path, for
// tests that need to simulate interleaved consumption.
func (m *MemoryRepository) Set(ingredientID id.ID, quantity types.Quantity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[ingredientID]; ok {
		row.QuantityOnHand = quantity
		row.UpdatedAt = time.Now().UTC()
	}
}

// Quantity returns the current on-hand quantity for assertions.
func (m *MemoryRepository) Quantity(ingredientID id.ID) types.Quantity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[ingredientID]; ok {
		return row.QuantityOnHand
	}
	return 0
}

// GetForUpdate implements Repository.
func (m *MemoryRepository) GetForUpdate(ctx context.Context, ingredientID id.ID) (*LockedIngredient, error) {
	m.mu.Lock()
	rowLock, ok := m.locks[ingredientID]
	m.mu.Unlock()
	if !ok {
		return nil, apperror.NewNotFound("ingredient", ingredientID.String())
	}

	rowLock.Lock()

	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.rows[ingredientID]
	cp := *row
	return &cp, nil
}

// UpdateQuantity implements Repository and releases the row lock taken
// by GetForUpdate.
func (m *MemoryRepository) UpdateQuantity(ctx context.Context, ingredientID id.ID, quantity types.Quantity, at time.Time) error {
	m.mu.Lock()
	row, ok := m.rows[ingredientID]
	rowLock := m.locks[ingredientID]
	if ok {
		row.QuantityOnHand = quantity
		row.UpdatedAt = at
	}
	m.mu.Unlock()

	if !ok {
		return apperror.NewNotFound("ingredient", ingredientID.String())
	}
	rowLock.Unlock()
	return nil
}

// Ensure interface compliance.
var _ Repository = (*MemoryRepository)(nil)
