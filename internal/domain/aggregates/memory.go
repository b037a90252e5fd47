package aggregates

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"ladle/internal/core/types"
)

// MemoryRepository is an in-memory Repository for unit tests.
type MemoryRepository struct {
	mu   sync.Mutex
	rows map[Key]Delta
}

// NewMemoryRepository creates an empty in-memory aggregate store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[Key]Delta)}
}

// Accumulate implements Repository.
func (m *MemoryRepository) Accumulate(ctx context.Context, key Key, delta Delta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.rows[key]
	row.Quantity += delta.Quantity
	row.Revenue = row.Revenue.Add(delta.Revenue)
	row.Cost = row.Cost.Add(delta.Cost)
	m.rows[key] = row
	return nil
}

// SubtractClamped implements Repository.
func (m *MemoryRepository) SubtractClamped(ctx context.Context, key Key, delta Delta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.rows[key]
	row.Quantity -= delta.Quantity
	if row.Quantity < 0 {
		row.Quantity = 0
	}
	row.Revenue = clampMoney(row.Revenue.Sub(delta.Revenue))
	row.Cost = clampMoney(row.Cost.Sub(delta.Cost))
	m.rows[key] = row
	return nil
}

// Get implements Repository.
func (m *MemoryRepository) Get(ctx context.Context, key Key) (Delta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[key], nil
}

func clampMoney(v types.Money) types.Money {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// Ensure interface compliance.
var _ Repository = (*MemoryRepository)(nil)
