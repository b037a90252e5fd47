// Package ledger provides the stock ledger core: the exclusive owner of
// each ingredient's current quantity.
package ledger

import (
	"context"
	"time"

	"ladle/internal/core/id"
	"ladle/internal/core/types"
)

// Repository defines storage operations for the ledger. Implementations
// must provide row-level mutual exclusion: GetForUpdate blocks
// concurrent callers on the same ingredient until the surrounding
// transaction ends.
type Repository interface {
	// GetForUpdate returns the ingredient row under an exclusive lock.
	// Returns NotFound if the ingredient does not exist.
	GetForUpdate(ctx context.Context, ingredientID id.ID) (*LockedIngredient, error)

	// UpdateQuantity writes the new on-hand quantity for a row previously
	// locked in the same transaction.
	UpdateQuantity(ctx context.Context, ingredientID id.ID, quantity types.Quantity, at time.Time) error
}

// LockedIngredient is the minimal row state the ledger mutates.
type LockedIngredient struct {
	ID             id.ID          `db:"id"`
	TenantID       string         `db:"tenant_id"`
	QuantityOnHand types.Quantity `db:"quantity_on_hand"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// Adjustment is the outcome of a single ledger write. Applied may differ
// from Requested when the floor clamp triggers; Applied is ledger truth
// and is what event recorders must persist.
type Adjustment struct {
	IngredientID id.ID          `json:"ingredientId"`
	Requested    types.Quantity `json:"requested"`
	Applied      types.Quantity `json:"applied"`
	NewQuantity  types.Quantity `json:"newQuantity"`
}

// BulkItem is one entry of a bulk adjustment request.
type BulkItem struct {
	IngredientID id.ID
	Delta        types.Quantity
}

// BulkItemError reports a failed bulk item without failing its siblings.
type BulkItemError struct {
	IngredientID id.ID  `json:"ingredientId"`
	Code         string `json:"code"`
	Message      string `json:"message"`
}

// BulkResult carries per-item outcomes of a bulk adjustment.
type BulkResult struct {
	Results []Adjustment    `json:"results"`
	Errors  []BulkItemError `json:"errors"`
}
