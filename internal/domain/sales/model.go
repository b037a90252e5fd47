// Package sales records sale events and their exact ledger effect, and
// reverses them by replaying that recorded effect.
package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"ladle/internal/core/entity"
	"ladle/internal/core/id"
	"ladle/internal/core/types"
)

// AppliedDeduction is one line of the ledger effect of a sale. Applied
// is what the ledger actually subtracted after floor clamping; it is the
// value reversal replays. Requested is kept for shortage reporting.
type AppliedDeduction struct {
	IngredientID id.ID          `db:"-" json:"ingredientId"`
	Requested    types.Quantity `db:"-" json:"requested"`
	Applied      types.Quantity `db:"-" json:"applied"`
}

// SaleEvent is a recorded sale. AppliedDeductions is the authoritative
// snapshot of what the sale did to the ledger; VariantFactor and
// QuantitySold additionally snapshot the calculator inputs for events
// recorded before applied deductions existed (legacy fallback).
type SaleEvent struct {
	entity.Event

	RecipeID  id.ID  `db:"recipe_id" json:"recipeId"`
	VariantID *id.ID `db:"variant_id" json:"variantId,omitempty"`

	QuantitySold  types.Quantity  `db:"quantity_sold" json:"quantitySold"`
	VariantFactor decimal.Decimal `db:"variant_factor" json:"variantFactor"`

	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	Total     types.Money `db:"total" json:"total"`

	// CostTotal snapshots ingredient cost at sale time so reversal can
	// subtract the exact accumulated value even if prices change later.
	CostTotal types.Money `db:"cost_total" json:"costTotal"`

	// SoldAt is the business date the aggregates are keyed on.
	SoldAt time.Time `db:"sold_at" json:"soldAt"`

	AppliedDeductions []AppliedDeduction `db:"-" json:"appliedDeductions"`
}

// NewSaleEvent creates a sale event shell for the recorder to fill.
func NewSaleEvent(tenantID string, recipeID id.ID) *SaleEvent {
	return &SaleEvent{
		Event:         entity.NewEvent(tenantID),
		RecipeID:      recipeID,
		VariantFactor: decimal.NewFromInt(1),
		SoldAt:        time.Now().UTC(),
	}
}

// RestoredDelta reports one ingredient restoration of a reversal.
type RestoredDelta struct {
	IngredientID id.ID          `json:"ingredientId"`
	Restored     types.Quantity `json:"restored"`
	NewQuantity  types.Quantity `json:"newQuantity"`
}
