// Package waste records ingredient waste events and reverses them.
package waste

import (
	"time"

	"ladle/internal/core/entity"
	"ladle/internal/core/id"
	"ladle/internal/core/types"
)

// WasteEvent is one registered waste line. Applied is what the ledger
// actually removed after the floor-at-zero clamp; reversal restores
// Applied, never QuantityWasted. UnitPrice is the ingredient price at
// registration time: reversal subtracts the cost computed from it, so a
// later catalog price change cannot skew the rollups.
type WasteEvent struct {
	entity.Event

	IngredientID   id.ID          `db:"ingredient_id" json:"ingredientId"`
	QuantityWasted types.Quantity `db:"quantity_wasted" json:"quantityWasted"`
	Applied        types.Quantity `db:"applied" json:"applied"`
	UnitPrice      types.Money    `db:"unit_price" json:"unitPrice"`
	Reason         string         `db:"reason" json:"reason,omitempty"`
	WastedAt       time.Time      `db:"wasted_at" json:"wastedAt"`
}

// Item is one line of a bulk waste registration.
type Item struct {
	IngredientID id.ID
	Quantity     types.Quantity
	Reason       string
}

// RestoredDelta reports the stock restoration of a waste reversal.
type RestoredDelta struct {
	IngredientID id.ID          `json:"ingredientId"`
	Restored     types.Quantity `json:"restored"`
	NewQuantity  types.Quantity `json:"newQuantity"`
}
