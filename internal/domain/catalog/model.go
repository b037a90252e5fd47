// Package catalog provides read models for ingredients, recipes and
// recipe variants. Catalog CRUD is owned by a collaborating service;
// this engine only reads recipe composition and mutates ingredient
// stock through the ledger.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"ladle/internal/core/id"
	"ladle/internal/core/types"
)

// Ingredient is the authoritative stock record. QuantityOnHand is mutated
// only through the stock ledger (never set to an absolute value outside
// the explicit stocktake path).
type Ingredient struct {
	ID       id.ID  `db:"id" json:"id"`
	TenantID string `db:"tenant_id" json:"tenantId"`
	Name     string `db:"name" json:"name"`

	QuantityOnHand types.Quantity `db:"quantity_on_hand" json:"quantityOnHand"`

	// UnitPrice is the cost of one ledger unit of this ingredient.
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// UnitsPerPurchaseFormat converts purchase packaging to ledger units
	// (e.g. a crate of 12 bottles).
	UnitsPerPurchaseFormat types.Quantity `db:"units_per_purchase_format" json:"unitsPerPurchaseFormat"`

	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// RecipeLine is one ingredient requirement of a recipe batch. Line order
// is significant: it is the deterministic lock-acquisition order for
// multi-ingredient sales.
type RecipeLine struct {
	LineNo           int            `db:"line_no" json:"lineNo"`
	IngredientID     id.ID          `db:"ingredient_id" json:"ingredientId"`
	QuantityPerBatch types.Quantity `db:"quantity_per_batch" json:"quantityPerBatch"`
}

// Recipe describes how one batch is composed and how many sale-able
// servings it yields.
type Recipe struct {
	ID       id.ID  `db:"id" json:"id"`
	TenantID string `db:"tenant_id" json:"tenantId"`
	Name     string `db:"name" json:"name"`

	ServingsPerBatch int `db:"servings_per_batch" json:"servingsPerBatch"`

	Lines []RecipeLine `db:"-" json:"lines"`
}

// RecipeVariant is an alternate sale unit of a recipe (glass vs bottle).
// Factor scales the per-serving deduction; it must be positive.
type RecipeVariant struct {
	ID       id.ID `db:"id" json:"id"`
	RecipeID id.ID `db:"recipe_id" json:"recipeId"`

	Name   string          `db:"name" json:"name"`
	Factor decimal.Decimal `db:"factor" json:"factor"`

	PriceOverride *types.Money `db:"price_override" json:"priceOverride,omitempty"`
}
