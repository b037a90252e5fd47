// Package costing provides the pure deduction calculator: recipe
// composition plus a sale quantity and variant yields per-ingredient
// stock deltas. No I/O happens here.
//
// The formula is applied exactly once, at sale creation. Reversal never
// re-derives it - it replays the applied amounts recorded on the event,
// so a later recipe edit cannot corrupt a reversal.
package costing

import (
	"github.com/shopspring/decimal"

	"ladle/internal/core/id"
	"ladle/internal/core/types"
	"ladle/internal/domain/catalog"
)

// Deduction is the computed stock delta for one ingredient of a sale.
// Amount is always positive; the ledger applies it as a decrement.
type Deduction struct {
	IngredientID id.ID
	Amount       types.Quantity
}

// DeductionsForSale computes ingredient deductions for selling
// quantitySold units of a recipe, optionally through a variant.
//
//	amount = (quantityPerBatch / max(1, servingsPerBatch)) * quantitySold * variantFactor
//
// Results preserve recipe line order, which doubles as the deterministic
// lock-acquisition order for the ledger.
func DeductionsForSale(recipe *catalog.Recipe, variant *catalog.RecipeVariant, quantitySold types.Quantity) []Deduction {
	factor := decimal.NewFromInt(1)
	if variant != nil && variant.Factor.IsPositive() {
		factor = variant.Factor
	}

	servings := decimal.NewFromInt(int64(max(1, recipe.ServingsPerBatch)))
	sold := quantitySold.Decimal()

	deductions := make([]Deduction, 0, len(recipe.Lines))
	for _, line := range recipe.Lines {
		amount := line.QuantityPerBatch.Decimal().
			Div(servings).
			Mul(sold).
			Mul(factor)

		deductions = append(deductions, Deduction{
			IngredientID: line.IngredientID,
			Amount:       types.NewQuantityFromDecimal(amount),
		})
	}

	return deductions
}

// PerServing returns the per-serving amount of a single recipe line,
// used by reporting collaborators for unit-cost display.
func PerServing(quantityPerBatch types.Quantity, servingsPerBatch int) decimal.Decimal {
	servings := decimal.NewFromInt(int64(max(1, servingsPerBatch)))
	return quantityPerBatch.Decimal().Div(servings)
}
