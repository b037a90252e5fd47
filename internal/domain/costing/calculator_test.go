package costing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ladle/internal/core/id"
	"ladle/internal/core/types"
	"ladle/internal/domain/catalog"
)

func TestDeductionsForSale_VariantFactor(t *testing.T) {
	// Selling 1 unit with factor 0.2, quantity-per-batch 1, servings 1
	// must deduct exactly 0.2.
	ingID := id.New()
	recipe := &catalog.Recipe{
		ID:               id.New(),
		ServingsPerBatch: 1,
		Lines: []catalog.RecipeLine{
			{LineNo: 1, IngredientID: ingID, QuantityPerBatch: types.NewQuantityFromFloat64(1)},
		},
	}
	variant := &catalog.RecipeVariant{
		ID:       id.New(),
		RecipeID: recipe.ID,
		Factor:   decimal.RequireFromString("0.2"),
	}

	deductions := DeductionsForSale(recipe, variant, types.NewQuantityFromFloat64(1))
	require.Len(t, deductions, 1)
	assert.Equal(t, ingID, deductions[0].IngredientID)
	assert.Equal(t, "0.2000", deductions[0].Amount.String())
}

func TestDeductionsForSale_NoVariantDefaultsToFactorOne(t *testing.T) {
	ingID := id.New()
	recipe := &catalog.Recipe{
		ID:               id.New(),
		ServingsPerBatch: 4,
		Lines: []catalog.RecipeLine{
			{LineNo: 1, IngredientID: ingID, QuantityPerBatch: types.NewQuantityFromFloat64(2)},
		},
	}

	// 2 per batch / 4 servings * 3 sold = 1.5
	deductions := DeductionsForSale(recipe, nil, types.NewQuantityFromFloat64(3))
	require.Len(t, deductions, 1)
	assert.Equal(t, "1.5000", deductions[0].Amount.String())
}

func TestDeductionsForSale_ServingsFloorAtOne(t *testing.T) {
	ingID := id.New()
	recipe := &catalog.Recipe{
		ID:               id.New(),
		ServingsPerBatch: 0, // broken catalog data must not divide by zero
		Lines: []catalog.RecipeLine{
			{LineNo: 1, IngredientID: ingID, QuantityPerBatch: types.NewQuantityFromFloat64(5)},
		},
	}

	deductions := DeductionsForSale(recipe, nil, types.NewQuantityFromFloat64(2))
	require.Len(t, deductions, 1)
	assert.Equal(t, "10.0000", deductions[0].Amount.String())
}

func TestDeductionsForSale_PreservesLineOrder(t *testing.T) {
	first, second, third := id.New(), id.New(), id.New()
	recipe := &catalog.Recipe{
		ID:               id.New(),
		ServingsPerBatch: 1,
		Lines: []catalog.RecipeLine{
			{LineNo: 1, IngredientID: first, QuantityPerBatch: types.NewQuantityFromFloat64(1)},
			{LineNo: 2, IngredientID: second, QuantityPerBatch: types.NewQuantityFromFloat64(2)},
			{LineNo: 3, IngredientID: third, QuantityPerBatch: types.NewQuantityFromFloat64(3)},
		},
	}

	deductions := DeductionsForSale(recipe, nil, types.NewQuantityFromFloat64(1))
	require.Len(t, deductions, 3)
	assert.Equal(t, first, deductions[0].IngredientID)
	assert.Equal(t, second, deductions[1].IngredientID)
	assert.Equal(t, third, deductions[2].IngredientID)
}

func TestPerServing(t *testing.T) {
	got := PerServing(types.NewQuantityFromFloat64(3), 4)
	assert.True(t, got.Equal(decimal.RequireFromString("0.75")), "got %s", got)
}
