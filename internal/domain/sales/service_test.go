package sales

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ladle/internal/core/apperror"
	appctx "ladle/internal/core/context"
	"ladle/internal/core/id"
	"ladle/internal/core/tx"
	"ladle/internal/core/types"
	"ladle/internal/domain/aggregates"
	"ladle/internal/domain/catalog"
	"ladle/internal/domain/ledger"
)

type fixture struct {
	svc        *Service
	repo       *MemoryRepository
	ledgerRepo *ledger.MemoryRepository
	catalog    *catalog.MemoryRepository
	aggRepo    *aggregates.MemoryRepository
	aggSvc     *aggregates.Service
}

func newFixture() *fixture {
	ledgerRepo := ledger.NewMemoryRepository()
	catalogRepo := catalog.NewMemoryRepository()
	aggRepo := aggregates.NewMemoryRepository()
	saleRepo := NewMemoryRepository()

	txm := tx.NopManager{}
	ledgerSvc := ledger.NewService(ledgerRepo, txm, nil)
	aggSvc := aggregates.NewService(aggRepo)

	return &fixture{
		svc:        NewService(saleRepo, catalogRepo, ledgerSvc, aggSvc, txm),
		repo:       saleRepo,
		ledgerRepo: ledgerRepo,
		catalog:    catalogRepo,
		aggRepo:    aggRepo,
		aggSvc:     aggSvc,
	}
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func testCtx() context.Context {
	return appctx.WithActor(context.Background(), &appctx.ActorContext{TenantID: "t1"})
}

// seedOliveOilRecipe creates a one-ingredient recipe deducting 3 units
// per sale unit.
func (f *fixture) seedOliveOilRecipe(onHand float64) (recipeID, oilID id.ID) {
	oilID = id.New()
	f.ledgerRepo.Seed(oilID, "t1", qty(onHand))
	f.catalog.PutIngredient(&catalog.Ingredient{
		ID:        oilID,
		TenantID:  "t1",
		Name:      "Olive Oil",
		UnitPrice: types.MustMoney("2.50"),
	})

	recipeID = id.New()
	f.catalog.PutRecipe(&catalog.Recipe{
		ID:               recipeID,
		TenantID:         "t1",
		Name:             "Confit",
		ServingsPerBatch: 1,
		Lines: []catalog.RecipeLine{
			{LineNo: 1, IngredientID: oilID, QuantityPerBatch: qty(3)},
		},
	})
	return recipeID, oilID
}

func TestRecordAndReverse_RestoresStock(t *testing.T) {
	// Scenario: oil at 10, sale deducts 3 -> 7, reversal -> back to 10.
	ctx := testCtx()
	f := newFixture()
	recipeID, oilID := f.seedOliveOilRecipe(10)

	price := types.MustMoney("12")
	event, err := f.svc.Record(ctx, RecordInput{
		RecipeID:     recipeID,
		QuantitySold: qty(1),
		UnitPrice:    &price,
	})
	require.NoError(t, err)
	require.Len(t, event.AppliedDeductions, 1)
	assert.Equal(t, qty(3), event.AppliedDeductions[0].Applied)
	assert.Equal(t, qty(7), f.ledgerRepo.Quantity(oilID))

	restored, err := f.svc.Reverse(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, qty(3), restored[0].Restored)
	assert.Equal(t, qty(10), f.ledgerRepo.Quantity(oilID))
}

func TestReverse_SecondCallReturnsNotFound(t *testing.T) {
	ctx := testCtx()
	f := newFixture()
	recipeID, oilID := f.seedOliveOilRecipe(10)

	event, err := f.svc.Record(ctx, RecordInput{RecipeID: recipeID, QuantitySold: qty(1)})
	require.NoError(t, err)

	_, err = f.svc.Reverse(ctx, event.ID)
	require.NoError(t, err)
	after := f.ledgerRepo.Quantity(oilID)

	_, err = f.svc.Reverse(ctx, event.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	// Quantities are exactly as after the first reversal.
	assert.Equal(t, after, f.ledgerRepo.Quantity(oilID))
}

func TestRecord_FloorClampStoresAppliedAmount(t *testing.T) {
	// Only 2 on hand for a 3-unit deduction: the sale succeeds, the
	// event stores applied=2, and reversal restores exactly 2.
	ctx := testCtx()
	f := newFixture()
	recipeID, oilID := f.seedOliveOilRecipe(2)

	event, err := f.svc.Record(ctx, RecordInput{RecipeID: recipeID, QuantitySold: qty(1)})
	require.NoError(t, err)
	require.Len(t, event.AppliedDeductions, 1)
	assert.Equal(t, qty(3), event.AppliedDeductions[0].Requested)
	assert.Equal(t, qty(2), event.AppliedDeductions[0].Applied)
	assert.Equal(t, types.Quantity(0), f.ledgerRepo.Quantity(oilID))

	_, err = f.svc.Reverse(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, qty(2), f.ledgerRepo.Quantity(oilID))
}

func TestReverse_ReplaysSnapshotAfterRecipeEdit(t *testing.T) {
	// Editing the recipe between sale and reversal must not change what
	// the reversal restores.
	ctx := testCtx()
	f := newFixture()
	recipeID, oilID := f.seedOliveOilRecipe(10)

	event, err := f.svc.Record(ctx, RecordInput{RecipeID: recipeID, QuantitySold: qty(1)})
	require.NoError(t, err)
	assert.Equal(t, qty(7), f.ledgerRepo.Quantity(oilID))

	// Recipe now deducts 5 per unit; the recorded event still says 3.
	f.catalog.PutRecipe(&catalog.Recipe{
		ID:               recipeID,
		TenantID:         "t1",
		ServingsPerBatch: 1,
		Lines: []catalog.RecipeLine{
			{LineNo: 1, IngredientID: oilID, QuantityPerBatch: qty(5)},
		},
	})

	_, err = f.svc.Reverse(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, qty(10), f.ledgerRepo.Quantity(oilID))
}

func TestReverse_LegacyEventFallsBackToRecompute(t *testing.T) {
	ctx := testCtx()
	f := newFixture()
	recipeID, oilID := f.seedOliveOilRecipe(7)

	// Simulate an event recorded before applied deductions existed:
	// stock already deducted, no snapshot stored.
	event := NewSaleEvent("t1", recipeID)
	event.QuantitySold = qty(1)
	event.VariantFactor = decimal.NewFromInt(1)
	require.NoError(t, f.repo.Create(context.Background(), event))

	_, err := f.svc.Reverse(ctx, event.ID)
	require.NoError(t, err)
	// Recomputed from the recipe: 3 per unit restored.
	assert.Equal(t, qty(10), f.ledgerRepo.Quantity(oilID))
}

func TestRecord_VariantScalesDeduction(t *testing.T) {
	ctx := testCtx()
	f := newFixture()
	recipeID, oilID := f.seedOliveOilRecipe(10)

	variantID := id.New()
	f.catalog.PutVariant(&catalog.RecipeVariant{
		ID:       variantID,
		RecipeID: recipeID,
		Name:     "glass",
		Factor:   decimal.RequireFromString("0.2"),
	})

	event, err := f.svc.Record(ctx, RecordInput{
		RecipeID:     recipeID,
		VariantID:    &variantID,
		QuantitySold: qty(1),
	})
	require.NoError(t, err)
	require.Len(t, event.AppliedDeductions, 1)
	// 3 per batch * factor 0.2 = 0.6
	assert.Equal(t, "0.6000", event.AppliedDeductions[0].Applied.String())
	assert.Equal(t, "9.4000", f.ledgerRepo.Quantity(oilID).String())
}

func TestRecord_AccumulatesAggregates(t *testing.T) {
	ctx := testCtx()
	f := newFixture()
	recipeID, _ := f.seedOliveOilRecipe(10)

	price := types.MustMoney("12")
	event, err := f.svc.Record(ctx, RecordInput{
		RecipeID:     recipeID,
		QuantitySold: qty(2),
		UnitPrice:    &price,
	})
	require.NoError(t, err)

	daily, err := f.aggSvc.Get(ctx, recipeID, event.SoldAt, aggregates.GranularityDaily)
	require.NoError(t, err)
	assert.Equal(t, qty(2), daily.Quantity)
	assert.True(t, daily.Revenue.Equal(types.MustMoney("24")), "revenue %s", daily.Revenue)
	// 6 units of oil at 2.50
	assert.True(t, daily.Cost.Equal(types.MustMoney("15")), "cost %s", daily.Cost)

	_, err = f.svc.Reverse(ctx, event.ID)
	require.NoError(t, err)

	daily, err = f.aggSvc.Get(ctx, recipeID, event.SoldAt, aggregates.GranularityDaily)
	require.NoError(t, err)
	assert.True(t, daily.Quantity.IsZero())
	assert.True(t, daily.Revenue.IsZero())
}

func TestRecord_RejectsNonPositiveQuantity(t *testing.T) {
	ctx := testCtx()
	f := newFixture()
	recipeID, _ := f.seedOliveOilRecipe(10)

	_, err := f.svc.Record(ctx, RecordInput{RecipeID: recipeID, QuantitySold: qty(0)})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}
