package waste

import (
	"context"
	"testing"
	"time"

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
	aggSvc     *aggregates.Service
}

func newFixture() *fixture {
	ledgerRepo := ledger.NewMemoryRepository()
	catalogRepo := catalog.NewMemoryRepository()
	aggRepo := aggregates.NewMemoryRepository()
	repo := NewMemoryRepository()

	txm := tx.NopManager{}
	ledgerSvc := ledger.NewService(ledgerRepo, txm, nil)
	aggSvc := aggregates.NewService(aggRepo)

	return &fixture{
		svc:        NewService(repo, catalogRepo, ledgerSvc, aggSvc, txm),
		repo:       repo,
		ledgerRepo: ledgerRepo,
		catalog:    catalogRepo,
		aggSvc:     aggSvc,
	}
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func testCtx() context.Context {
	return appctx.WithActor(context.Background(), &appctx.ActorContext{TenantID: "t1"})
}

func (f *fixture) seedIngredient(name string, onHand float64, unitPrice string) id.ID {
	ingID := id.New()
	f.ledgerRepo.Seed(ingID, "t1", qty(onHand))
	f.catalog.PutIngredient(&catalog.Ingredient{
		ID:        ingID,
		TenantID:  "t1",
		Name:      name,
		UnitPrice: types.MustMoney(unitPrice),
	})
	return ingID
}

func TestRegisterWasteDeductsAndStoresApplied(t *testing.T) {
	f := newFixture()
	ctx := testCtx()
	milkID := f.seedIngredient("Milk", 10, "1.50")

	result, err := f.svc.Register(ctx, []Item{
		{IngredientID: milkID, Quantity: qty(4), Reason: "expired"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Empty(t, result.Errors)

	assert.Equal(t, "6.0000", f.ledgerRepo.Quantity(milkID).String())
	assert.Equal(t, "4.0000", result.Events[0].Applied.String())
	assert.Equal(t, "expired", result.Events[0].Reason)

	agg, err := f.aggSvc.Get(ctx, milkID, result.Events[0].WastedAt, aggregates.GranularityDaily)
	require.NoError(t, err)
	assert.Equal(t, "4.0000", agg.Quantity.String())
	assert.True(t, agg.Cost.Equal(types.MustMoney("6.00")), "cost was %s", agg.Cost)
}

// One unknown ingredient does not block the rest of the bulk.
func TestRegisterWastePartialFailure(t *testing.T) {
	f := newFixture()
	ctx := testCtx()
	milkID := f.seedIngredient("Milk", 10, "1.50")

	result, err := f.svc.Register(ctx, []Item{
		{IngredientID: milkID, Quantity: qty(2)},
		{IngredientID: id.New(), Quantity: qty(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, apperror.CodeNotFound, result.Errors[0].Code)
	assert.Equal(t, "8.0000", f.ledgerRepo.Quantity(milkID).String())
}

// Wasting more than on hand clamps: the event stores what actually left.
func TestRegisterWasteClampsAtZero(t *testing.T) {
	f := newFixture()
	ctx := testCtx()
	milkID := f.seedIngredient("Milk", 3, "1.50")

	result, err := f.svc.Register(ctx, []Item{
		{IngredientID: milkID, Quantity: qty(5)},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)

	assert.Equal(t, "0.0000", f.ledgerRepo.Quantity(milkID).String())
	assert.Equal(t, "5.0000", result.Events[0].QuantityWasted.String())
	assert.Equal(t, "3.0000", result.Events[0].Applied.String())
}

func TestRegisterWasteValidation(t *testing.T) {
	f := newFixture()
	ctx := testCtx()
	milkID := f.seedIngredient("Milk", 3, "1.50")

	_, err := f.svc.Register(ctx, nil)
	require.Error(t, err)

	_, err = f.svc.Register(ctx, []Item{{IngredientID: milkID, Quantity: qty(-1)}})
	require.Error(t, err)
}

func TestDeleteWasteRestoresApplied(t *testing.T) {
	f := newFixture()
	ctx := testCtx()
	milkID := f.seedIngredient("Milk", 3, "1.50")

	result, err := f.svc.Register(ctx, []Item{
		{IngredientID: milkID, Quantity: qty(5)},
	})
	require.NoError(t, err)
	eventID := result.Events[0].ID
	require.Equal(t, "0.0000", f.ledgerRepo.Quantity(milkID).String())

	// Only the clamped 3 come back, not the requested 5.
	restored, err := f.svc.Delete(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, "3.0000", restored.Restored.String())
	assert.Equal(t, "3.0000", f.ledgerRepo.Quantity(milkID).String())

	agg, err := f.aggSvc.Get(ctx, milkID, time.Now(), aggregates.GranularityDaily)
	require.NoError(t, err)
	assert.Equal(t, "0.0000", agg.Quantity.String())
}

// Reversal subtracts the cost snapshotted at registration, so a catalog
// price change between registration and deletion cannot skew the rollup.
func TestDeleteWasteSubtractsSnapshotCostAfterPriceChange(t *testing.T) {
	f := newFixture()
	ctx := testCtx()
	milkID := f.seedIngredient("Milk", 10, "1.50")

	result, err := f.svc.Register(ctx, []Item{
		{IngredientID: milkID, Quantity: qty(4)},
	})
	require.NoError(t, err)
	eventID := result.Events[0].ID
	assert.True(t, result.Events[0].UnitPrice.Equal(types.MustMoney("1.50")))

	agg, err := f.aggSvc.Get(ctx, milkID, result.Events[0].WastedAt, aggregates.GranularityDaily)
	require.NoError(t, err)
	require.True(t, agg.Cost.Equal(types.MustMoney("6.00")), "cost was %s", agg.Cost)

	f.catalog.PutIngredient(&catalog.Ingredient{
		ID:        milkID,
		TenantID:  "t1",
		Name:      "Milk",
		UnitPrice: types.MustMoney("1.00"),
	})

	_, err = f.svc.Delete(ctx, eventID)
	require.NoError(t, err)

	agg, err = f.aggSvc.Get(ctx, milkID, result.Events[0].WastedAt, aggregates.GranularityDaily)
	require.NoError(t, err)
	assert.Equal(t, "0.0000", agg.Quantity.String())
	assert.True(t, agg.Cost.IsZero(), "cost after reversal: %s", agg.Cost)
}

func TestDeleteWasteIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := testCtx()
	milkID := f.seedIngredient("Milk", 10, "1.50")

	result, err := f.svc.Register(ctx, []Item{
		{IngredientID: milkID, Quantity: qty(4)},
	})
	require.NoError(t, err)
	eventID := result.Events[0].ID

	_, err = f.svc.Delete(ctx, eventID)
	require.NoError(t, err)
	require.Equal(t, "10.0000", f.ledgerRepo.Quantity(milkID).String())

	_, err = f.svc.Delete(ctx, eventID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, "10.0000", f.ledgerRepo.Quantity(milkID).String())
}
