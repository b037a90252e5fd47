package purchases

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
	pending    *MemoryPendingRepository
	ledgerRepo *ledger.MemoryRepository
	catalog    *catalog.MemoryRepository
	aggSvc     *aggregates.Service
}

func newFixture(t *testing.T, policyExpr string) *fixture {
	t.Helper()

	ledgerRepo := ledger.NewMemoryRepository()
	catalogRepo := catalog.NewMemoryRepository()
	aggRepo := aggregates.NewMemoryRepository()
	repo := NewMemoryRepository()
	pendingRepo := NewMemoryPendingRepository()

	policy, err := NewCELPolicy(policyExpr)
	require.NoError(t, err)

	txm := tx.NopManager{}
	ledgerSvc := ledger.NewService(ledgerRepo, txm, nil)
	aggSvc := aggregates.NewService(aggRepo)

	return &fixture{
		svc:        NewService(repo, pendingRepo, catalogRepo, ledgerSvc, aggSvc, policy, txm),
		repo:       repo,
		pending:    pendingRepo,
		ledgerRepo: ledgerRepo,
		catalog:    catalogRepo,
		aggSvc:     aggSvc,
	}
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func testCtx() context.Context {
	return appctx.WithActor(context.Background(), &appctx.ActorContext{TenantID: "t1"})
}

func (f *fixture) seedIngredient(name string, onHand float64) id.ID {
	ingID := id.New()
	f.ledgerRepo.Seed(ingID, "t1", qty(onHand))
	f.catalog.PutIngredient(&catalog.Ingredient{
		ID:       ingID,
		TenantID: "t1",
		Name:     name,
	})
	return ingID
}

func TestReceiveOrderAddsStockAndStoresApplied(t *testing.T) {
	f := newFixture(t, "")
	ctx := testCtx()
	flourID := f.seedIngredient("Flour", 4)

	day := time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)
	events, err := f.svc.ReceiveOrder(ctx, id.New(), day, []OrderLine{
		{IngredientID: flourID, Quantity: qty(5), UnitCost: types.MustMoney("1.20")},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "5.0000", events[0].AppliedDelta.String())
	assert.Equal(t, "9.0000", f.ledgerRepo.Quantity(flourID).String())

	agg, err := f.aggSvc.Get(ctx, flourID, day, aggregates.GranularityDaily)
	require.NoError(t, err)
	assert.Equal(t, "5.0000", agg.Quantity.String())
	assert.True(t, agg.Cost.Equal(types.MustMoney("6.00")), "cost was %s", agg.Cost)
}

func TestReceiveOrderUnknownIngredientAbortsWholeOrder(t *testing.T) {
	f := newFixture(t, "")
	ctx := testCtx()
	flourID := f.seedIngredient("Flour", 4)

	_, err := f.svc.ReceiveOrder(ctx, id.New(), time.Now(), []OrderLine{
		{IngredientID: flourID, Quantity: qty(5), UnitCost: types.MustMoney("1.20")},
		{IngredientID: id.New(), Quantity: qty(2), UnitCost: types.MustMoney("0.50")},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReceiveOrderRejectsBadInput(t *testing.T) {
	f := newFixture(t, "")
	ctx := testCtx()
	flourID := f.seedIngredient("Flour", 4)

	_, err := f.svc.ReceiveOrder(ctx, id.New(), time.Now(), nil)
	require.Error(t, err)

	_, err = f.svc.ReceiveOrder(ctx, id.New(), time.Now(), []OrderLine{
		{IngredientID: flourID, Quantity: qty(0)},
	})
	require.Error(t, err)

	_, err = f.svc.ReceiveOrder(ctx, id.Nil(), time.Now(), []OrderLine{
		{IngredientID: flourID, Quantity: qty(1)},
	})
	require.Error(t, err)
}

// Deleting order A must leave order B's contribution to the ledger and
// the aggregates untouched, even when both orders booked the same
// ingredient on the same day.
func TestReverseOrderIsOrderScoped(t *testing.T) {
	f := newFixture(t, "")
	ctx := testCtx()
	flourID := f.seedIngredient("Flour", 0)

	day := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	orderA := id.New()
	orderB := id.New()

	_, err := f.svc.ReceiveOrder(ctx, orderA, day, []OrderLine{
		{IngredientID: flourID, Quantity: qty(5), UnitCost: types.MustMoney("1.00")},
	})
	require.NoError(t, err)
	_, err = f.svc.ReceiveOrder(ctx, orderB, day, []OrderLine{
		{IngredientID: flourID, Quantity: qty(3), UnitCost: types.MustMoney("1.00")},
	})
	require.NoError(t, err)
	require.Equal(t, "8.0000", f.ledgerRepo.Quantity(flourID).String())

	reversed, err := f.svc.ReverseOrder(ctx, orderA)
	require.NoError(t, err)
	require.Len(t, reversed, 1)
	assert.Equal(t, "5.0000", reversed[0].Removed.String())

	// B's receipt survives in full.
	assert.Equal(t, "3.0000", f.ledgerRepo.Quantity(flourID).String())
	assert.Equal(t, 0, f.repo.ActiveCount(orderA))
	assert.Equal(t, 1, f.repo.ActiveCount(orderB))

	agg, err := f.aggSvc.Get(ctx, flourID, day, aggregates.GranularityDaily)
	require.NoError(t, err)
	assert.Equal(t, "3.0000", agg.Quantity.String())
	assert.True(t, agg.Cost.Equal(types.MustMoney("3.00")), "cost was %s", agg.Cost)
}

func TestReverseOrderIsIdempotent(t *testing.T) {
	f := newFixture(t, "")
	ctx := testCtx()
	flourID := f.seedIngredient("Flour", 0)

	orderID := id.New()
	_, err := f.svc.ReceiveOrder(ctx, orderID, time.Now(), []OrderLine{
		{IngredientID: flourID, Quantity: qty(5), UnitCost: types.MustMoney("1.00")},
	})
	require.NoError(t, err)

	_, err = f.svc.ReverseOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "0.0000", f.ledgerRepo.Quantity(flourID).String())

	_, err = f.svc.ReverseOrder(ctx, orderID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, "0.0000", f.ledgerRepo.Quantity(flourID).String())
}

func TestReverseUnknownOrder(t *testing.T) {
	f := newFixture(t, "")
	_, err := f.svc.ReverseOrder(testCtx(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

// Reversing an order whose stock was partially consumed in between
// clamps at zero rather than going negative.
func TestReverseOrderClampsAtZero(t *testing.T) {
	f := newFixture(t, "")
	ctx := testCtx()
	flourID := f.seedIngredient("Flour", 0)

	orderID := id.New()
	_, err := f.svc.ReceiveOrder(ctx, orderID, time.Now(), []OrderLine{
		{IngredientID: flourID, Quantity: qty(5), UnitCost: types.MustMoney("1.00")},
	})
	require.NoError(t, err)

	// Something else consumed 4 of the 5 before the reversal.
	f.ledgerRepo.Set(flourID, qty(1))

	reversed, err := f.svc.ReverseOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, reversed, 1)
	assert.Equal(t, "1.0000", reversed[0].Removed.String())
	assert.Equal(t, "0.0000", f.ledgerRepo.Quantity(flourID).String())
}
