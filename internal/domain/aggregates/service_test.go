package aggregates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "ladle/internal/core/context"
	"ladle/internal/core/id"
	"ladle/internal/core/types"
)

func testCtx() context.Context {
	return appctx.WithActor(context.Background(), &appctx.ActorContext{TenantID: "t1"})
}

func TestAccumulateThenSubtractReturnsToZero(t *testing.T) {
	ctx := testCtx()
	svc := NewService(NewMemoryRepository())
	entityID := id.New()
	date := time.Date(2026, 3, 14, 13, 30, 0, 0, time.UTC)

	delta := Delta{
		Quantity: types.NewQuantityFromFloat64(3),
		Revenue:  types.MustMoney("27.50"),
		Cost:     types.MustMoney("9.10"),
	}

	require.NoError(t, svc.Accumulate(ctx, entityID, date, delta))
	require.NoError(t, svc.Subtract(ctx, entityID, date, delta))

	daily, err := svc.Get(ctx, entityID, date, GranularityDaily)
	require.NoError(t, err)
	assert.True(t, daily.Quantity.IsZero())
	assert.True(t, daily.Revenue.IsZero())
	assert.True(t, daily.Cost.IsZero())

	monthly, err := svc.Get(ctx, entityID, date, GranularityMonthly)
	require.NoError(t, err)
	assert.True(t, monthly.Quantity.IsZero())
}

func TestAccumulateMaintainsBothGranularities(t *testing.T) {
	ctx := testCtx()
	svc := NewService(NewMemoryRepository())
	entityID := id.New()

	// Two different days of the same month share one monthly row.
	d1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	delta := Delta{Quantity: types.NewQuantityFromFloat64(2)}

	require.NoError(t, svc.Accumulate(ctx, entityID, d1, delta))
	require.NoError(t, svc.Accumulate(ctx, entityID, d2, delta))

	daily, err := svc.Get(ctx, entityID, d1, GranularityDaily)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(2), daily.Quantity)

	monthly, err := svc.Get(ctx, entityID, d1, GranularityMonthly)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(4), monthly.Quantity)
}

func TestSubtractClampsAtZero(t *testing.T) {
	ctx := testCtx()
	svc := NewService(NewMemoryRepository())
	entityID := id.New()
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	small := Delta{Quantity: types.NewQuantityFromFloat64(1), Revenue: types.MustMoney("5")}
	large := Delta{Quantity: types.NewQuantityFromFloat64(10), Revenue: types.MustMoney("100")}

	require.NoError(t, svc.Accumulate(ctx, entityID, date, small))
	// Out-of-order replay: subtracting more than accumulated floors at
	// zero instead of driving the cache negative.
	require.NoError(t, svc.Subtract(ctx, entityID, date, large))

	daily, err := svc.Get(ctx, entityID, date, GranularityDaily)
	require.NoError(t, err)
	assert.True(t, daily.Quantity.IsZero())
	assert.True(t, daily.Revenue.IsZero())
}
