package purchases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ladle/internal/core/apperror"
	"ladle/internal/core/id"
	"ladle/internal/core/types"
)

// Submit two candidates, approve one, reject the other, then try to
// re-approve the first.
func TestPendingApprovalLifecycle(t *testing.T) {
	f := newFixture(t, "")
	ctx := testCtx()
	riceID := f.seedIngredient("Rice", 2)
	beansID := f.seedIngredient("Beans", 2)

	result, err := f.svc.SubmitBatch(ctx, []CandidateInput{
		{IngredientID: riceID, Quantity: qty(10), Price: types.MustMoney("4.00")},
		{IngredientID: beansID, Quantity: qty(6), Price: types.MustMoney("3.00")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 0, result.AutoApproved)

	// Submission alone never touches stock.
	assert.Equal(t, "2.0000", f.ledgerRepo.Quantity(riceID).String())
	assert.Equal(t, "2.0000", f.ledgerRepo.Quantity(beansID).String())

	candidates, err := f.pending.ListByBatch(ctx, "t1", result.BatchID)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	var riceCand, beansCand *PendingPurchaseCandidate
	for _, c := range candidates {
		switch c.IngredientID {
		case riceID:
			riceCand = c
		case beansID:
			beansCand = c
		}
	}
	require.NotNil(t, riceCand)
	require.NotNil(t, beansCand)

	receipt, err := f.svc.Approve(ctx, riceCand.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.0000", f.ledgerRepo.Quantity(riceID).String())
	assert.Equal(t, result.BatchID, receipt.OrderID)
	assert.Equal(t, "10.0000", receipt.AppliedDelta.String())

	require.NoError(t, f.svc.Reject(ctx, beansCand.ID))
	assert.Equal(t, "2.0000", f.ledgerRepo.Quantity(beansID).String())

	// Terminal candidates refuse a second decision.
	_, err = f.svc.Approve(ctx, riceCand.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
	assert.Equal(t, "12.0000", f.ledgerRepo.Quantity(riceID).String())

	err = f.svc.Reject(ctx, riceCand.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	_, err = f.svc.Approve(ctx, beansCand.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestPendingDecisionOnUnknownCandidate(t *testing.T) {
	f := newFixture(t, "")
	ctx := testCtx()

	_, err := f.svc.Approve(ctx, id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	err = f.svc.Reject(ctx, id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSubmitBatchValidatesCandidates(t *testing.T) {
	f := newFixture(t, "")
	ctx := testCtx()
	riceID := f.seedIngredient("Rice", 0)

	_, err := f.svc.SubmitBatch(ctx, nil)
	require.Error(t, err)

	_, err = f.svc.SubmitBatch(ctx, []CandidateInput{
		{IngredientID: riceID, Quantity: qty(0), Price: types.MustMoney("1.00")},
	})
	require.Error(t, err)

	_, err = f.svc.SubmitBatch(ctx, []CandidateInput{
		{IngredientID: riceID, Quantity: qty(1), Price: types.MustMoney("-1.00")},
	})
	require.Error(t, err)
}

// A policy of "quantity < 100 && price < 50" approves the small line on
// submit and leaves the big one in the review queue.
func TestSubmitBatchAutoApprovesByPolicy(t *testing.T) {
	f := newFixture(t, "quantity < 100.0 && price < 50.0")
	ctx := testCtx()
	riceID := f.seedIngredient("Rice", 0)
	saffronID := f.seedIngredient("Saffron", 0)

	result, err := f.svc.SubmitBatch(ctx, []CandidateInput{
		{IngredientID: riceID, Quantity: qty(20), Price: types.MustMoney("8.00")},
		{IngredientID: saffronID, Quantity: qty(2), Price: types.MustMoney("120.00")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.AutoApproved)

	assert.Equal(t, "20.0000", f.ledgerRepo.Quantity(riceID).String())
	assert.Equal(t, "0.0000", f.ledgerRepo.Quantity(saffronID).String())

	candidates, err := f.pending.ListByBatch(ctx, "t1", result.BatchID)
	require.NoError(t, err)
	for _, c := range candidates {
		switch c.IngredientID {
		case riceID:
			assert.Equal(t, CandidateApproved, c.State)
		case saffronID:
			assert.Equal(t, CandidatePending, c.State)
		}
	}
}

func TestCELPolicyRejectsBrokenExpressions(t *testing.T) {
	_, err := NewCELPolicy("quantity <")
	require.Error(t, err)

	_, err = NewCELPolicy("quantity + 1.0")
	require.Error(t, err)
}
