package dto

import (
	"math"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ladle/internal/core/apperror"
)

// An explicit zero delta is a present field, not a missing one.
func TestAdjustStockRequestBindsExplicitZero(t *testing.T) {
	var req AdjustStockRequest
	err := binding.JSON.BindBody([]byte(`{"delta": 0, "reason": "recount"}`), &req)
	require.NoError(t, err)
	require.NotNil(t, req.Delta)

	q, err := req.Quantity()
	require.NoError(t, err)
	assert.True(t, q.IsZero())
}

func TestAdjustStockRequestRejectsMissingDelta(t *testing.T) {
	var req AdjustStockRequest
	err := binding.JSON.BindBody([]byte(`{"reason": "recount"}`), &req)
	require.Error(t, err)
}

// A non-finite delta keeps the ledger's INVALID_INPUT code instead of
// being flattened into a generic validation error.
func TestParseQuantityKeepsInvalidInputCode(t *testing.T) {
	_, err := parseQuantity("delta", math.NaN())
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
	assert.Equal(t, "delta", appErr.Details["field"])
}
