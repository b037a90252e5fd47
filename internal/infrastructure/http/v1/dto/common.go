// Package dto defines the HTTP request/response shapes of the v1 API
// and their conversions to domain inputs. Quantities cross the boundary
// as JSON numbers and are validated into fixed-point ledger quantities;
// money crosses as strings to avoid float rounding.
package dto

import (
	"ladle/internal/core/apperror"
	"ladle/internal/core/id"
	"ladle/internal/core/types"
	"ladle/internal/domain/ledger"
)

// IDResponse is the standard created-entity response.
type IDResponse struct {
	ID string `json:"id"`
}

// parseID parses a UUID path/body value into an id.ID.
func parseID(field, value string) (id.ID, error) {
	parsed, err := id.Parse(value)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid " + field).WithDetail(field, value)
	}
	return parsed, nil
}

// parseQuantity validates an external float into a ledger quantity,
// keeping the ledger's error code and attaching the offending field.
func parseQuantity(field string, value float64) (types.Quantity, error) {
	q, err := ledger.QuantityFromFloat(value)
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok {
			return 0, appErr.WithDetail("field", field)
		}
		return 0, err
	}
	return q, nil
}

// parseMoney parses a decimal money string ("12.50").
func parseMoney(field, value string) (types.Money, error) {
	m, err := types.NewMoneyFromString(value)
	if err != nil {
		return types.Money{}, apperror.NewValidation("invalid " + field).WithDetail(field, value)
	}
	return m, nil
}

// AdjustmentResponse is the wire form of one ledger adjustment.
type AdjustmentResponse struct {
	IngredientID string `json:"ingredientId"`
	Requested    string `json:"requested"`
	Applied      string `json:"applied"`
	NewQuantity  string `json:"newQuantity"`
}

// NewAdjustmentResponse converts a ledger adjustment.
func NewAdjustmentResponse(adj ledger.Adjustment) AdjustmentResponse {
	return AdjustmentResponse{
		IngredientID: adj.IngredientID.String(),
		Requested:    adj.Requested.String(),
		Applied:      adj.Applied.String(),
		NewQuantity:  adj.NewQuantity.String(),
	}
}
