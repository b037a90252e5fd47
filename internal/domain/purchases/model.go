// Package purchases records purchase receipt events, reverses them
// order-scoped, and runs the pending-purchase approval workflow for
// externally sourced (OCR) purchase candidates.
package purchases

import (
	"time"

	"ladle/internal/core/entity"
	"ladle/internal/core/id"
	"ladle/internal/core/types"
)

// PurchaseReceiptEvent is one received order line. It is uniquely scoped
// to (order, ingredient, receipt date) so reversing an order can never
// touch a sibling order's receipts on the same ingredient and day.
type PurchaseReceiptEvent struct {
	entity.Event

	OrderID      id.ID `db:"order_id" json:"orderId"`
	IngredientID id.ID `db:"ingredient_id" json:"ingredientId"`

	QuantityReceived types.Quantity `db:"quantity_received" json:"quantityReceived"`

	// AppliedDelta is what the ledger actually added. Increments never
	// clamp, but the snapshot is stored anyway: reversal replays it.
	AppliedDelta types.Quantity `db:"applied_delta" json:"appliedDelta"`

	UnitCost types.Money `db:"unit_cost" json:"unitCost"`

	ReceiptDate time.Time `db:"receipt_date" json:"receiptDate"`
}

// CandidateState is the pending-purchase workflow state.
type CandidateState string

const (
	CandidatePending  CandidateState = "pending"
	CandidateApproved CandidateState = "approved"
	CandidateRejected CandidateState = "rejected"
)

// PendingPurchaseCandidate is an externally sourced purchase awaiting a
// decision. Only the pending -> approved transition touches the ledger,
// and it happens exactly once.
type PendingPurchaseCandidate struct {
	ID       id.ID  `db:"id" json:"id"`
	TenantID string `db:"tenant_id" json:"tenantId"`
	BatchID  id.ID  `db:"batch_id" json:"batchId"`

	IngredientID id.ID          `db:"ingredient_id" json:"ingredientId"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
	Price        types.Money    `db:"price" json:"price"`

	State     CandidateState `db:"state" json:"state"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	DecidedAt *time.Time     `db:"decided_at" json:"decidedAt,omitempty"`
}

// OrderLine is one line of an incoming order receipt.
type OrderLine struct {
	IngredientID id.ID
	Quantity     types.Quantity
	UnitCost     types.Money
}

// ReversedDelta reports one ingredient change of an order reversal.
type ReversedDelta struct {
	IngredientID id.ID          `json:"ingredientId"`
	Removed      types.Quantity `json:"removed"`
	NewQuantity  types.Quantity `json:"newQuantity"`
}
