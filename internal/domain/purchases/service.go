package purchases

import (
	"context"
	"fmt"
	"time"

	"ladle/internal/core/apperror"
	appctx "ladle/internal/core/context"
	"ladle/internal/core/entity"
	"ladle/internal/core/id"
	"ladle/internal/core/tx"
	"ladle/internal/domain/aggregates"
	"ladle/internal/domain/catalog"
	"ladle/internal/domain/ledger"
	"ladle/pkg/logger"
)

// Service records order receipts, reverses whole orders, and runs the
// pending-purchase workflow.
type Service struct {
	repo    Repository
	pending PendingRepository
	catalog catalog.Repository
	ledger  *ledger.Service
	agg     *aggregates.Service
	policy  ApprovalPolicy
	txm     tx.Manager
}

// NewService wires the purchases service. policy may be nil, in which
// case no candidate is ever auto-approved.
func NewService(
	repo Repository,
	pending PendingRepository,
	cat catalog.Repository,
	led *ledger.Service,
	agg *aggregates.Service,
	policy ApprovalPolicy,
	txm tx.Manager,
) *Service {
	if policy == nil {
		policy = nopPolicy{}
	}
	return &Service{
		repo:    repo,
		pending: pending,
		catalog: cat,
		ledger:  led,
		agg:     agg,
		policy:  policy,
		txm:     txm,
	}
}

// ReceiveOrder books every line of an order into stock atomically: one
// receipt event per line, storing the applied delta, plus aggregate rows
// keyed by ingredient. Any unknown ingredient aborts the whole order.
// Lines are processed in input order, which is also the lock order.
func (s *Service) ReceiveOrder(ctx context.Context, orderID id.ID, receiptDate time.Time, lines []OrderLine) ([]*PurchaseReceiptEvent, error) {
	if id.IsNil(orderID) {
		return nil, apperror.NewValidation("orderId is required")
	}
	if len(lines) == 0 {
		return nil, apperror.NewValidation("order has no lines")
	}
	for i, line := range lines {
		if !line.Quantity.IsPositive() {
			return nil, apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i))
		}
		if line.UnitCost.IsNegative() {
			return nil, apperror.NewValidation(fmt.Sprintf("line %d: unit cost cannot be negative", i))
		}
	}

	tenantID := appctx.GetTenantID(ctx)
	actor := appctx.GetUserID(ctx)

	var events []*PurchaseReceiptEvent
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		events = events[:0]
		for _, line := range lines {
			if _, err := s.catalog.GetIngredient(ctx, line.IngredientID); err != nil {
				return err
			}

			adj, err := s.ledger.AdjustInTx(ctx, line.IngredientID, line.Quantity, "purchase")
			if err != nil {
				return err
			}

			ev := &PurchaseReceiptEvent{
				OrderID:          orderID,
				IngredientID:     line.IngredientID,
				QuantityReceived: line.Quantity,
				AppliedDelta:     adj.Applied,
				UnitCost:         line.UnitCost,
				ReceiptDate:      receiptDate.UTC(),
			}
			ev.Event = entity.NewEvent(tenantID)
			ev.CreatedBy = actor
			events = append(events, ev)
		}

		if err := s.repo.CreateReceipts(ctx, tenantID, events); err != nil {
			return fmt.Errorf("create receipts: %w", err)
		}

		for _, ev := range events {
			delta := aggregates.Delta{
				Quantity: ev.AppliedDelta,
				Cost:     ev.UnitCost.Mul(ev.QuantityReceived.Decimal()),
			}
			if err := s.agg.Accumulate(ctx, ev.IngredientID, ev.ReceiptDate, delta); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order received",
		"order_id", orderID,
		"lines", len(events),
	)
	return events, nil
}

// ReverseOrder undoes one order and nothing else. It replays the stored
// applied deltas of the receipts carrying this orderID; sibling orders
// on the same ingredient and day are untouched. A second call finds no
// active receipts and returns NotFound.
func (s *Service) ReverseOrder(ctx context.Context, orderID id.ID) ([]ReversedDelta, error) {
	tenantID := appctx.GetTenantID(ctx)

	var reversed []ReversedDelta
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		reversed = reversed[:0]

		receipts, err := s.repo.ListActiveByOrder(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if len(receipts) == 0 {
			return apperror.NewNotFound("order", orderID)
		}

		for _, r := range receipts {
			adj, err := s.ledger.AdjustInTx(ctx, r.IngredientID, r.AppliedDelta.Neg(), "purchase_reversal")
			if err != nil {
				return err
			}
			reversed = append(reversed, ReversedDelta{
				IngredientID: r.IngredientID,
				Removed:      adj.Applied.Neg(),
				NewQuantity:  adj.NewQuantity,
			})

			delta := aggregates.Delta{
				Quantity: r.AppliedDelta,
				Cost:     r.UnitCost.Mul(r.QuantityReceived.Decimal()),
			}
			if err := s.agg.Subtract(ctx, r.IngredientID, r.ReceiptDate, delta); err != nil {
				return err
			}
		}

		affected, err := s.repo.MarkOrderDeleted(ctx, tenantID, orderID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("mark order deleted: %w", err)
		}
		if affected == 0 {
			// Lost the race to a concurrent reversal; roll everything back.
			return apperror.NewNotFound("order", orderID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order reversed",
		"order_id", orderID,
		"receipts", len(reversed),
	)
	return reversed, nil
}
