package event_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ladle/internal/core/apperror"
	"ladle/internal/core/id"
	"ladle/internal/domain/purchases"
	"ladle/internal/infrastructure/storage/postgres"
)

const purchaseReceiptsTable = "purchase_receipt_events"

// PurchaseRepo implements purchases.Repository. Receipts are keyed by
// order so reversal never crosses order boundaries.
type PurchaseRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ purchases.Repository = (*PurchaseRepo)(nil)

// NewPurchaseRepo creates the purchase receipt repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateReceipts inserts all receipts of one order receipt operation.
func (r *PurchaseRepo) CreateReceipts(ctx context.Context, tenantID string, events []*purchases.PurchaseReceiptEvent) error {
	if len(events) == 0 {
		return nil
	}

	q := r.builder.Insert(purchaseReceiptsTable).Columns(
		"id", "tenant_id", "order_id", "ingredient_id",
		"quantity_received", "applied_delta", "unit_cost",
		"receipt_date", "created_at", "created_by",
	)
	for _, ev := range events {
		q = q.Values(
			ev.ID, tenantID, ev.OrderID, ev.IngredientID,
			ev.QuantityReceived, ev.AppliedDelta, ev.UnitCost,
			ev.ReceiptDate, ev.CreatedAt, ev.CreatedBy,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewInternal(err)
	}
	return nil
}

// ListActiveByOrder returns the live receipts of exactly one order, in
// creation order.
func (r *PurchaseRepo) ListActiveByOrder(ctx context.Context, tenantID string, orderID id.ID) ([]*purchases.PurchaseReceiptEvent, error) {
	sql := `
		SELECT id, tenant_id, order_id, ingredient_id,
			   quantity_received, applied_delta, unit_cost,
			   receipt_date, created_at, created_by, deleted_at
		FROM purchase_receipt_events
		WHERE tenant_id = $1 AND order_id = $2 AND deleted_at IS NULL
		ORDER BY created_at
	`

	var events []*purchases.PurchaseReceiptEvent
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &events, sql, tenantID, orderID); err != nil {
		return nil, apperror.NewInternal(err)
	}
	return events, nil
}

// MarkOrderDeleted soft-deletes every active receipt of the order.
func (r *PurchaseRepo) MarkOrderDeleted(ctx context.Context, tenantID string, orderID id.ID, at time.Time) (int64, error) {
	sql := `
		UPDATE purchase_receipt_events
		SET deleted_at = $3
		WHERE tenant_id = $1 AND order_id = $2 AND deleted_at IS NULL
	`

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, tenantID, orderID, at)
	if err != nil {
		return 0, apperror.NewInternal(err)
	}
	return tag.RowsAffected(), nil
}
