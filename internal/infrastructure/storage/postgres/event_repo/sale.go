// Package event_repo provides PostgreSQL stores for stock-affecting
// events. All soft-deletes are guarded UPDATEs on deleted_at IS NULL so
// concurrent reversals lose cleanly instead of double-restoring.
package event_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ladle/internal/core/apperror"
	appctx "ladle/internal/core/context"
	"ladle/internal/core/id"
	"ladle/internal/domain/sales"
	"ladle/internal/infrastructure/storage/postgres"
)

const saleEventsTable = "sale_events"

// SaleRepo implements sales.Repository. Applied deductions are stored as
// a JSONB snapshot on the event row.
type SaleRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ sales.Repository = (*SaleRepo)(nil)

// NewSaleRepo creates the sale event repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create persists the event with its applied deductions. Must run inside
// the transaction that performed the ledger writes it records.
func (r *SaleRepo) Create(ctx context.Context, event *sales.SaleEvent) error {
	deductions, err := json.Marshal(event.AppliedDeductions)
	if err != nil {
		return fmt.Errorf("marshal deductions: %w", err)
	}

	q := r.builder.Insert(saleEventsTable).Columns(
		"id", "tenant_id", "recipe_id", "variant_id",
		"quantity_sold", "variant_factor",
		"unit_price", "total", "cost_total",
		"applied_deductions", "sold_at", "created_at", "created_by",
	).Values(
		event.ID, event.TenantID, event.RecipeID, event.VariantID,
		event.QuantitySold, event.VariantFactor,
		event.UnitPrice, event.Total, event.CostTotal,
		deductions, event.SoldAt, event.CreatedAt, event.CreatedBy,
	)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewInternal(err)
	}
	return nil
}

type saleRow struct {
	sales.SaleEvent
	Deductions json.RawMessage `db:"applied_deductions"`
}

// GetActive returns the event if it exists and has not been reversed.
func (r *SaleRepo) GetActive(ctx context.Context, saleID id.ID) (*sales.SaleEvent, error) {
	sql := `
		SELECT id, tenant_id, recipe_id, variant_id,
			   quantity_sold, variant_factor,
			   unit_price, total, cost_total,
			   applied_deductions, sold_at, created_at, created_by, deleted_at
		FROM sale_events
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`

	var row saleRow
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &row, sql, saleID, appctx.GetTenantID(ctx))
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale event", saleID)
		}
		return nil, apperror.NewInternal(err)
	}

	event := row.SaleEvent
	if len(row.Deductions) > 0 {
		if err := json.Unmarshal(row.Deductions, &event.AppliedDeductions); err != nil {
			return nil, fmt.Errorf("unmarshal deductions: %w", err)
		}
	}
	return &event, nil
}

// MarkDeleted flags the event reversed, guarded on it still being active.
func (r *SaleRepo) MarkDeleted(ctx context.Context, saleID id.ID, at time.Time) (bool, error) {
	sql := `
		UPDATE sale_events
		SET deleted_at = $3
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, saleID, appctx.GetTenantID(ctx), at)
	if err != nil {
		return false, apperror.NewInternal(err)
	}
	return tag.RowsAffected() > 0, nil
}
