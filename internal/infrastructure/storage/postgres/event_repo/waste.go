package event_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ladle/internal/core/apperror"
	"ladle/internal/core/id"
	"ladle/internal/domain/waste"
	"ladle/internal/infrastructure/storage/postgres"
)

const wasteEventsTable = "waste_events"

// WasteRepo implements waste.Repository.
type WasteRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ waste.Repository = (*WasteRepo)(nil)

// NewWasteRepo creates the waste event repository.
func NewWasteRepo(txManager *postgres.TxManager) *WasteRepo {
	return &WasteRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts waste events with their applied quantities.
func (r *WasteRepo) Create(ctx context.Context, events []*waste.WasteEvent) error {
	if len(events) == 0 {
		return nil
	}

	q := r.builder.Insert(wasteEventsTable).Columns(
		"id", "tenant_id", "ingredient_id",
		"quantity_wasted", "applied", "unit_price", "reason",
		"wasted_at", "created_at", "created_by",
	)
	for _, ev := range events {
		q = q.Values(
			ev.ID, ev.TenantID, ev.IngredientID,
			ev.QuantityWasted, ev.Applied, ev.UnitPrice, ev.Reason,
			ev.WastedAt, ev.CreatedAt, ev.CreatedBy,
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

// GetActive returns the event if it exists and has not been reversed.
func (r *WasteRepo) GetActive(ctx context.Context, tenantID string, eventID id.ID) (*waste.WasteEvent, error) {
	sql := `
		SELECT id, tenant_id, ingredient_id,
			   quantity_wasted, applied, unit_price, reason,
			   wasted_at, created_at, created_by, deleted_at
		FROM waste_events
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`

	var event waste.WasteEvent
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &event, sql, eventID, tenantID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("waste event", eventID)
		}
		return nil, apperror.NewInternal(err)
	}
	return &event, nil
}

// MarkDeleted flags the event reversed, guarded on it still being active.
func (r *WasteRepo) MarkDeleted(ctx context.Context, tenantID string, eventID id.ID, at time.Time) (bool, error) {
	sql := `
		UPDATE waste_events
		SET deleted_at = $3
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, eventID, tenantID, at)
	if err != nil {
		return false, apperror.NewInternal(err)
	}
	return tag.RowsAffected() > 0, nil
}
