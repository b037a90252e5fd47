// Package aggregate_repo provides the PostgreSQL aggregate row store.
package aggregate_repo

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"ladle/internal/core/apperror"
	"ladle/internal/domain/aggregates"
	"ladle/internal/infrastructure/storage/postgres"
)

// AggregateRepo implements aggregates.Repository on one table holding
// both granularities. Rows are contended by every event touching the
// same (entity, period); the additive upsert and the clamped update both
// take the row lock implicitly, the same discipline as the ledger.
type AggregateRepo struct {
	txManager *postgres.TxManager
}

var _ aggregates.Repository = (*AggregateRepo)(nil)

// NewAggregateRepo creates the aggregate repository.
func NewAggregateRepo(txManager *postgres.TxManager) *AggregateRepo {
	return &AggregateRepo{txManager: txManager}
}

// Accumulate is an additive upsert: insert the row if absent, otherwise
// add the delta to existing totals.
func (r *AggregateRepo) Accumulate(ctx context.Context, key aggregates.Key, delta aggregates.Delta) error {
	sql := `
		INSERT INTO aggregate_totals (
			tenant_id, entity_id, period, granularity,
			quantity, revenue, cost
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, entity_id, period, granularity) DO UPDATE SET
			quantity = aggregate_totals.quantity + EXCLUDED.quantity,
			revenue  = aggregate_totals.revenue  + EXCLUDED.revenue,
			cost     = aggregate_totals.cost     + EXCLUDED.cost
	`

	_, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql,
		key.TenantID, key.EntityID, key.Period, key.Granularity,
		delta.Quantity, delta.Revenue, delta.Cost,
	)
	if err != nil {
		return apperror.NewInternal(err)
	}
	return nil
}

// SubtractClamped is the inverse of Accumulate with totals floored at
// zero. A missing row means there is nothing to subtract from.
func (r *AggregateRepo) SubtractClamped(ctx context.Context, key aggregates.Key, delta aggregates.Delta) error {
	sql := `
		UPDATE aggregate_totals SET
			quantity = GREATEST(0, quantity - $5),
			revenue  = GREATEST(0, revenue  - $6),
			cost     = GREATEST(0, cost     - $7)
		WHERE tenant_id = $1 AND entity_id = $2 AND period = $3 AND granularity = $4
	`

	_, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql,
		key.TenantID, key.EntityID, key.Period, key.Granularity,
		delta.Quantity, delta.Revenue, delta.Cost,
	)
	if err != nil {
		return apperror.NewInternal(err)
	}
	return nil
}

// Get returns current totals, or the zero delta when the row is absent.
func (r *AggregateRepo) Get(ctx context.Context, key aggregates.Key) (aggregates.Delta, error) {
	sql := `
		SELECT quantity, revenue, cost
		FROM aggregate_totals
		WHERE tenant_id = $1 AND entity_id = $2 AND period = $3 AND granularity = $4
	`

	var row aggregates.Delta
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &row, sql, key.TenantID, key.EntityID, key.Period, key.Granularity)
	if err != nil {
		if pgxscan.NotFound(err) {
			return aggregates.Delta{}, nil
		}
		return aggregates.Delta{}, apperror.NewInternal(err)
	}
	return row, nil
}
