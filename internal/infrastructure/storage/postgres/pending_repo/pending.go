// Package pending_repo provides the PostgreSQL pending-purchase store.
package pending_repo

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

const pendingTable = "pending_purchases"

// Column order follows the candidate struct's field order; row values in
// CreateBatch must stay aligned with it.
var pendingColumns = postgres.ExtractDBColumns[purchases.PendingPurchaseCandidate]()

// PendingRepo implements purchases.PendingRepository. Batch inserts use
// the COPY protocol; OCR batches routinely carry hundreds of lines.
type PendingRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

var _ purchases.PendingRepository = (*PendingRepo)(nil)

// NewPendingRepo creates the pending-purchase repository.
func NewPendingRepo(txManager *postgres.TxManager) *PendingRepo {
	return &PendingRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateBatch bulk-inserts a candidate batch.
func (r *PendingRepo) CreateBatch(ctx context.Context, tenantID string, candidates []*purchases.PendingPurchaseCandidate) error {
	if len(candidates) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		rows := make([][]any, 0, len(candidates))
		for _, c := range candidates {
			rows = append(rows, []any{
				c.ID, tenantID, c.BatchID, c.IngredientID,
				c.Quantity, c.Price, c.State, c.CreatedAt, c.DecidedAt,
			})
		}
		if _, err := r.inserter.CopyFromSlice(ctx, pendingTable, pendingColumns, rows); err != nil {
			return fmt.Errorf("copy candidates: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(pendingTable).Columns(pendingColumns...)
	for _, c := range candidates {
		q = q.Values(
			c.ID, tenantID, c.BatchID, c.IngredientID,
			c.Quantity, c.Price, c.State, c.CreatedAt, c.DecidedAt,
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

// Get returns one candidate.
func (r *PendingRepo) Get(ctx context.Context, tenantID string, candidateID id.ID) (*purchases.PendingPurchaseCandidate, error) {
	sql := `
		SELECT id, tenant_id, batch_id, ingredient_id,
			   quantity, price, state, created_at, decided_at
		FROM pending_purchases
		WHERE id = $1 AND tenant_id = $2
	`

	var c purchases.PendingPurchaseCandidate
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &c, sql, candidateID, tenantID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("pending purchase", candidateID)
		}
		return nil, apperror.NewInternal(err)
	}
	return &c, nil
}

// Decide is the exactly-once transition gate: the UPDATE is guarded on
// state = pending, so of two concurrent decisions exactly one affects a
// row and the other observes ok = false.
func (r *PendingRepo) Decide(ctx context.Context, tenantID string, candidateID id.ID, state purchases.CandidateState, at time.Time) (bool, error) {
	sql := `
		UPDATE pending_purchases
		SET state = $3, decided_at = $4
		WHERE id = $1 AND tenant_id = $2 AND state = 'pending'
	`

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, candidateID, tenantID, state, at)
	if err != nil {
		return false, apperror.NewInternal(err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByBatch returns all candidates of one batch.
func (r *PendingRepo) ListByBatch(ctx context.Context, tenantID string, batchID id.ID) ([]*purchases.PendingPurchaseCandidate, error) {
	sql := `
		SELECT id, tenant_id, batch_id, ingredient_id,
			   quantity, price, state, created_at, decided_at
		FROM pending_purchases
		WHERE tenant_id = $1 AND batch_id = $2
		ORDER BY created_at
	`

	var out []*purchases.PendingPurchaseCandidate
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, tenantID, batchID); err != nil {
		return nil, apperror.NewInternal(err)
	}
	return out, nil
}
