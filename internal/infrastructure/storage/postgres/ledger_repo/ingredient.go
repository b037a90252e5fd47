// Package ledger_repo provides the PostgreSQL stock ledger repository.
package ledger_repo

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ladle/internal/core/apperror"
	appctx "ladle/internal/core/context"
	"ladle/internal/core/id"
	"ladle/internal/core/types"
	"ladle/internal/domain/ledger"
	"ladle/internal/infrastructure/storage/postgres"
)

const ingredientsTable = "ingredients"

// IngredientRepo implements ledger.Repository on the ingredients table.
// GetForUpdate takes the row lock every quantity mutation serializes on.
type IngredientRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ ledger.Repository = (*IngredientRepo)(nil)

// NewIngredientRepo creates the ledger repository.
func NewIngredientRepo(txManager *postgres.TxManager) *IngredientRepo {
	return &IngredientRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetForUpdate loads the ingredient row with a pessimistic lock. Must run
// inside a transaction; the lock is held until commit or rollback.
func (r *IngredientRepo) GetForUpdate(ctx context.Context, ingredientID id.ID) (*ledger.LockedIngredient, error) {
	sql := `
		SELECT id, tenant_id, quantity_on_hand, updated_at
		FROM ingredients
		WHERE id = $1 AND tenant_id = $2
		FOR UPDATE
	`

	var row ledger.LockedIngredient
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &row, sql, ingredientID, appctx.GetTenantID(ctx))
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ingredient", ingredientID.String())
		}
		return nil, apperror.NewInternal(err)
	}
	return &row, nil
}

// UpdateQuantity writes the new on-hand quantity under the lock taken by
// GetForUpdate.
func (r *IngredientRepo) UpdateQuantity(ctx context.Context, ingredientID id.ID, quantity types.Quantity, at time.Time) error {
	q := r.builder.Update(ingredientsTable).
		Set("quantity_on_hand", quantity).
		Set("updated_at", at).
		Where(squirrel.Eq{
			"id":        ingredientID,
			"tenant_id": appctx.GetTenantID(ctx),
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return apperror.NewInternal(err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("ingredient", ingredientID.String())
	}
	return nil
}
