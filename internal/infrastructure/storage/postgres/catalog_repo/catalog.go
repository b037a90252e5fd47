// Package catalog_repo provides PostgreSQL read access to the catalog
// owned by the collaborating catalog service.
package catalog_repo

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"ladle/internal/core/apperror"
	appctx "ladle/internal/core/context"
	"ladle/internal/core/id"
	"ladle/internal/domain/catalog"
	"ladle/internal/infrastructure/storage/postgres"
)

// CatalogRepo implements catalog.Repository. All reads are tenant-scoped
// by the actor context.
type CatalogRepo struct {
	txManager *postgres.TxManager
}

var _ catalog.Repository = (*CatalogRepo)(nil)

// NewCatalogRepo creates the catalog read repository.
func NewCatalogRepo(txManager *postgres.TxManager) *CatalogRepo {
	return &CatalogRepo{txManager: txManager}
}

// GetIngredient returns one ingredient.
func (r *CatalogRepo) GetIngredient(ctx context.Context, ingredientID id.ID) (*catalog.Ingredient, error) {
	sql := `
		SELECT id, tenant_id, name, quantity_on_hand, unit_price,
			   units_per_purchase_format, updated_at
		FROM ingredients
		WHERE id = $1 AND tenant_id = $2
	`

	var ing catalog.Ingredient
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &ing, sql, ingredientID, appctx.GetTenantID(ctx))
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ingredient", ingredientID.String())
		}
		return nil, apperror.NewInternal(err)
	}
	return &ing, nil
}

// GetRecipe returns a recipe with its lines in line order. Line order is
// the lock-acquisition order for multi-ingredient sales, so it must be
// deterministic.
func (r *CatalogRepo) GetRecipe(ctx context.Context, recipeID id.ID) (*catalog.Recipe, error) {
	recipeSQL := `
		SELECT id, tenant_id, name, servings_per_batch
		FROM recipes
		WHERE id = $1 AND tenant_id = $2
	`

	var rec catalog.Recipe
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &rec, recipeSQL, recipeID, appctx.GetTenantID(ctx))
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("recipe", recipeID.String())
		}
		return nil, apperror.NewInternal(err)
	}

	linesSQL := `
		SELECT line_no, ingredient_id, quantity_per_batch
		FROM recipe_lines
		WHERE recipe_id = $1
		ORDER BY line_no
	`
	if err := pgxscan.Select(ctx, querier, &rec.Lines, linesSQL, recipeID); err != nil {
		return nil, apperror.NewInternal(err)
	}
	return &rec, nil
}

// GetVariant returns one recipe variant.
func (r *CatalogRepo) GetVariant(ctx context.Context, variantID id.ID) (*catalog.RecipeVariant, error) {
	sql := `
		SELECT id, recipe_id, name, factor, price_override
		FROM recipe_variants
		WHERE id = $1 AND tenant_id = $2
	`

	var v catalog.RecipeVariant
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &v, sql, variantID, appctx.GetTenantID(ctx))
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("recipe variant", variantID.String())
		}
		return nil, apperror.NewInternal(err)
	}
	return &v, nil
}
