package catalog

import (
	"context"

	"ladle/internal/core/id"
)

// Repository defines read operations against the catalog owned by the
// collaborating catalog service. All lookups are tenant-scoped by the
// actor context.
type Repository interface {
	// GetIngredient returns an ingredient by id.
	GetIngredient(ctx context.Context, ingredientID id.ID) (*Ingredient, error)

	// GetRecipe returns a recipe with its lines in line order.
	GetRecipe(ctx context.Context, recipeID id.ID) (*Recipe, error)

	// GetVariant returns a recipe variant by id.
	GetVariant(ctx context.Context, variantID id.ID) (*RecipeVariant, error)
}
