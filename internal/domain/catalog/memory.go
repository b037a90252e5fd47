package catalog

import (
	"context"
	"sync"

	"ladle/internal/core/apperror"
	"ladle/internal/core/id"
)

// MemoryRepository is an in-memory Repository implementation for unit
// tests. Safe for concurrent use.
type MemoryRepository struct {
	mu          sync.RWMutex
	ingredients map[id.ID]*Ingredient
	recipes     map[id.ID]*Recipe
	variants    map[id.ID]*RecipeVariant
}

// NewMemoryRepository creates an empty in-memory catalog.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		ingredients: make(map[id.ID]*Ingredient),
		recipes:     make(map[id.ID]*Recipe),
		variants:    make(map[id.ID]*RecipeVariant),
	}
}

// PutIngredient stores an ingredient.
func (m *MemoryRepository) PutIngredient(ing *Ingredient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ing
	m.ingredients[ing.ID] = &cp
}

// PutRecipe stores a recipe.
func (m *MemoryRepository) PutRecipe(rec *Recipe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	cp.Lines = append([]RecipeLine(nil), rec.Lines...)
	m.recipes[rec.ID] = &cp
}

// PutVariant stores a variant.
func (m *MemoryRepository) PutVariant(v *RecipeVariant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.variants[v.ID] = &cp
}

// GetIngredient implements Repository.
func (m *MemoryRepository) GetIngredient(ctx context.Context, ingredientID id.ID) (*Ingredient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ing, ok := m.ingredients[ingredientID]
	if !ok {
		return nil, apperror.NewNotFound("ingredient", ingredientID.String())
	}
	cp := *ing
	return &cp, nil
}

// GetRecipe implements Repository.
func (m *MemoryRepository) GetRecipe(ctx context.Context, recipeID id.ID) (*Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recipes[recipeID]
	if !ok {
		return nil, apperror.NewNotFound("recipe", recipeID.String())
	}
	cp := *rec
	cp.Lines = append([]RecipeLine(nil), rec.Lines...)
	return &cp, nil
}

// GetVariant implements Repository.
func (m *MemoryRepository) GetVariant(ctx context.Context, variantID id.ID) (*RecipeVariant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.variants[variantID]
	if !ok {
		return nil, apperror.NewNotFound("recipe variant", variantID.String())
	}
	cp := *v
	return &cp, nil
}

// Ensure interface compliance.
var _ Repository = (*MemoryRepository)(nil)
