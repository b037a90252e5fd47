package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ladle/internal/core/apperror"
	appctx "ladle/internal/core/context"
	"ladle/internal/core/id"
	"ladle/internal/core/tx"
	"ladle/internal/core/types"
	"ladle/internal/domain/aggregates"
	"ladle/internal/domain/catalog"
	"ladle/internal/domain/costing"
	"ladle/internal/domain/ledger"
	"ladle/pkg/logger"
)

// RecordInput is the pre-validated input of a sale recording.
type RecordInput struct {
	RecipeID     id.ID
	VariantID    *id.ID
	QuantitySold types.Quantity
	UnitPrice    *types.Money // nil: derive from variant override or zero
	SoldAt       time.Time    // zero: now
}

// Service records and reverses sale events. One transaction spans the
// ledger decrements, the event row with its applied snapshot, and the
// aggregate upserts; either all commit or none do.
type Service struct {
	repo       Repository
	catalog    catalog.Repository
	ledger     *ledger.Service
	aggregates *aggregates.Service
	txm        tx.Manager
}

// NewService creates a sales service.
func NewService(repo Repository, cat catalog.Repository, led *ledger.Service, agg *aggregates.Service, txm tx.Manager) *Service {
	return &Service{
		repo:       repo,
		catalog:    cat,
		ledger:     led,
		aggregates: agg,
		txm:        txm,
	}
}

// Record creates a sale event: computes deductions, applies them to the
// ledger in recipe line order (the deterministic lock order), persists
// the event with the applied amounts, and accumulates aggregates.
func (s *Service) Record(ctx context.Context, input RecordInput) (*SaleEvent, error) {
	if !input.QuantitySold.IsPositive() {
		return nil, apperror.NewValidation("quantity sold must be positive")
	}

	recipe, err := s.catalog.GetRecipe(ctx, input.RecipeID)
	if err != nil {
		return nil, err
	}

	var variant *catalog.RecipeVariant
	if input.VariantID != nil {
		variant, err = s.catalog.GetVariant(ctx, *input.VariantID)
		if err != nil {
			return nil, err
		}
		if variant.RecipeID != recipe.ID {
			return nil, apperror.NewValidation("variant does not belong to recipe").
				WithDetail("variantId", variant.ID.String()).
				WithDetail("recipeId", recipe.ID.String())
		}
	}

	deductions := costing.DeductionsForSale(recipe, variant, input.QuantitySold)

	event := NewSaleEvent(appctx.GetTenantID(ctx), recipe.ID)
	event.CreatedBy = appctx.GetUserID(ctx)
	event.VariantID = input.VariantID
	event.QuantitySold = input.QuantitySold
	if variant != nil {
		event.VariantFactor = variant.Factor
	}
	if !input.SoldAt.IsZero() {
		event.SoldAt = input.SoldAt.UTC()
	}

	unitPrice := s.resolveUnitPrice(input, variant)
	event.UnitPrice = unitPrice
	event.Total = unitPrice.Mul(input.QuantitySold.Decimal())

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		cost := decimal.Zero
		for _, d := range deductions {
			ing, err := s.catalog.GetIngredient(ctx, d.IngredientID)
			if err != nil {
				return err
			}

			adj, err := s.ledger.AdjustInTx(ctx, d.IngredientID, d.Amount.Neg(), "sale")
			if err != nil {
				return err
			}

			event.AppliedDeductions = append(event.AppliedDeductions, AppliedDeduction{
				IngredientID: d.IngredientID,
				Requested:    d.Amount,
				Applied:      adj.Applied.Abs(),
			})
			cost = cost.Add(ing.UnitPrice.Mul(adj.Applied.Abs().Decimal()))
		}
		event.CostTotal = cost

		if err := s.repo.Create(ctx, event); err != nil {
			return fmt.Errorf("create sale event: %w", err)
		}

		return s.aggregates.Accumulate(ctx, event.RecipeID, event.SoldAt, aggregates.Delta{
			Quantity: event.QuantitySold,
			Revenue:  event.Total,
			Cost:     event.CostTotal,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale recorded",
		"sale_id", event.ID,
		"recipe_id", event.RecipeID,
		"quantity", event.QuantitySold.String(),
		"deductions", len(event.AppliedDeductions),
	)
	return event, nil
}

// Reverse undoes a sale by replaying its stored applied deductions with
// inverted sign. It never recomputes from the current recipe: the
// recorded amounts are ledger truth even after catalog edits or floor
// clamps. A second reversal of the same sale returns NotFound.
func (s *Service) Reverse(ctx context.Context, saleID id.ID) ([]RestoredDelta, error) {
	var restored []RestoredDelta
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		event, err := s.repo.GetActive(ctx, saleID)
		if err != nil {
			return err
		}

		deductions := event.AppliedDeductions
		if len(deductions) == 0 {
			deductions = s.legacyDeductions(ctx, event)
		}

		restored = restored[:0]
		for _, d := range deductions {
			adj, err := s.ledger.AdjustInTx(ctx, d.IngredientID, d.Applied, "sale reversal")
			if err != nil {
				return err
			}
			restored = append(restored, RestoredDelta{
				IngredientID: d.IngredientID,
				Restored:     adj.Applied,
				NewQuantity:  adj.NewQuantity,
			})
		}

		if err := s.aggregates.Subtract(ctx, event.RecipeID, event.SoldAt, aggregates.Delta{
			Quantity: event.QuantitySold,
			Revenue:  event.Total,
			Cost:     event.CostTotal,
		}); err != nil {
			return err
		}

		ok, err := s.repo.MarkDeleted(ctx, saleID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("mark deleted: %w", err)
		}
		if !ok {
			// Lost the race against a concurrent reversal: roll the
			// whole restore back rather than double-restoring.
			return apperror.NewNotFound("sale event", saleID.String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale reversed", "sale_id", saleID, "restored", len(restored))
	return restored, nil
}

// legacyDeductions recomputes deductions for events recorded before the
// applied snapshot existed, from the event's own stored quantity and
// variant factor. Lower fidelity: a floor clamp at sale time or a later
// recipe edit is invisible here.
func (s *Service) legacyDeductions(ctx context.Context, event *SaleEvent) []AppliedDeduction {
	logger.Warn(ctx, "sale event has no applied deductions, recomputing from snapshot",
		"sale_id", event.ID,
	)

	recipe, err := s.catalog.GetRecipe(ctx, event.RecipeID)
	if err != nil {
		logger.Warn(ctx, "legacy recompute failed, nothing to restore",
			"sale_id", event.ID, "error", err)
		return nil
	}

	variant := &catalog.RecipeVariant{RecipeID: recipe.ID, Factor: event.VariantFactor}
	computed := costing.DeductionsForSale(recipe, variant, event.QuantitySold)

	deductions := make([]AppliedDeduction, 0, len(computed))
	for _, d := range computed {
		deductions = append(deductions, AppliedDeduction{
			IngredientID: d.IngredientID,
			Requested:    d.Amount,
			Applied:      d.Amount,
		})
	}
	return deductions
}

func (s *Service) resolveUnitPrice(input RecordInput, variant *catalog.RecipeVariant) types.Money {
	if input.UnitPrice != nil {
		return *input.UnitPrice
	}
	if variant != nil && variant.PriceOverride != nil {
		return *variant.PriceOverride
	}
	return decimal.Zero
}
