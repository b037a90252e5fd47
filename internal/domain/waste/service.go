package waste

import (
	"context"
	"fmt"
	"time"

	"ladle/internal/core/apperror"
	appctx "ladle/internal/core/context"
	"ladle/internal/core/entity"
	"ladle/internal/core/id"
	"ladle/internal/core/tx"
	"ladle/internal/domain/aggregates"
	"ladle/internal/domain/catalog"
	"ladle/internal/domain/ledger"
	"ladle/pkg/logger"
)

// ItemError reports one failed item of a bulk waste registration.
type ItemError struct {
	IngredientID id.ID  `json:"ingredientId"`
	Code         string `json:"code"`
	Message      string `json:"message"`
}

// Result summarizes a bulk waste registration.
type Result struct {
	Count  int           `json:"count"`
	Events []*WasteEvent `json:"events"`
	Errors []ItemError   `json:"errors,omitempty"`
}

// Service records and reverses waste events.
type Service struct {
	repo    Repository
	catalog catalog.Repository
	ledger  *ledger.Service
	agg     *aggregates.Service
	txm     tx.Manager
}

// NewService wires the waste service.
func NewService(repo Repository, cat catalog.Repository, led *ledger.Service, agg *aggregates.Service, txm tx.Manager) *Service {
	return &Service{
		repo:    repo,
		catalog: cat,
		ledger:  led,
		agg:     agg,
		txm:     txm,
	}
}

// Register registers waste items in one transaction with per-item
// savepoints: an unknown ingredient rolls back its own item and is
// reported in Errors while siblings commit. Each event stores the
// applied (post-clamp) quantity.
func (s *Service) Register(ctx context.Context, items []Item) (Result, error) {
	if len(items) == 0 {
		return Result{}, apperror.NewValidation("no waste items")
	}
	for i, item := range items {
		if !item.Quantity.IsPositive() {
			return Result{}, apperror.NewValidation(fmt.Sprintf("item %d: quantity must be positive", i))
		}
	}

	tenantID := appctx.GetTenantID(ctx)
	actor := appctx.GetUserID(ctx)

	var result Result
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		result = Result{}
		now := time.Now().UTC()

		for _, item := range items {
			var ev *WasteEvent
			itemErr := s.txm.RunInSavepoint(ctx, func(ctx context.Context) error {
				ing, err := s.catalog.GetIngredient(ctx, item.IngredientID)
				if err != nil {
					return err
				}

				adj, err := s.ledger.AdjustInTx(ctx, item.IngredientID, item.Quantity.Neg(), "waste")
				if err != nil {
					return err
				}

				ev = &WasteEvent{
					IngredientID:   item.IngredientID,
					QuantityWasted: item.Quantity,
					Applied:        adj.Applied.Neg(),
					UnitPrice:      ing.UnitPrice,
					Reason:         item.Reason,
					WastedAt:       now,
				}
				ev.Event = entity.NewEvent(tenantID)
				ev.CreatedBy = actor

				if err := s.repo.Create(ctx, []*WasteEvent{ev}); err != nil {
					return fmt.Errorf("create waste event: %w", err)
				}

				delta := aggregates.Delta{
					Quantity: ev.Applied,
					Cost:     ev.UnitPrice.Mul(ev.Applied.Decimal()),
				}
				return s.agg.Accumulate(ctx, item.IngredientID, now, delta)
			})

			if itemErr != nil {
				appErr, ok := apperror.AsAppError(itemErr)
				if !ok {
					return itemErr
				}
				result.Errors = append(result.Errors, ItemError{
					IngredientID: item.IngredientID,
					Code:         appErr.Code,
					Message:      appErr.Message,
				})
				continue
			}
			result.Events = append(result.Events, ev)
		}
		result.Count = len(result.Events)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	logger.Info(ctx, "waste registered",
		"count", result.Count,
		"failed", len(result.Errors),
	)
	return result, nil
}

// Delete reverses one waste event: the stored applied quantity goes back
// into stock, the aggregates are subtracted from the snapshot taken at
// registration, and the event is flagged. A second call returns NotFound.
func (s *Service) Delete(ctx context.Context, eventID id.ID) (RestoredDelta, error) {
	tenantID := appctx.GetTenantID(ctx)

	var restored RestoredDelta
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		ev, err := s.repo.GetActive(ctx, tenantID, eventID)
		if err != nil {
			return err
		}

		adj, err := s.ledger.AdjustInTx(ctx, ev.IngredientID, ev.Applied, "waste_reversal")
		if err != nil {
			return err
		}
		restored = RestoredDelta{
			IngredientID: ev.IngredientID,
			Restored:     adj.Applied,
			NewQuantity:  adj.NewQuantity,
		}

		// Subtract exactly what registration accumulated, not a value
		// re-derived from the current catalog price.
		delta := aggregates.Delta{
			Quantity: ev.Applied,
			Cost:     ev.UnitPrice.Mul(ev.Applied.Decimal()),
		}
		if err := s.agg.Subtract(ctx, ev.IngredientID, ev.WastedAt, delta); err != nil {
			return err
		}

		ok, err := s.repo.MarkDeleted(ctx, tenantID, eventID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("mark deleted: %w", err)
		}
		if !ok {
			return apperror.NewNotFound("waste event", eventID)
		}
		return nil
	})
	if err != nil {
		return RestoredDelta{}, err
	}

	logger.Info(ctx, "waste reversed", "event_id", eventID)
	return restored, nil
}
