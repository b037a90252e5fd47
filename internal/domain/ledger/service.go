package ledger

import (
	"context"
	"fmt"
	"math"
	"time"

	"ladle/internal/core/apperror"
	"ladle/internal/core/id"
	"ladle/internal/core/tx"
	"ladle/internal/core/types"
	"ladle/pkg/logger"
)

// AuditSink records ledger mutations for the audit trail. Recording is
// best-effort: a sink failure is logged, never propagated, so the
// business transaction outcome does not depend on it.
type AuditSink interface {
	RecordAdjustment(ctx context.Context, entry AuditEntry) error
}

// AuditEntry describes one applied ledger mutation.
type AuditEntry struct {
	IngredientID id.ID
	Reason       string
	OldQuantity  types.Quantity
	NewQuantity  types.Quantity
	Applied      types.Quantity
	At           time.Time
}

// Service is the stock ledger core. All quantity mutations in the system
// flow through Adjust/BulkAdjust (and the explicit SetQuantity stocktake
// path); nothing else writes quantity_on_hand.
type Service struct {
	repo  Repository
	txm   tx.Manager
	audit AuditSink
}

// NewService creates a ledger service. audit may be nil.
func NewService(repo Repository, txm tx.Manager, audit AuditSink) *Service {
	return &Service{
		repo:  repo,
		txm:   txm,
		audit: audit,
	}
}

// QuantityFromFloat converts an external float delta to a ledger
// quantity, rejecting non-finite values before any transaction starts.
func QuantityFromFloat(delta float64) (types.Quantity, error) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, apperror.NewInvalidInput("delta must be a finite number")
	}
	return types.NewQuantityFromFloat64(delta), nil
}

// Adjust applies a signed delta to one ingredient under its row lock.
// The new quantity floors at zero: a decrement crossing zero succeeds
// with Applied == -oldQuantity, which is smaller in magnitude than
// requested and is the value event recorders must store.
func (s *Service) Adjust(ctx context.Context, ingredientID id.ID, delta types.Quantity, reason string) (Adjustment, error) {
	var result Adjustment
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.apply(ctx, ingredientID, delta, reason)
		return err
	})
	return result, err
}

// apply performs the locked read-modify-write. It must run inside a
// transaction; nested RunInTransaction calls reuse the open one.
func (s *Service) apply(ctx context.Context, ingredientID id.ID, delta types.Quantity, reason string) (Adjustment, error) {
	row, err := s.repo.GetForUpdate(ctx, ingredientID)
	if err != nil {
		return Adjustment{}, err
	}

	old := row.QuantityOnHand
	newQty := old + delta
	if newQty < 0 {
		newQty = 0
	}
	applied := newQty - old

	now := time.Now().UTC()
	if err := s.repo.UpdateQuantity(ctx, ingredientID, newQty, now); err != nil {
		return Adjustment{}, fmt.Errorf("update quantity: %w", err)
	}

	adj := Adjustment{
		IngredientID: ingredientID,
		Requested:    delta,
		Applied:      applied,
		NewQuantity:  newQty,
	}

	s.recordAudit(ctx, AuditEntry{
		IngredientID: ingredientID,
		Reason:       reason,
		OldQuantity:  old,
		NewQuantity:  newQty,
		Applied:      applied,
		At:           now,
	})

	if applied != delta {
		logger.Warn(ctx, "adjustment floor-clamped",
			"ingredient_id", ingredientID,
			"requested", delta.String(),
			"applied", applied.String(),
			"reason", reason,
		)
	}

	return adj, nil
}

// BulkAdjust applies each item independently in one transaction.
// A failing item (missing ingredient) rolls back to its savepoint and is
// reported in Errors; sibling items still commit.
func (s *Service) BulkAdjust(ctx context.Context, items []BulkItem, reason string) (BulkResult, error) {
	var result BulkResult
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, item := range items {
			var adj Adjustment
			itemErr := s.txm.RunInSavepoint(ctx, func(ctx context.Context) error {
				var err error
				adj, err = s.apply(ctx, item.IngredientID, item.Delta, reason)
				return err
			})

			if itemErr != nil {
				appErr, ok := apperror.AsAppError(itemErr)
				if !ok {
					return itemErr
				}
				result.Errors = append(result.Errors, BulkItemError{
					IngredientID: item.IngredientID,
					Code:         appErr.Code,
					Message:      appErr.Message,
				})
				continue
			}
			result.Results = append(result.Results, adj)
		}
		return nil
	})
	if err != nil {
		return BulkResult{}, err
	}

	logger.Info(ctx, "bulk adjustment applied",
		"applied", len(result.Results),
		"failed", len(result.Errors),
		"reason", reason,
	)
	return result, nil
}

// SetQuantity is the explicit stocktake/reconciliation path: the only
// place an absolute quantity is ever written. Negative targets are
// rejected up front.
func (s *Service) SetQuantity(ctx context.Context, ingredientID id.ID, quantity types.Quantity, reason string) (Adjustment, error) {
	if quantity.IsNegative() {
		return Adjustment{}, apperror.NewValidation("stocktake quantity cannot be negative")
	}

	var result Adjustment
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		row, err := s.repo.GetForUpdate(ctx, ingredientID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := s.repo.UpdateQuantity(ctx, ingredientID, quantity, now); err != nil {
			return fmt.Errorf("update quantity: %w", err)
		}

		result = Adjustment{
			IngredientID: ingredientID,
			Requested:    quantity - row.QuantityOnHand,
			Applied:      quantity - row.QuantityOnHand,
			NewQuantity:  quantity,
		}

		s.recordAudit(ctx, AuditEntry{
			IngredientID: ingredientID,
			Reason:       reason,
			OldQuantity:  row.QuantityOnHand,
			NewQuantity:  quantity,
			Applied:      result.Applied,
			At:           now,
		})
		return nil
	})
	return result, err
}

// AdjustInTx is Adjust for callers that already hold a transaction and
// row-lock ordering discipline (sale recording, reversal). The nested
// RunInTransaction reuses the caller's transaction.
func (s *Service) AdjustInTx(ctx context.Context, ingredientID id.ID, delta types.Quantity, reason string) (Adjustment, error) {
	return s.apply(ctx, ingredientID, delta, reason)
}

func (s *Service) recordAudit(ctx context.Context, entry AuditEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.RecordAdjustment(ctx, entry); err != nil {
		logger.Warn(ctx, "audit record failed",
			"ingredient_id", entry.IngredientID,
			"error", err,
		)
	}
}
