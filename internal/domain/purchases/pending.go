package purchases

import (
	"context"
	"fmt"
	"time"

	"ladle/internal/core/apperror"
	appctx "ladle/internal/core/context"
	"ladle/internal/core/entity"
	"ladle/internal/core/id"
	"ladle/internal/core/types"
	"ladle/internal/domain/aggregates"
	"ladle/pkg/logger"
)

// CandidateInput is one externally sourced purchase line (OCR output,
// supplier feed) submitted for review.
type CandidateInput struct {
	IngredientID id.ID
	Quantity     types.Quantity
	Price        types.Money
}

// BatchResult summarizes a candidate batch submission.
type BatchResult struct {
	BatchID      id.ID `json:"batchId"`
	Count        int   `json:"count"`
	AutoApproved int   `json:"autoApproved"`
}

// SubmitBatch stages candidates under a shared batchId. Submission never
// touches stock; candidates the approval policy matches are then pushed
// through the same exactly-once approval path as a manual approve.
func (s *Service) SubmitBatch(ctx context.Context, inputs []CandidateInput) (BatchResult, error) {
	if len(inputs) == 0 {
		return BatchResult{}, apperror.NewValidation("batch has no candidates")
	}
	for i, in := range inputs {
		if !in.Quantity.IsPositive() {
			return BatchResult{}, apperror.NewValidation(fmt.Sprintf("candidate %d: quantity must be positive", i))
		}
		if in.Price.IsNegative() {
			return BatchResult{}, apperror.NewValidation(fmt.Sprintf("candidate %d: price cannot be negative", i))
		}
	}

	tenantID := appctx.GetTenantID(ctx)
	batchID := id.New()
	now := time.Now().UTC()

	candidates := make([]*PendingPurchaseCandidate, 0, len(inputs))
	for _, in := range inputs {
		candidates = append(candidates, &PendingPurchaseCandidate{
			ID:           id.New(),
			TenantID:     tenantID,
			BatchID:      batchID,
			IngredientID: in.IngredientID,
			Quantity:     in.Quantity,
			Price:        in.Price,
			State:        CandidatePending,
			CreatedAt:    now,
		})
	}

	result := BatchResult{BatchID: batchID, Count: len(candidates)}
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		result.AutoApproved = 0
		if err := s.pending.CreateBatch(ctx, tenantID, candidates); err != nil {
			return fmt.Errorf("create batch: %w", err)
		}

		for _, c := range candidates {
			ok, err := s.policy.AutoApprove(c)
			if err != nil {
				logger.Warn(ctx, "approval policy failed, leaving candidate pending",
					"candidate_id", c.ID,
					"error", err,
				)
				continue
			}
			if !ok {
				continue
			}
			if _, err := s.approveCandidate(ctx, c); err != nil {
				return err
			}
			result.AutoApproved++
		}
		return nil
	})
	if err != nil {
		return BatchResult{}, err
	}

	logger.Info(ctx, "pending batch submitted",
		"batch_id", batchID,
		"count", result.Count,
		"auto_approved", result.AutoApproved,
	)
	return result, nil
}

// Approve transitions a candidate pending -> approved and books its
// quantity into stock: ledger adjust, receipt event scoped to the batch,
// and aggregates, all in one transaction. Re-approving a terminal
// candidate fails with InvalidState.
func (s *Service) Approve(ctx context.Context, candidateID id.ID) (*PurchaseReceiptEvent, error) {
	tenantID := appctx.GetTenantID(ctx)

	var receipt *PurchaseReceiptEvent
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		cand, err := s.pending.Get(ctx, tenantID, candidateID)
		if err != nil {
			return err
		}
		receipt, err = s.approveCandidate(ctx, cand)
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Reject transitions a candidate pending -> rejected. No ledger effect.
func (s *Service) Reject(ctx context.Context, candidateID id.ID) error {
	tenantID := appctx.GetTenantID(ctx)

	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		cand, err := s.pending.Get(ctx, tenantID, candidateID)
		if err != nil {
			return err
		}
		if cand.State != CandidatePending {
			return apperror.NewInvalidState("candidate already " + string(cand.State))
		}

		ok, err := s.pending.Decide(ctx, tenantID, candidateID, CandidateRejected, time.Now().UTC())
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewInvalidState("candidate already decided")
		}
		return nil
	})
}

// approveCandidate runs the exactly-once approval inside the caller's
// transaction. The guarded Decide is the gate: losing it means someone
// else already decided, and nothing here may touch the ledger.
func (s *Service) approveCandidate(ctx context.Context, cand *PendingPurchaseCandidate) (*PurchaseReceiptEvent, error) {
	if cand.State != CandidatePending {
		return nil, apperror.NewInvalidState("candidate already " + string(cand.State))
	}

	now := time.Now().UTC()
	ok, err := s.pending.Decide(ctx, cand.TenantID, cand.ID, CandidateApproved, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NewInvalidState("candidate already decided")
	}

	if _, err := s.catalog.GetIngredient(ctx, cand.IngredientID); err != nil {
		return nil, err
	}

	adj, err := s.ledger.AdjustInTx(ctx, cand.IngredientID, cand.Quantity, "pending_approval")
	if err != nil {
		return nil, err
	}

	ev := &PurchaseReceiptEvent{
		OrderID:          cand.BatchID,
		IngredientID:     cand.IngredientID,
		QuantityReceived: cand.Quantity,
		AppliedDelta:     adj.Applied,
		UnitCost:         cand.Price,
		ReceiptDate:      now,
	}
	ev.Event = entity.NewEvent(cand.TenantID)
	ev.CreatedBy = appctx.GetUserID(ctx)

	if err := s.repo.CreateReceipts(ctx, cand.TenantID, []*PurchaseReceiptEvent{ev}); err != nil {
		return nil, fmt.Errorf("create receipt: %w", err)
	}

	delta := aggregates.Delta{
		Quantity: adj.Applied,
		Cost:     cand.Price.Mul(cand.Quantity.Decimal()),
	}
	if err := s.agg.Accumulate(ctx, cand.IngredientID, now, delta); err != nil {
		return nil, err
	}

	cand.State = CandidateApproved
	cand.DecidedAt = &now
	return ev, nil
}
