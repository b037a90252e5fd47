package aggregates

import (
	"context"
	"fmt"
	"time"

	appctx "ladle/internal/core/context"
	"ladle/internal/core/id"
)

// Service keeps daily and monthly rows in step. Every accumulate writes
// both granularities; every subtract reverses both, so the two read
// models cannot drift from each other.
type Service struct {
	repo Repository
}

// NewService creates an aggregate maintainer.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Accumulate adds delta to the daily and monthly rows of entityID for
// the given business date. Runs in the caller's transaction.
func (s *Service) Accumulate(ctx context.Context, entityID id.ID, date time.Time, delta Delta) error {
	tenantID := appctx.GetTenantID(ctx)

	day, month := periods(date)
	if err := s.repo.Accumulate(ctx, Key{TenantID: tenantID, EntityID: entityID, Period: day, Granularity: GranularityDaily}, delta); err != nil {
		return fmt.Errorf("accumulate daily: %w", err)
	}
	if err := s.repo.Accumulate(ctx, Key{TenantID: tenantID, EntityID: entityID, Period: month, Granularity: GranularityMonthly}, delta); err != nil {
		return fmt.Errorf("accumulate monthly: %w", err)
	}
	return nil
}

// Subtract is the exact inverse of Accumulate. Totals clamp at zero so
// re-entrant or out-of-order reversals do not drive the cache negative.
// The clamp can also absorb a genuine double-reversal silently; callers
// rely on the event ledger, not this cache, for reconciliation.
func (s *Service) Subtract(ctx context.Context, entityID id.ID, date time.Time, delta Delta) error {
	tenantID := appctx.GetTenantID(ctx)

	day, month := periods(date)
	if err := s.repo.SubtractClamped(ctx, Key{TenantID: tenantID, EntityID: entityID, Period: day, Granularity: GranularityDaily}, delta); err != nil {
		return fmt.Errorf("subtract daily: %w", err)
	}
	if err := s.repo.SubtractClamped(ctx, Key{TenantID: tenantID, EntityID: entityID, Period: month, Granularity: GranularityMonthly}, delta); err != nil {
		return fmt.Errorf("subtract monthly: %w", err)
	}
	return nil
}

// Get returns the daily row for assertions and reporting collaborators.
func (s *Service) Get(ctx context.Context, entityID id.ID, date time.Time, granularity Granularity) (Delta, error) {
	tenantID := appctx.GetTenantID(ctx)
	day, month := periods(date)
	period := day
	if granularity == GranularityMonthly {
		period = month
	}
	return s.repo.Get(ctx, Key{TenantID: tenantID, EntityID: entityID, Period: period, Granularity: granularity})
}

// periods truncates a business date to its daily and monthly keys (UTC).
func periods(date time.Time) (day, month time.Time) {
	u := date.UTC()
	day = time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	month = time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	return day, month
}
