// Package aggregates maintains the denormalized daily and monthly
// summary rows derived from stock-affecting events. The rows are a
// cache: they are rebuildable by replaying non-deleted events and are
// never authoritative for business decisions.
package aggregates

import (
	"context"
	"time"

	"ladle/internal/core/id"
	"ladle/internal/core/types"
)

// Granularity selects the summary table a key addresses.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityMonthly Granularity = "monthly"
)

// Key addresses one aggregate row.
type Key struct {
	TenantID    string
	EntityID    id.ID
	Period      time.Time
	Granularity Granularity
}

// Delta is the additive payload of one accumulation.
type Delta struct {
	Quantity types.Quantity `json:"quantity"`
	Revenue  types.Money    `json:"revenue"`
	Cost     types.Money    `json:"cost"`
}

// Repository defines storage for aggregate rows. Accumulate is an
// additive upsert; SubtractClamped is its inverse with totals floored
// at zero. Both follow the same upsert-under-lock discipline as the
// ledger because many events contend on the same (entity, period) row.
type Repository interface {
	Accumulate(ctx context.Context, key Key, delta Delta) error
	SubtractClamped(ctx context.Context, key Key, delta Delta) error

	// Get returns the current row values (zero row if absent).
	Get(ctx context.Context, key Key) (Delta, error)
}
