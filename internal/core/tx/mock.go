package tx

import "context"

// NopManager is a test implementation of Manager that runs the callback
// directly with no transactional boundary. Memory repositories provide
// their own serialization, so unit tests use this in place of the
// postgres manager.
type NopManager struct{}

// RunInTransaction implements Manager.
func (NopManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// RunInSavepoint implements Manager.
func (NopManager) RunInSavepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ReadOnly implements ReadOnlyManager.
func (NopManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Ensure compile-time interface compliance.
var (
	_ Manager         = NopManager{}
	_ ReadOnlyManager = NopManager{}
)
