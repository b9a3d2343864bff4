package interfaces

import "context"

// IngestionService reconciles the watched directory against the index.
// Reconcile is idempotent: with no filesystem change, a second run
// performs no index mutations.
type IngestionService interface {
	Reconcile(ctx context.Context) error
}
