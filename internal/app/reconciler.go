package app

import (
	"go.uber.org/zap"

	"github.com/yourusername/bookqueue-go/internal/domain"
)

// Reconciler merges full status snapshots into the store. The remote only
// exposes periodic full reads, so every merge is last-snapshot-wins and
// applying the same snapshot twice leaves the store unchanged.
type Reconciler struct {
	store  *Store
	logger *zap.Logger
}

// NewReconciler creates a reconciler bound to a store.
func NewReconciler(store *Store, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

// Apply upserts every job in the snapshot under its unified status. A
// malformed record is skipped with a debug log; it never aborts the merge
// of the remaining jobs. Jobs reported as cancelled are removed from the
// live view, matching an explicit user cancellation.
func (r *Reconciler) Apply(snapshot domain.Snapshot) {
	for _, category := range domain.Categories() {
		for id, raw := range snapshot.Jobs(category) {
			if id == "" {
				r.logger.Debug("Skipping snapshot record without id",
					zap.String("category", string(category)))
				continue
			}

			if category == domain.CategoryCancelled {
				r.store.Remove(id)
				continue
			}

			r.store.Upsert(raw.ToLiveState(id, category.UnifiedStatus()))
		}
	}
}
