package catalog

import "context"

// SnapshotStore persists the whole catalog as one ordered snapshot.
type SnapshotStore interface {
	// Load returns the last saved snapshot, or an empty slice when nothing
	// has been saved yet
	Load(ctx context.Context) ([]Product, error)

	// Save replaces the stored snapshot with products
	Save(ctx context.Context, products []Product) error
}
