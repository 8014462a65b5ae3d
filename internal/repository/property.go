package repository

import (
	"context"

	"backendconf/internal/model"
)

// PropertyRepository reads the property (site/location) registry mirrored
// from the sibling plugin. Read-only in this workflow.
type PropertyRepository interface {
	// ListActive returns every non-removed property.
	ListActive(ctx context.Context) ([]model.Property, error)

	// FindByIDs returns the properties with the given ids, active only.
	FindByIDs(ctx context.Context, ids []int64) ([]model.Property, error)

	// NamesByIDs resolves property display names for the given ids.
	NamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}
