// Package catalog stores datasets and their resources.
package catalog

import (
	"context"
	"errors"
	"io"

	"github.com/lehigh-university-libraries/ddimport/record"
)

var (
	// ErrNotFound is returned when a dataset or resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a dataset name is already taken.
	ErrConflict = errors.New("dataset name already in use")
)

// Registry is the catalogue the import pipeline persists into.
type Registry interface {
	// Find looks a dataset up by id or name. A missing dataset is
	// reported as (nil, false, nil).
	Find(ctx context.Context, idOrName string) (*record.Dataset, bool, error)

	// Create stores a new dataset and returns it with its assigned id.
	Create(ctx context.Context, ds *record.Dataset) (*record.Dataset, error)

	// Update replaces a stored dataset, matched by id.
	Update(ctx context.Context, ds *record.Dataset) (*record.Dataset, error)

	// AttachResource adds a resource to the named dataset. Content may be
	// nil for link-only resources.
	AttachResource(ctx context.Context, datasetName string, res record.Resource, content io.Reader) (*record.Resource, error)
}
