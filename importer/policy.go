package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/ddimport/catalog"
	"github.com/lehigh-university-libraries/ddimport/normalize"
	"github.com/lehigh-university-libraries/ddimport/record"
)

// maxNameAttempts bounds the numeric suffix search for a free name.
const maxNameAttempts = 1000

// Persist stores a dataset according to the duplicate/override policy and
// attaches the upload, if any. It returns the stored dataset's name.
//
// An existing dataset with the same id is rejected, overridden in place,
// or kept alongside a new copy under a fresh name, depending on Config.
func (i *Importer) Persist(ctx context.Context, ds *record.Dataset, upload *Upload) (string, error) {
	ds = ds.Clone()

	// Visibility applies to uploaded resources, not to the dataset.
	visibility := ds.Visibility
	if visibility == "" {
		visibility = DefaultVisibility
	}
	ds.Visibility = ""

	existing, found, err := i.registry.Find(ctx, ds.ID)
	if err != nil {
		return "", fmt.Errorf("looking up dataset %s: %w", ds.ID, err)
	}

	if found && !i.cfg.AllowDuplicates && !i.cfg.OverrideDatasets {
		return "", &ContentDuplicateError{Name: existing.Name}
	}

	var name string
	if found && i.cfg.OverrideDatasets {
		merged := existing.Merge(ds)
		updated, err := i.registry.Update(ctx, merged)
		if err != nil {
			return "", err
		}
		name = updated.Name
		slog.Info("updated dataset", "name", name, "id", updated.ID)
	} else {
		ds.ID = ""
		ds.CreatorUser = i.user
		ds.Name, err = i.uniqueName(ctx, ds.Name)
		if err != nil {
			return "", err
		}
		created, err := i.registry.Create(ctx, ds)
		if errors.Is(err, catalog.ErrConflict) && !i.cfg.AllowDuplicates && !i.cfg.OverrideDatasets {
			// Another import took the name between Find and Create.
			return "", &ContentDuplicateError{Name: ds.Name}
		}
		if err != nil {
			return "", err
		}
		name = created.Name
		slog.Info("created dataset", "name", name, "id", created.ID)
	}

	if upload != nil {
		res := attachment(upload.Filename, DDIResourceName, "xml", visibility)
		if _, err := i.registry.AttachResource(ctx, name, res, upload.Body); err != nil {
			slog.Warn("upload failed", "dataset", name, "error", err)
			return name, &UploadError{Resource: DDIResourceName, Err: err}
		}
	}

	return name, nil
}

// uniqueName returns base if no dataset uses it, otherwise the first free
// name of base-1, base-2, ...
func (i *Importer) uniqueName(ctx context.Context, base string) (string, error) {
	candidate := base
	for n := 1; n <= maxNameAttempts; n++ {
		_, found, err := i.registry.Find(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking name %s: %w", candidate, err)
		}
		if !found {
			return candidate, nil
		}

		suffix := fmt.Sprintf("-%d", n)
		stem := base
		if len(stem)+len(suffix) > normalize.MaxSlugLength {
			stem = stem[:normalize.MaxSlugLength-len(suffix)]
		}
		candidate = stem + suffix
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", base, maxNameAttempts)
}
