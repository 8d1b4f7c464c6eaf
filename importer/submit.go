package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/ddimport/enrich"
)

// Submission is one interactive import request: a DDI document given as an
// upload or URL, caller overrides, and an optional RDF sidecar.
type Submission struct {
	Upload    *Upload
	URL       string
	Overrides *enrich.Overrides

	RDFUpload *Upload
	RDFURL    string

	User string
}

// Submit runs a submission. Uploaded content is spooled to a temporary
// file that is removed before Submit returns.
func (i *Importer) Submit(ctx context.Context, sub Submission) (string, error) {
	imp := i.WithUser(sub.User)

	var (
		name string
		err  error
	)
	switch {
	case sub.Upload != nil:
		name, err = imp.submitUpload(ctx, sub)
	case sub.URL != "":
		slog.Debug("importing from url", "url", sub.URL)
		name, err = imp.Import(ctx, RemoteURL{URL: sub.URL}, sub.Overrides, nil)
	default:
		return "", ErrNoSource
	}
	if err != nil {
		return name, err
	}

	visibility := sub.Overrides.VisibilityOr(DefaultVisibility)
	switch {
	case sub.RDFUpload != nil:
		res := attachment(sub.RDFUpload.Filename, RDFResourceName, "rdf", visibility)
		if _, err := imp.registry.AttachResource(ctx, name, res, sub.RDFUpload.Body); err != nil {
			return name, &UploadError{Resource: RDFResourceName, Err: err}
		}
	case sub.RDFURL != "":
		res := attachment(sub.RDFURL, RDFResourceName, "rdf", visibility)
		if _, err := imp.registry.AttachResource(ctx, name, res, nil); err != nil {
			return name, &UploadError{Resource: RDFResourceName, Err: err}
		}
	}

	return name, nil
}

func (i *Importer) submitUpload(ctx context.Context, sub Submission) (string, error) {
	path, err := spool(sub.Upload.Body)
	if path != "" {
		defer func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				slog.Warn("removing temporary file", "path", path, "error", err)
			}
		}()
	}
	if err != nil {
		return "", err
	}
	slog.Debug("spooled upload", "filename", sub.Upload.Filename, "path", path)

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("reopening upload: %w", err)
	}
	defer f.Close()

	upload := &Upload{Filename: sub.Upload.Filename, Body: f}
	return i.Import(ctx, LocalFile{Path: path}, sub.Overrides, upload)
}

// spool copies r into a new temporary file and returns its path. The path
// is returned even on error so that the caller can remove the file.
func spool(r io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "ddimport-*.xml")
	if err != nil {
		return "", fmt.Errorf("creating temporary file: %w", err)
	}
	path := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return path, fmt.Errorf("writing temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return path, fmt.Errorf("closing temporary file: %w", err)
	}
	return path, nil
}
