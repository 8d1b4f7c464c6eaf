// Package importer turns DDI documents into catalogue datasets: it parses
// local or remote documents, enriches the parsed fields and applies the
// duplicate/override policy when persisting.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/ddimport/catalog"
	"github.com/lehigh-university-libraries/ddimport/enrich"
	"github.com/lehigh-university-libraries/ddimport/fetch"
	"github.com/lehigh-university-libraries/ddimport/format"
	"github.com/lehigh-university-libraries/ddimport/record"
)

// Resource defaults for attachments created by an import.
const (
	DefaultVisibility  = "restricted"
	ResourceType       = "attachment"
	ResourceFileType   = "other"
	DDIResourceName    = "DDI XML"
	NADAResourceName   = "NADA catalog entry"
	RDFResourceName    = "DDI RDF"
	nadaCatalogSegment = "/index.php/catalog/ddi/"
)

// Config is the import policy.
type Config struct {
	// AllowDuplicates creates a second dataset under a fresh name when the
	// derived name is taken.
	AllowDuplicates bool

	// OverrideDatasets merges a re-imported document into the existing
	// dataset. Takes precedence over AllowDuplicates.
	OverrideDatasets bool

	// MarkdownNotes converts HTML abstracts to Markdown while parsing.
	MarkdownNotes bool
}

// Source is where a document comes from: a LocalFile or a RemoteURL.
type Source interface {
	sourceName() string
}

// LocalFile is a document on disk, or already in memory when Content is set.
type LocalFile struct {
	Path    string
	Content []byte
}

func (f LocalFile) sourceName() string { return f.Path }

// RemoteURL is a document fetched over HTTP.
type RemoteURL struct {
	URL string
}

func (u RemoteURL) sourceName() string { return u.URL }

// Upload is a file to store on the dataset as its DDI XML resource.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Importer runs imports against a catalogue.
type Importer struct {
	cfg      Config
	parser   format.Parser
	fetcher  fetch.Fetcher
	registry catalog.Registry
	enricher *enrich.Enricher
	user     string
}

// New creates an importer. The fetcher may be nil when only local files
// are imported.
func New(cfg Config, parser format.Parser, fetcher fetch.Fetcher, registry catalog.Registry, enricher *enrich.Enricher) *Importer {
	return &Importer{
		cfg:      cfg,
		parser:   parser,
		fetcher:  fetcher,
		registry: registry,
		enricher: enricher,
	}
}

// WithUser returns a copy of the importer that records user as the
// creator of new datasets.
func (i *Importer) WithUser(user string) *Importer {
	c := *i
	c.user = user
	return &c
}

// Import parses, enriches and persists one document, returning the name
// of the stored dataset. On an *UploadError the name is returned too.
func (i *Importer) Import(ctx context.Context, src Source, overrides *enrich.Overrides, upload *Upload) (string, error) {
	var raw record.RawFields

	switch s := src.(type) {
	case LocalFile:
		data := s.Content
		if data == nil {
			var err error
			data, err = os.ReadFile(s.Path)
			if err != nil {
				return "", &ContentImportError{Err: fmt.Errorf("reading %s: %w", s.Path, err)}
			}
		}
		parsed, err := i.parse(data, s.Path)
		if err != nil {
			return "", &ContentImportError{Err: err}
		}
		raw = parsed

	case RemoteURL:
		parsed, err := i.importURL(ctx, s.URL, overrides)
		if err != nil {
			return "", err
		}
		raw = parsed

	default:
		return "", ErrNoSource
	}

	ds := i.enricher.Enrich(raw, overrides)
	slog.Debug("enriched dataset", "name", ds.Name, "source", src.sourceName())

	name, err := i.Persist(ctx, ds, upload)
	if err == nil {
		return name, nil
	}

	var verrs record.ValidationErrors
	var dup *ContentDuplicateError
	var upErr *UploadError
	switch {
	case errors.As(err, &verrs), errors.As(err, &dup):
		return "", err
	case errors.As(err, &upErr):
		return name, err
	}
	return "", &ContentImportError{Name: ds.Name, Err: err}
}

func (i *Importer) importURL(ctx context.Context, url string, overrides *enrich.Overrides) (record.RawFields, error) {
	if i.fetcher == nil {
		return nil, &ContentFetchError{URL: url, Err: errors.New("no fetcher configured")}
	}

	slog.Debug("fetching file", "url", url)
	data, err := i.fetcher.Get(ctx, url)
	if err != nil {
		return nil, &ContentFetchError{URL: url, Err: err}
	}

	raw, err := i.parse(data, url)
	if err != nil {
		return nil, &ContentImportError{Err: err}
	}

	visibility := overrides.VisibilityOr(DefaultVisibility)
	var resources []record.Resource

	// NADA catalogues serve the study page next to its DDI export.
	if strings.Contains(url, nadaCatalogSegment) {
		catalogURL := strings.Replace(url, "/ddi/", "/", 1)
		if !raw.Has(record.FieldURL) {
			raw[record.FieldURL] = catalogURL
		}
		resources = append(resources, attachment(catalogURL, NADAResourceName, "html", visibility))
	}

	if !raw.Has(record.FieldURL) {
		raw[record.FieldURL] = url
	}
	resources = append(resources, attachment(url, DDIResourceName, "xml", visibility))
	raw["resources"] = resources

	return raw, nil
}

func (i *Importer) parse(data []byte, sourceName string) (record.RawFields, error) {
	opts := format.NewParseOptions()
	opts.MarkdownNotes = i.cfg.MarkdownNotes
	opts.SourceName = sourceName
	return i.parser.Parse(bytes.NewReader(data), opts)
}

func attachment(url, name, fileFormat, visibility string) record.Resource {
	return record.Resource{
		URL:        url,
		Name:       name,
		Format:     fileFormat,
		Type:       ResourceType,
		FileType:   ResourceFileType,
		Visibility: visibility,
	}
}
