// Package enrich turns parsed metadata fields into a catalogue dataset
// candidate.
package enrich

import (
	"github.com/lehigh-university-libraries/ddimport/normalize"
	"github.com/lehigh-university-libraries/ddimport/record"
	"github.com/lehigh-university-libraries/ddimport/vocab"
)

// ArchivedFalse is stamped on datasets created through an interactive
// submission.
const ArchivedFalse = "False"

// Overrides are caller-supplied values that take precedence over the
// metadata document. Nil fields are not applied.
type Overrides struct {
	OwnerOrg            *string
	Private             *bool
	Visibility          *string
	LicenseID           *string
	ExternalAccessLevel *string
}

// VisibilityOr returns the visibility override or fallback when unset.
func (o *Overrides) VisibilityOr(fallback string) string {
	if o == nil || o.Visibility == nil || *o.Visibility == "" {
		return fallback
	}
	return *o.Visibility
}

// Enricher builds datasets from raw fields.
type Enricher struct {
	resolver       *vocab.Resolver
	defaultLicense string
}

// New creates an enricher. The resolver supplies the vocabularies used to
// normalize categorical fields; a nil resolver leaves them unchanged.
func New(resolver *vocab.Resolver, defaultLicense string) *Enricher {
	return &Enricher{resolver: resolver, defaultLicense: defaultLicense}
}

// consumed lists raw keys that map onto dedicated dataset fields.
var consumed = map[string]bool{
	record.FieldName:                    true,
	record.FieldTitle:                   true,
	record.FieldURL:                     true,
	record.FieldAbstract:                true,
	record.FieldKeywords:                true,
	record.FieldUnitOfAnalysis:          true,
	record.FieldDataCollector:           true,
	record.FieldDataCollectionTechnique: true,
	record.FieldIDNumber:                true,
	record.FieldAbbreviation:            true,
	"id":                                true,
	"resources":                         true,
}

// Enrich builds the dataset candidate. It never fails: values that do not
// match a vocabulary are kept verbatim for the catalogue to reject.
func (e *Enricher) Enrich(raw record.RawFields, overrides *Overrides) *record.Dataset {
	ds := &record.Dataset{
		Title: raw.String(record.FieldTitle),
	}

	ds.Name = normalize.Slugify(raw.String(record.FieldName), ds.Title)
	if raw.Has(record.FieldURL) {
		ds.URL = raw.String(record.FieldURL)
	}

	// DDI documents carry no catalogue identifier.
	ds.ID = ds.Name

	ds.LicenseID = e.defaultLicense
	ds.State = record.StateDraft

	if overrides != nil {
		if overrides.OwnerOrg != nil {
			ds.OwnerOrg = *overrides.OwnerOrg
		}
		if overrides.Private != nil {
			private := *overrides.Private
			ds.Private = &private
		}
		if overrides.Visibility != nil {
			ds.Visibility = *overrides.Visibility
		}
		if overrides.LicenseID != nil {
			ds.LicenseID = *overrides.LicenseID
		}
		if overrides.ExternalAccessLevel != nil {
			ds.ExternalAccessLevel = *overrides.ExternalAccessLevel
		}
		ds.Archived = ArchivedFalse
	}

	if raw.Has(record.FieldKeywords) {
		ds.Keywords = normalize.ResolveKeywords(raw.Entries(record.FieldKeywords), e.resolver.AllowedValues("keywords"))
	}
	if raw.Has(record.FieldUnitOfAnalysis) {
		ds.UnitOfMeasurement = raw.String(record.FieldUnitOfAnalysis)
	}
	if raw.Has(record.FieldDataCollector) {
		ds.DataCollector = normalize.JoinDataCollectors(raw.Entries(record.FieldDataCollector))
	}
	if raw.Has(record.FieldDataCollectionTechnique) {
		ds.DataCollectionTechnique = normalize.ResolveDataCollectionTechnique(
			raw.String(record.FieldDataCollectionTechnique),
			e.resolver.AllowedValues("data_collection_technique"),
		)
	}
	if raw.Has(record.FieldIDNumber) {
		ds.OriginalID = raw.String(record.FieldIDNumber)
	}
	if raw.Has(record.FieldAbstract) {
		ds.Notes = raw.String(record.FieldAbstract)
	}
	if raw.Has(record.FieldAbbreviation) {
		ds.ShortTitle = raw.String(record.FieldAbbreviation)
	}

	ds.Resources = resources(raw)
	ds.DDI = true

	for k, v := range raw {
		if consumed[k] || !raw.Has(k) {
			continue
		}
		ds.SetExtra(k, v)
	}

	return ds
}

func resources(raw record.RawFields) []record.Resource {
	if v, ok := raw["resources"].([]record.Resource); ok {
		return append([]record.Resource(nil), v...)
	}
	return nil
}
