// Package vocab resolves the controlled vocabulary of a dataset field from
// the configured schema.
package vocab

import (
	"log/slog"

	"github.com/lehigh-university-libraries/ddimport/schema"
)

// DefaultDatasetType is the dataset type used when none is configured.
const DefaultDatasetType = "dataset"

// Resolver looks up allowed values for dataset fields.
type Resolver struct {
	provider    schema.Provider
	datasetType string
}

// NewResolver creates a resolver for a dataset type. A nil provider yields
// a resolver that imposes no constraints.
func NewResolver(provider schema.Provider, datasetType string) *Resolver {
	if datasetType == "" {
		datasetType = DefaultDatasetType
	}
	return &Resolver{provider: provider, datasetType: datasetType}
}

// DatasetType returns the dataset type the resolver reads from.
func (r *Resolver) DatasetType() string {
	return r.datasetType
}

// AllowedValues returns the choices of a field. An empty result means the
// field is unconstrained and values pass through unchanged.
func (r *Resolver) AllowedValues(fieldName string) []schema.Choice {
	if r == nil || r.provider == nil {
		return []schema.Choice{}
	}

	fields, ok := r.provider.DatasetFields(r.datasetType)
	if !ok {
		slog.Debug("no schema for dataset type", "type", r.datasetType)
		return []schema.Choice{}
	}

	for _, f := range fields {
		if f.Name != fieldName {
			continue
		}
		out := make([]schema.Choice, len(f.Choices))
		copy(out, f.Choices)
		return out
	}

	slog.Debug("field not in schema", "type", r.datasetType, "field", fieldName)
	return []schema.Choice{}
}
