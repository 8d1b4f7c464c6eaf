// Package record defines the data model shared by parsers, the enricher,
// the import pipeline and the catalogue.
package record

import (
	"fmt"
	"strings"
)

// Raw field names a parser is expected to supply.
const (
	FieldName                    = "name"
	FieldTitle                   = "title"
	FieldURL                     = "url"
	FieldAbstract                = "abstract"
	FieldKeywords                = "keywords"
	FieldUnitOfAnalysis          = "unit_of_analysis"
	FieldDataCollector           = "data_collector"
	FieldDataCollectionTechnique = "data_collection_technique"
	FieldIDNumber                = "id_number"
	FieldAbbreviation            = "abbreviation"
)

// Entry is one element of a list-valued raw field such as keywords or
// data collectors.
type Entry struct {
	Abbr  string `json:"abbr,omitempty" yaml:"abbr,omitempty"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Value string `json:"value" yaml:"value"`
}

// RawFields is the flat dictionary a parser produces from a metadata
// document. Values are strings (empty means absent), []Entry for list
// fields, or other scalars that are passed through untouched.
type RawFields map[string]any

// Has reports whether the key is present with a non-empty value.
func (f RawFields) Has(key string) bool {
	v, ok := f[key]
	if !ok || v == nil {
		return false
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) != ""
	case []Entry:
		return len(val) > 0
	case []string:
		return len(val) > 0
	case []any:
		return len(val) > 0
	}
	return true
}

// String returns the value for key as a string. Missing keys yield "".
func (f RawFields) String(key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []Entry:
		values := make([]string, 0, len(val))
		for _, e := range val {
			values = append(values, e.Value)
		}
		return strings.Join(values, ", ")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Entries returns the value for key as a list of entries. A plain string
// value becomes a single entry.
func (f RawFields) Entries(key string) []Entry {
	v, ok := f[key]
	if !ok || v == nil {
		return nil
	}
	switch val := v.(type) {
	case []Entry:
		return val
	case []string:
		out := make([]Entry, 0, len(val))
		for _, s := range val {
			out = append(out, Entry{Value: s})
		}
		return out
	case []any:
		out := make([]Entry, 0, len(val))
		for _, item := range val {
			switch e := item.(type) {
			case Entry:
				out = append(out, e)
			case string:
				out = append(out, Entry{Value: e})
			case map[string]any:
				out = append(out, Entry{
					Abbr:  stringFrom(e["abbr"]),
					Label: stringFrom(e["label"]),
					Value: stringFrom(e["value"]),
				})
			}
		}
		return out
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []Entry{{Value: val}}
	}
	return nil
}

func stringFrom(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
