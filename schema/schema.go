// Package schema provides dataset schema definitions: the fields a catalogue
// dataset type carries and the controlled vocabularies (choices) of its
// categorical fields.
package schema

import (
	"fmt"
)

// Choice is one allowed value of a categorical field.
type Choice struct {
	// Value is the stored value; unique within a field
	Value string `yaml:"value" json:"value"`

	// Label is the human-readable name
	Label string `yaml:"label" json:"label"`
}

// Field describes a field in a dataset schema.
type Field struct {
	// Name is the field machine name (e.g., "keywords")
	Name string `yaml:"field_name" json:"field_name"`

	// Label is the human-readable name
	Label string `yaml:"label,omitempty" json:"label,omitempty"`

	// Required indicates if the field must have a value
	Required bool `yaml:"required,omitempty" json:"required,omitempty"`

	// Multiple indicates the field holds a list of values
	Multiple bool `yaml:"multiple,omitempty" json:"multiple,omitempty"`

	// Choices is the controlled vocabulary, empty for free-text fields
	Choices []Choice `yaml:"choices,omitempty" json:"choices,omitempty"`

	// Description provides documentation
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// HasChoices reports whether the field is restricted to a vocabulary.
func (f Field) HasChoices() bool {
	return len(f.Choices) > 0
}

// Allows reports whether value is one of the field's choice values.
func (f Field) Allows(value string) bool {
	for _, c := range f.Choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

// Schema describes a dataset type.
type Schema struct {
	// DatasetType is the type name (e.g., "dataset")
	DatasetType string `yaml:"dataset_type" json:"dataset_type"`

	// About provides documentation
	About string `yaml:"about,omitempty" json:"about,omitempty"`

	// DatasetFields defines the dataset-level fields
	DatasetFields []Field `yaml:"dataset_fields" json:"dataset_fields"`

	// ResourceFields defines the resource-level fields
	ResourceFields []Field `yaml:"resource_fields,omitempty" json:"resource_fields,omitempty"`

	// fieldIndex is built lazily for fast lookups
	fieldIndex map[string]*Field
}

// GetField returns a dataset field by name.
func (s *Schema) GetField(name string) (*Field, bool) {
	s.buildIndex()
	f, ok := s.fieldIndex[name]
	return f, ok
}

// FieldNames returns all dataset field names.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.DatasetFields))
	for i, f := range s.DatasetFields {
		names[i] = f.Name
	}
	return names
}

// ChoiceFields returns the dataset fields restricted to a vocabulary.
func (s *Schema) ChoiceFields() []Field {
	var result []Field
	for _, f := range s.DatasetFields {
		if f.HasChoices() {
			result = append(result, f)
		}
	}
	return result
}

func (s *Schema) buildIndex() {
	if s.fieldIndex != nil {
		return
	}
	s.fieldIndex = make(map[string]*Field, len(s.DatasetFields))
	for i := range s.DatasetFields {
		s.fieldIndex[s.DatasetFields[i].Name] = &s.DatasetFields[i]
	}
}

// check verifies the schema is usable: a dataset type, named fields and
// unique choice values per field.
func (s *Schema) check() error {
	if s.DatasetType == "" {
		return fmt.Errorf("schema has no dataset_type")
	}
	seenFields := make(map[string]bool, len(s.DatasetFields))
	for _, f := range s.DatasetFields {
		if f.Name == "" {
			return fmt.Errorf("schema %s: field without field_name", s.DatasetType)
		}
		if seenFields[f.Name] {
			return fmt.Errorf("schema %s: duplicate field %q", s.DatasetType, f.Name)
		}
		seenFields[f.Name] = true

		seen := make(map[string]bool, len(f.Choices))
		for _, c := range f.Choices {
			if seen[c.Value] {
				return fmt.Errorf("schema %s: field %q has duplicate choice value %q", s.DatasetType, f.Name, c.Value)
			}
			seen[c.Value] = true
		}
	}
	return nil
}
