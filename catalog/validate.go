package catalog

import (
	"fmt"
	"regexp"

	"github.com/lehigh-university-libraries/ddimport/record"
	"github.com/lehigh-university-libraries/ddimport/schema"
)

var namePattern = regexp.MustCompile(`^[a-z0-9_-]{2,100}$`)

// Validate checks a dataset against the built-in rules and the configured
// schema. An empty result means the dataset is valid.
func (s *SQLiteStore) Validate(ds *record.Dataset) record.ValidationErrors {
	var errs record.ValidationErrors

	if ds.Title == "" {
		errs = append(errs, record.ValidationError{Field: "title", Code: "required", Message: "Missing value"})
	}
	switch {
	case ds.Name == "":
		errs = append(errs, record.ValidationError{Field: "name", Code: "required", Message: "Missing value"})
	case !namePattern.MatchString(ds.Name):
		errs = append(errs, record.ValidationError{
			Field:   "name",
			Code:    "invalid_name",
			Message: "Must be 2-100 lowercase alphanumeric (ascii) characters and these symbols: -_",
		})
	}

	if s.schema == nil {
		return errs
	}
	fields, ok := s.schema.DatasetFields(s.datasetType)
	if !ok {
		return errs
	}

	values := ds.ToMap()
	for _, f := range fields {
		if f.Name == "title" || f.Name == "name" {
			continue
		}
		v := values[f.Name]
		if f.Required && isEmpty(v) {
			errs = append(errs, record.ValidationError{Field: f.Name, Code: "required", Message: "Missing value"})
			continue
		}
		if f.HasChoices() {
			errs = append(errs, checkChoices(f, v)...)
		}
	}
	return errs
}

func checkChoices(f schema.Field, v any) []record.ValidationError {
	var values []string
	switch val := v.(type) {
	case string:
		values = []string{val}
	case []any:
		for _, item := range val {
			values = append(values, fmt.Sprint(item))
		}
	case bool:
		values = []string{fmt.Sprint(val)}
	}

	var errs []record.ValidationError
	for _, value := range values {
		if value == "" || f.Allows(value) {
			continue
		}
		errs = append(errs, record.ValidationError{
			Field:   f.Name,
			Code:    "invalid_choice",
			Message: fmt.Sprintf("value %q is not allowed", value),
		})
	}
	return errs
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	}
	return false
}
