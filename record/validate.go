package record

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a single field-level validation failure.
type ValidationError struct {
	Field   string // Field name (e.g., "keywords")
	Code    string // Error code (e.g., "required", "invalid_choice")
	Message string // Human-readable message
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned by the catalogue when a dataset violates the
// schema. Callers surface it field by field rather than as a system failure.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// Fields groups the messages by field name.
func (e ValidationErrors) Fields() map[string][]string {
	out := make(map[string][]string)
	for _, v := range e {
		out[v.Field] = append(out[v.Field], v.Message)
	}
	return out
}

// Summary returns one line per field, sorted by field name.
func (e ValidationErrors) Summary() []string {
	fields := e.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %s", name, strings.Join(fields[name], ", ")))
	}
	return lines
}
