// Package format defines the interface for metadata format plugins.
package format

import (
	"io"

	"github.com/lehigh-university-libraries/ddimport/record"
)

// Format defines the interface that all format plugins must implement.
type Format interface {
	// Name returns the format identifier (e.g., "ddi")
	Name() string

	// Description returns a human-readable format description
	Description() string

	// Extensions returns file extensions associated with this format
	Extensions() []string

	// CanParse returns true if this format can parse the given input
	CanParse(peek []byte) bool
}

// Parser is a format that can read a metadata document into raw fields.
type Parser interface {
	Format

	// Parse reads one metadata document and returns its flat field set.
	Parse(r io.Reader, opts *ParseOptions) (record.RawFields, error)
}

// ParseOptions contains options for parsing.
type ParseOptions struct {
	// MarkdownNotes converts HTML markup in long text fields to Markdown.
	// When false, markup is stripped to plain text.
	MarkdownNotes bool

	// SourceName is an identifier for the source (for error messages)
	SourceName string
}

// NewParseOptions creates ParseOptions with defaults.
func NewParseOptions() *ParseOptions {
	return &ParseOptions{
		MarkdownNotes: true,
	}
}
