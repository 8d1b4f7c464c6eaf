// Package ddi provides a format plugin for DDI Codebook metadata, the XML
// study descriptions published by NADA survey catalogues.
package ddi

import (
	"bytes"

	"github.com/lehigh-university-libraries/ddimport/format"
)

// Version documents the DDI Codebook release this implementation targets.
const Version = "2.5"

// Format implements the DDI Codebook format.
type Format struct{}

var (
	_ format.Format = (*Format)(nil)
	_ format.Parser = (*Format)(nil)
)

// Name returns the format identifier.
func (f *Format) Name() string {
	return "ddi"
}

// Description returns a human-readable format description.
func (f *Format) Description() string {
	return "DDI Codebook (v" + Version + ")"
}

// Extensions returns file extensions associated with this format.
func (f *Format) Extensions() []string {
	return []string{"xml"}
}

// CanParse returns true if the input looks like a DDI codebook.
func (f *Format) CanParse(peek []byte) bool {
	peek = bytes.TrimSpace(peek)
	if len(peek) == 0 || peek[0] != '<' {
		return false
	}

	patterns := [][]byte{
		[]byte("ddialliance.org/Specification/DDI-Codebook"),
		[]byte("icpsr.umich.edu/DDI"),
		[]byte("<codeBook"),
		[]byte(":codeBook"),
	}
	for _, pattern := range patterns {
		if bytes.Contains(peek, pattern) {
			return true
		}
	}
	return false
}

func init() {
	format.Register(&Format{})
}
