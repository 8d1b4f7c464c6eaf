// Package normalize maps raw metadata values onto the canonical values a
// catalogue dataset carries. All functions are pure.
package normalize

import (
	"regexp"
	"strings"

	"github.com/lehigh-university-libraries/ddimport/record"
	"github.com/lehigh-university-libraries/ddimport/schema"
)

// bracketCode finds the first "[...]" token, e.g. "Face-to-face [f2f]".
var bracketCode = regexp.MustCompile(`\[(.*?)\]`)

// ResolveKeywords maps each entry onto an allowed choice value. An entry
// matches a choice when its abbreviation equals the choice value or its
// value equals the choice label, ignoring case. Unmatched entries keep
// their raw value so that catalogue validation can report them.
func ResolveKeywords(entries []record.Entry, allowed []schema.Choice) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, resolveKeyword(e, allowed))
	}
	return out
}

func resolveKeyword(e record.Entry, allowed []schema.Choice) string {
	for _, c := range allowed {
		if equalNonEmpty(e.Abbr, c.Value) || equalNonEmpty(e.Value, c.Label) {
			return c.Value
		}
	}
	return e.Value
}

// ResolveDataCollectionTechnique maps a technique description onto an
// allowed choice value. The raw text may equal a label or value, or carry
// the value as a bracketed code such as "Computer Assisted [capi]".
func ResolveDataCollectionTechnique(raw string, allowed []schema.Choice) string {
	code := ExtractBracketCode(raw)
	for _, c := range allowed {
		if equalNonEmpty(raw, c.Label) || equalNonEmpty(raw, c.Value) || equalNonEmpty(code, c.Value) {
			return c.Value
		}
	}
	return raw
}

// ExtractBracketCode returns the content of the first bracketed token in s,
// or "" when there is none.
func ExtractBracketCode(s string) string {
	m := bracketCode.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// JoinDataCollectors flattens collector entries into a comma-separated
// string of their trimmed values.
func JoinDataCollectors(entries []record.Entry) string {
	values := make([]string, 0, len(entries))
	for _, e := range entries {
		v := strings.TrimSpace(e.Value)
		if v != "" {
			values = append(values, v)
		}
	}
	return strings.Join(values, ",")
}

func equalNonEmpty(a, b string) bool {
	return a != "" && b != "" && strings.EqualFold(a, b)
}
