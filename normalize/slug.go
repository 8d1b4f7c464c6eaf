package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug length limits enforced by the catalogue.
const (
	MinSlugLength = 2
	MaxSlugLength = 100

	// FallbackSlug is used when nothing usable survives munging.
	FallbackSlug = "dataset"
)

// titleSlugLength leaves room for a numeric suffix added on name collisions.
const titleSlugLength = MaxSlugLength - 5

var (
	stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	separators   = regexp.MustCompile(`[ .:/]`)
	disallowed   = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)
	hyphenRuns   = regexp.MustCompile(`-+`)
	trailingYear = regexp.MustCompile(`^.*?[_-]((?:\d{2,4}[-/])?\d{2,4})$`)
)

// Slugify derives a URL-safe dataset name. The metadata name is used when
// present, otherwise the title. The result is lowercase, contains no
// underscores and is never empty.
func Slugify(name, title string) string {
	if strings.TrimSpace(name) != "" {
		return SlugFromName(name)
	}
	return SlugFromTitle(title)
}

// SlugFromName munges an identifier-like name.
func SlugFromName(name string) string {
	s := munge(name)
	s = strings.ReplaceAll(s, "_", "-")
	return fitLength(s)
}

// SlugFromTitle munges free text. Repeated hyphens are collapsed, leading
// and trailing hyphens removed, and long titles are cut while keeping a
// trailing year such as "-2019" or "-2018-19".
func SlugFromTitle(title string) string {
	s := munge(title)
	s = strings.ReplaceAll(s, "_", "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > titleSlugLength {
		if m := trailingYear.FindStringSubmatch(s); m != nil {
			year := m[1]
			s = strings.TrimRight(s[:titleSlugLength-len(year)-1], "-") + "-" + year
		} else {
			s = strings.TrimRight(s[:titleSlugLength], "-")
		}
	}
	return fitLength(s)
}

// ToASCII strips diacritics, e.g. "Côte d'Ivoire" becomes "Cote d'Ivoire".
func ToASCII(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		return s
	}
	return out
}

func munge(s string) string {
	s = ToASCII(strings.TrimSpace(s))
	s = separators.ReplaceAllString(s, "-")
	s = disallowed.ReplaceAllString(s, "")
	return strings.ToLower(s)
}

func fitLength(s string) string {
	if s == "" || strings.Trim(s, "-") == "" {
		return FallbackSlug
	}
	if len(s) < MinSlugLength {
		s += strings.Repeat("-", MinSlugLength-len(s))
	}
	if len(s) > MaxSlugLength {
		s = s[:MaxSlugLength]
	}
	return s
}
