package normalize

import (
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/ddimport/record"
	"github.com/lehigh-university-libraries/ddimport/schema"
)

var keywordChoices = []schema.Choice{
	{Value: "1", Label: "Basic Needs"},
	{Value: "3", Label: "Education"},
	{Value: "11", Label: "Health"},
}

var techniqueChoices = []schema.Choice{
	{Value: "f2f", Label: "Face-to-face interview"},
	{Value: "capi", Label: "Computer Assisted Personal Interview"},
	{Value: "oth", Label: "Other"},
}

func TestResolveKeywords(t *testing.T) {
	tests := []struct {
		name    string
		entries []record.Entry
		allowed []schema.Choice
		want    []string
	}{
		{
			name:    "label match ignores case",
			entries: []record.Entry{{Value: "health"}},
			allowed: keywordChoices,
			want:    []string{"11"},
		},
		{
			name:    "abbreviation matches value",
			entries: []record.Entry{{Abbr: "3", Value: "Schooling"}},
			allowed: keywordChoices,
			want:    []string{"3"},
		},
		{
			name:    "unmatched keeps raw value",
			entries: []record.Entry{{Value: "Unknown Topic"}, {Value: "Health"}},
			allowed: keywordChoices,
			want:    []string{"Unknown Topic", "11"},
		},
		{
			name:    "empty vocabulary passes through",
			entries: []record.Entry{{Abbr: "x", Value: "Health"}},
			allowed: nil,
			want:    []string{"Health"},
		},
		{
			name:    "empty abbreviation does not match empty value",
			entries: []record.Entry{{Value: "Water"}},
			allowed: []schema.Choice{{Value: "", Label: "Nothing"}},
			want:    []string{"Water"},
		},
		{
			name:    "empty input",
			entries: nil,
			allowed: keywordChoices,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveKeywords(tt.entries, tt.allowed)
			if len(got) != len(tt.want) {
				t.Fatalf("ResolveKeywords() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ResolveKeywords()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResolveDataCollectionTechnique(t *testing.T) {
	tests := []struct {
		raw     string
		allowed []schema.Choice
		want    string
	}{
		{raw: "Face-to-face [f2f]", allowed: techniqueChoices, want: "f2f"},
		{raw: "Computer Assisted [CAPI] round 2", allowed: techniqueChoices, want: "capi"},
		{raw: "face-to-face interview", allowed: techniqueChoices, want: "f2f"},
		{raw: "OTH", allowed: techniqueChoices, want: "oth"},
		{raw: "Carrier pigeon [cp]", allowed: techniqueChoices, want: "Carrier pigeon [cp]"},
		{raw: "Face-to-face [f2f]", allowed: nil, want: "Face-to-face [f2f]"},
		{raw: "[] nothing", allowed: []schema.Choice{{Value: "", Label: "blank"}}, want: "[] nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ResolveDataCollectionTechnique(tt.raw, tt.allowed)
			if got != tt.want {
				t.Errorf("ResolveDataCollectionTechnique(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractBracketCode(t *testing.T) {
	tests := map[string]string{
		"Face-to-face [f2f]": "f2f",
		"[capi] and [cati]":  "capi",
		"no code":            "",
		"unterminated [f2f":  "",
		"empty []":           "",
	}
	for in, want := range tests {
		if got := ExtractBracketCode(in); got != want {
			t.Errorf("ExtractBracketCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJoinDataCollectors(t *testing.T) {
	entries := []record.Entry{
		{Abbr: "UNHCR", Value: " UNHCR "},
		{Value: ""},
		{Value: "   "},
		{Abbr: "WFP", Value: "World Food Programme"},
	}
	got := JoinDataCollectors(entries)
	want := "UNHCR,World Food Programme"
	if got != want {
		t.Errorf("JoinDataCollectors() = %q, want %q", got, want)
	}
	if got := JoinDataCollectors(nil); got != "" {
		t.Errorf("JoinDataCollectors(nil) = %q, want empty", got)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name      string
		slugName  string
		slugTitle string
		want      string
	}{
		{name: "name with spaces", slugName: "My Name", want: "my-name"},
		{name: "title only", slugTitle: "My Title", want: "my-title"},
		{name: "name wins over title", slugName: "KEN_2019_HH", slugTitle: "Ignored", want: "ken-2019-hh"},
		{name: "name keeps repeated hyphens", slugName: "a  b", want: "a--b"},
		{name: "title collapses hyphens", slugTitle: "Survey -- Round: 2 / Final.", want: "survey-round-2-final"},
		{name: "accents transliterated", slugTitle: "Enquête Côte d'Ivoire", want: "enquete-cote-divoire"},
		{name: "underscores in title", slugTitle: "snake_case title", want: "snake-case-title"},
		{name: "blank name falls back to title", slugName: "   ", slugTitle: "Title", want: "title"},
		{name: "nothing usable", slugTitle: "!!!", want: FallbackSlug},
		{name: "both empty", want: FallbackSlug},
		{name: "single character padded", slugTitle: "X", want: "x-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.slugName, tt.slugTitle)
			if got != tt.want {
				t.Errorf("Slugify(%q, %q) = %q, want %q", tt.slugName, tt.slugTitle, got, tt.want)
			}
			if again := Slugify(tt.slugName, tt.slugTitle); again != got {
				t.Errorf("Slugify not deterministic: %q then %q", got, again)
			}
			if strings.Contains(got, "_") {
				t.Errorf("Slugify() = %q contains underscore", got)
			}
			if got != strings.ToLower(got) {
				t.Errorf("Slugify() = %q is not lowercase", got)
			}
			if len(got) < MinSlugLength || len(got) > MaxSlugLength {
				t.Errorf("len(Slugify()) = %d, want %d..%d", len(got), MinSlugLength, MaxSlugLength)
			}
		})
	}
}

func TestSlugFromTitleKeepsYear(t *testing.T) {
	title := strings.Repeat("word ", 30) + "2019"
	got := SlugFromTitle(title)
	if !strings.HasSuffix(got, "-2019") {
		t.Errorf("SlugFromTitle() = %q, want -2019 suffix", got)
	}
	if len(got) > titleSlugLength {
		t.Errorf("len(SlugFromTitle()) = %d, want <= %d", len(got), titleSlugLength)
	}
	if strings.Contains(got, "--") {
		t.Errorf("SlugFromTitle() = %q contains repeated hyphens", got)
	}

	ranged := SlugFromTitle(strings.Repeat("survey ", 20) + "2018-19")
	if !strings.HasSuffix(ranged, "-2018-19") {
		t.Errorf("SlugFromTitle() = %q, want -2018-19 suffix", ranged)
	}

	plain := SlugFromTitle(strings.Repeat("abcdefghij", 12))
	if len(plain) != titleSlugLength {
		t.Errorf("len(SlugFromTitle()) = %d, want %d", len(plain), titleSlugLength)
	}
}

func TestSlugFromNameTruncates(t *testing.T) {
	got := SlugFromName(strings.Repeat("n", 150))
	if len(got) != MaxSlugLength {
		t.Errorf("len(SlugFromName()) = %d, want %d", len(got), MaxSlugLength)
	}
}
