package ddi

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/lehigh-university-libraries/ddimport/format"
	"github.com/lehigh-university-libraries/ddimport/helpers"
	"github.com/lehigh-university-libraries/ddimport/record"
)

// Raw field names produced in addition to the record.Field* set.
const (
	FieldProductionDate     = "production_date"
	FieldProducer           = "producer"
	FieldVersion            = "version"
	FieldGeographicCoverage = "geographic_coverage"
	FieldUniverse           = "universe"
	FieldTimePeriod         = "time_period"
)

var (
	cdataPattern   = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	elementPattern = regexp.MustCompile(`<[A-Za-z][^>]*>`)
	partialDate    = regexp.MustCompile(`^\d{4}(-\d{2})?$`)
)

// Parse reads a DDI codebook and returns its study-level fields. Bare
// codebooks and codebooks wrapped in other elements (e.g. OAI-PMH
// responses) are both accepted; only the first codebook is read.
func (f *Format) Parse(r io.Reader, opts *format.ParseOptions) (record.RawFields, error) {
	if opts == nil {
		opts = format.NewParseOptions()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	cb, err := extractCodeBook(data)
	if err != nil {
		if opts.SourceName != "" {
			return nil, fmt.Errorf("%s: %w", opts.SourceName, err)
		}
		return nil, err
	}

	return codeBookToFields(cb, opts), nil
}

// extractCodeBook finds the first <codeBook> element in the XML.
func extractCodeBook(data []byte) (*xmlCodeBook, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "codeBook" {
			continue
		}

		var cb xmlCodeBook
		if err := decoder.DecodeElement(&cb, &start); err != nil {
			return nil, fmt.Errorf("decoding codeBook: %w", err)
		}
		return &cb, nil
	}

	return nil, fmt.Errorf("no DDI codeBook element found in input")
}

func codeBookToFields(cb *xmlCodeBook, opts *format.ParseOptions) record.RawFields {
	fields := record.RawFields{
		record.FieldName: strings.TrimSpace(cb.ID),
	}

	var study xmlStudyDesc
	if cb.StudyDesc != nil {
		study = *cb.StudyDesc
	}
	citation := study.Citation
	info := study.Info

	fields[record.FieldTitle] = helpers.NormalizeWhitespace(citation.TitleStmt.Title)
	fields[record.FieldAbbreviation] = helpers.NormalizeWhitespace(citation.TitleStmt.AltTitle)
	fields[record.FieldIDNumber] = firstText(citation.TitleStmt.IDNo)

	url := ""
	for _, h := range citation.Holdings {
		if uri := strings.TrimSpace(h.URI); uri != "" {
			url = uri
			break
		}
	}
	fields[record.FieldURL] = url

	abstracts := make([]string, 0, len(info.Abstract))
	for _, a := range info.Abstract {
		if text := richText(a, opts.MarkdownNotes); text != "" {
			abstracts = append(abstracts, text)
		}
	}
	fields[record.FieldAbstract] = strings.Join(abstracts, "\n\n")

	var keywords []record.Entry
	for _, k := range append(info.Subject.Keywords, info.Subject.Topics...) {
		value := helpers.NormalizeWhitespace(k.Text)
		if value == "" {
			continue
		}
		// @vocab names the vocabulary, not the term's code.
		keywords = append(keywords, record.Entry{Abbr: strings.TrimSpace(k.Abbr), Value: value})
	}
	fields[record.FieldKeywords] = keywords

	fields[record.FieldUnitOfAnalysis] = joinText(info.Summary.AnalysisUnit, ", ")

	var collectors []record.Entry
	for _, c := range study.Method.DataColl.Collectors {
		value := helpers.NormalizeWhitespace(c.Text)
		if value == "" {
			continue
		}
		collectors = append(collectors, record.Entry{Abbr: strings.TrimSpace(c.Abbr), Value: value})
	}
	fields[record.FieldDataCollector] = collectors

	fields[record.FieldDataCollectionTechnique] = firstText(study.Method.DataColl.CollModes)

	if len(citation.ProdStmt.ProdDate) > 0 {
		fields[FieldProductionDate] = normalizeDate(dateValue(citation.ProdStmt.ProdDate[0]))
	} else {
		fields[FieldProductionDate] = ""
	}
	fields[FieldProducer] = joinAbbrText(citation.ProdStmt.Producers)
	fields[FieldVersion] = firstText(citation.VersionStmt.Version)
	fields[FieldGeographicCoverage] = joinAbbrText(info.Summary.Nations)
	fields[FieldUniverse] = joinText(info.Summary.Universe, ", ")

	periods := make([]string, 0, len(info.Summary.TimePeriods))
	for _, p := range info.Summary.TimePeriods {
		if v := dateValue(p); v != "" {
			periods = append(periods, v)
		}
	}
	fields[FieldTimePeriod] = strings.Join(periods, " - ")

	return fields
}

// richText renders a mixed-content element. Embedded markup is used as
// HTML; otherwise the decoded text itself may carry escaped HTML.
func richText(t xmlRichText, markdown bool) string {
	inner := cdataPattern.ReplaceAllString(t.Inner, "$1")
	source := t.Text
	if elementPattern.MatchString(inner) {
		source = inner
	}
	if markdown {
		return helpers.ToMarkdown(source)
	}
	return helpers.StripHTML(source)
}

func dateValue(d xmlDate) string {
	if v := strings.TrimSpace(d.Date); v != "" {
		return v
	}
	return strings.TrimSpace(d.Text)
}

// normalizeDate renders full dates as YYYY-MM-DD. Years, year-months and
// values that do not parse are returned unchanged.
func normalizeDate(value string) string {
	if value == "" || partialDate.MatchString(value) {
		return value
	}
	t, err := dateparse.ParseStrict(value)
	if err != nil {
		return value
	}
	return t.Format("2006-01-02")
}

func firstText(values []string) string {
	for _, v := range values {
		if v = helpers.NormalizeWhitespace(v); v != "" {
			return v
		}
	}
	return ""
}

func joinText(values []string, sep string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = helpers.NormalizeWhitespace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}

func joinAbbrText(values []xmlAbbrText) string {
	texts := make([]string, len(values))
	for i, v := range values {
		texts[i] = v.Text
	}
	return joinText(texts, ", ")
}
