package importer

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/ddimport/enrich"
)

func assertNoSpooledFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary files left behind")
}

func TestSubmitUpload(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	reg := newMemRegistry()
	imp := newTestImporter(t, Config{}, reg, nil)

	name, err := imp.Submit(context.Background(), Submission{
		Upload:    &Upload{Filename: "study.xml", Body: strings.NewReader(studyXML)},
		Overrides: &enrich.Overrides{OwnerOrg: strPtr("unhcr"), Visibility: strPtr("public")},
		RDFUpload: &Upload{Filename: "study.rdf", Body: strings.NewReader("<rdf:RDF/>")},
		User:      "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "ken-2019-hhs", name)

	ds, found, err := reg.Find(context.Background(), name)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "unhcr", ds.OwnerOrg)
	assert.Equal(t, "alice", ds.CreatorUser)
	assert.Equal(t, enrich.ArchivedFalse, ds.Archived)

	attached := reg.attached[name]
	require.Len(t, attached, 2)
	assert.Equal(t, DDIResourceName, attached[0].resource.Name)
	assert.Equal(t, studyXML, attached[0].content)
	assert.Equal(t, "public", attached[0].resource.Visibility)
	assert.Equal(t, RDFResourceName, attached[1].resource.Name)
	assert.Equal(t, "rdf", attached[1].resource.Format)
	assert.Equal(t, "<rdf:RDF/>", attached[1].content)

	assertNoSpooledFiles(t, tmp)
}

func TestSubmitURLWithRDFLink(t *testing.T) {
	url := "http://microdata.example.org/index.php/catalog/ddi/42"
	reg := newMemRegistry()
	imp := newTestImporter(t, Config{}, reg, &stubFetcher{body: map[string]string{url: studyXML}})

	name, err := imp.Submit(context.Background(), Submission{
		URL:    url,
		RDFURL: "http://microdata.example.org/index.php/catalog/rdf/42",
	})
	require.NoError(t, err)

	attached := reg.attached[name]
	require.Len(t, attached, 1)
	assert.Equal(t, RDFResourceName, attached[0].resource.Name)
	assert.Equal(t, "http://microdata.example.org/index.php/catalog/rdf/42", attached[0].resource.URL)
	assert.Empty(t, attached[0].content)
}

func TestSubmitErrors(t *testing.T) {
	t.Run("no source", func(t *testing.T) {
		imp := newTestImporter(t, Config{}, newMemRegistry(), nil)
		_, err := imp.Submit(context.Background(), Submission{RDFURL: "http://example.org/x.rdf"})
		assert.ErrorIs(t, err, ErrNoSource)
	})

	t.Run("parse failure removes temporary file", func(t *testing.T) {
		tmp := t.TempDir()
		t.Setenv("TMPDIR", tmp)

		imp := newTestImporter(t, Config{}, newMemRegistry(), nil)
		_, err := imp.Submit(context.Background(), Submission{
			Upload: &Upload{Filename: "notes.txt", Body: strings.NewReader("not xml")},
		})

		var importErr *ContentImportError
		require.True(t, errors.As(err, &importErr), "error = %v", err)
		assertNoSpooledFiles(t, tmp)
	})

	t.Run("rdf failure is an upload error", func(t *testing.T) {
		reg := newMemRegistry()
		imp := newTestImporter(t, Config{}, reg, nil)

		tmp := t.TempDir()
		t.Setenv("TMPDIR", tmp)

		sub := Submission{
			Upload:    &Upload{Filename: "study.xml", Body: strings.NewReader(studyXML)},
			RDFUpload: &Upload{Filename: "study.rdf", Body: &failingReader{}},
		}
		name, err := imp.Submit(context.Background(), sub)

		var upErr *UploadError
		require.True(t, errors.As(err, &upErr), "error = %v", err)
		assert.Equal(t, RDFResourceName, upErr.Resource)
		assert.Equal(t, "ken-2019-hhs", name)
		assertNoSpooledFiles(t, tmp)
	})

	t.Run("duplicate skips rdf", func(t *testing.T) {
		reg := newMemRegistry()
		imp := newTestImporter(t, Config{}, reg, nil)
		ctx := context.Background()

		_, err := imp.Import(ctx, LocalFile{Content: []byte(studyXML)}, nil, nil)
		require.NoError(t, err)

		_, err = imp.Submit(ctx, Submission{
			Upload:    &Upload{Filename: "study.xml", Body: strings.NewReader(studyXML)},
			RDFUpload: &Upload{Filename: "study.rdf", Body: strings.NewReader("<rdf:RDF/>")},
		})
		var dup *ContentDuplicateError
		require.True(t, errors.As(err, &dup), "error = %v", err)
		assert.Empty(t, reg.attached)
	})
}

// failingReader fails every read.
type failingReader struct{}

func (f *failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}
