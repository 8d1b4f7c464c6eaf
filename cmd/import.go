package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/ddimport/enrich"
	"github.com/lehigh-university-libraries/ddimport/importer"
)

var (
	importFile                string
	importURL                 string
	importRDFFile             string
	importRDFURL              string
	importUser                string
	importOwnerOrg            string
	importVisibility          string
	importLicense             string
	importExternalAccessLevel string
	importPrivate             bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a DDI document as a dataset",
	Long: `Import a DDI Codebook XML document into the catalogue.

The document is read from --file, or fetched from --url. When the URL points
at a NADA catalogue entry, the dataset also links back to the portal. An RDF
description of the study can be attached with --rdf-file or --rdf-url.

Examples:
  ddimport import --file study.xml --owner-org unhcr-kenya --visibility public
  ddimport import --url https://microdata.example.org/index.php/catalog/ddi/42
  ddimport import --file study.xml --rdf-file study.rdf --user alice`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "DDI XML file to import")
	importCmd.Flags().StringVarP(&importURL, "url", "u", "", "URL of a DDI XML document")
	importCmd.Flags().StringVar(&importRDFFile, "rdf-file", "", "RDF file to attach")
	importCmd.Flags().StringVar(&importRDFURL, "rdf-url", "", "RDF URL to link")
	importCmd.Flags().StringVar(&importUser, "user", "", "User recorded as the dataset creator")
	importCmd.Flags().StringVar(&importOwnerOrg, "owner-org", "", "Owning organization")
	importCmd.Flags().StringVar(&importVisibility, "visibility", "", "Visibility of attached resources (default: restricted)")
	importCmd.Flags().StringVar(&importLicense, "license", "", "License ID")
	importCmd.Flags().StringVar(&importExternalAccessLevel, "external-access-level", "", "External access level")
	importCmd.Flags().BoolVar(&importPrivate, "private", false, "Mark the dataset private")
	importCmd.MarkFlagsMutuallyExclusive("file", "url")
	importCmd.MarkFlagsMutuallyExclusive("rdf-file", "rdf-url")
}

func runImport(cmd *cobra.Command, args []string) (err error) {
	if importFile == "" && importURL == "" {
		return importer.ErrNoSource
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	schemas, err := loadSchemas(cfg)
	if err != nil {
		return err
	}
	store, err := openCatalog(cfg, schemas)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing catalog: %w", cerr)
		}
	}()

	imp, err := newImporter(cfg, schemas, store)
	if err != nil {
		return err
	}

	sub := importer.Submission{
		URL:       importURL,
		RDFURL:    importRDFURL,
		User:      importUser,
		Overrides: overridesFromFlags(cmd),
	}

	if importFile != "" {
		f, openErr := os.Open(importFile)
		if openErr != nil {
			return fmt.Errorf("opening input file: %w", openErr)
		}
		defer f.Close()
		sub.Upload = &importer.Upload{Filename: filepath.Base(importFile), Body: f}
	}
	if importRDFFile != "" {
		f, openErr := os.Open(importRDFFile)
		if openErr != nil {
			return fmt.Errorf("opening rdf file: %w", openErr)
		}
		defer f.Close()
		sub.RDFUpload = &importer.Upload{Filename: filepath.Base(importRDFFile), Body: f}
	}

	name, err := imp.Submit(cmd.Context(), sub)

	var upErr *importer.UploadError
	if errors.As(err, &upErr) {
		// The dataset exists; only an attachment is missing.
		fmt.Fprintf(os.Stderr, "Warning: dataset %s imported without %s: %v\n", name, upErr.Resource, upErr.Err)
		fmt.Println(name)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println(name)
	return nil
}

// overridesFromFlags returns the overrides for the flags the user set, or
// nil when none were set.
func overridesFromFlags(cmd *cobra.Command) *enrich.Overrides {
	flags := cmd.Flags()
	var o enrich.Overrides
	set := false

	str := func(name, value string) *string {
		if !flags.Changed(name) {
			return nil
		}
		set = true
		return &value
	}
	o.OwnerOrg = str("owner-org", importOwnerOrg)
	o.Visibility = str("visibility", importVisibility)
	o.LicenseID = str("license", importLicense)
	o.ExternalAccessLevel = str("external-access-level", importExternalAccessLevel)
	if flags.Changed("private") {
		private := importPrivate
		o.Private = &private
		set = true
	}

	if !set {
		return nil
	}
	return &o
}
