package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/ddimport/catalog"
	"github.com/lehigh-university-libraries/ddimport/format"
)

var (
	validateInput   string
	validateVerbose bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a DDI document without importing it",
	Long: `Parse and enrich a DDI document, then validate the resulting dataset
against the schema. Nothing is written to the catalogue.

Input defaults to stdin.

Examples:
  ddimport validate -i study.xml
  ddimport validate -i study.xml --verbose
  cat study.xml | ddimport validate`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "Input file (default: stdin)")
	validateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "Print the enriched dataset")
}

func runValidate(cmd *cobra.Command, args []string) (err error) {
	var input io.Reader
	var inputName string

	if validateInput != "" {
		f, openErr := os.Open(validateInput)
		if openErr != nil {
			return fmt.Errorf("opening input file: %w", openErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing input file: %w", cerr)
			}
		}()
		input = f
		inputName = validateInput
	} else {
		input = cmd.InOrStdin()
		inputName = "stdin"
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	schemas, err := loadSchemas(cfg)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputName, err)
	}

	parser, err := format.DetectParser(inputName, data)
	if err != nil {
		return fmt.Errorf("%w (available formats: %s)", err, strings.Join(format.List(), ", "))
	}

	opts := format.NewParseOptions()
	opts.MarkdownNotes = cfg.MarkdownNotes
	opts.SourceName = inputName

	raw, err := parser.Parse(bytes.NewReader(data), opts)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	ds := newEnricher(cfg, schemas).Enrich(raw, nil)
	errs := catalog.NewSQLiteStore(schemas, cfg.DatasetType).Validate(ds)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validated %s\n", inputName)
	fmt.Fprintf(out, "  Format: %s (%s)\n", parser.Name(), parser.Description())
	fmt.Fprintf(out, "  Name: %s\n", ds.Name)
	fmt.Fprintf(out, "  Title: %s\n", ds.Title)
	fmt.Fprintf(out, "  Keywords: %v\n", ds.Keywords)
	if ds.DataCollectionTechnique != "" {
		fmt.Fprintf(out, "  Data collection technique: %s\n", ds.DataCollectionTechnique)
	}
	fmt.Fprintf(out, "  Resources: %d\n", len(ds.Resources))
	if extra := ds.ExtraKeys(); len(extra) > 0 {
		fmt.Fprintf(out, "  Extra fields: %s\n", strings.Join(extra, ", "))
	}

	if validateVerbose {
		encoded, err := json.MarshalIndent(ds.ToMap(), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding dataset: %w", err)
		}
		fmt.Fprintln(out, string(encoded))
	}

	if len(errs) > 0 {
		fmt.Fprintln(out, "\nValidation errors:")
		for _, line := range errs.Summary() {
			fmt.Fprintf(out, "  - %s\n", line)
		}
		return fmt.Errorf("%d validation error(s)", len(errs))
	}

	fmt.Fprintln(out, "\nNo issues found.")
	return nil
}
