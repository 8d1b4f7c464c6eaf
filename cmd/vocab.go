package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/ddimport/vocab"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab [field]",
	Short: "List controlled vocabularies of the dataset schema",
	Long: `List the controlled vocabulary of a dataset field. Without a field,
list the fields that have one.

Examples:
  ddimport vocab
  ddimport vocab keywords
  ddimport vocab data_collection_technique`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVocab,
}

func runVocab(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	schemas, err := loadSchemas(cfg)
	if err != nil {
		return err
	}

	s, ok := schemas.Get(cfg.DatasetType)
	if !ok {
		return fmt.Errorf("unknown dataset type %q (available: %s)", cfg.DatasetType, strings.Join(schemas.List(), ", "))
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	if len(args) == 0 {
		fmt.Fprintln(w, "FIELD\tCHOICES\tLABEL")
		for _, f := range s.ChoiceFields() {
			fmt.Fprintf(w, "%s\t%d\t%s\n", f.Name, len(f.Choices), f.Label)
		}
		return w.Flush()
	}

	field, ok := schemas.GetField(cfg.DatasetType, args[0])
	if !ok {
		return fmt.Errorf("unknown field %q (fields: %s)", args[0], strings.Join(s.FieldNames(), ", "))
	}
	if !field.HasChoices() {
		return fmt.Errorf("field %q has no vocabulary", field.Name)
	}

	fmt.Fprintln(w, "VALUE\tLABEL")
	for _, c := range vocab.NewResolver(schemas, cfg.DatasetType).AllowedValues(field.Name) {
		fmt.Fprintf(w, "%s\t%s\n", c.Value, c.Label)
	}
	return w.Flush()
}
