package cmd

import (
	"fmt"
	"os"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
)

var showResource string

var showCmd = &cobra.Command{
	Use:   "show <name-or-id>",
	Short: "Print a stored dataset as JSON",
	Long: `Print a dataset from the catalogue as JSON.

With --resource, the stored content of that resource is written to stdout
instead.

Examples:
  ddimport show ken-2019-hhs
  ddimport show ken-2019-hhs --resource 6f1c0a52-8d0e-4a7e-9d6b-4d4c1b0f0e11 > study.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showResource, "resource", "", "Resource ID whose content to print")
}

func runShow(cmd *cobra.Command, args []string) (err error) {
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

	ds, found, err := store.Find(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("dataset %q not found", args[0])
	}

	if showResource != "" {
		for _, res := range ds.Resources {
			if res.ID != showResource {
				continue
			}
			content, err := store.ResourceContent(cmd.Context(), res.ID)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(content)
			return err
		}
		return fmt.Errorf("resource %q not found on dataset %s", showResource, ds.Name)
	}

	out, err := json.MarshalIndent(ds.ToMap(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
