package cmd

import (
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/ddimport/catalog"
	"github.com/lehigh-university-libraries/ddimport/config"
	"github.com/lehigh-university-libraries/ddimport/enrich"
	"github.com/lehigh-university-libraries/ddimport/fetch"
	"github.com/lehigh-university-libraries/ddimport/format"
	"github.com/lehigh-university-libraries/ddimport/importer"
	"github.com/lehigh-university-libraries/ddimport/schema"
	"github.com/lehigh-university-libraries/ddimport/vocab"
)

// ddiFormat is the parser used for imports.
const ddiFormat = "ddi"

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile, rootCmd.PersistentFlags())
	if err != nil {
		return nil, err
	}
	if cfg.ConfigFile != "" {
		slog.Debug("loaded config", "file", cfg.ConfigFile)
	}
	return cfg, nil
}

func loadSchemas(cfg *config.Config) (*schema.Registry, error) {
	if cfg.SchemaFile == "" {
		return schema.Default()
	}
	reg := schema.NewRegistry()
	if err := reg.LoadFromPath(cfg.SchemaFile); err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", cfg.SchemaFile, err)
	}
	return reg, nil
}

// openCatalog opens and migrates the configured catalogue.
func openCatalog(cfg *config.Config, schemas schema.Provider) (*catalog.SQLiteStore, error) {
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}

	store := catalog.NewSQLiteStore(schemas, cfg.DatasetType)
	if err := store.Open(path); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	slog.Debug("opened catalog", "path", path)
	return store, nil
}

func newEnricher(cfg *config.Config, schemas schema.Provider) *enrich.Enricher {
	return enrich.New(vocab.NewResolver(schemas, cfg.DatasetType), cfg.DefaultLicense)
}

func newImporter(cfg *config.Config, schemas schema.Provider, store catalog.Registry) (*importer.Importer, error) {
	parser, err := format.GetParser(ddiFormat)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.NewHTTPFetcher(fetch.Options{
		Timeout:    cfg.Fetch.Timeout,
		MaxRetries: cfg.Fetch.MaxRetries,
		UserAgent:  cfg.Fetch.UserAgent,
	})

	return importer.New(importer.Config{
		AllowDuplicates:  cfg.AllowDuplicates,
		OverrideDatasets: cfg.OverrideDatasets,
		MarkdownNotes:    cfg.MarkdownNotes,
	}, parser, fetcher, store, newEnricher(cfg, schemas)), nil
}
