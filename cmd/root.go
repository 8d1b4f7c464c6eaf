// Package cmd provides CLI commands for ddimport.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var cfgFile string

func setupLogger() {
	logLevel := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "INFO"
	}

	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	logger := slog.New(handler)

	slog.SetDefault(logger)
}

var rootCmd = &cobra.Command{
	Use:   "ddimport",
	Short: "Import DDI study metadata into a dataset catalogue",
	Long: `ddimport reads DDI Codebook XML study descriptions and stores them as
draft datasets in a local catalogue.

Documents can be read from a file or fetched from a NADA microdata portal.
Keywords and data collection techniques are resolved against the schema
vocabularies, and a URL-safe dataset name is derived from the study.

Examples:
  ddimport import --file study.xml --owner-org unhcr-kenya
  ddimport import --url https://microdata.example.org/index.php/catalog/ddi/42
  ddimport validate -i study.xml
  ddimport show ken-2019-hhs
  ddimport vocab keywords`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	setupLogger()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/ddimport/config.yaml)")
	pf.String("database", "", "Catalogue database path (default: $XDG_DATA_HOME/ddimport/catalog.db)")
	pf.String("schema-file", "", "Schema YAML file or directory (default: built-in schema)")
	pf.String("dataset-type", "dataset", "Schema dataset type")
	pf.String("default-license", "", "License applied when none is given")
	pf.Bool("allow-duplicates", false, "Import an existing study again under a new name")
	pf.Bool("override-datasets", false, "Update an existing dataset when its study is imported again")
	pf.Bool("markdown-notes", true, "Convert HTML abstracts to Markdown")
	pf.Duration("fetch-timeout", 30*time.Second, "Timeout for remote documents")
	pf.Int("fetch-max-retries", 3, "Retries for remote documents")
	pf.String("fetch-user-agent", "ddimport", "User-Agent for remote requests")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(vocabCmd)
}
