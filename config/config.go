// Package config loads ddimport settings from defaults, a YAML file,
// DDIMPORT_* environment variables and command-line flags.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// AppName names the XDG config and data directories.
const AppName = "ddimport"

const envPrefix = "DDIMPORT_"

// Config holds all settings.
type Config struct {
	// AllowDuplicates imports an existing dataset again under a new name.
	AllowDuplicates bool `koanf:"allow_duplicates"`

	// OverrideDatasets updates an existing dataset in place on re-import.
	OverrideDatasets bool `koanf:"override_datasets"`

	// DefaultLicense is applied when the caller names no license.
	DefaultLicense string `koanf:"default_license"`

	// DatasetType selects the schema used for vocabularies and validation.
	DatasetType string `koanf:"dataset_type"`

	// SchemaFile is a schema YAML file or directory. Empty uses the
	// embedded schema.
	SchemaFile string `koanf:"schema_file"`

	// Database is the SQLite catalogue path. Empty uses the XDG data dir.
	Database string `koanf:"database"`

	// MarkdownNotes converts HTML abstracts to Markdown.
	MarkdownNotes bool `koanf:"markdown_notes"`

	Fetch FetchConfig `koanf:"fetch"`

	// ConfigFile is the file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// FetchConfig configures remote document retrieval.
type FetchConfig struct {
	Timeout    time.Duration `koanf:"timeout"`
	MaxRetries int           `koanf:"max_retries"`
	UserAgent  string        `koanf:"user_agent"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"allow_duplicates":  false,
		"override_datasets": false,
		"default_license":   "",
		"dataset_type":      "dataset",
		"schema_file":       "",
		"database":          "",
		"markdown_notes":    true,
		"fetch.timeout":     "30s",
		"fetch.max_retries": 3,
		"fetch.user_agent":  AppName,
	}
}

// Load reads configuration. Precedence (highest to lowest): flags > env
// vars > config file > defaults. An empty cfgFile searches the XDG config
// directories for ddimport/config.yaml.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if found, err := xdg.SearchConfigFile(filepath.Join(AppName, "config.yaml")); err == nil {
			cfgFile = found
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// DDIMPORT_FETCH_TIMEOUT -> fetch.timeout
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return configKey(strings.ToLower(strings.TrimPrefix(s, envPrefix)))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return configKey(strings.ReplaceAll(f.Name, "-", "_")), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ConfigFile = cfgFile

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// configKey maps a flat snake_case name onto its config key.
func configKey(name string) string {
	if rest, ok := strings.CutPrefix(name, "fetch_"); ok {
		return "fetch." + rest
	}
	return name
}

// Validate checks the settings for values that cannot work.
func (c *Config) Validate() error {
	if c.DatasetType == "" {
		return fmt.Errorf("dataset_type must not be empty")
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch.timeout must not be negative")
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("fetch.max_retries must not be negative")
	}
	return nil
}

// DatabasePath returns the catalogue path, creating the XDG data
// directory when the default location is used.
func (c *Config) DatabasePath() (string, error) {
	if c.Database != "" {
		return c.Database, nil
	}
	path, err := xdg.DataFile(filepath.Join(AppName, "catalog.db"))
	if err != nil {
		return "", fmt.Errorf("resolving database path: %w", err)
	}
	return path, nil
}
