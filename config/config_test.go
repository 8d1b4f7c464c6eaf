package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"), nil)
	require.NoError(t, err)

	assert.False(t, cfg.AllowDuplicates)
	assert.False(t, cfg.OverrideDatasets)
	assert.Equal(t, "dataset", cfg.DatasetType)
	assert.True(t, cfg.MarkdownNotes)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.Equal(t, AppName, cfg.Fetch.UserAgent)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
allow_duplicates: true
default_license: cc-by
database: /tmp/from-file.db
fetch:
  timeout: 10s
  max_retries: 5
`)

	t.Setenv("DDIMPORT_DEFAULT_LICENSE", "odc-odbl")
	t.Setenv("DDIMPORT_FETCH_MAX_RETRIES", "7")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database", "", "")
	flags.Bool("override-datasets", false, "")
	flags.Duration("fetch-timeout", 0, "")
	require.NoError(t, flags.Parse([]string{"--database", "/tmp/from-flag.db", "--override-datasets", "--fetch-timeout", "1m"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.True(t, cfg.AllowDuplicates, "file value")
	assert.True(t, cfg.OverrideDatasets, "flag value")
	assert.Equal(t, "odc-odbl", cfg.DefaultLicense, "env beats file")
	assert.Equal(t, 7, cfg.Fetch.MaxRetries, "env beats file")
	assert.Equal(t, "/tmp/from-flag.db", cfg.Database, "flag beats file")
	assert.Equal(t, time.Minute, cfg.Fetch.Timeout, "flag beats file")
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadUnsetFlagsDoNotOverride(t *testing.T) {
	path := writeConfig(t, "database: /tmp/from-file.db\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database", "/tmp/flag-default.db", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-file.db", cfg.Database)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "empty dataset type", content: "dataset_type: \"\"\n", errMsg: "dataset_type"},
		{name: "negative retries", content: "fetch:\n  max_retries: -1\n", errMsg: "max_retries"},
		{name: "bad yaml", content: "allow_duplicates: [\n", errMsg: "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestDatabasePathExplicit(t *testing.T) {
	cfg := &Config{Database: "/tmp/catalog.db"}
	path, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/catalog.db", path)
}
