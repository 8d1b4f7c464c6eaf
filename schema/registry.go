package schema

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed schemas/*.yaml
var embeddedSchemas embed.FS

// Provider supplies the dataset fields of a dataset type. The bool result
// is false when no schema is configured for the type.
type Provider interface {
	DatasetFields(datasetType string) ([]Field, bool)
}

// Registry holds schema definitions keyed by dataset type.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

var _ Provider = (*Registry)(nil)

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
	}
}

// Default returns a registry loaded with the embedded dataset schema.
func Default() (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadEmbedded(embeddedSchemas, "schemas"); err != nil {
		return nil, fmt.Errorf("loading embedded schemas: %w", err)
	}
	return r, nil
}

// Register adds or replaces a schema.
func (r *Registry) Register(s *Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.DatasetType] = s
}

// Get retrieves a schema by dataset type.
func (r *Registry) Get(datasetType string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[datasetType]
	return s, ok
}

// DatasetFields returns the dataset fields of a dataset type.
func (r *Registry) DatasetFields(datasetType string) ([]Field, bool) {
	s, ok := r.Get(datasetType)
	if !ok {
		return nil, false
	}
	return s.DatasetFields, true
}

// GetField retrieves a field definition.
func (r *Registry) GetField(datasetType, fieldName string) (*Field, bool) {
	s, ok := r.Get(datasetType)
	if !ok {
		return nil, false
	}
	return s.GetField(fieldName)
}

// List returns all registered dataset types, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.schemas))
	for t := range r.schemas {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// LoadFromYAML loads one schema document from YAML bytes.
func (r *Registry) LoadFromYAML(data []byte) error {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	if err := s.check(); err != nil {
		return err
	}
	r.Register(&s)
	return nil
}

// LoadFromPath loads schemas from a file or every YAML file in a directory.
func (r *Registry) LoadFromPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !isYAMLFile(p) {
				return nil
			}
			return r.loadFile(p)
		})
	}

	return r.loadFile(path)
}

// LoadEmbedded loads schemas from an embedded filesystem.
func (r *Registry) LoadEmbedded(fsys embed.FS, dir string) error {
	return fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !isYAMLFile(path) {
			return nil
		}

		data, err := fsys.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := r.LoadFromYAML(data); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		return nil
	})
}

func (r *Registry) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := r.LoadFromYAML(data); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func isYAMLFile(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}
