package ecology

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileSource loads a catalog from a CSV or YAML file, chosen by extension.
type FileSource struct {
	Path   string
	Strict bool
}

// Load reads and validates the file.
func (s FileSource) Load(_ context.Context) (*Catalog, error) {
	var (
		profiles []Profile
		err      error
	)
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		profiles, err = s.loadYAML()
	case ".csv", "":
		profiles, err = s.loadCSV()
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(s.Path))
	}
	if err != nil {
		return nil, err
	}
	return Build(profiles, s.Strict)
}

func (s FileSource) loadCSV() ([]Profile, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()

	profiles, err := ParseCSV(f, s.Strict)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	return profiles, nil
}

// yamlCatalog is the on-disk shape of a YAML catalog.
type yamlCatalog struct {
	Crops []Profile `yaml:"crops"`
}

func (s FileSource) loadYAML() ([]Profile, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a "crops:" list of profiles.
func ParseYAML(data []byte) ([]Profile, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal catalog yaml: %w", err)
	}
	return doc.Crops, nil
}
