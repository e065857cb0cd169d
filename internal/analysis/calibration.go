package analysis

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// NormFile is the on-disk layout of a norm table override.
type NormFile struct {
	Version int     `yaml:"version"`
	Norms   NormSet `yaml:"norms"`
}

// NormStore loads and saves norm tables as YAML.
type NormStore struct {
	path string
}

func NewNormStore(path string) *NormStore {
	return &NormStore{path: path}
}

// Load reads the norm file. A missing file yields the built-in tables. A
// file that exists but fails validation is an error.
func (s *NormStore) Load() (NormSet, error) {
	if s.path == "" {
		return DefaultNormSet(), nil
	}
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return DefaultNormSet(), nil
	}
	if err != nil {
		return NormSet{}, fmt.Errorf("failed to read norm file: %w", err)
	}

	var file NormFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return NormSet{}, fmt.Errorf("failed to decode norm file: %w", err)
	}
	if err := file.Norms.Validate(); err != nil {
		return NormSet{}, fmt.Errorf("norm file %s: %w", s.path, err)
	}
	return file.Norms, nil
}

// Save writes the tables, creating parent directories as needed.
func (s *NormStore) Save(norms NormSet) error {
	if err := norms.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create norm directory: %w", err)
	}

	raw, err := yaml.Marshal(NormFile{Version: 1, Norms: norms})
	if err != nil {
		return fmt.Errorf("failed to encode norm tables: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write norm file: %w", err)
	}
	return nil
}
