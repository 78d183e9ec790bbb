// Package catalog loads the company catalog used to build the entity resolver.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/soundprediction/investorlens/pkg/driver"
	"github.com/soundprediction/investorlens/pkg/types"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// ErrEmptyCatalog is returned when a catalog source holds no companies.
var ErrEmptyCatalog = errors.New("catalog has no companies")

// File is the on-disk catalog layout: {companies: [...]}.
type File struct {
	Companies []types.CatalogEntry `json:"companies" yaml:"companies"`
}

// LoadFile reads a catalog from a YAML (.yaml, .yml) or JSON (.json) file.
func LoadFile(path string) ([]types.CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	entries, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return entries, nil
}

// Parse decodes catalog bytes in the given format ("json" or "yaml").
func Parse(data []byte, format string) ([]types.CatalogEntry, error) {
	var f File
	switch format {
	case formatJSON:
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	if err := Validate(f.Companies); err != nil {
		return nil, err
	}
	return f.Companies, nil
}

// FromStore builds the catalog from every company node in the graph store.
func FromStore(ctx context.Context, store driver.GraphStore) ([]types.CatalogEntry, error) {
	companies, err := store.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	entries := make([]types.CatalogEntry, 0, len(companies))
	for _, c := range companies {
		entries = append(entries, c.Entry())
	}
	if err := Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Validate checks that entries is non-empty and identifiers are present and unique.
func Validate(entries []types.CatalogEntry) error {
	if len(entries) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.CompanyID) == "" {
			return fmt.Errorf("catalog entry %d (%q): %w", i, e.Name, types.ErrEmptyID)
		}
		if _, dup := seen[e.CompanyID]; dup {
			return fmt.Errorf("duplicate catalog entry %q", e.CompanyID)
		}
		seen[e.CompanyID] = struct{}{}
	}
	return nil
}

func formatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	}
	return "", fmt.Errorf("unsupported catalog file extension %q (want .yaml, .yml or .json)", filepath.Ext(path))
}
