// Package sampledata embeds a small data-infrastructure company graph used by
// the memory store, the CLI demo mode and tests.
package sampledata

import (
	_ "embed"
	"fmt"

	"github.com/soundprediction/investorlens/pkg/driver"
	"github.com/soundprediction/investorlens/pkg/types"
)

//go:embed universe.yaml
var universe []byte

// YAML returns the raw embedded snapshot.
func YAML() []byte {
	return universe
}

// Snapshot parses the embedded snapshot.
func Snapshot() (*driver.Snapshot, error) {
	return driver.ParseSnapshot(universe)
}

// Store returns a memory store over the embedded snapshot.
func Store() (*driver.MemoryDriver, error) {
	snap, err := Snapshot()
	if err != nil {
		return nil, err
	}
	store, err := driver.NewMemoryDriver(snap)
	if err != nil {
		return nil, fmt.Errorf("sample universe: %w", err)
	}
	return store, nil
}

// Catalog returns the catalog entries of the embedded snapshot.
func Catalog() ([]types.CatalogEntry, error) {
	snap, err := Snapshot()
	if err != nil {
		return nil, err
	}
	entries := make([]types.CatalogEntry, 0, len(snap.Companies))
	for _, c := range snap.Companies {
		entries = append(entries, c.Entry())
	}
	return entries, nil
}
