package investorlens

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soundprediction/investorlens/pkg/catalog"
	"github.com/soundprediction/investorlens/pkg/config"
	"github.com/soundprediction/investorlens/pkg/driver"
	"github.com/soundprediction/investorlens/pkg/resolver"
	"github.com/soundprediction/investorlens/pkg/sampledata"
	"github.com/soundprediction/investorlens/pkg/types"
)

// DefaultNeo4jURI is used when the neo4j driver is selected without a URI.
const DefaultNeo4jURI = "bolt://localhost:7687"

// OpenStore opens the configured graph store and wraps it with the circuit breaker.
// The memory driver loads the snapshot at database.uri, or the embedded sample
// universe when the URI is empty.
func OpenStore(cfg *config.Config, logger *slog.Logger) (driver.GraphStore, error) {
	var (
		store driver.GraphStore
		err   error
	)
	switch driver.GraphProvider(cfg.Database.Driver) {
	case driver.GraphProviderNeo4j:
		uri := cfg.Database.URI
		if uri == "" {
			uri = DefaultNeo4jURI
		}
		store, err = driver.NewNeo4jDriver(uri, cfg.Database.Username, cfg.Database.Password, cfg.Database.Database)
	case driver.GraphProviderMemory:
		if cfg.Database.URI == "" {
			store, err = sampledata.Store()
		} else {
			store, err = driver.LoadMemoryDriver(cfg.Database.URI)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}
	return driver.NewBreakerStore(store, cfg.CircuitBreaker, logger), nil
}

// LoadCatalog reads the company catalog from path, or from the graph store when
// path is empty.
func LoadCatalog(ctx context.Context, path string, store driver.GraphStore) ([]types.CatalogEntry, error) {
	if path != "" {
		return catalog.LoadFile(path)
	}
	return catalog.FromStore(ctx, store)
}

// Open builds a ready client from the application configuration. The caller owns
// the returned client and must Close it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	store, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	entries, err := LoadCatalog(ctx, cfg.Catalog.Path, store)
	if err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	res := resolver.New(entries)
	logger.Info("catalog loaded", "companies", len(entries), "aliases", res.Len(), "store", store.Provider())

	client, err := NewClient(store, res, NewConfig(cfg.Search), logger)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	return client, nil
}
