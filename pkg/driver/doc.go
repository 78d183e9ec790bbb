// Package driver provides graph store implementations for investorlens.
//
// This package defines the read-only GraphStore interface consumed by retrieval
// and provides implementations backed by Neo4j and by an in-memory snapshot.
//
// # Supported Stores
//
//   - Neo4j: the production company knowledge graph, queried with Cypher
//   - Memory: an immutable snapshot loaded from YAML, used for demos and tests
//
// # Usage
//
//	// Neo4j
//	store, err := driver.NewNeo4jDriver(uri, username, password, database)
//
//	// Memory
//	store, err := driver.LoadMemoryDriver("universe.yaml")
//
// Either can be wrapped with NewBreakerStore to fast-fail while the store is down.
//
// # Errors
//
// Store failures are returned as *StoreError, which matches
// types.ErrGraphStoreUnavailable. Context cancellation is returned unchanged.
//
// # Type Helpers
//
// type_helpers.go converts Neo4j record values to Go types without panicking
// on type assertion failures.
package driver
