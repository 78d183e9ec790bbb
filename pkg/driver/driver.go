package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/soundprediction/investorlens/pkg/types"
)

// GraphProvider represents the type of graph store backing a GraphStore.
type GraphProvider string

const (
	GraphProviderNeo4j  GraphProvider = "neo4j"
	GraphProviderMemory GraphProvider = "memory"
)

// ErrCompanyNotFound is returned by GetCompany when no node carries the identifier.
var ErrCompanyNotFound = errors.New("company not found")

// StoreError wraps a failure of the underlying graph store. It matches
// types.ErrGraphStoreUnavailable with errors.Is.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("graph store %s: %s", e.Op, types.ErrGraphStoreUnavailable)
	}
	return fmt.Sprintf("graph store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports whether target is the unavailable sentinel.
func (e *StoreError) Is(target error) bool {
	return target == types.ErrGraphStoreUnavailable
}

// storeError builds a StoreError unless err is a context error or already typed.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrCompanyNotFound) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// Neighbor is a company reached from a query subject by one traversal, with the
// evidence of that traversal. Only the fields relevant to the traversal are set.
type Neighbor struct {
	Company   types.CompanyProfile
	Strength  *float64
	Direction types.Direction
	Segment   string
	Themes    []string
}

// GraphStore is the read-only view of the company knowledge graph used by retrieval.
// Implementations must be safe for concurrent use and return rows in a stable order.
type GraphStore interface {
	// GetCompany returns the profile of id or ErrCompanyNotFound.
	GetCompany(ctx context.Context, id string) (*types.CompanyProfile, error)
	// ListCompanies returns every company ordered by identifier.
	ListCompanies(ctx context.Context) ([]types.CompanyProfile, error)
	// TopByAttribute returns up to limit companies with a non-null property, highest first.
	TopByAttribute(ctx context.Context, property string, limit int) ([]types.CompanyProfile, error)

	// Competitors returns one row per direct competitor with the maximum edge strength.
	Competitors(ctx context.Context, id string) ([]Neighbor, error)
	// SegmentPeers returns one row per (peer, shared segment) with the segment display name.
	SegmentPeers(ctx context.Context, id string) ([]Neighbor, error)
	// ThemePeers returns one row per peer with the collected shared theme names.
	ThemePeers(ctx context.Context, id string) ([]Neighbor, error)
	// Disruptions returns one row per disruption edge in either direction.
	Disruptions(ctx context.Context, id string) ([]Neighbor, error)
	// Partners returns one row per partner with the maximum partnership strength.
	Partners(ctx context.Context, id string) ([]Neighbor, error)
	// PartnershipCounts returns the number of distinct partners for each id that has any.
	PartnershipCounts(ctx context.Context, ids []string) (map[string]int, error)

	EdgesBetween(ctx context.Context, a, b string) ([]types.DirectEdge, error)
	CommonCompetitors(ctx context.Context, a, b string) ([]types.CompanyProfile, error)
	SharedSegments(ctx context.Context, a, b string) ([]types.Segment, error)
	SharedThemes(ctx context.Context, a, b string) ([]string, error)

	// Subgraph returns the nodes among ids and the relationships between them.
	Subgraph(ctx context.Context, ids []string, center string) (*types.GraphVisualization, error)

	CountCompanies(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Provider() GraphProvider
}
