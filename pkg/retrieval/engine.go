// Package retrieval gathers candidate companies for a parsed query from the graph
// store, running independent traversals concurrently and merging their evidence.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soundprediction/investorlens/pkg/driver"
	"github.com/soundprediction/investorlens/pkg/types"
	"github.com/soundprediction/investorlens/pkg/utils"
)

const (
	// DefaultAttributeLimit caps attribute searches when the caller passes no limit.
	DefaultAttributeLimit = 20
	// DefaultAttribute replaces attribute names outside the whitelist.
	DefaultAttribute = "moat_durability"

	defaultConcurrency = 4
)

// rankableAttributes are the company properties an attribute search may order by.
var rankableAttributes = map[string]bool{
	"moat_durability":                   true,
	"enterprise_readiness_score":        true,
	"developer_adoption_score":          true,
	"product_maturity_score":            true,
	"customer_switching_cost":           true,
	"revenue_predictability":            true,
	"market_timing_score":               true,
	"operational_improvement_potential": true,
	"market_cap_b":                      true,
	"revenue_ttm_b":                     true,
	"operating_margin":                  true,
	"yoy_employee_growth":               true,
}

// RankableAttribute reports whether name may be used for an attribute search.
func RankableAttribute(name string) bool {
	return rankableAttributes[name]
}

// Engine retrieves candidates from a graph store. It holds no per-query state and
// is safe for concurrent use.
type Engine struct {
	store       driver.GraphStore
	concurrency int
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency bounds how many traversals of one query run at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a retrieval engine over store.
func NewEngine(store driver.GraphStore, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		concurrency: defaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type traversal = utils.Task[[]driver.Neighbor]

// traverse runs the traversals concurrently. Any failure fails the whole call so a
// partial candidate set is never ranked.
func (e *Engine) traverse(ctx context.Context, op string, traversals ...traversal) ([][]driver.Neighbor, error) {
	rows, err := utils.Gather(ctx, e.concurrency, traversals...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

// annotatePartnerships sets PartnershipCount on every candidate with one batched query.
func (e *Engine) annotatePartnerships(ctx context.Context, candidates []*types.CandidateCompany) error {
	if len(candidates) == 0 {
		return nil
	}
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.CompanyID)
	}
	counts, err := e.store.PartnershipCounts(ctx, ids)
	if err != nil {
		return fmt.Errorf("partnership counts: %w", err)
	}
	for _, c := range candidates {
		c.PartnershipCount = counts[c.CompanyID]
	}
	return nil
}

// Subgraph returns the nodes among ids and the relationships between them, marking
// center. Duplicate and empty ids are ignored.
func (e *Engine) Subgraph(ctx context.Context, ids []string, center string) (*types.GraphVisualization, error) {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return &types.GraphVisualization{Nodes: []types.GraphNode{}, Edges: []types.GraphLink{}}, nil
	}
	g, err := e.store.Subgraph(ctx, unique, center)
	if err != nil {
		return nil, fmt.Errorf("subgraph: %w", err)
	}
	return g, nil
}
