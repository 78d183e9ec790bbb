package investorlens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soundprediction/investorlens/pkg/config"
	"github.com/soundprediction/investorlens/pkg/driver"
	"github.com/soundprediction/investorlens/pkg/persona"
	"github.com/soundprediction/investorlens/pkg/query"
	"github.com/soundprediction/investorlens/pkg/ranking"
	"github.com/soundprediction/investorlens/pkg/resolver"
	"github.com/soundprediction/investorlens/pkg/retrieval"
	"github.com/soundprediction/investorlens/pkg/types"
	"github.com/soundprediction/investorlens/pkg/utils"
)

// DefaultSummaryTopN is the number of results per persona in a cross-persona summary.
const DefaultSummaryTopN = 5

// Searcher answers natural-language research queries against the company graph.
type Searcher interface {
	// Search runs the pipeline once. personaName may be empty; a persona named in
	// the query text takes precedence over it.
	Search(ctx context.Context, text, personaName string) (*types.SearchResult, error)

	// SearchAllPersonas runs the pipeline once per persona, keyed by persona name.
	SearchAllPersonas(ctx context.Context, text string) (map[string]*types.SearchResult, error)
}

// Config holds configuration for the search client.
type Config struct {
	// DefaultPersona ranks queries that name no persona.
	DefaultPersona string
	// AttributeLimit caps attribute_search candidates.
	AttributeLimit int
	// GraphTopN is the number of ranked companies drawn into the visualization subgraph.
	GraphTopN int
	// StrategyConcurrency bounds concurrent traversals within one retrieval.
	StrategyConcurrency int
	// PersonaConcurrency bounds concurrent pipelines in SearchAllPersonas.
	PersonaConcurrency int
}

// NewDefaultConfig returns the configuration used when NewClient receives nil.
func NewDefaultConfig() *Config {
	return &Config{
		DefaultPersona:      persona.Default,
		AttributeLimit:      retrieval.DefaultAttributeLimit,
		GraphTopN:           10,
		StrategyConcurrency: 4,
		PersonaConcurrency:  len(persona.Names()),
	}
}

// NewConfig builds a client configuration from the search settings of the application config.
func NewConfig(s config.SearchConfig) *Config {
	return &Config{
		DefaultPersona:      s.DefaultPersona,
		AttributeLimit:      s.AttributeLimit,
		GraphTopN:           s.GraphTopN,
		StrategyConcurrency: s.StrategyConcurrency,
		PersonaConcurrency:  s.PersonaConcurrency,
	}
}

// Client is the main implementation of the Searcher interface. It is safe for
// concurrent use; all per-request state lives on the stack of one call.
type Client struct {
	store      driver.GraphStore
	resolver   *resolver.Resolver
	classifier *query.Classifier
	engine     *retrieval.Engine
	config     *Config
	logger     *slog.Logger
}

var _ Searcher = (*Client)(nil)

// NewClient creates a search client over store. The resolver is built once by the
// caller from the company catalog and shared read-only.
func NewClient(store driver.GraphStore, res *resolver.Resolver, cfg *Config, logger *slog.Logger) (*Client, error) {
	if store == nil {
		return nil, errors.New("graph store is required")
	}
	if res == nil {
		return nil, errors.New("resolver is required")
	}
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if !persona.Known(cfg.DefaultPersona) {
		return nil, fmt.Errorf("unknown default persona %q", cfg.DefaultPersona)
	}
	if cfg.PersonaConcurrency <= 0 {
		cfg.PersonaConcurrency = 1
	}

	return &Client{
		store:      store,
		resolver:   res,
		classifier: query.NewClassifier(res),
		engine: retrieval.NewEngine(store,
			retrieval.WithConcurrency(cfg.StrategyConcurrency),
			retrieval.WithLogger(logger)),
		config: cfg,
		logger: logger,
	}, nil
}

// GetStore returns the underlying graph store.
func (c *Client) GetStore() driver.GraphStore {
	return c.store
}

// Classify parses text without touching the graph store.
func (c *Client) Classify(text string) types.ParsedQuery {
	return c.classifier.Classify(text)
}

// Search classifies text, retrieves candidates for its intent, ranks them under the
// selected persona and attaches the visualization subgraph.
func (c *Client) Search(ctx context.Context, text, personaName string) (*types.SearchResult, error) {
	return c.search(ctx, text, personaName, false)
}

// SearchAllPersonas runs one pipeline per persona on a bounded worker pool. Each
// pipeline is forced to its persona, except acquisition queries which always rank
// as the strategic acquirer. Any failing pipeline fails the call.
func (c *Client) SearchAllPersonas(ctx context.Context, text string) (map[string]*types.SearchResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, types.ErrEmptyQuery
	}
	names := persona.Names()
	pool := utils.NewWorkerPool[string, *types.SearchResult](c.config.PersonaConcurrency, func(ctx context.Context, name string) (*types.SearchResult, error) {
		return c.search(ctx, text, name, true)
	})
	results, errs := pool.ProcessItems(ctx, names)
	if err := utils.FirstError(errs); err != nil {
		return nil, err
	}

	out := make(map[string]*types.SearchResult, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out, nil
}

func (c *Client) search(ctx context.Context, text, requested string, force bool) (*types.SearchResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, types.ErrEmptyQuery
	}
	start := time.Now()
	var warnings []string

	parsed := c.classifier.Classify(text)
	cfg, warning := c.selectPersona(parsed, requested, force)
	if warning != "" {
		c.logger.WarnContext(ctx, "unknown persona, using default", "persona", requested, "default", cfg.Name)
		warnings = append(warnings, warning)
	}

	candidates, compare, retrievalWarnings, err := c.retrieve(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", parsed.Intent, err)
	}
	warnings = append(warnings, retrievalWarnings...)

	var opts []ranking.Option
	if parsed.Intent == types.IntentAcquisitionTarget {
		opts = append(opts, ranking.WithAcquirer(parsed.Acquirer))
	}
	ranked := ranking.Rank(candidates, cfg, opts...)

	graph, err := c.engine.Subgraph(ctx, c.subgraphIDs(parsed, ranked, compare), subgraphCenter(parsed))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", parsed.Intent, err)
	}

	result := &types.SearchResult{
		Query:          parsed,
		Persona:        cfg.Name,
		PersonaDisplay: cfg.DisplayName,
		Results:        ranked,
		CompareData:    compare,
		Graph:          *graph,
		Metadata: types.SearchMetadata{
			ElapsedMS:      time.Since(start).Milliseconds(),
			CandidateCount: len(candidates),
			Warnings:       warnings,
		},
	}
	c.logger.DebugContext(ctx, "search completed",
		"intent", parsed.Intent,
		"persona", cfg.Name,
		"candidates", len(candidates),
		"elapsed_ms", result.Metadata.ElapsedMS)
	return result, nil
}

// selectPersona applies the persona priority: acquisition queries rank as the
// strategic acquirer; otherwise a persona named in the text beats the requested one
// unless force is set, and an unknown request falls back to the default with a warning.
func (c *Client) selectPersona(parsed types.ParsedQuery, requested string, force bool) (persona.Config, string) {
	if parsed.Intent == types.IntentAcquisitionTarget {
		cfg, _ := persona.Lookup(persona.StrategicAcquirer)
		return cfg, ""
	}
	name := requested
	if !force && parsed.Persona != "" {
		name = parsed.Persona
	}
	if name == "" {
		name = c.config.DefaultPersona
	}
	if cfg, ok := persona.Lookup(name); ok {
		return cfg, ""
	}
	cfg, _ := persona.Lookup(c.config.DefaultPersona)
	return cfg, fmt.Sprintf("unknown persona %q, ranked as %s", name, cfg.Name)
}

func (c *Client) retrieve(ctx context.Context, parsed types.ParsedQuery) ([]types.CandidateCompany, *types.CompareData, []string, error) {
	switch parsed.Intent {
	case types.IntentCompetitorsTo:
		candidates, err := c.engine.CompetitorsTo(ctx, parsed.TargetCompany)
		return candidates, nil, nil, err

	case types.IntentCompare:
		data, err := c.engine.Compare(ctx, parsed.TargetCompany, parsed.CompareCompany)
		if err != nil {
			return nil, nil, nil, err
		}
		var warnings []string
		if data.CompanyA == nil {
			warnings = append(warnings, fmt.Sprintf("company %q not found in graph", parsed.TargetCompany))
		}
		if data.CompanyB == nil {
			warnings = append(warnings, fmt.Sprintf("company %q not found in graph", parsed.CompareCompany))
		}
		return retrieval.CompareCandidates(data), data, warnings, nil

	case types.IntentAcquisitionTarget:
		candidates, err := c.engine.AcquisitionTargets(ctx, parsed.Acquirer, parsed.TargetCompany)
		return candidates, nil, nil, err

	default:
		candidates, used, err := c.engine.AttributeRanked(ctx, parsed.Attribute, c.config.AttributeLimit)
		if err != nil {
			return nil, nil, nil, err
		}
		var warnings []string
		if used != parsed.Attribute {
			warnings = append(warnings, fmt.Sprintf("unknown attribute %q, ranked by %s", parsed.Attribute, used))
		}
		return candidates, nil, warnings, nil
	}
}

// subgraphCenter is the node highlighted in the result graph. A comparison has two
// subjects and therefore no centre.
func subgraphCenter(parsed types.ParsedQuery) string {
	if parsed.Intent == types.IntentCompare {
		return ""
	}
	return parsed.TargetCompany
}

// subgraphIDs is the query subjects, the top ranked companies and, for compare,
// the common competitors. Duplicates are removed by the engine.
func (c *Client) subgraphIDs(parsed types.ParsedQuery, ranked []types.RankedResult, compare *types.CompareData) []string {
	ids := parsed.Subjects()
	top := min(c.config.GraphTopN, len(ranked))
	for _, r := range ranked[:top] {
		ids = append(ids, r.CompanyID)
	}
	return append(ids, compare.CommonCompetitorIDs()...)
}

// Summarize reduces per-persona results to the top n of each.
func Summarize(results map[string]*types.SearchResult, n int) map[string]types.PersonaSummary {
	if n <= 0 {
		n = DefaultSummaryTopN
	}
	out := make(map[string]types.PersonaSummary, len(results))
	for name, r := range results {
		if r == nil {
			continue
		}
		out[name] = types.PersonaSummary{
			PersonaDisplay: r.PersonaDisplay,
			TopResults:     r.Top(n),
		}
	}
	return out
}

// Personas returns every persona in display order.
func (c *Client) Personas() []persona.Config {
	return persona.All()
}

// Companies lists every company in the graph ordered by identifier.
func (c *Client) Companies(ctx context.Context) ([]types.CompanyProfile, error) {
	companies, err := c.store.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

// Company returns one company by identifier. An identifier that is not a node is
// resolved as a company name or ticker before giving up with driver.ErrCompanyNotFound.
func (c *Client) Company(ctx context.Context, id string) (*types.CompanyProfile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, types.ErrEmptyID
	}
	p, err := c.store.GetCompany(ctx, id)
	if !errors.Is(err, driver.ErrCompanyNotFound) {
		return p, err
	}
	resolved, ok := c.resolver.Resolve(id)
	if !ok || resolved == id {
		return nil, err
	}
	return c.store.GetCompany(ctx, resolved)
}

// CountCompanies returns the number of company nodes.
func (c *Client) CountCompanies(ctx context.Context) (int64, error) {
	return c.store.CountCompanies(ctx)
}

// Ping checks graph store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Close closes the graph store.
func (c *Client) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}
