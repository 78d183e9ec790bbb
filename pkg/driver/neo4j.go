package driver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/soundprediction/investorlens/pkg/types"
)

// Neo4jDriver implements GraphStore against a Neo4j company graph.
//
// Expected schema: (:Company {company_id, name, sector, ticker, <numeric properties>}),
// (:Segment {name, display_name}), (:InvestmentTheme {name}) and the relationships
// COMPETES_WITH, DISRUPTS, PARTNERS_WITH between companies plus
// TARGETS_SAME_SEGMENT and SHARES_INVESTMENT_THEME from companies to segments and themes.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jDriver creates a new Neo4j driver instance.
func NewNeo4jDriver(uri, username, password, database string) (*Neo4jDriver, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jDriver{
		client:   client,
		database: database,
	}, nil
}

// companyColumns is the RETURN projection of every company property of node t.
var companyColumns = func() string {
	cols := []string{"t.company_id AS company_id", "t.name AS name", "t.sector AS sector", "t.ticker AS ticker"}
	for _, p := range types.PropertyNames {
		cols = append(cols, fmt.Sprintf("t.%s AS %s", p, p))
	}
	return strings.Join(cols, ", ")
}()

// read runs query in a read transaction and collects every record.
func (n *Neo4jDriver) read(ctx context.Context, op, query string, params map[string]any) ([]*db.Record, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: n.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, storeError(op, err)
	}

	records, ok := result.([]*db.Record)
	if !ok {
		return nil, storeError(op, NewTypeConversionError("[]*db.Record", fmt.Sprintf("%T", result), op))
	}
	return records, nil
}

func profileFromRecord(record *db.Record) types.CompanyProfile {
	p := types.CompanyProfile{
		CompanyID: stringValue(record, "company_id"),
		Name:      stringValue(record, "name"),
		Sector:    stringValue(record, "sector"),
		Ticker:    stringValue(record, "ticker"),
	}
	for _, name := range types.PropertyNames {
		p.SetProperty(name, optionalNumber(record, name))
	}
	return p
}

func (n *Neo4jDriver) profiles(ctx context.Context, op, query string, params map[string]any) ([]types.CompanyProfile, error) {
	records, err := n.read(ctx, op, query, params)
	if err != nil {
		return nil, err
	}
	out := make([]types.CompanyProfile, 0, len(records))
	for _, record := range records {
		out = append(out, profileFromRecord(record))
	}
	return out, nil
}

// GetCompany retrieves a company node by identifier.
func (n *Neo4jDriver) GetCompany(ctx context.Context, id string) (*types.CompanyProfile, error) {
	query := `MATCH (t:Company {company_id: $cid}) RETURN ` + companyColumns + ` LIMIT 1`
	out, err := n.profiles(ctx, "get_company", query, map[string]any{"cid": id})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, id)
	}
	return &out[0], nil
}

// ListCompanies returns every company node.
func (n *Neo4jDriver) ListCompanies(ctx context.Context) ([]types.CompanyProfile, error) {
	query := `MATCH (t:Company) RETURN ` + companyColumns + ` ORDER BY t.company_id`
	return n.profiles(ctx, "list_companies", query, nil)
}

// TopByAttribute returns companies ordered by a numeric property, highest first.
func (n *Neo4jDriver) TopByAttribute(ctx context.Context, property string, limit int) ([]types.CompanyProfile, error) {
	// Property names are interpolated, so only known properties are accepted.
	if !slices.Contains(types.PropertyNames, property) {
		return nil, fmt.Errorf("unknown company property %q", property)
	}
	query := fmt.Sprintf(`
		MATCH (t:Company)
		WHERE t.%[1]s IS NOT NULL
		RETURN %[2]s
		ORDER BY t.%[1]s DESC, t.company_id
		LIMIT $limit
	`, property, companyColumns)
	return n.profiles(ctx, "top_by_attribute", query, map[string]any{"limit": int64(limit)})
}

func (n *Neo4jDriver) neighbors(ctx context.Context, op, query, id string, decorate func(*db.Record, *Neighbor)) ([]Neighbor, error) {
	records, err := n.read(ctx, op, query, map[string]any{"cid": id})
	if err != nil {
		return nil, err
	}
	out := make([]Neighbor, 0, len(records))
	for _, record := range records {
		nb := Neighbor{Company: profileFromRecord(record)}
		if decorate != nil {
			decorate(record, &nb)
		}
		out = append(out, nb)
	}
	return out, nil
}

func withStrength(record *db.Record, nb *Neighbor) {
	nb.Strength = optionalNumber(record, "strength")
}

// Competitors returns direct competitors with the strongest edge per pair.
func (n *Neo4jDriver) Competitors(ctx context.Context, id string) ([]Neighbor, error) {
	query := `
		MATCH (c:Company {company_id: $cid})-[r:COMPETES_WITH]-(t:Company)
		WHERE t.company_id <> $cid
		WITH t, max(r.strength) AS strength
		RETURN ` + companyColumns + `, strength
		ORDER BY t.company_id
	`
	return n.neighbors(ctx, "competitors", query, id, withStrength)
}

// SegmentPeers returns companies targeting a segment that id also targets.
func (n *Neo4jDriver) SegmentPeers(ctx context.Context, id string) ([]Neighbor, error) {
	query := `
		MATCH (c:Company {company_id: $cid})-[:TARGETS_SAME_SEGMENT]->(s:Segment)<-[:TARGETS_SAME_SEGMENT]-(t:Company)
		WHERE t.company_id <> $cid
		RETURN ` + companyColumns + `, coalesce(s.display_name, s.name) AS shared_segment
		ORDER BY t.company_id, shared_segment
	`
	return n.neighbors(ctx, "segment_peers", query, id, func(record *db.Record, nb *Neighbor) {
		nb.Segment = stringValue(record, "shared_segment")
	})
}

// ThemePeers returns companies sharing at least one investment theme with id.
func (n *Neo4jDriver) ThemePeers(ctx context.Context, id string) ([]Neighbor, error) {
	query := `
		MATCH (c:Company {company_id: $cid})-[:SHARES_INVESTMENT_THEME]->(th:InvestmentTheme)<-[:SHARES_INVESTMENT_THEME]-(t:Company)
		WHERE t.company_id <> $cid
		WITH t, collect(DISTINCT th.name) AS shared_themes
		RETURN ` + companyColumns + `, shared_themes
		ORDER BY t.company_id
	`
	return n.neighbors(ctx, "theme_peers", query, id, func(record *db.Record, nb *Neighbor) {
		v, _ := record.Get("shared_themes")
		themes, _ := AsStringSlice(v)
		slices.Sort(themes)
		nb.Themes = themes
	})
}

// Disruptions returns disruption edges touching id, tagged with their direction.
func (n *Neo4jDriver) Disruptions(ctx context.Context, id string) ([]Neighbor, error) {
	query := `
		MATCH (c:Company {company_id: $cid})-[r:DISRUPTS]-(t:Company)
		WHERE t.company_id <> $cid
		RETURN ` + companyColumns + `,
		       r.strength AS strength,
		       CASE WHEN startNode(r) = c THEN 'disrupts' ELSE 'disrupted_by' END AS direction
		ORDER BY t.company_id, direction
	`
	return n.neighbors(ctx, "disruptions", query, id, func(record *db.Record, nb *Neighbor) {
		nb.Strength = optionalNumber(record, "strength")
		nb.Direction = types.Direction(stringValue(record, "direction"))
	})
}

// Partners returns partners of id with the strongest partnership per pair.
func (n *Neo4jDriver) Partners(ctx context.Context, id string) ([]Neighbor, error) {
	query := `
		MATCH (c:Company {company_id: $cid})-[r:PARTNERS_WITH]-(t:Company)
		WHERE t.company_id <> $cid
		WITH t, max(r.strength) AS strength
		RETURN ` + companyColumns + `, strength
		ORDER BY t.company_id
	`
	return n.neighbors(ctx, "partners", query, id, withStrength)
}

// PartnershipCounts counts distinct partners for every id in one query.
func (n *Neo4jDriver) PartnershipCounts(ctx context.Context, ids []string) (map[string]int, error) {
	counts := make(map[string]int)
	if len(ids) == 0 {
		return counts, nil
	}
	query := `
		MATCH (c:Company)-[:PARTNERS_WITH]-(t:Company)
		WHERE c.company_id IN $cids AND t.company_id <> c.company_id
		RETURN c.company_id AS cid, count(DISTINCT t) AS partner_count
	`
	records, err := n.read(ctx, "partnership_counts", query, map[string]any{"cids": ids})
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		v, _ := record.Get("partner_count")
		count, err := MustInt64(v, "partner_count")
		if err != nil {
			return nil, storeError("partnership_counts", err)
		}
		counts[stringValue(record, "cid")] = int(count)
	}
	return counts, nil
}

// EdgesBetween returns every relationship directly connecting a and b.
func (n *Neo4jDriver) EdgesBetween(ctx context.Context, a, b string) ([]types.DirectEdge, error) {
	query := `
		MATCH (a:Company {company_id: $a})-[r]-(b:Company {company_id: $b})
		RETURN type(r) AS rel_type, r.strength AS strength, r.reasoning AS reasoning
		ORDER BY rel_type
	`
	records, err := n.read(ctx, "edges_between", query, map[string]any{"a": a, "b": b})
	if err != nil {
		return nil, err
	}
	edges := make([]types.DirectEdge, 0, len(records))
	for _, record := range records {
		edges = append(edges, types.DirectEdge{
			Type:      types.EdgeType(stringValue(record, "rel_type")),
			Strength:  optionalNumber(record, "strength"),
			Reasoning: stringValue(record, "reasoning"),
		})
	}
	return edges, nil
}

// CommonCompetitors returns companies competing with both a and b.
func (n *Neo4jDriver) CommonCompetitors(ctx context.Context, a, b string) ([]types.CompanyProfile, error) {
	query := `
		MATCH (a:Company {company_id: $a})-[:COMPETES_WITH]-(t:Company)-[:COMPETES_WITH]-(b:Company {company_id: $b})
		WHERE t.company_id <> $a AND t.company_id <> $b
		WITH DISTINCT t
		RETURN ` + companyColumns + `
		ORDER BY t.company_id
	`
	return n.profiles(ctx, "common_competitors", query, map[string]any{"a": a, "b": b})
}

// SharedSegments returns segments targeted by both a and b.
func (n *Neo4jDriver) SharedSegments(ctx context.Context, a, b string) ([]types.Segment, error) {
	query := `
		MATCH (a:Company {company_id: $a})-[:TARGETS_SAME_SEGMENT]->(s:Segment)<-[:TARGETS_SAME_SEGMENT]-(b:Company {company_id: $b})
		RETURN DISTINCT s.name AS segment, s.display_name AS display_name
		ORDER BY segment
	`
	records, err := n.read(ctx, "shared_segments", query, map[string]any{"a": a, "b": b})
	if err != nil {
		return nil, err
	}
	segments := make([]types.Segment, 0, len(records))
	for _, record := range records {
		segments = append(segments, types.Segment{
			Name:        stringValue(record, "segment"),
			DisplayName: stringValue(record, "display_name"),
		})
	}
	return segments, nil
}

// SharedThemes returns investment theme names shared by a and b.
func (n *Neo4jDriver) SharedThemes(ctx context.Context, a, b string) ([]string, error) {
	query := `
		MATCH (a:Company {company_id: $a})-[:SHARES_INVESTMENT_THEME]->(th:InvestmentTheme)<-[:SHARES_INVESTMENT_THEME]-(b:Company {company_id: $b})
		RETURN DISTINCT th.name AS theme
		ORDER BY theme
	`
	records, err := n.read(ctx, "shared_themes", query, map[string]any{"a": a, "b": b})
	if err != nil {
		return nil, err
	}
	themes := make([]string, 0, len(records))
	for _, record := range records {
		themes = append(themes, stringValue(record, "theme"))
	}
	return themes, nil
}

// Subgraph returns the company nodes among ids and the relationships between them.
// Nodes follow the order of ids; relationships are deduplicated by source, type and target.
func (n *Neo4jDriver) Subgraph(ctx context.Context, ids []string, center string) (*types.GraphVisualization, error) {
	graph := &types.GraphVisualization{Nodes: []types.GraphNode{}, Edges: []types.GraphLink{}}
	if len(ids) == 0 {
		return graph, nil
	}

	query := `
		MATCH (c:Company)
		WHERE c.company_id IN $ids
		OPTIONAL MATCH (c)-[r]-(other:Company)
		WHERE other.company_id IN $ids
		RETURN c.company_id AS id, c.name AS label, c.sector AS sector,
		       c.market_cap_b AS market_cap_b, c.moat_durability AS moat_durability,
		       collect(DISTINCT {
		           source: startNode(r).company_id,
		           target: endNode(r).company_id,
		           type: type(r),
		           strength: r.strength
		       }) AS edges
	`
	records, err := n.read(ctx, "subgraph", query, map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]types.GraphNode, len(records))
	seen := make(map[string]bool)
	for _, record := range records {
		id := stringValue(record, "id")
		nodes[id] = types.GraphNode{
			ID:             id,
			Label:          stringValue(record, "label"),
			Type:           "company",
			Sector:         stringValue(record, "sector"),
			MarketCapB:     optionalNumber(record, "market_cap_b"),
			MoatDurability: optionalNumber(record, "moat_durability"),
			IsCenter:       id == center,
		}

		raw, _ := record.Get("edges")
		items, _ := raw.([]any)
		for _, item := range items {
			m, ok := AsMap(item)
			if !ok {
				continue
			}
			source, _ := AsString(m["source"])
			target, _ := AsString(m["target"])
			relType, _ := AsString(m["type"])
			if source == "" || target == "" {
				continue
			}
			link := types.GraphLink{Source: source, Target: target, Type: types.EdgeType(relType)}
			if s, ok := AsNumber(m["strength"]); ok {
				link.Strength = &s
			}
			if seen[link.Key()] {
				continue
			}
			seen[link.Key()] = true
			graph.Edges = append(graph.Edges, link)
		}
	}

	for _, id := range ids {
		if node, ok := nodes[id]; ok {
			graph.Nodes = append(graph.Nodes, node)
			delete(nodes, id)
		}
	}
	return graph, nil
}

// CountCompanies returns the number of company nodes.
func (n *Neo4jDriver) CountCompanies(ctx context.Context) (int64, error) {
	records, err := n.read(ctx, "count_companies", `MATCH (c:Company) RETURN count(c) AS count`, nil)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	v, _ := records[0].Get("count")
	count, err := MustInt64(v, "count")
	if err != nil {
		return 0, storeError("count_companies", err)
	}
	return count, nil
}

// Ping verifies connectivity to the database.
func (n *Neo4jDriver) Ping(ctx context.Context) error {
	return storeError("ping", n.client.VerifyConnectivity(ctx))
}

// Close closes the underlying driver and its connection pool.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

// Provider returns GraphProviderNeo4j.
func (n *Neo4jDriver) Provider() GraphProvider {
	return GraphProviderNeo4j
}
