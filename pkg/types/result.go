package types

// GraphBoostKey is the reserved score-breakdown key holding the graph boost.
const GraphBoostKey = "_graph_boost"

// RankedResult is one ranked, attributed company.
type RankedResult struct {
	Rank           int                `json:"rank"`
	CompanyID      string             `json:"company_id"`
	Name           string             `json:"name"`
	CompositeScore float64            `json:"composite_score"`
	ScoreBreakdown map[string]float64 `json:"score_breakdown"`
	GraphContext   []GraphEdge        `json:"graph_context"`
}

// DirectEdge is a relationship directly connecting the two companies of a compare query.
type DirectEdge struct {
	Type      EdgeType `json:"rel_type"`
	Strength  *float64 `json:"strength,omitempty"`
	Reasoning string   `json:"reasoning,omitempty"`
}

// Segment is a market segment node.
type Segment struct {
	Name        string `json:"segment" yaml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
}

// CompareData is the structured side-by-side data of a compare query.
// CompanyA or CompanyB is nil when the identifier has no node in the graph.
type CompareData struct {
	CompanyA          *CandidateCompany  `json:"company_a"`
	CompanyB          *CandidateCompany  `json:"company_b"`
	SharedEdges       []DirectEdge       `json:"shared_edges"`
	CommonCompetitors []CandidateCompany `json:"common_competitors"`
	SharedSegments    []Segment          `json:"shared_segments"`
	SharedThemes      []string           `json:"shared_themes"`
}

// CommonCompetitorIDs returns the identifiers of the common competitors.
func (d *CompareData) CommonCompetitorIDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, 0, len(d.CommonCompetitors))
	for _, c := range d.CommonCompetitors {
		ids = append(ids, c.CompanyID)
	}
	return ids
}

// GraphNode is a company node of a visualization subgraph.
type GraphNode struct {
	ID             string   `json:"id"`
	Label          string   `json:"label"`
	Type           string   `json:"type"`
	Sector         string   `json:"sector"`
	MarketCapB     *float64 `json:"market_cap_b"`
	MoatDurability *float64 `json:"moat_durability"`
	IsCenter       bool     `json:"is_center"`
}

// GraphLink is a relationship of a visualization subgraph.
type GraphLink struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Type     EdgeType `json:"type"`
	Strength *float64 `json:"strength,omitempty"`
}

// Key identifies the link for deduplication.
func (l GraphLink) Key() string {
	return l.Source + "-" + string(l.Type) + "-" + l.Target
}

// GraphVisualization is the subgraph rendered next to a result list.
type GraphVisualization struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphLink `json:"edges"`
}

// SearchMetadata carries timing and diagnostics for one search.
type SearchMetadata struct {
	ElapsedMS      int64    `json:"elapsed_ms"`
	CandidateCount int      `json:"candidate_count"`
	Warnings       []string `json:"warnings,omitempty"`
}

// SearchResult is the assembled output of one persona pipeline.
type SearchResult struct {
	Query          ParsedQuery        `json:"parsed_query"`
	Persona        string             `json:"persona"`
	PersonaDisplay string             `json:"persona_display"`
	Results        []RankedResult     `json:"ranked_results"`
	CompareData    *CompareData       `json:"compare_data"`
	Graph          GraphVisualization `json:"graph_visualization"`
	Metadata       SearchMetadata     `json:"metadata"`
}

// Top returns at most n leading results.
func (r *SearchResult) Top(n int) []RankedResult {
	if r == nil {
		return nil
	}
	if n < 0 || n > len(r.Results) {
		n = len(r.Results)
	}
	return r.Results[:n]
}

// PersonaSummary is one persona's entry in a cross-persona summary.
type PersonaSummary struct {
	PersonaDisplay string         `json:"persona_display"`
	TopResults     []RankedResult `json:"top_results"`
}
