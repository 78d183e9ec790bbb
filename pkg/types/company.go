package types

// CatalogEntry is one company in the company catalog.
type CatalogEntry struct {
	CompanyID string `json:"company_id" yaml:"company_id"`
	Name      string `json:"name" yaml:"name"`
	Sector    string `json:"sector" yaml:"sector"`
	Ticker    string `json:"ticker,omitempty" yaml:"ticker,omitempty"`
}

// CompanyProfile holds the raw attributes of a company node.
// Ordinal LLM scores are on a 1-10 scale; financials are in billions where suffixed with _b.
type CompanyProfile struct {
	CompanyID string `json:"company_id" yaml:"company_id"`
	Name      string `json:"name" yaml:"name"`
	Sector    string `json:"sector" yaml:"sector"`
	Ticker    string `json:"ticker,omitempty" yaml:"ticker,omitempty"`

	// LLM scores
	MoatDurability                  *float64 `json:"moat_durability" yaml:"moat_durability"`
	EnterpriseReadinessScore        *float64 `json:"enterprise_readiness_score" yaml:"enterprise_readiness_score"`
	DeveloperAdoptionScore          *float64 `json:"developer_adoption_score" yaml:"developer_adoption_score"`
	ProductMaturityScore            *float64 `json:"product_maturity_score" yaml:"product_maturity_score"`
	CustomerSwitchingCost           *float64 `json:"customer_switching_cost" yaml:"customer_switching_cost"`
	RevenuePredictability           *float64 `json:"revenue_predictability" yaml:"revenue_predictability"`
	MarketTimingScore               *float64 `json:"market_timing_score" yaml:"market_timing_score"`
	OperationalImprovementPotential *float64 `json:"operational_improvement_potential" yaml:"operational_improvement_potential"`

	// Financials
	MarketCapB      *float64 `json:"market_cap_b" yaml:"market_cap_b"`
	RevenueTTMB     *float64 `json:"revenue_ttm_b" yaml:"revenue_ttm_b"`
	GrossMargin     *float64 `json:"gross_margin" yaml:"gross_margin"`
	OperatingMargin *float64 `json:"operating_margin" yaml:"operating_margin"`
	EBITDAB         *float64 `json:"ebitda_b" yaml:"ebitda_b"`
	FreeCashFlowB   *float64 `json:"free_cash_flow_b" yaml:"free_cash_flow_b"`
	DebtToEquity    *float64 `json:"debt_to_equity" yaml:"debt_to_equity"`
	PERatio         *float64 `json:"pe_ratio" yaml:"pe_ratio"`
	PriceToSales    *float64 `json:"price_to_sales" yaml:"price_to_sales"`

	// Growth
	YoYEmployeeGrowth *float64 `json:"yoy_employee_growth" yaml:"yoy_employee_growth"`
	GithubStars       *float64 `json:"github_stars" yaml:"github_stars"`
}

// Entry returns the catalog view of the profile.
func (p CompanyProfile) Entry() CatalogEntry {
	return CatalogEntry{
		CompanyID: p.CompanyID,
		Name:      p.Name,
		Sector:    p.Sector,
		Ticker:    p.Ticker,
	}
}

// EdgeType tags how a candidate was connected to the query subject.
type EdgeType string

const (
	EdgeCompetesWith   EdgeType = "COMPETES_WITH"
	EdgeDisrupts       EdgeType = "DISRUPTS"
	EdgeSameSegment    EdgeType = "TARGETS_SAME_SEGMENT"
	EdgeSharedTheme    EdgeType = "SHARES_INVESTMENT_THEME"
	EdgePartnersWith   EdgeType = "PARTNERS_WITH"
	EdgeSimilarProfile EdgeType = "SIMILAR_FINANCIAL_PROFILE"
)

// Direction of a disruption edge relative to the query subject.
type Direction string

const (
	DirectionAny         Direction = ""
	DirectionDisrupts    Direction = "disrupts"
	DirectionDisruptedBy Direction = "disrupted_by"
)

// GraphEdge is one piece of evidence linking a candidate to the query subject.
// Only the fields relevant to Type are populated.
type GraphEdge struct {
	Type      EdgeType  `json:"type"`
	Strength  *float64  `json:"strength,omitempty"`
	Direction Direction `json:"direction,omitempty"`
	Segment   string    `json:"segment,omitempty"`
	Themes    []string  `json:"themes,omitempty"`
	Overlap   int       `json:"overlap,omitempty"`
	Target    string    `json:"target,omitempty"`
	Partner   string    `json:"partner,omitempty"`
}

// CandidateCompany is a company under consideration for ranking within one query.
type CandidateCompany struct {
	CompanyProfile

	// Graph-derived attributes computed during retrieval.
	CompetitionStrength *float64 `json:"competition_strength,omitempty"`
	PartnershipCount    int      `json:"partnership_count"`
	PartnershipFit      float64  `json:"partnership_fit"`
	CompetitiveThreat   float64  `json:"competitive_threat"`

	Edges []GraphEdge `json:"graph_edges"`
}

// HasEdge reports whether the candidate carries at least one edge of type t.
func (c *CandidateCompany) HasEdge(t EdgeType) bool {
	for _, e := range c.Edges {
		if e.Type == t {
			return true
		}
	}
	return false
}

// OnlyEdgesOf reports whether every edge on the candidate is of type t.
// A candidate without edges returns false.
func (c *CandidateCompany) OnlyEdgesOf(t EdgeType) bool {
	if len(c.Edges) == 0 {
		return false
	}
	for _, e := range c.Edges {
		if e.Type != t {
			return false
		}
	}
	return true
}

// Float returns a pointer to v. Handy for building profiles in code and tests.
func Float(v float64) *float64 {
	return &v
}

// Property returns the raw numeric property stored under its graph name.
// The boolean is false when name is not a numeric company property.
func (p *CompanyProfile) Property(name string) (*float64, bool) {
	switch name {
	case "moat_durability":
		return p.MoatDurability, true
	case "enterprise_readiness_score":
		return p.EnterpriseReadinessScore, true
	case "developer_adoption_score":
		return p.DeveloperAdoptionScore, true
	case "product_maturity_score":
		return p.ProductMaturityScore, true
	case "customer_switching_cost":
		return p.CustomerSwitchingCost, true
	case "revenue_predictability":
		return p.RevenuePredictability, true
	case "market_timing_score":
		return p.MarketTimingScore, true
	case "operational_improvement_potential":
		return p.OperationalImprovementPotential, true
	case "market_cap_b":
		return p.MarketCapB, true
	case "revenue_ttm_b":
		return p.RevenueTTMB, true
	case "gross_margin":
		return p.GrossMargin, true
	case "operating_margin":
		return p.OperatingMargin, true
	case "ebitda_b":
		return p.EBITDAB, true
	case "free_cash_flow_b":
		return p.FreeCashFlowB, true
	case "debt_to_equity":
		return p.DebtToEquity, true
	case "pe_ratio":
		return p.PERatio, true
	case "price_to_sales":
		return p.PriceToSales, true
	case "yoy_employee_growth":
		return p.YoYEmployeeGrowth, true
	case "github_stars":
		return p.GithubStars, true
	}
	return nil, false
}

// SetProperty stores v under the graph property name. Unknown names are ignored.
func (p *CompanyProfile) SetProperty(name string, v *float64) {
	switch name {
	case "moat_durability":
		p.MoatDurability = v
	case "enterprise_readiness_score":
		p.EnterpriseReadinessScore = v
	case "developer_adoption_score":
		p.DeveloperAdoptionScore = v
	case "product_maturity_score":
		p.ProductMaturityScore = v
	case "customer_switching_cost":
		p.CustomerSwitchingCost = v
	case "revenue_predictability":
		p.RevenuePredictability = v
	case "market_timing_score":
		p.MarketTimingScore = v
	case "operational_improvement_potential":
		p.OperationalImprovementPotential = v
	case "market_cap_b":
		p.MarketCapB = v
	case "revenue_ttm_b":
		p.RevenueTTMB = v
	case "gross_margin":
		p.GrossMargin = v
	case "operating_margin":
		p.OperatingMargin = v
	case "ebitda_b":
		p.EBITDAB = v
	case "free_cash_flow_b":
		p.FreeCashFlowB = v
	case "debt_to_equity":
		p.DebtToEquity = v
	case "pe_ratio":
		p.PERatio = v
	case "price_to_sales":
		p.PriceToSales = v
	case "yoy_employee_growth":
		p.YoYEmployeeGrowth = v
	case "github_stars":
		p.GithubStars = v
	}
}

// PropertyNames lists every numeric company property in graph order.
var PropertyNames = []string{
	"moat_durability",
	"enterprise_readiness_score",
	"developer_adoption_score",
	"product_maturity_score",
	"customer_switching_cost",
	"revenue_predictability",
	"market_timing_score",
	"operational_improvement_potential",
	"market_cap_b",
	"revenue_ttm_b",
	"gross_margin",
	"operating_margin",
	"ebitda_b",
	"free_cash_flow_b",
	"debt_to_equity",
	"pe_ratio",
	"price_to_sales",
	"yoy_employee_growth",
	"github_stars",
}
