package persona

import (
	"github.com/soundprediction/investorlens/pkg/types"
)

// Category decides how an attribute is normalized across a candidate set.
type Category int

const (
	// CategoryOrdinal attributes are 1-10 LLM scores, normalized by dividing by 10.
	CategoryOrdinal Category = iota
	// CategoryFinancial attributes are min-max normalized.
	CategoryFinancial
	// CategoryGrowth attributes are min-max normalized.
	CategoryGrowth
	// CategoryGraph attributes are computed during retrieval and min-max normalized.
	CategoryGraph
)

func (c Category) String() string {
	switch c {
	case CategoryOrdinal:
		return "ordinal"
	case CategoryFinancial:
		return "financial"
	case CategoryGrowth:
		return "growth"
	case CategoryGraph:
		return "graph"
	}
	return "unknown"
}

// Attribute is a scoring attribute a persona can weight.
type Attribute int

const (
	MoatDurability Attribute = iota
	CustomerSwitchingCost
	RevenuePredictability
	OperationalImprovementPotential
	EnterpriseReadiness
	DeveloperAdoption
	ProductMaturity
	MarketTiming
	ProductMaturityInverse
	CustomerSwitchingCostInverse

	OperatingMargin
	ValuationMargin
	LowDebt
	FreeCashFlowPositive
	SmallEnoughToAcquire

	YoYEmployeeGrowth
	GithubStarsNormalized

	PartnershipFit
	CompetitiveThreat
	PartnershipCount

	numAttributes
)

type attributeSpec struct {
	name     string
	category Category
	value    func(c *types.CandidateCompany) *float64
}

func graphValue(v float64) *float64 { return &v }

var attributes = [numAttributes]attributeSpec{
	MoatDurability:                  {"moat_durability", CategoryOrdinal, func(c *types.CandidateCompany) *float64 { return c.MoatDurability }},
	CustomerSwitchingCost:           {"customer_switching_cost", CategoryOrdinal, func(c *types.CandidateCompany) *float64 { return c.CustomerSwitchingCost }},
	RevenuePredictability:           {"revenue_predictability", CategoryOrdinal, func(c *types.CandidateCompany) *float64 { return c.RevenuePredictability }},
	OperationalImprovementPotential: {"operational_improvement_potential", CategoryOrdinal, func(c *types.CandidateCompany) *float64 { return c.OperationalImprovementPotential }},
	EnterpriseReadiness:             {"enterprise_readiness_score", CategoryOrdinal, func(c *types.CandidateCompany) *float64 { return c.EnterpriseReadinessScore }},
	DeveloperAdoption:               {"developer_adoption_score", CategoryOrdinal, func(c *types.CandidateCompany) *float64 { return c.DeveloperAdoptionScore }},
	ProductMaturity:                 {"product_maturity_score", CategoryOrdinal, func(c *types.CandidateCompany) *float64 { return c.ProductMaturityScore }},
	MarketTiming:                    {"market_timing_score", CategoryOrdinal, func(c *types.CandidateCompany) *float64 { return c.MarketTimingScore }},
	ProductMaturityInverse:          {"product_maturity_inverse", CategoryOrdinal, func(c *types.CandidateCompany) *float64 { return c.ProductMaturityScore }},
	CustomerSwitchingCostInverse:    {"customer_switching_cost_inverse", CategoryOrdinal, func(c *types.CandidateCompany) *float64 { return c.CustomerSwitchingCost }},

	OperatingMargin:      {"operating_margin", CategoryFinancial, func(c *types.CandidateCompany) *float64 { return c.OperatingMargin }},
	ValuationMargin:      {"valuation_margin", CategoryFinancial, func(c *types.CandidateCompany) *float64 { return c.PriceToSales }},
	LowDebt:              {"low_debt", CategoryFinancial, func(c *types.CandidateCompany) *float64 { return c.DebtToEquity }},
	FreeCashFlowPositive: {"free_cash_flow_positive", CategoryFinancial, func(c *types.CandidateCompany) *float64 { return c.FreeCashFlowB }},
	SmallEnoughToAcquire: {"small_enough_to_acquire", CategoryFinancial, func(c *types.CandidateCompany) *float64 { return c.MarketCapB }},

	YoYEmployeeGrowth:     {"yoy_employee_growth", CategoryGrowth, func(c *types.CandidateCompany) *float64 { return c.YoYEmployeeGrowth }},
	GithubStarsNormalized: {"github_stars_normalized", CategoryGrowth, func(c *types.CandidateCompany) *float64 { return c.GithubStars }},

	PartnershipFit:    {"partnership_fit", CategoryGraph, func(c *types.CandidateCompany) *float64 { return graphValue(c.PartnershipFit) }},
	CompetitiveThreat: {"competitive_threat", CategoryGraph, func(c *types.CandidateCompany) *float64 { return graphValue(c.CompetitiveThreat) }},
	PartnershipCount:  {"partnership_count", CategoryGraph, func(c *types.CandidateCompany) *float64 { return graphValue(float64(c.PartnershipCount)) }},
}

var attributesByName = func() map[string]Attribute {
	m := make(map[string]Attribute, numAttributes)
	for a := Attribute(0); a < numAttributes; a++ {
		m[attributes[a].name] = a
	}
	return m
}()

// Valid reports whether a is a defined attribute.
func (a Attribute) Valid() bool {
	return a >= 0 && a < numAttributes
}

// String returns the attribute's breakdown key, e.g. "moat_durability".
func (a Attribute) String() string {
	if !a.Valid() {
		return "unknown"
	}
	return attributes[a].name
}

// Category returns how the attribute is normalized.
func (a Attribute) Category() Category {
	return attributes[a].category
}

// Value extracts the raw value from a candidate. Nil means absent.
func (a Attribute) Value(c *types.CandidateCompany) *float64 {
	return attributes[a].value(c)
}

// ParseAttribute returns the attribute with the given breakdown key.
func ParseAttribute(name string) (Attribute, bool) {
	a, ok := attributesByName[name]
	return a, ok
}
