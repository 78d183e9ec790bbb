// Package persona defines the five investor viewpoints used to weight rankings.
package persona

import (
	"errors"
	"fmt"
	"math"

	"github.com/soundprediction/investorlens/pkg/types"
)

// Persona names.
const (
	ValueInvestor     = "value_investor"
	PEFirm            = "pe_firm"
	GrowthVC          = "growth_vc"
	StrategicAcquirer = "strategic_acquirer"
	EnterpriseBuyer   = "enterprise_buyer"

	// Default is used when a requested persona is unknown.
	Default = ValueInvestor
)

// weightTolerance bounds the rounding error allowed when weights are summed.
const weightTolerance = 1e-9

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid persona config")

// Weight is one weighted scoring attribute.
type Weight struct {
	Attribute Attribute
	Weight    float64
}

// Config is the immutable scoring configuration of one persona. Weights are ordered
// so composite sums are reproducible.
type Config struct {
	Name          string
	DisplayName   string
	Description   string
	Weights       []Weight
	Inverted      map[Attribute]bool
	Binary        map[Attribute]bool
	GraphPriority []types.EdgeType
}

// IsInverted reports whether lower raw values of a score higher.
func (c Config) IsInverted(a Attribute) bool { return c.Inverted[a] }

// IsBinary reports whether a is thresholded at zero instead of normalized.
func (c Config) IsBinary(a Attribute) bool { return c.Binary[a] }

// WeightOf returns the weight of a, or 0 when the persona does not use it.
func (c Config) WeightOf(a Attribute) float64 {
	for _, w := range c.Weights {
		if w.Attribute == a {
			return w.Weight
		}
	}
	return 0
}

// WeightMap returns the weights keyed by breakdown name.
func (c Config) WeightMap() map[string]float64 {
	m := make(map[string]float64, len(c.Weights))
	for _, w := range c.Weights {
		m[w.Attribute.String()] = w.Weight
	}
	return m
}

func (c Config) clone() Config {
	out := c
	out.Weights = append([]Weight(nil), c.Weights...)
	out.GraphPriority = append([]types.EdgeType(nil), c.GraphPriority...)
	out.Inverted = make(map[Attribute]bool, len(c.Inverted))
	for k, v := range c.Inverted {
		out.Inverted[k] = v
	}
	out.Binary = make(map[Attribute]bool, len(c.Binary))
	for k, v := range c.Binary {
		out.Binary[k] = v
	}
	return out
}

var names = []string{ValueInvestor, PEFirm, GrowthVC, StrategicAcquirer, EnterpriseBuyer}

var personas = map[string]Config{
	ValueInvestor: {
		Name:        ValueInvestor,
		DisplayName: "Value Investor",
		Description: "Seeks durable moats, strong free cash flow, high switching costs, and reasonable valuations.",
		Weights: []Weight{
			{MoatDurability, 0.25},
			{FreeCashFlowPositive, 0.20},
			{CustomerSwitchingCost, 0.20},
			{LowDebt, 0.15},
			{RevenuePredictability, 0.10},
			{ValuationMargin, 0.10},
		},
		Inverted:      map[Attribute]bool{LowDebt: true, ValuationMargin: true},
		Binary:        map[Attribute]bool{FreeCashFlowPositive: true},
		GraphPriority: []types.EdgeType{types.EdgeSharedTheme, types.EdgeCompetesWith},
	},
	PEFirm: {
		Name:        PEFirm,
		DisplayName: "PE Firm",
		Description: "Targets high margins, operational improvement upside, predictable revenue, and reasonable valuation multiples.",
		Weights: []Weight{
			{OperatingMargin, 0.25},
			{OperationalImprovementPotential, 0.20},
			{RevenuePredictability, 0.20},
			{ValuationMargin, 0.15},
			{CustomerSwitchingCost, 0.10},
			{EnterpriseReadiness, 0.10},
		},
		Inverted:      map[Attribute]bool{ValuationMargin: true},
		GraphPriority: []types.EdgeType{types.EdgeSameSegment, types.EdgeCompetesWith},
	},
	GrowthVC: {
		Name:        GrowthVC,
		DisplayName: "Growth VC",
		Description: "Prioritizes fast growth, TAM capture, developer traction, and market timing over profitability.",
		Weights: []Weight{
			{YoYEmployeeGrowth, 0.25},
			{MarketTiming, 0.25},
			{DeveloperAdoption, 0.20},
			{GithubStarsNormalized, 0.15},
			{ProductMaturityInverse, 0.15},
		},
		Inverted:      map[Attribute]bool{ProductMaturityInverse: true},
		GraphPriority: []types.EdgeType{types.EdgeDisrupts, types.EdgeSameSegment},
	},
	StrategicAcquirer: {
		Name:        StrategicAcquirer,
		DisplayName: "Strategic Acquirer",
		Description: "Evaluates tech differentiation, partnership fit, competitive threat neutralization, and acquirability.",
		Weights: []Weight{
			{MoatDurability, 0.25},
			{PartnershipFit, 0.20},
			{CompetitiveThreat, 0.20},
			{DeveloperAdoption, 0.15},
			{SmallEnoughToAcquire, 0.10},
			{ProductMaturity, 0.10},
		},
		Inverted:      map[Attribute]bool{SmallEnoughToAcquire: true},
		GraphPriority: []types.EdgeType{types.EdgeDisrupts, types.EdgePartnersWith, types.EdgeCompetesWith},
	},
	EnterpriseBuyer: {
		Name:        EnterpriseBuyer,
		DisplayName: "Enterprise Buyer",
		Description: "Values product maturity, enterprise readiness, ecosystem integrations, and low vendor lock-in risk.",
		Weights: []Weight{
			{ProductMaturity, 0.25},
			{EnterpriseReadiness, 0.20},
			{PartnershipCount, 0.20},
			{CustomerSwitchingCostInverse, 0.15},
			{RevenuePredictability, 0.10},
			{DeveloperAdoption, 0.10},
		},
		Inverted:      map[Attribute]bool{CustomerSwitchingCostInverse: true},
		GraphPriority: []types.EdgeType{types.EdgeSameSegment, types.EdgePartnersWith},
	},
}

func init() {
	for _, name := range names {
		if err := Validate(personas[name]); err != nil {
			panic(err)
		}
	}
}

// Names returns the persona names in their fixed display order.
func Names() []string {
	return append([]string(nil), names...)
}

// Lookup returns the named persona.
func Lookup(name string) (Config, bool) {
	cfg, ok := personas[name]
	if !ok {
		return Config{}, false
	}
	return cfg.clone(), true
}

// Get returns the named persona, or the default persona when name is unknown.
// The boolean reports whether name was known.
func Get(name string) (Config, bool) {
	if cfg, ok := Lookup(name); ok {
		return cfg, true
	}
	cfg, _ := Lookup(Default)
	return cfg, false
}

// Known reports whether name is a persona.
func Known(name string) bool {
	_, ok := personas[name]
	return ok
}

// All returns every persona in display order.
func All() []Config {
	out := make([]Config, 0, len(names))
	for _, name := range names {
		cfg, _ := Lookup(name)
		out = append(out, cfg)
	}
	return out
}

// Validate checks a persona configuration: weights must use distinct, defined
// attributes, be non-negative and sum to 1.0; binary attributes must be weighted and
// cannot also be inverted.
func Validate(cfg Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidConfig)
	}
	if len(cfg.Weights) == 0 {
		return fmt.Errorf("%w: %s has no weights", ErrInvalidConfig, cfg.Name)
	}
	seen := make(map[Attribute]bool, len(cfg.Weights))
	sum := 0.0
	for _, w := range cfg.Weights {
		if !w.Attribute.Valid() {
			return fmt.Errorf("%w: %s weights undefined attribute %d", ErrInvalidConfig, cfg.Name, w.Attribute)
		}
		if seen[w.Attribute] {
			return fmt.Errorf("%w: %s weights %s twice", ErrInvalidConfig, cfg.Name, w.Attribute)
		}
		if w.Weight < 0 {
			return fmt.Errorf("%w: %s has negative weight for %s", ErrInvalidConfig, cfg.Name, w.Attribute)
		}
		seen[w.Attribute] = true
		sum += w.Weight
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: %s weights sum to %v, want 1.0", ErrInvalidConfig, cfg.Name, sum)
	}
	for a := range cfg.Binary {
		if !seen[a] {
			return fmt.Errorf("%w: %s binary attribute %s is not weighted", ErrInvalidConfig, cfg.Name, a)
		}
		if cfg.Inverted[a] {
			return fmt.Errorf("%w: %s attribute %s is both binary and inverted", ErrInvalidConfig, cfg.Name, a)
		}
	}
	for a := range cfg.Inverted {
		if !seen[a] {
			return fmt.Errorf("%w: %s inverted attribute %s is not weighted", ErrInvalidConfig, cfg.Name, a)
		}
	}
	return nil
}
