// Package ranking scores candidate companies under a persona and orders them.
package ranking

import (
	"math"
	"sort"

	"github.com/soundprediction/investorlens/pkg/persona"
	"github.com/soundprediction/investorlens/pkg/types"
)

// Graph boost values.
const (
	CompetesBoostScale = 0.15
	CompetesFlatBoost  = 0.10
	DisruptsBoost      = 0.10
	SameSegmentBoost   = 0.05

	// MaxComposite bounds every composite score: weights sum to 1 plus the largest boost.
	MaxComposite = 1.0 + CompetesBoostScale

	neutral = 0.5
)

type options struct {
	acquirer string
}

// Option configures Rank.
type Option func(*options)

// WithAcquirer excludes the acquiring company from the ranking.
func WithAcquirer(id string) Option {
	return func(o *options) { o.acquirer = id }
}

// Rank scores candidates under cfg and returns them best first with dense ranks
// starting at 1. Candidates are read, never modified. Ties keep their input order.
// An empty input yields an empty, non-nil slice.
func Rank(candidates []types.CandidateCompany, cfg persona.Config, opts ...Option) []types.RankedResult {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	pool := make([]*types.CandidateCompany, 0, len(candidates))
	for i := range candidates {
		if o.acquirer != "" && candidates[i].CompanyID == o.acquirer {
			continue
		}
		pool = append(pool, &candidates[i])
	}
	if len(pool) == 0 {
		return []types.RankedResult{}
	}

	normalized := make([][]float64, len(cfg.Weights))
	for i, w := range cfg.Weights {
		normalized[i] = normalize(pool, w.Attribute, cfg)
	}

	results := make([]types.RankedResult, len(pool))
	for j, c := range pool {
		breakdown := make(map[string]float64, len(cfg.Weights)+1)
		composite := 0.0
		for i, w := range cfg.Weights {
			contribution := normalized[i][j] * w.Weight
			breakdown[w.Attribute.String()] = round4(contribution)
			composite += contribution
		}
		boost := GraphBoost(c)
		composite += boost
		breakdown[types.GraphBoostKey] = round4(boost)

		results[j] = types.RankedResult{
			CompanyID:      c.CompanyID,
			Name:           c.Name,
			CompositeScore: round4(composite),
			ScoreBreakdown: breakdown,
			GraphContext:   copyEdges(c.Edges),
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].CompositeScore > results[b].CompositeScore
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// GraphBoost is the additive bonus from the candidate's graph evidence: the larger of
// the competition and disruption terms, or the same-segment bonus when neither
// applies. Shared themes alone earn nothing.
func GraphBoost(c *types.CandidateCompany) float64 {
	var boost float64
	if c.HasEdge(types.EdgeCompetesWith) {
		boost = CompetesFlatBoost
		if s := c.CompetitionStrength; s != nil && *s > 0 {
			boost = CompetesBoostScale * clamp01(*s)
		}
	}
	if c.HasEdge(types.EdgeDisrupts) {
		boost = max(boost, DisruptsBoost)
	}
	if boost == 0 && c.HasEdge(types.EdgeSameSegment) {
		boost = SameSegmentBoost
	}
	return boost
}

func normalize(pool []*types.CandidateCompany, a persona.Attribute, cfg persona.Config) []float64 {
	out := make([]float64, len(pool))

	if cfg.IsBinary(a) {
		for i, c := range pool {
			if v := a.Value(c); v != nil && *v > 0 {
				out[i] = 1
			}
		}
		return out
	}

	if a.Category() == persona.CategoryOrdinal {
		for i, c := range pool {
			n := neutral
			if v := a.Value(c); v != nil {
				n = clamp01(*v / 10)
			}
			out[i] = n
		}
	} else {
		minMax(pool, a, out)
	}

	if cfg.IsInverted(a) {
		for i := range out {
			out[i] = 1 - out[i]
		}
	}
	return out
}

// minMax scales present values onto [0,1] across the pool. Absent values and a
// zero span both map to the neutral 0.5, which inversion leaves unchanged.
func minMax(pool []*types.CandidateCompany, a persona.Attribute, out []float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range pool {
		if v := a.Value(c); v != nil {
			lo = math.Min(lo, *v)
			hi = math.Max(hi, *v)
		}
	}
	span := hi - lo
	for i, c := range pool {
		v := a.Value(c)
		if v == nil || !(span > 0) {
			out[i] = neutral
			continue
		}
		out[i] = (*v - lo) / span
	}
}

func copyEdges(edges []types.GraphEdge) []types.GraphEdge {
	out := make([]types.GraphEdge, len(edges))
	for i, e := range edges {
		out[i] = e
		if e.Strength != nil {
			s := *e.Strength
			out[i].Strength = &s
		}
		if e.Themes != nil {
			out[i].Themes = append([]string(nil), e.Themes...)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
