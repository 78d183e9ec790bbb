package retrieval

import (
	"context"
	"fmt"

	"github.com/soundprediction/investorlens/pkg/driver"
	"github.com/soundprediction/investorlens/pkg/types"
)

// AcquisitionTargets gathers companies acquirer could buy to compete with target:
// target's competitors, companies disrupting target and target's segment peers.
// Existing partners of acquirer get a partnership fit and a PARTNERS_WITH edge.
func (e *Engine) AcquisitionTargets(ctx context.Context, acquirer, target string) ([]types.CandidateCompany, error) {
	if acquirer == "" || target == "" {
		return nil, types.ErrEmptyID
	}
	op := fmt.Sprintf("acquisition targets for %s against %s", acquirer, target)
	rows, err := e.traverse(ctx, op,
		func(ctx context.Context) ([]driver.Neighbor, error) { return e.store.Competitors(ctx, target) },
		func(ctx context.Context) ([]driver.Neighbor, error) { return e.store.Disruptions(ctx, target) },
		func(ctx context.Context) ([]driver.Neighbor, error) { return e.store.SegmentPeers(ctx, target) },
		func(ctx context.Context) ([]driver.Neighbor, error) { return e.store.Partners(ctx, acquirer) },
	)
	if err != nil {
		return nil, err
	}
	competitors, disruptions, segments, partners := rows[0], rows[1], rows[2], rows[3]

	set := newCandidateSet(acquirer, target)
	for _, n := range competitors {
		c, created := set.add(n.Company, types.GraphEdge{Type: types.EdgeCompetesWith, Target: target, Strength: n.Strength})
		if created {
			c.CompetitiveThreat = valueOr(n.Strength, 0)
		}
	}
	for _, n := range disruptions {
		// Only companies disrupting the target threaten it.
		if n.Direction != types.DirectionDisruptedBy {
			continue
		}
		c, _ := set.add(n.Company, types.GraphEdge{Type: types.EdgeDisrupts, Target: target, Strength: n.Strength, Direction: n.Direction})
		if c != nil {
			c.CompetitiveThreat = max(c.CompetitiveThreat, valueOr(n.Strength, 0))
		}
	}
	for _, n := range segments {
		set.add(n.Company, types.GraphEdge{Type: types.EdgeSameSegment, Segment: n.Segment})
	}

	for _, p := range partners {
		c, ok := set.get(p.Company.CompanyID)
		if !ok {
			continue
		}
		c.PartnershipFit = valueOr(p.Strength, 0)
		c.Edges = append(c.Edges, types.GraphEdge{Type: types.EdgePartnersWith, Partner: acquirer, Strength: p.Strength})
	}

	if err := e.annotatePartnerships(ctx, set.pointers()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return set.candidates(), nil
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
