package retrieval

import (
	"context"
	"fmt"

	"github.com/soundprediction/investorlens/pkg/driver"
	"github.com/soundprediction/investorlens/pkg/types"
)

// CompetitorsTo gathers companies competing with id through direct competition,
// shared segments, shared investment themes and disruption in either direction.
// Companies linked only by shared themes are dropped.
func (e *Engine) CompetitorsTo(ctx context.Context, id string) ([]types.CandidateCompany, error) {
	if id == "" {
		return nil, types.ErrEmptyID
	}
	rows, err := e.traverse(ctx, "competitors to "+id,
		func(ctx context.Context) ([]driver.Neighbor, error) { return e.store.Competitors(ctx, id) },
		func(ctx context.Context) ([]driver.Neighbor, error) { return e.store.SegmentPeers(ctx, id) },
		func(ctx context.Context) ([]driver.Neighbor, error) { return e.store.ThemePeers(ctx, id) },
		func(ctx context.Context) ([]driver.Neighbor, error) { return e.store.Disruptions(ctx, id) },
	)
	if err != nil {
		return nil, err
	}
	competitors, segments, themes, disruptions := rows[0], rows[1], rows[2], rows[3]

	set := newCandidateSet(id)
	for _, n := range competitors {
		c, created := set.add(n.Company, types.GraphEdge{Type: types.EdgeCompetesWith, Strength: n.Strength})
		if created {
			c.CompetitionStrength = n.Strength
		}
	}
	for _, n := range segments {
		set.add(n.Company, types.GraphEdge{Type: types.EdgeSameSegment, Segment: n.Segment})
	}
	for _, n := range themes {
		set.add(n.Company, types.GraphEdge{Type: types.EdgeSharedTheme, Themes: n.Themes, Overlap: len(n.Themes)})
	}
	for _, n := range disruptions {
		set.add(n.Company, types.GraphEdge{Type: types.EdgeDisrupts, Strength: n.Strength, Direction: n.Direction})
	}

	set.retain(func(c *types.CandidateCompany) bool {
		return !c.OnlyEdgesOf(types.EdgeSharedTheme)
	})
	if err := e.annotatePartnerships(ctx, set.pointers()); err != nil {
		return nil, fmt.Errorf("competitors to %s: %w", id, err)
	}
	return set.candidates(), nil
}
