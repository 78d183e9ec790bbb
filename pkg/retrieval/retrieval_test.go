package retrieval

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/investorlens/pkg/driver"
	"github.com/soundprediction/investorlens/pkg/sampledata"
	"github.com/soundprediction/investorlens/pkg/types"
)

// spyStore wraps a real store, counting batched calls and optionally failing one traversal.
type spyStore struct {
	driver.GraphStore
	partnershipCalls atomic.Int32
	failThemes       error
	failCounts       error
}

func (s *spyStore) ThemePeers(ctx context.Context, id string) ([]driver.Neighbor, error) {
	if s.failThemes != nil {
		return nil, s.failThemes
	}
	return s.GraphStore.ThemePeers(ctx, id)
}

func (s *spyStore) PartnershipCounts(ctx context.Context, ids []string) (map[string]int, error) {
	s.partnershipCalls.Add(1)
	if s.failCounts != nil {
		return nil, s.failCounts
	}
	return s.GraphStore.PartnershipCounts(ctx, ids)
}

func newEngine(t *testing.T) (*Engine, *spyStore) {
	t.Helper()
	store, err := sampledata.Store()
	require.NoError(t, err)
	spy := &spyStore{GraphStore: store}
	return NewEngine(spy, WithConcurrency(2)), spy
}

func byID(candidates []types.CandidateCompany) map[string]types.CandidateCompany {
	m := make(map[string]types.CandidateCompany, len(candidates))
	for _, c := range candidates {
		m[c.CompanyID] = c
	}
	return m
}

func ids(candidates []types.CandidateCompany) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.CompanyID)
	}
	return out
}

func TestCompetitorsTo(t *testing.T) {
	engine, spy := newEngine(t)

	candidates, err := engine.CompetitorsTo(context.Background(), "snowflake")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"azure_synapse", "bigquery", "clickhouse", "databricks", "redshift", "teradata",
		"cloudera", "firebolt", "motherduck",
	}, ids(candidates))
	assert.Equal(t, int32(1), spy.partnershipCalls.Load(), "partnership counts are batched")

	// Direct competitors come first, in store order.
	assert.Equal(t, []string{"azure_synapse", "bigquery", "clickhouse", "databricks", "redshift", "teradata"}, ids(candidates)[:6])

	got := byID(candidates)
	assert.NotContains(t, got, "snowflake")
	for _, themeOnly := range []string{"fivetran", "dbt_labs", "monte_carlo", "pinecone", "palantir"} {
		assert.NotContains(t, got, themeOnly)
	}
	for _, c := range candidates {
		assert.False(t, c.OnlyEdgesOf(types.EdgeSharedTheme), c.CompanyID)
	}

	databricks := got["databricks"]
	require.NotNil(t, databricks.CompetitionStrength)
	assert.InDelta(t, 0.95, *databricks.CompetitionStrength, 1e-9)
	assert.Equal(t, 4, databricks.PartnershipCount)
	require.Len(t, databricks.Edges, 3)
	assert.Equal(t, types.EdgeCompetesWith, databricks.Edges[0].Type)
	assert.Equal(t, types.GraphEdge{Type: types.EdgeSameSegment, Segment: "Cloud Data Platforms"}, databricks.Edges[1])
	assert.Equal(t, types.EdgeSharedTheme, databricks.Edges[2].Type)
	assert.Equal(t, []string{"ai_infrastructure", "cloud_migration"}, databricks.Edges[2].Themes)
	assert.Equal(t, 2, databricks.Edges[2].Overlap)

	teradata := got["teradata"]
	require.True(t, teradata.HasEdge(types.EdgeDisrupts))
	for _, e := range teradata.Edges {
		if e.Type == types.EdgeDisrupts {
			assert.Equal(t, types.DirectionDisrupts, e.Direction)
		}
	}

	motherduck := got["motherduck"]
	assert.Nil(t, motherduck.CompetitionStrength)
	assert.True(t, motherduck.HasEdge(types.EdgeDisrupts))
	assert.Equal(t, types.DirectionDisruptedBy, motherduck.Edges[len(motherduck.Edges)-1].Direction)

	assert.Equal(t, 3, got["bigquery"].PartnershipCount)
	assert.Equal(t, 0, got["cloudera"].PartnershipCount)
}

func TestCompetitorsTo_Unknown(t *testing.T) {
	engine, _ := newEngine(t)
	candidates, err := engine.CompetitorsTo(context.Background(), "oracle")
	require.NoError(t, err)
	assert.Empty(t, candidates)

	_, err = engine.CompetitorsTo(context.Background(), "")
	assert.ErrorIs(t, err, types.ErrEmptyID)
}

func TestCompetitorsTo_StrategyFailureFailsCall(t *testing.T) {
	engine, spy := newEngine(t)
	spy.failThemes = &driver.StoreError{Op: "theme_peers", Err: errors.New("connection reset")}

	candidates, err := engine.CompetitorsTo(context.Background(), "snowflake")
	assert.Nil(t, candidates)
	assert.ErrorIs(t, err, types.ErrGraphStoreUnavailable)
	assert.ErrorContains(t, err, "competitors to snowflake")
	assert.Equal(t, int32(0), spy.partnershipCalls.Load())
}

func TestCompetitorsTo_PartnershipFailureFailsCall(t *testing.T) {
	engine, spy := newEngine(t)
	spy.failCounts = &driver.StoreError{Op: "partnership_counts", Err: errors.New("timeout")}

	_, err := engine.CompetitorsTo(context.Background(), "snowflake")
	assert.ErrorIs(t, err, types.ErrGraphStoreUnavailable)
}

func TestCompetitorsTo_Cancelled(t *testing.T) {
	engine, _ := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.CompetitorsTo(ctx, "snowflake")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAcquisitionTargets(t *testing.T) {
	engine, spy := newEngine(t)

	candidates, err := engine.AcquisitionTargets(context.Background(), "bigquery", "palantir")
	require.NoError(t, err)
	assert.Equal(t, int32(1), spy.partnershipCalls.Load())

	got := byID(candidates)
	assert.ElementsMatch(t, []string{"c3ai", "databricks", "dataiku", "datarobot", "h2o_ai"}, ids(candidates))
	assert.NotContains(t, got, "bigquery")
	assert.NotContains(t, got, "palantir")

	c3ai := got["c3ai"]
	assert.InDelta(t, 0.85, c3ai.CompetitiveThreat, 1e-9)
	// Edge strength lands on the threat only; competition strength belongs to competitor queries.
	assert.Nil(t, c3ai.CompetitionStrength)
	require.NotNil(t, c3ai.Edges[0].Strength)
	assert.InDelta(t, 0.85, *c3ai.Edges[0].Strength, 1e-9)
	assert.Equal(t, "palantir", c3ai.Edges[0].Target)
	assert.Zero(t, c3ai.PartnershipFit)

	// Dataiku competes with and disrupts palantir; the threat keeps the maximum.
	dataiku := got["dataiku"]
	assert.InDelta(t, 0.6, dataiku.CompetitiveThreat, 1e-9)
	assert.Nil(t, dataiku.CompetitionStrength)
	assert.True(t, dataiku.HasEdge(types.EdgeDisrupts))
	assert.InDelta(t, 0.7, dataiku.PartnershipFit, 1e-9)
	last := dataiku.Edges[len(dataiku.Edges)-1]
	assert.Equal(t, types.EdgePartnersWith, last.Type)
	assert.Equal(t, "bigquery", last.Partner)

	assert.InDelta(t, 0.5, got["datarobot"].PartnershipFit, 1e-9)

	// Segment-only candidates carry no threat.
	h2o := got["h2o_ai"]
	assert.Zero(t, h2o.CompetitiveThreat)
	assert.True(t, h2o.OnlyEdgesOf(types.EdgeSameSegment))
}

func TestAcquisitionTargets_ExcludesAcquirer(t *testing.T) {
	engine, _ := newEngine(t)

	// Databricks competes with palantir; as the acquirer it must not be a target.
	candidates, err := engine.AcquisitionTargets(context.Background(), "databricks", "palantir")
	require.NoError(t, err)
	assert.NotContains(t, ids(candidates), "databricks")

	// Only companies disrupting the target count; snowflake disrupts teradata, not the reverse.
	candidates, err = engine.AcquisitionTargets(context.Background(), "redshift", "snowflake")
	require.NoError(t, err)
	got := byID(candidates)
	for _, e := range got["teradata"].Edges {
		assert.NotEqual(t, types.EdgeDisrupts, e.Type)
	}
	firebolt := got["firebolt"]
	assert.True(t, firebolt.HasEdge(types.EdgeDisrupts))
	assert.InDelta(t, 0.35, firebolt.CompetitiveThreat, 1e-9)
}

func TestCompare(t *testing.T) {
	engine, spy := newEngine(t)

	data, err := engine.Compare(context.Background(), "databricks", "snowflake")
	require.NoError(t, err)
	assert.Equal(t, int32(1), spy.partnershipCalls.Load())

	require.NotNil(t, data.CompanyA)
	require.NotNil(t, data.CompanyB)
	assert.Equal(t, "databricks", data.CompanyA.CompanyID)
	assert.Equal(t, 4, data.CompanyA.PartnershipCount)
	assert.Equal(t, 5, data.CompanyB.PartnershipCount)

	require.Len(t, data.SharedEdges, 1)
	assert.Equal(t, types.EdgeCompetesWith, data.SharedEdges[0].Type)
	assert.NotEmpty(t, data.SharedEdges[0].Reasoning)

	assert.Equal(t, []string{"azure_synapse", "bigquery", "redshift"}, data.CommonCompetitorIDs())
	assert.Equal(t, 3, data.CommonCompetitors[1].PartnershipCount)
	assert.Equal(t, []types.Segment{{Name: "cloud_data_platforms", DisplayName: "Cloud Data Platforms"}}, data.SharedSegments)
	assert.Equal(t, []string{"ai_infrastructure", "cloud_migration"}, data.SharedThemes)

	candidates := CompareCandidates(data)
	assert.Equal(t, []string{"databricks", "snowflake", "azure_synapse", "bigquery", "redshift"}, ids(candidates))
}

func TestCompare_MissingSide(t *testing.T) {
	engine, _ := newEngine(t)

	data, err := engine.Compare(context.Background(), "snowflake", "oracle")
	require.NoError(t, err)
	require.NotNil(t, data.CompanyA)
	assert.Nil(t, data.CompanyB)
	assert.NotNil(t, data.SharedEdges)
	assert.Empty(t, data.CommonCompetitors)
	assert.Empty(t, data.SharedThemes)
	assert.Len(t, CompareCandidates(data), 1)
	assert.Empty(t, CompareCandidates(nil))
}

func TestAttributeRanked(t *testing.T) {
	engine, spy := newEngine(t)

	candidates, used, err := engine.AttributeRanked(context.Background(), "moat_durability", 3)
	require.NoError(t, err)
	assert.Equal(t, "moat_durability", used)
	assert.Equal(t, []string{"azure_synapse", "bigquery", "databricks"}, ids(candidates))
	assert.Equal(t, int32(1), spy.partnershipCalls.Load())
	assert.Equal(t, 2, candidates[0].PartnershipCount)
	assert.NotNil(t, candidates[0].Edges)
}

func TestAttributeRanked_Fallbacks(t *testing.T) {
	engine, _ := newEngine(t)

	byFallback, used, err := engine.AttributeRanked(context.Background(), "github_stars; DROP", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultAttribute, used)

	byDefault, _, err := engine.AttributeRanked(context.Background(), DefaultAttribute, DefaultAttributeLimit)
	require.NoError(t, err)
	assert.Equal(t, ids(byDefault), ids(byFallback))
	assert.LessOrEqual(t, len(byFallback), DefaultAttributeLimit)

	// Companies without the property are never returned.
	assert.NotContains(t, ids(byFallback), "starrocks")
}

func TestRankableAttribute(t *testing.T) {
	assert.True(t, RankableAttribute("yoy_employee_growth"))
	assert.False(t, RankableAttribute("github_stars"))
	assert.False(t, RankableAttribute(""))
}

func TestSubgraph(t *testing.T) {
	engine, _ := newEngine(t)

	g, err := engine.Subgraph(context.Background(), []string{"snowflake", "databricks", "", "snowflake", "bigquery"}, "snowflake")
	require.NoError(t, err)
	require.Len(t, g.Nodes, 3)
	assert.Equal(t, "snowflake", g.Nodes[0].ID)
	assert.True(t, g.Nodes[0].IsCenter)
	assert.False(t, g.Nodes[1].IsCenter)

	keys := map[string]bool{}
	for _, e := range g.Edges {
		assert.False(t, keys[e.Key()], "duplicate edge %s", e.Key())
		keys[e.Key()] = true
		assert.Contains(t, []string{"snowflake", "databricks", "bigquery"}, e.Source)
		assert.Contains(t, []string{"snowflake", "databricks", "bigquery"}, e.Target)
	}
	assert.True(t, keys["snowflake-COMPETES_WITH-databricks"])

	empty, err := engine.Subgraph(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Empty(t, empty.Nodes)
	assert.NotNil(t, empty.Edges)
}

func TestCandidateSet(t *testing.T) {
	set := newCandidateSet("self")

	c, created := set.add(types.CompanyProfile{CompanyID: "a", Name: "A"}, types.GraphEdge{Type: types.EdgeCompetesWith})
	require.True(t, created)
	c.CompetitionStrength = types.Float(0.5)

	// A later strategy appends evidence without replacing attributes.
	again, created := set.add(types.CompanyProfile{CompanyID: "a", Name: "Renamed"}, types.GraphEdge{Type: types.EdgeSameSegment})
	assert.False(t, created)
	assert.Same(t, c, again)
	assert.Equal(t, "A", again.Name)
	assert.Len(t, again.Edges, 2)

	excluded, _ := set.add(types.CompanyProfile{CompanyID: "self"}, types.GraphEdge{})
	assert.Nil(t, excluded)

	set.add(types.CompanyProfile{CompanyID: "b"}, types.GraphEdge{Type: types.EdgeSharedTheme})
	set.retain(func(c *types.CandidateCompany) bool { return !c.OnlyEdgesOf(types.EdgeSharedTheme) })
	assert.Equal(t, []string{"a"}, ids(set.candidates()))
	_, ok := set.get("b")
	assert.False(t, ok)
}
