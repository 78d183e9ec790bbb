package driver_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/investorlens/pkg/driver"
	"github.com/soundprediction/investorlens/pkg/sampledata"
	"github.com/soundprediction/investorlens/pkg/types"
)

func newSampleStore(t *testing.T) *driver.MemoryDriver {
	t.Helper()
	store, err := sampledata.Store()
	require.NoError(t, err)
	return store
}

func neighborIDs(rows []driver.Neighbor) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Company.CompanyID)
	}
	return ids
}

func TestMemoryDriver_Competitors(t *testing.T) {
	store := newSampleStore(t)
	rows, err := store.Competitors(context.Background(), "snowflake")
	require.NoError(t, err)

	assert.Equal(t, []string{"azure_synapse", "bigquery", "clickhouse", "databricks", "redshift", "teradata"}, neighborIDs(rows))
	for _, r := range rows {
		if r.Company.CompanyID == "databricks" {
			require.NotNil(t, r.Strength)
			assert.InDelta(t, 0.95, *r.Strength, 1e-9)
			assert.Equal(t, "Databricks", r.Company.Name)
		}
	}
}

func TestMemoryDriver_Disruptions(t *testing.T) {
	store := newSampleStore(t)
	rows, err := store.Disruptions(context.Background(), "snowflake")
	require.NoError(t, err)

	got := map[string]types.Direction{}
	for _, r := range rows {
		got[r.Company.CompanyID] = r.Direction
	}
	assert.Equal(t, map[string]types.Direction{
		"clickhouse": types.DirectionDisruptedBy,
		"firebolt":   types.DirectionDisruptedBy,
		"motherduck": types.DirectionDisruptedBy,
		"teradata":   types.DirectionDisrupts,
	}, got)
}

func TestMemoryDriver_SegmentAndThemePeers(t *testing.T) {
	store := newSampleStore(t)
	ctx := context.Background()

	segments, err := store.SegmentPeers(ctx, "snowflake")
	require.NoError(t, err)
	assert.Len(t, segments, 7)
	for _, r := range segments {
		assert.Equal(t, "Cloud Data Platforms", r.Segment)
		assert.NotEqual(t, "snowflake", r.Company.CompanyID)
	}

	themes, err := store.ThemePeers(ctx, "snowflake")
	require.NoError(t, err)
	var fivetran *driver.Neighbor
	for i := range themes {
		if themes[i].Company.CompanyID == "fivetran" {
			fivetran = &themes[i]
		}
	}
	require.NotNil(t, fivetran)
	assert.Equal(t, []string{"consumption_pricing", "modern_data_stack"}, fivetran.Themes)
}

func TestMemoryDriver_PartnershipCounts(t *testing.T) {
	store := newSampleStore(t)
	counts, err := store.PartnershipCounts(context.Background(), []string{"snowflake", "starrocks"})
	require.NoError(t, err)

	assert.Equal(t, 5, counts["snowflake"])
	_, ok := counts["starrocks"]
	assert.False(t, ok)
}

func TestMemoryDriver_CompareQueries(t *testing.T) {
	store := newSampleStore(t)
	ctx := context.Background()

	edges, err := store.EdgesBetween(ctx, "databricks", "snowflake")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, types.EdgeCompetesWith, edges[0].Type)
	assert.NotEmpty(t, edges[0].Reasoning)

	common, err := store.CommonCompetitors(ctx, "databricks", "snowflake")
	require.NoError(t, err)
	ids := make([]string, 0, len(common))
	for _, c := range common {
		ids = append(ids, c.CompanyID)
	}
	assert.Equal(t, []string{"azure_synapse", "bigquery", "redshift"}, ids)

	segments, err := store.SharedSegments(ctx, "databricks", "snowflake")
	require.NoError(t, err)
	assert.Equal(t, []types.Segment{{Name: "cloud_data_platforms", DisplayName: "Cloud Data Platforms"}}, segments)

	themes, err := store.SharedThemes(ctx, "databricks", "snowflake")
	require.NoError(t, err)
	assert.Equal(t, []string{"ai_infrastructure", "cloud_migration"}, themes)
}

func TestMemoryDriver_Subgraph(t *testing.T) {
	store := newSampleStore(t)
	graph, err := store.Subgraph(context.Background(), []string{"snowflake", "databricks", "unknown", "snowflake"}, "snowflake")
	require.NoError(t, err)

	require.Len(t, graph.Nodes, 2)
	assert.Equal(t, "snowflake", graph.Nodes[0].ID)
	assert.True(t, graph.Nodes[0].IsCenter)
	assert.False(t, graph.Nodes[1].IsCenter)

	require.Len(t, graph.Edges, 1)
	assert.Equal(t, types.EdgeCompetesWith, graph.Edges[0].Type)
}

func TestMemoryDriver_TopByAttribute(t *testing.T) {
	store := newSampleStore(t)
	top, err := store.TopByAttribute(context.Background(), "moat_durability", 3)
	require.NoError(t, err)

	ids := make([]string, 0, len(top))
	for _, c := range top {
		ids = append(ids, c.CompanyID)
	}
	assert.Equal(t, []string{"azure_synapse", "bigquery", "databricks"}, ids)

	_, err = store.TopByAttribute(context.Background(), "name) DETACH DELETE (n", 3)
	assert.Error(t, err)
}

func TestMemoryDriver_GetCompany(t *testing.T) {
	store := newSampleStore(t)
	ctx := context.Background()

	p, err := store.GetCompany(ctx, "starrocks")
	require.NoError(t, err)
	assert.Nil(t, p.MoatDurability)

	_, err = store.GetCompany(ctx, "nope")
	assert.ErrorIs(t, err, driver.ErrCompanyNotFound)
	assert.False(t, errors.Is(err, types.ErrGraphStoreUnavailable))
}

func TestMemoryDriver_ClosedAndCanceled(t *testing.T) {
	store := newSampleStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Competitors(ctx, "snowflake")
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, store.Close(context.Background()))
	err = store.Ping(context.Background())
	assert.ErrorIs(t, err, types.ErrGraphStoreUnavailable)
}

func TestNewMemoryDriver_Validation(t *testing.T) {
	tests := []struct {
		name string
		snap *driver.Snapshot
	}{
		{"nil snapshot", nil},
		{"empty id", &driver.Snapshot{Companies: []driver.SnapshotCompany{{}}}},
		{
			name: "duplicate id",
			snap: &driver.Snapshot{Companies: []driver.SnapshotCompany{
				{CompanyProfile: types.CompanyProfile{CompanyID: "a"}},
				{CompanyProfile: types.CompanyProfile{CompanyID: "a"}},
			}},
		},
		{
			name: "dangling relationship",
			snap: &driver.Snapshot{
				Companies:     []driver.SnapshotCompany{{CompanyProfile: types.CompanyProfile{CompanyID: "a"}}},
				Relationships: []driver.SnapshotRelationship{{Type: types.EdgeCompetesWith, Source: "a", Target: "b"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := driver.NewMemoryDriver(tt.snap)
			assert.Error(t, err)
		})
	}
}

func TestLoadMemoryDriver(t *testing.T) {
	path := t.TempDir() + "/universe.yaml"
	require.NoError(t, os.WriteFile(path, sampledata.YAML(), 0o644))

	store, err := driver.LoadMemoryDriver(path)
	require.NoError(t, err)
	n, err := store.CountCompanies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(24), n)
	assert.Equal(t, driver.GraphProviderMemory, store.Provider())
}
