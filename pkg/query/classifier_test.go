package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/investorlens/pkg/resolver"
	"github.com/soundprediction/investorlens/pkg/sampledata"
	"github.com/soundprediction/investorlens/pkg/types"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	entries, err := sampledata.Catalog()
	require.NoError(t, err)
	return NewClassifier(resolver.New(entries))
}

func TestClassify(t *testing.T) {
	c := newClassifier(t)

	tests := []struct {
		query string
		want  types.ParsedQuery
	}{
		{
			"Competitors to Snowflake",
			types.ParsedQuery{Intent: types.IntentCompetitorsTo, TargetCompany: "snowflake"},
		},
		{
			"Compare Databricks vs Snowflake through a PE lens",
			types.ParsedQuery{Intent: types.IntentCompare, TargetCompany: "databricks", CompareCompany: "snowflake", Persona: "pe_firm"},
		},
		{
			"Best acquisition target for Google to compete with Palantir",
			types.ParsedQuery{Intent: types.IntentAcquisitionTarget, Acquirer: "bigquery", TargetCompany: "palantir", Persona: "strategic_acquirer"},
		},
		{
			"Competitors to C3 AI",
			types.ParsedQuery{Intent: types.IntentCompetitorsTo, TargetCompany: "c3ai"},
		},
		{
			"Compare Pinecone vs Weaviate through a VC lens",
			types.ParsedQuery{Intent: types.IntentCompare, TargetCompany: "pinecone", CompareCompany: "weaviate", Persona: "growth_vc"},
		},
		{
			"Which data infrastructure companies have the strongest moats?",
			types.ParsedQuery{Intent: types.IntentAttributeSearch, Attribute: "moat_durability"},
		},
		{
			"Who competes with Databricks?",
			types.ParsedQuery{Intent: types.IntentCompetitorsTo, TargetCompany: "databricks"},
		},
		{
			"Snowflake vs. ClickHouse",
			types.ParsedQuery{Intent: types.IntentCompare, TargetCompany: "snowflake", CompareCompany: "clickhouse"},
		},
		{
			"Which startup is the best acquisition for AWS to compete against Snowflake?",
			types.ParsedQuery{Intent: types.IntentAcquisitionTarget, Acquirer: "redshift", TargetCompany: "snowflake", Persona: "strategic_acquirer"},
		},
		{
			"Top companies by market cap",
			types.ParsedQuery{Intent: types.IntentAttributeSearch, Attribute: "market_cap_b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := c.Classify(tt.query)
			tt.want.RawQuery = tt.query
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_FallbackLadder(t *testing.T) {
	c := newClassifier(t)

	tests := []struct {
		name  string
		query string
		want  types.ParsedQuery
	}{
		{
			"two entities compare in order of appearance",
			"Snowflake and Databricks pricing",
			types.ParsedQuery{Intent: types.IntentCompare, TargetCompany: "snowflake", CompareCompany: "databricks"},
		},
		{
			"one entity is competitors_to",
			"tell me about Fivetran",
			types.ParsedQuery{Intent: types.IntentCompetitorsTo, TargetCompany: "fivetran"},
		},
		{
			"unresolved compare falls through",
			"Compare Oracle with Snowflake",
			types.ParsedQuery{Intent: types.IntentCompetitorsTo, TargetCompany: "snowflake"},
		},
		{
			"attribute without cue",
			"recurring revenue leaders",
			types.ParsedQuery{Intent: types.IntentAttributeSearch, Attribute: "revenue_predictability"},
		},
		{
			"nothing recognisable",
			"hello there",
			types.ParsedQuery{Intent: types.IntentAttributeSearch, Attribute: DefaultAttribute},
		},
		{
			"unresolved competitors",
			"competitors to oracle",
			types.ParsedQuery{Intent: types.IntentAttributeSearch, Attribute: DefaultAttribute},
		},
		{
			"empty",
			"",
			types.ParsedQuery{Intent: types.IntentAttributeSearch, Attribute: DefaultAttribute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.query)
			tt.want.RawQuery = tt.query
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Intent.Valid())
		})
	}
}

func TestRules_InIsolation(t *testing.T) {
	entries, err := sampledata.Catalog()
	require.NoError(t, err)
	c := NewClassifier(resolver.New(entries))

	byName := map[string]rule{}
	for _, rl := range rules {
		byName[rl.name] = rl
	}
	require.Len(t, byName, 3)

	var q types.ParsedQuery
	assert.True(t, c.apply(byName["competitors_to"], "rivals of teradata from a value lens", &q))
	assert.Equal(t, "teradata", q.TargetCompany)

	q = types.ParsedQuery{}
	assert.False(t, c.apply(byName["compare"], "competitors to snowflake", &q))
	assert.Empty(t, q.TargetCompany)

	// A failed extraction leaves the query untouched.
	q = types.ParsedQuery{}
	assert.False(t, c.apply(byName["acquisition_target"], "acquisition target for oracle to compete with palantir", &q))
	assert.Equal(t, types.ParsedQuery{}, q)

	q = types.ParsedQuery{}
	assert.True(t, c.apply(byName["acquisition_target"], "microsoft should acquire to compete with databricks", &q))
	assert.Equal(t, "azure_synapse", q.Acquirer)
	assert.Equal(t, "databricks", q.TargetCompany)
}

func TestPersonaHint(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"through a PE lens", "pe_firm"},
		{"from a private equity view", "pe_firm"},
		{"as a value investor", "value_investor"},
		{"through a VC lens", "growth_vc"},
		{"venture capital angle", "growth_vc"},
		{"for an enterprise buyer", "enterprise_buyer"},
		{"strategic view", "strategic_acquirer"},
		{"from an enterprise lens", "enterprise_buyer"},
		{"with a private lens", "pe_firm"},
		{"through a lens", ""},
		{"pension funds", ""},
		{"competitors to snowflake", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, PersonaHint(tt.text))
		})
	}
}

func TestAttributeHint(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"strongest moat durability", "moat_durability"},
		{"most predictable revenue", "revenue_predictability"},
		{"highest revenue", "revenue_ttm_b"},
		{"best operating margin", "operating_margin"},
		{"lowest lock-in", "customer_switching_cost"},
		{"most enterprise ready", "enterprise_readiness_score"},
		{"fastest growth", "yoy_employee_growth"},
		{"nothing here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, AttributeHint(tt.text))
		})
	}
}
