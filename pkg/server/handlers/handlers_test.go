package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/investorlens"
	"github.com/soundprediction/investorlens/pkg/driver"
	"github.com/soundprediction/investorlens/pkg/explain"
	"github.com/soundprediction/investorlens/pkg/persona"
	"github.com/soundprediction/investorlens/pkg/resolver"
	"github.com/soundprediction/investorlens/pkg/sampledata"
	"github.com/soundprediction/investorlens/pkg/server/dto"
	"github.com/soundprediction/investorlens/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ Service = (*investorlens.Client)(nil)

type fakeExplainer struct {
	err   error
	calls int
	all   map[string]*types.SearchResult
}

func (f *fakeExplainer) Explain(_ context.Context, result *types.SearchResult, all map[string]*types.SearchResult) (*explain.Explanation, error) {
	f.calls++
	f.all = all
	if f.err != nil {
		return nil, f.err
	}
	return &explain.Explanation{
		Narrative:  "As a " + result.PersonaDisplay + ", I see a clear leader.",
		Highlights: []string{"first"},
	}, nil
}

func newTestRouter(t *testing.T, explainer explain.Explainer) (*gin.Engine, *driver.MemoryDriver) {
	t.Helper()
	store, err := sampledata.Store()
	require.NoError(t, err)
	entries, err := sampledata.Catalog()
	require.NoError(t, err)
	client, err := investorlens.NewClient(store, resolver.New(entries), nil, discard)
	require.NoError(t, err)

	health := NewHealthHandler(client)
	search := NewSearchHandler(client, explainer, 3, discard)
	catalog := NewCatalogHandler(client)

	r := gin.New()
	r.GET("/health", health.HealthCheck)
	r.GET("/ready", health.ReadinessCheck)
	r.GET("/live", health.LivenessCheck)
	r.GET("/health/detailed", health.DetailedHealthCheck)
	r.POST("/api/search", search.Search)
	r.GET("/api/personas", catalog.Personas)
	r.GET("/api/companies", catalog.Companies)
	r.GET("/api/companies/:id", catalog.Company)
	return r, store
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	r, store := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dto.HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "connected", resp.Store)
	assert.EqualValues(t, 24, resp.CompanyCount)
	assert.NotEmpty(t, resp.Timestamp)

	require.NoError(t, store.Close(context.Background()))
	w = do(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[dto.HealthResponse](t, w)
	assert.Equal(t, "error", resp.Store)
	assert.Zero(t, resp.CompanyCount)
}

func TestReadinessCheck(t *testing.T) {
	r, store := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decode[map[string]any](t, w)["status"])

	require.NoError(t, store.Close(context.Background()))
	w = do(r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not_ready", decode[map[string]any](t, w)["status"])
}

func TestReadinessCheck_NoService(t *testing.T) {
	h := NewHealthHandler(nil)
	r := gin.New()
	r.GET("/ready", h.ReadinessCheck)
	r.GET("/health/detailed", h.DetailedHealthCheck)

	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/ready", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/health/detailed", nil).Code)
}

func TestLivenessAndDetailed(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", decode[map[string]any](t, w)["status"])

	w = do(r, http.MethodGet, "/health/detailed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detailed := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", detailed["status"])
	checks := detailed["checks"].(map[string]any)
	assert.Contains(t, checks, "graph_connectivity")
	assert.Contains(t, checks, "graph_contents")
	assert.Contains(t, checks, "system")
}

func TestSearch(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/search", dto.SearchRequest{Query: "Competitors to Snowflake", Persona: persona.PEFirm})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[map[string]any](t, w)
	assert.Equal(t, persona.PEFirm, resp["persona"])
	assert.Equal(t, "PE Firm", resp["persona_display"])
	assert.NotEmpty(t, resp["ranked_results"])
	assert.Contains(t, resp, "graph_visualization")
	assert.NotContains(t, resp, "explanation")
	assert.NotContains(t, resp, "all_personas")

	parsed := resp["parsed_query"].(map[string]any)
	assert.Equal(t, string(types.IntentCompetitorsTo), parsed["query_type"])
	assert.Equal(t, "snowflake", parsed["target_company"])
}

func TestSearch_AllPersonasAndExplanation(t *testing.T) {
	fake := &fakeExplainer{}
	r, _ := newTestRouter(t, fake)

	w := do(r, http.MethodPost, "/api/search", dto.SearchRequest{
		Query:              "Competitors to Snowflake",
		IncludeExplanation: true,
		AllPersonas:        true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Persona               string                          `json:"persona"`
		Explanation           *string                         `json:"explanation"`
		ExplanationHighlights []string                        `json:"explanation_highlights"`
		AllPersonas           map[string]types.PersonaSummary `json:"all_personas"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, persona.Default, resp.Persona)
	require.NotNil(t, resp.Explanation)
	assert.Contains(t, *resp.Explanation, "Value Investor")
	assert.Equal(t, []string{"first"}, resp.ExplanationHighlights)

	require.Len(t, resp.AllPersonas, len(persona.Names()))
	for _, name := range persona.Names() {
		summary, ok := resp.AllPersonas[name]
		require.True(t, ok, name)
		assert.LessOrEqual(t, len(summary.TopResults), 3)
		assert.NotEmpty(t, summary.PersonaDisplay)
	}
	assert.Equal(t, 1, fake.calls)
	assert.Len(t, fake.all, len(persona.Names()))
}

func TestSearch_ExplanationFailureIsAWarning(t *testing.T) {
	r, _ := newTestRouter(t, &fakeExplainer{err: errors.New("model overloaded")})

	w := do(r, http.MethodPost, "/api/search", dto.SearchRequest{Query: "Competitors to Snowflake", IncludeExplanation: true})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dto.SearchResponse](t, w)
	assert.Nil(t, resp.Explanation)
	assert.Contains(t, resp.Metadata.Warnings, "explanation unavailable")
}

func TestSearch_ExplanationDisabled(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/search", dto.SearchRequest{Query: "Competitors to Snowflake", IncludeExplanation: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[dto.SearchResponse](t, w).Metadata.Warnings, "explanations are disabled")
}

func TestSearch_UnknownPersonaWarns(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/search", dto.SearchRequest{Query: "Competitors to Snowflake", Persona: "day_trader"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dto.SearchResponse](t, w)
	assert.Equal(t, persona.Default, resp.Persona)
	assert.NotEmpty(t, resp.Metadata.Warnings)
}

func TestSearch_BadRequests(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"missing query", map[string]any{"persona": "pe_firm"}},
		{"blank query", dto.SearchRequest{Query: "   "}},
		{"not json", "competitors to snowflake"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/search", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode[dto.ErrorResponse](t, w)
			assert.Equal(t, "invalid_request", resp.Error)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestSearch_StoreUnavailable(t *testing.T) {
	r, store := newTestRouter(t, nil)
	require.NoError(t, store.Close(context.Background()))

	w := do(r, http.MethodPost, "/api/search", dto.SearchRequest{Query: "Competitors to Snowflake"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "graph_store_unavailable", decode[dto.ErrorResponse](t, w).Error)
}

func TestPersonas(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/api/personas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	personas := decode[[]dto.PersonaResponse](t, w)
	require.Len(t, personas, 5)
	for i, name := range persona.Names() {
		assert.Equal(t, name, personas[i].Name)
		var sum float64
		for _, weight := range personas[i].Weights {
			sum += weight
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
	assert.Equal(t, 0.25, personas[1].Weights["operating_margin"])
}

func TestCompanies(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/api/companies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dto.CompaniesResponse](t, w)
	assert.Equal(t, 24, resp.Total)
	assert.Len(t, resp.Companies, 24)
}

func TestCompany(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/api/companies/snowflake", nil)
	require.Equal(t, http.StatusOK, w.Code)
	company := decode[types.CompanyProfile](t, w)
	assert.Equal(t, "Snowflake Inc.", company.Name)
	require.NotNil(t, company.MoatDurability)
	assert.Equal(t, 8.0, *company.MoatDurability)

	w = do(r, http.MethodGet, "/api/companies/oracle", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[dto.ErrorResponse](t, w).Error)
}
