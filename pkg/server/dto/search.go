package dto

import (
	"github.com/soundprediction/investorlens/pkg/persona"
	"github.com/soundprediction/investorlens/pkg/types"
)

// MaxQueryLength bounds the query text accepted by the API.
const MaxQueryLength = 1000

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query              string `json:"query" binding:"required,max=1000"`
	Persona            string `json:"persona,omitempty"`
	IncludeExplanation bool   `json:"include_explanation,omitempty"`
	AllPersonas        bool   `json:"all_personas,omitempty"`
}

// SearchResponse is a search result with the optional explanation and the
// cross-persona summary.
type SearchResponse struct {
	types.SearchResult
	Explanation           *string                         `json:"explanation,omitempty"`
	ExplanationHighlights []string                        `json:"explanation_highlights,omitempty"`
	AllPersonas           map[string]types.PersonaSummary `json:"all_personas,omitempty"`
}

// PersonaResponse describes one persona.
type PersonaResponse struct {
	Name          string             `json:"name"`
	DisplayName   string             `json:"display_name"`
	Description   string             `json:"description"`
	Weights       map[string]float64 `json:"weights"`
	GraphPriority []types.EdgeType   `json:"graph_priority"`
}

// NewPersonaResponse converts a persona configuration.
func NewPersonaResponse(cfg persona.Config) PersonaResponse {
	return PersonaResponse{
		Name:          cfg.Name,
		DisplayName:   cfg.DisplayName,
		Description:   cfg.Description,
		Weights:       cfg.WeightMap(),
		GraphPriority: cfg.GraphPriority,
	}
}

// CompaniesResponse lists companies.
type CompaniesResponse struct {
	Companies []types.CompanyProfile `json:"companies"`
	Total     int                    `json:"total"`
}
