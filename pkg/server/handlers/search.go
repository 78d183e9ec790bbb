package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/investorlens"
	"github.com/soundprediction/investorlens/pkg/explain"
	"github.com/soundprediction/investorlens/pkg/server/dto"
	"github.com/soundprediction/investorlens/pkg/types"
)

// SearchHandler handles POST /api/search.
type SearchHandler struct {
	service     SearchService
	explainer   explain.Explainer
	summaryTopN int
	logger      *slog.Logger
}

// NewSearchHandler creates a search handler. explainer may be nil, in which case
// explanation requests are answered with a warning instead of a narrative.
func NewSearchHandler(s SearchService, explainer explain.Explainer, summaryTopN int, logger *slog.Logger) *SearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if summaryTopN <= 0 {
		summaryTopN = investorlens.DefaultSummaryTopN
	}
	return &SearchHandler{
		service:     s,
		explainer:   explainer,
		summaryTopN: summaryTopN,
		logger:      logger,
	}
}

// Search runs the requested persona pipeline, optionally every persona pipeline
// for the cross-persona summary, and optionally an explanation of the result.
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(c, types.ErrEmptyQuery)
		return
	}
	ctx := c.Request.Context()

	result, err := h.service.Search(ctx, req.Query, req.Persona)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := dto.SearchResponse{SearchResult: *result}

	var all map[string]*types.SearchResult
	if req.AllPersonas {
		all, err = h.service.SearchAllPersonas(ctx, req.Query)
		if err != nil {
			writeError(c, err)
			return
		}
		resp.AllPersonas = investorlens.Summarize(all, h.summaryTopN)
	}

	if req.IncludeExplanation {
		h.explain(c, &resp, result, all)
	}
	c.JSON(http.StatusOK, resp)
}

// explain never fails the request; a missing explanation becomes a warning.
func (h *SearchHandler) explain(c *gin.Context, resp *dto.SearchResponse, result *types.SearchResult, all map[string]*types.SearchResult) {
	if h.explainer == nil {
		resp.Metadata.Warnings = append(resp.Metadata.Warnings, "explanations are disabled")
		return
	}
	out, err := h.explainer.Explain(c.Request.Context(), result, all)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "explanation failed", "persona", result.Persona, "error", err)
		resp.Metadata.Warnings = append(resp.Metadata.Warnings, "explanation unavailable")
		return
	}
	resp.Explanation = &out.Narrative
	resp.ExplanationHighlights = out.Highlights
}
