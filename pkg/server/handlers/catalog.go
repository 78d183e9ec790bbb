package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/investorlens/pkg/server/dto"
)

// CatalogHandler serves personas and companies.
type CatalogHandler struct {
	service CatalogService
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(s CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// Personas handles GET /api/personas.
func (h *CatalogHandler) Personas(c *gin.Context) {
	personas := h.service.Personas()
	out := make([]dto.PersonaResponse, 0, len(personas))
	for _, p := range personas {
		out = append(out, dto.NewPersonaResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

// Companies handles GET /api/companies.
func (h *CatalogHandler) Companies(c *gin.Context) {
	companies, err := h.service.Companies(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CompaniesResponse{
		Companies: companies,
		Total:     len(companies),
	})
}

// Company handles GET /api/companies/:id.
func (h *CatalogHandler) Company(c *gin.Context) {
	company, err := h.service.Company(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}
