// Package handlers implements the HTTP handlers of the InvestorLens API.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/investorlens/pkg/driver"
	"github.com/soundprediction/investorlens/pkg/persona"
	"github.com/soundprediction/investorlens/pkg/server/dto"
	"github.com/soundprediction/investorlens/pkg/types"
)

// SearchService runs persona searches.
type SearchService interface {
	Search(ctx context.Context, text, personaName string) (*types.SearchResult, error)
	SearchAllPersonas(ctx context.Context, text string) (map[string]*types.SearchResult, error)
}

// CatalogService lists personas and companies.
type CatalogService interface {
	Personas() []persona.Config
	Companies(ctx context.Context) ([]types.CompanyProfile, error)
	Company(ctx context.Context, id string) (*types.CompanyProfile, error)
}

// HealthService reports graph store connectivity.
type HealthService interface {
	Ping(ctx context.Context) error
	CountCompanies(ctx context.Context) (int64, error)
}

// Service is everything the API needs from the search client.
type Service interface {
	SearchService
	CatalogService
	HealthService
}

// writeError maps domain errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, types.ErrEmptyQuery), errors.Is(err, types.ErrEmptyID):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, driver.ErrCompanyNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, types.ErrGraphStoreUnavailable):
		status, code = http.StatusServiceUnavailable, "graph_store_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "timeout"
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, dto.ErrorResponse{
		Error:   code,
		Message: err.Error(),
		Code:    status,
	})
}
