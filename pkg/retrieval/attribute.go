package retrieval

import (
	"context"
	"fmt"

	"github.com/soundprediction/investorlens/pkg/types"
)

// AttributeRanked returns up to limit companies ordered by attribute, highest first.
// An attribute outside the whitelist is replaced by DefaultAttribute; the attribute
// actually used is returned. A non-positive limit means DefaultAttributeLimit.
func (e *Engine) AttributeRanked(ctx context.Context, attribute string, limit int) ([]types.CandidateCompany, string, error) {
	if !RankableAttribute(attribute) {
		e.logger.WarnContext(ctx, "unknown attribute, using default",
			"attribute", attribute, "default", DefaultAttribute)
		attribute = DefaultAttribute
	}
	if limit <= 0 {
		limit = DefaultAttributeLimit
	}

	profiles, err := e.store.TopByAttribute(ctx, attribute, limit)
	if err != nil {
		return nil, attribute, fmt.Errorf("rank by %s: %w", attribute, err)
	}

	set := newCandidateSet()
	for _, p := range profiles {
		set.addProfile(p)
	}
	if err := e.annotatePartnerships(ctx, set.pointers()); err != nil {
		return nil, attribute, fmt.Errorf("rank by %s: %w", attribute, err)
	}
	return set.candidates(), attribute, nil
}
