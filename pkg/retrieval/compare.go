package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/soundprediction/investorlens/pkg/driver"
	"github.com/soundprediction/investorlens/pkg/types"
	"github.com/soundprediction/investorlens/pkg/utils"
)

// Compare gathers side-by-side data for a and b: both profiles, the relationships
// connecting them, their common competitors, shared segments and shared themes.
// A side without a graph node is left nil.
func (e *Engine) Compare(ctx context.Context, a, b string) (*types.CompareData, error) {
	if a == "" || b == "" {
		return nil, types.ErrEmptyID
	}

	var (
		profileA, profileB *types.CompanyProfile
		edges              []types.DirectEdge
		common             []types.CompanyProfile
		segments           []types.Segment
		themes             []string
	)
	err := utils.SemaphoreGather(ctx, e.concurrency,
		func(ctx context.Context) (err error) { profileA, err = e.company(ctx, a); return err },
		func(ctx context.Context) (err error) { profileB, err = e.company(ctx, b); return err },
		func(ctx context.Context) (err error) { edges, err = e.store.EdgesBetween(ctx, a, b); return err },
		func(ctx context.Context) (err error) { common, err = e.store.CommonCompetitors(ctx, a, b); return err },
		func(ctx context.Context) (err error) { segments, err = e.store.SharedSegments(ctx, a, b); return err },
		func(ctx context.Context) (err error) { themes, err = e.store.SharedThemes(ctx, a, b); return err },
	)
	if err != nil {
		return nil, fmt.Errorf("compare %s and %s: %w", a, b, err)
	}

	data := &types.CompareData{
		SharedEdges:       nonNil(edges),
		CommonCompetitors: make([]types.CandidateCompany, 0, len(common)),
		SharedSegments:    nonNil(segments),
		SharedThemes:      nonNil(themes),
	}
	var annotate []*types.CandidateCompany
	if profileA != nil {
		data.CompanyA = &types.CandidateCompany{CompanyProfile: *profileA}
		annotate = append(annotate, data.CompanyA)
	}
	if profileB != nil {
		data.CompanyB = &types.CandidateCompany{CompanyProfile: *profileB}
		annotate = append(annotate, data.CompanyB)
	}
	for _, p := range common {
		data.CommonCompetitors = append(data.CommonCompetitors, types.CandidateCompany{CompanyProfile: p})
	}
	for i := range data.CommonCompetitors {
		annotate = append(annotate, &data.CommonCompetitors[i])
	}

	if err := e.annotatePartnerships(ctx, annotate); err != nil {
		return nil, fmt.Errorf("compare %s and %s: %w", a, b, err)
	}
	return data, nil
}

// CompareCandidates returns the compare subjects followed by their common competitors,
// the set ranked for a compare query.
func CompareCandidates(data *types.CompareData) []types.CandidateCompany {
	if data == nil {
		return []types.CandidateCompany{}
	}
	out := make([]types.CandidateCompany, 0, 2+len(data.CommonCompetitors))
	for _, side := range []*types.CandidateCompany{data.CompanyA, data.CompanyB} {
		if side != nil {
			out = append(out, *side)
		}
	}
	return append(out, data.CommonCompetitors...)
}

// company returns the profile of id, or nil when the graph has no such company.
func (e *Engine) company(ctx context.Context, id string) (*types.CompanyProfile, error) {
	p, err := e.store.GetCompany(ctx, id)
	if errors.Is(err, driver.ErrCompanyNotFound) {
		e.logger.WarnContext(ctx, "compare subject not in graph", "company_id", id)
		return nil, nil
	}
	return p, err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
