package retrieval

import (
	"github.com/soundprediction/investorlens/pkg/types"
)

// candidateSet merges traversal results keyed by identifier. A company seen again
// gains an edge; its attributes are never overwritten.
type candidateSet struct {
	order   []string
	byID    map[string]*types.CandidateCompany
	exclude map[string]bool
}

func newCandidateSet(exclude ...string) *candidateSet {
	s := &candidateSet{
		byID:    make(map[string]*types.CandidateCompany),
		exclude: make(map[string]bool, len(exclude)),
	}
	for _, id := range exclude {
		if id != "" {
			s.exclude[id] = true
		}
	}
	return s
}

// add records edge as evidence for p and returns the candidate, or nil when p is
// excluded. created reports whether this is the first evidence for p.
func (s *candidateSet) add(p types.CompanyProfile, edge types.GraphEdge) (c *types.CandidateCompany, created bool) {
	if p.CompanyID == "" || s.exclude[p.CompanyID] {
		return nil, false
	}
	if c, ok := s.byID[p.CompanyID]; ok {
		c.Edges = append(c.Edges, edge)
		return c, false
	}
	c = &types.CandidateCompany{CompanyProfile: p, Edges: []types.GraphEdge{edge}}
	s.byID[p.CompanyID] = c
	s.order = append(s.order, p.CompanyID)
	return c, true
}

// addProfile records p without evidence, for retrievals that are not traversals.
func (s *candidateSet) addProfile(p types.CompanyProfile) {
	if p.CompanyID == "" || s.exclude[p.CompanyID] {
		return
	}
	if _, ok := s.byID[p.CompanyID]; ok {
		return
	}
	s.byID[p.CompanyID] = &types.CandidateCompany{CompanyProfile: p, Edges: []types.GraphEdge{}}
	s.order = append(s.order, p.CompanyID)
}

func (s *candidateSet) get(id string) (*types.CandidateCompany, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// retain drops every candidate for which keep returns false.
func (s *candidateSet) retain(keep func(*types.CandidateCompany) bool) {
	kept := s.order[:0]
	for _, id := range s.order {
		if keep(s.byID[id]) {
			kept = append(kept, id)
			continue
		}
		delete(s.byID, id)
	}
	s.order = kept
}

func (s *candidateSet) pointers() []*types.CandidateCompany {
	out := make([]*types.CandidateCompany, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// candidates returns the merged candidates in first-seen order.
func (s *candidateSet) candidates() []types.CandidateCompany {
	out := make([]types.CandidateCompany, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}
