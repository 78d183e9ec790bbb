package driver

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync/atomic"

	"github.com/soundprediction/investorlens/pkg/types"
	"gopkg.in/yaml.v3"
)

// Snapshot is a serializable company graph.
type Snapshot struct {
	Companies     []SnapshotCompany      `yaml:"companies"`
	Segments      []types.Segment        `yaml:"segments"`
	Relationships []SnapshotRelationship `yaml:"relationships"`
}

// SnapshotCompany is a company node with its segment and theme memberships.
type SnapshotCompany struct {
	types.CompanyProfile `yaml:",inline"`
	Segments             []string `yaml:"segments,omitempty"`
	Themes               []string `yaml:"themes,omitempty"`
}

// SnapshotRelationship is a directed company-to-company relationship.
type SnapshotRelationship struct {
	Type      types.EdgeType `yaml:"type"`
	Source    string         `yaml:"source"`
	Target    string         `yaml:"target"`
	Strength  *float64       `yaml:"strength,omitempty"`
	Reasoning string         `yaml:"reasoning,omitempty"`
}

// ParseSnapshot decodes a YAML snapshot.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snap, nil
}

// MemoryDriver implements GraphStore over an immutable in-memory snapshot.
type MemoryDriver struct {
	companies map[string]*SnapshotCompany
	order     []string
	segments  map[string]types.Segment
	rels      []SnapshotRelationship
	closed    atomic.Bool
}

// LoadMemoryDriver reads a YAML snapshot from path.
func LoadMemoryDriver(path string) (*MemoryDriver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	snap, err := ParseSnapshot(data)
	if err != nil {
		return nil, err
	}
	return NewMemoryDriver(snap)
}

// NewMemoryDriver validates snap and builds a store over a copy of it.
func NewMemoryDriver(snap *Snapshot) (*MemoryDriver, error) {
	if snap == nil {
		return nil, errors.New("snapshot is nil")
	}
	m := &MemoryDriver{
		companies: make(map[string]*SnapshotCompany, len(snap.Companies)),
		segments:  make(map[string]types.Segment, len(snap.Segments)),
	}
	for i := range snap.Companies {
		c := snap.Companies[i]
		if c.CompanyID == "" {
			return nil, fmt.Errorf("company %d: %w", i, types.ErrEmptyID)
		}
		if _, dup := m.companies[c.CompanyID]; dup {
			return nil, fmt.Errorf("duplicate company %q", c.CompanyID)
		}
		m.companies[c.CompanyID] = &c
		m.order = append(m.order, c.CompanyID)
	}
	slices.Sort(m.order)

	for _, s := range snap.Segments {
		m.segments[s.Name] = s
	}
	for i, r := range snap.Relationships {
		if m.companies[r.Source] == nil || m.companies[r.Target] == nil {
			return nil, fmt.Errorf("relationship %d (%s %s->%s) references an unknown company", i, r.Type, r.Source, r.Target)
		}
		m.rels = append(m.rels, r)
	}
	return m, nil
}

func (m *MemoryDriver) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.closed.Load() {
		return &StoreError{Op: op, Err: errors.New("store is closed")}
	}
	return nil
}

func (m *MemoryDriver) segmentDisplay(name string) string {
	if s, ok := m.segments[name]; ok && s.DisplayName != "" {
		return s.DisplayName
	}
	return name
}

// touching returns, in identifier order, each company linked to id by a
// relationship of type t, together with those relationships oriented from id.
func (m *MemoryDriver) touching(id string, t types.EdgeType) map[string][]SnapshotRelationship {
	out := make(map[string][]SnapshotRelationship)
	for _, r := range m.rels {
		if r.Type != t || r.Source == r.Target {
			continue
		}
		switch id {
		case r.Source:
			out[r.Target] = append(out[r.Target], r)
		case r.Target:
			out[r.Source] = append(out[r.Source], r)
		}
	}
	return out
}

func maxStrength(rels []SnapshotRelationship) *float64 {
	var best *float64
	for _, r := range rels {
		if r.Strength != nil && (best == nil || *r.Strength > *best) {
			v := *r.Strength
			best = &v
		}
	}
	return best
}

// GetCompany returns the profile of id.
func (m *MemoryDriver) GetCompany(ctx context.Context, id string) (*types.CompanyProfile, error) {
	if err := m.check(ctx, "get_company"); err != nil {
		return nil, err
	}
	c, ok := m.companies[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, id)
	}
	p := c.CompanyProfile
	return &p, nil
}

// ListCompanies returns every company ordered by identifier.
func (m *MemoryDriver) ListCompanies(ctx context.Context) ([]types.CompanyProfile, error) {
	if err := m.check(ctx, "list_companies"); err != nil {
		return nil, err
	}
	out := make([]types.CompanyProfile, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.companies[id].CompanyProfile)
	}
	return out, nil
}

// TopByAttribute returns up to limit companies ordered by property, highest first.
func (m *MemoryDriver) TopByAttribute(ctx context.Context, property string, limit int) ([]types.CompanyProfile, error) {
	if err := m.check(ctx, "top_by_attribute"); err != nil {
		return nil, err
	}
	if !slices.Contains(types.PropertyNames, property) {
		return nil, fmt.Errorf("unknown company property %q", property)
	}
	var out []types.CompanyProfile
	for _, id := range m.order {
		p := m.companies[id].CompanyProfile
		if v, _ := p.Property(property); v != nil {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b types.CompanyProfile) int {
		va, _ := a.Property(property)
		vb, _ := b.Property(property)
		return cmp.Compare(*vb, *va)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryDriver) strengthNeighbors(ctx context.Context, op, id string, t types.EdgeType) ([]Neighbor, error) {
	if err := m.check(ctx, op); err != nil {
		return nil, err
	}
	linked := m.touching(id, t)
	var out []Neighbor
	for _, other := range m.order {
		rels, ok := linked[other]
		if !ok {
			continue
		}
		out = append(out, Neighbor{Company: m.companies[other].CompanyProfile, Strength: maxStrength(rels)})
	}
	return out, nil
}

// Competitors returns direct competitors of id.
func (m *MemoryDriver) Competitors(ctx context.Context, id string) ([]Neighbor, error) {
	return m.strengthNeighbors(ctx, "competitors", id, types.EdgeCompetesWith)
}

// Partners returns partners of id.
func (m *MemoryDriver) Partners(ctx context.Context, id string) ([]Neighbor, error) {
	return m.strengthNeighbors(ctx, "partners", id, types.EdgePartnersWith)
}

// SegmentPeers returns one row per peer and shared segment.
func (m *MemoryDriver) SegmentPeers(ctx context.Context, id string) ([]Neighbor, error) {
	if err := m.check(ctx, "segment_peers"); err != nil {
		return nil, err
	}
	subject, ok := m.companies[id]
	if !ok {
		return nil, nil
	}
	var out []Neighbor
	for _, other := range m.order {
		if other == id {
			continue
		}
		peer := m.companies[other]
		var shared []string
		for _, s := range subject.Segments {
			if slices.Contains(peer.Segments, s) {
				shared = append(shared, m.segmentDisplay(s))
			}
		}
		slices.Sort(shared)
		for _, s := range slices.Compact(shared) {
			out = append(out, Neighbor{Company: peer.CompanyProfile, Segment: s})
		}
	}
	return out, nil
}

// ThemePeers returns peers sharing investment themes with id.
func (m *MemoryDriver) ThemePeers(ctx context.Context, id string) ([]Neighbor, error) {
	if err := m.check(ctx, "theme_peers"); err != nil {
		return nil, err
	}
	subject, ok := m.companies[id]
	if !ok {
		return nil, nil
	}
	var out []Neighbor
	for _, other := range m.order {
		if other == id {
			continue
		}
		peer := m.companies[other]
		themes := intersect(subject.Themes, peer.Themes)
		if len(themes) > 0 {
			out = append(out, Neighbor{Company: peer.CompanyProfile, Themes: themes})
		}
	}
	return out, nil
}

// Disruptions returns one row per disruption edge touching id.
func (m *MemoryDriver) Disruptions(ctx context.Context, id string) ([]Neighbor, error) {
	if err := m.check(ctx, "disruptions"); err != nil {
		return nil, err
	}
	linked := m.touching(id, types.EdgeDisrupts)
	var out []Neighbor
	for _, other := range m.order {
		rels := slices.Clone(linked[other])
		slices.SortStableFunc(rels, func(a, b SnapshotRelationship) int {
			return cmp.Compare(direction(id, a), direction(id, b))
		})
		for _, r := range rels {
			out = append(out, Neighbor{
				Company:   m.companies[other].CompanyProfile,
				Strength:  r.Strength,
				Direction: direction(id, r),
			})
		}
	}
	return out, nil
}

func direction(id string, r SnapshotRelationship) types.Direction {
	if r.Source == id {
		return types.DirectionDisrupts
	}
	return types.DirectionDisruptedBy
}

// PartnershipCounts counts distinct partners for each id that has any.
func (m *MemoryDriver) PartnershipCounts(ctx context.Context, ids []string) (map[string]int, error) {
	if err := m.check(ctx, "partnership_counts"); err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, id := range ids {
		if n := len(m.touching(id, types.EdgePartnersWith)); n > 0 {
			counts[id] = n
		}
	}
	return counts, nil
}

// EdgesBetween returns every relationship directly connecting a and b.
func (m *MemoryDriver) EdgesBetween(ctx context.Context, a, b string) ([]types.DirectEdge, error) {
	if err := m.check(ctx, "edges_between"); err != nil {
		return nil, err
	}
	edges := []types.DirectEdge{}
	for _, r := range m.rels {
		if (r.Source == a && r.Target == b) || (r.Source == b && r.Target == a) {
			edges = append(edges, types.DirectEdge{Type: r.Type, Strength: r.Strength, Reasoning: r.Reasoning})
		}
	}
	slices.SortStableFunc(edges, func(x, y types.DirectEdge) int {
		return cmp.Compare(x.Type, y.Type)
	})
	return edges, nil
}

// CommonCompetitors returns companies competing with both a and b.
func (m *MemoryDriver) CommonCompetitors(ctx context.Context, a, b string) ([]types.CompanyProfile, error) {
	if err := m.check(ctx, "common_competitors"); err != nil {
		return nil, err
	}
	ofA := m.touching(a, types.EdgeCompetesWith)
	ofB := m.touching(b, types.EdgeCompetesWith)
	out := []types.CompanyProfile{}
	for _, id := range m.order {
		if id == a || id == b {
			continue
		}
		_, inA := ofA[id]
		_, inB := ofB[id]
		if inA && inB {
			out = append(out, m.companies[id].CompanyProfile)
		}
	}
	return out, nil
}

// SharedSegments returns segments targeted by both a and b.
func (m *MemoryDriver) SharedSegments(ctx context.Context, a, b string) ([]types.Segment, error) {
	if err := m.check(ctx, "shared_segments"); err != nil {
		return nil, err
	}
	ca, cb := m.companies[a], m.companies[b]
	if ca == nil || cb == nil {
		return []types.Segment{}, nil
	}
	out := []types.Segment{}
	for _, name := range intersect(ca.Segments, cb.Segments) {
		out = append(out, types.Segment{Name: name, DisplayName: m.segmentDisplay(name)})
	}
	return out, nil
}

// SharedThemes returns investment themes shared by a and b.
func (m *MemoryDriver) SharedThemes(ctx context.Context, a, b string) ([]string, error) {
	if err := m.check(ctx, "shared_themes"); err != nil {
		return nil, err
	}
	ca, cb := m.companies[a], m.companies[b]
	if ca == nil || cb == nil {
		return []string{}, nil
	}
	return intersect(ca.Themes, cb.Themes), nil
}

// Subgraph returns the nodes among ids and the relationships between them.
func (m *MemoryDriver) Subgraph(ctx context.Context, ids []string, center string) (*types.GraphVisualization, error) {
	if err := m.check(ctx, "subgraph"); err != nil {
		return nil, err
	}
	graph := &types.GraphVisualization{Nodes: []types.GraphNode{}, Edges: []types.GraphLink{}}
	in := make(map[string]bool, len(ids))
	for _, id := range ids {
		c, ok := m.companies[id]
		if !ok || in[id] {
			continue
		}
		in[id] = true
		graph.Nodes = append(graph.Nodes, types.GraphNode{
			ID:             id,
			Label:          c.Name,
			Type:           "company",
			Sector:         c.Sector,
			MarketCapB:     c.MarketCapB,
			MoatDurability: c.MoatDurability,
			IsCenter:       id == center,
		})
	}

	seen := make(map[string]bool)
	for _, r := range m.rels {
		if !in[r.Source] || !in[r.Target] {
			continue
		}
		link := types.GraphLink{Source: r.Source, Target: r.Target, Type: r.Type, Strength: r.Strength}
		if seen[link.Key()] {
			continue
		}
		seen[link.Key()] = true
		graph.Edges = append(graph.Edges, link)
	}
	return graph, nil
}

// CountCompanies returns the number of companies in the snapshot.
func (m *MemoryDriver) CountCompanies(ctx context.Context) (int64, error) {
	if err := m.check(ctx, "count_companies"); err != nil {
		return 0, err
	}
	return int64(len(m.companies)), nil
}

// Ping fails once the store is closed.
func (m *MemoryDriver) Ping(ctx context.Context) error {
	return m.check(ctx, "ping")
}

// Close marks the store closed; subsequent calls fail as unavailable.
func (m *MemoryDriver) Close(ctx context.Context) error {
	m.closed.Store(true)
	return nil
}

// Provider returns GraphProviderMemory.
func (m *MemoryDriver) Provider() GraphProvider {
	return GraphProviderMemory
}

// intersect returns the sorted distinct items present in both a and b.
func intersect(a, b []string) []string {
	out := []string{}
	for _, item := range a {
		if slices.Contains(b, item) && !slices.Contains(out, item) {
			out = append(out, item)
		}
	}
	slices.Sort(out)
	return out
}
