// Package resolver maps free-text company references to catalog identifiers.
package resolver

import (
	"sort"
	"strings"

	"github.com/soundprediction/investorlens/pkg/types"
)

// minExtractLen is the shortest alias Extract considers; shorter keys such as
// "c3" only resolve through Resolve.
const minExtractLen = 3

// Resolver resolves company names, aliases and tickers. It is immutable after New
// and safe for concurrent use.
type Resolver struct {
	// aliases holds keys eligible for both exact and substring matching.
	aliases map[string]string
	// tickers only match exactly; "ai" must not match inside arbitrary text.
	tickers map[string]string
	// byLength holds alias keys, longest first, ties broken lexicographically.
	byLength []string
}

// New builds a resolver from the static alias table and the catalog entries.
func New(entries []types.CatalogEntry) *Resolver {
	r := &Resolver{
		aliases: make(map[string]string, len(staticAliases)+3*len(entries)),
		tickers: make(map[string]string, len(entries)),
	}
	for k, id := range staticAliases {
		r.aliases[k] = id
	}
	for _, e := range entries {
		if e.CompanyID == "" {
			continue
		}
		name := strings.TrimRight(normalize(e.Name), ".")
		if name != "" {
			r.aliases[name] = e.CompanyID
			if stripped, ok := stripSuffix(name); ok {
				r.aliases[stripped] = e.CompanyID
			}
		}
		r.aliases[strings.ToLower(e.CompanyID)] = e.CompanyID
	}
	for _, e := range entries {
		t := normalize(e.Ticker)
		if t == "" || e.CompanyID == "" {
			continue
		}
		if _, taken := r.aliases[t]; !taken {
			r.tickers[t] = e.CompanyID
		}
	}

	r.byLength = make([]string, 0, len(r.aliases))
	for k := range r.aliases {
		r.byLength = append(r.byLength, k)
	}
	sort.Slice(r.byLength, func(i, j int) bool {
		a, b := r.byLength[i], r.byLength[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return r
}

// Resolve returns the identifier text refers to.
//
// The input is lower-cased and trimmed of whitespace and trailing punctuation, then
// looked up exactly, also with a trailing corporate suffix removed. Failing that, the
// longest alias occurring inside the input wins.
func (r *Resolver) Resolve(text string) (string, bool) {
	key := trimKey(text)
	if key == "" {
		return "", false
	}
	if id, ok := r.exact(key); ok {
		return id, true
	}
	if stripped, ok := stripSuffix(key); ok {
		if id, ok := r.exact(stripped); ok {
			return id, true
		}
	}
	for _, alias := range r.byLength {
		if strings.Contains(key, alias) {
			return r.aliases[alias], true
		}
	}
	return "", false
}

func (r *Resolver) exact(key string) (string, bool) {
	if id, ok := r.aliases[key]; ok {
		return id, true
	}
	id, ok := r.tickers[key]
	return id, ok
}

// Extract returns every distinct identifier mentioned in text, in order of first
// appearance. Longer aliases claim their span first so "google bigquery" is one
// mention, not two.
func (r *Resolver) Extract(text string) []string {
	q := []byte(normalize(text))

	type mention struct {
		pos int
		id  string
	}
	var mentions []mention
	seen := make(map[string]bool)

	for _, alias := range r.byLength {
		if len(alias) < minExtractLen {
			continue
		}
		id := r.aliases[alias]
		if seen[id] {
			continue
		}
		i := strings.Index(string(q), alias)
		if i < 0 {
			continue
		}
		seen[id] = true
		mentions = append(mentions, mention{pos: i, id: id})
		for j := i; j < i+len(alias); j++ {
			q[j] = ' '
		}
	}

	sort.SliceStable(mentions, func(i, j int) bool { return mentions[i].pos < mentions[j].pos })
	ids := make([]string, 0, len(mentions))
	for _, m := range mentions {
		ids = append(ids, m.id)
	}
	return ids
}

// Len returns the number of resolvable keys.
func (r *Resolver) Len() int {
	return len(r.aliases) + len(r.tickers)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trimKey(s string) string {
	return strings.TrimSpace(strings.TrimRight(normalize(s), ".,;:!?\"')"))
}

func stripSuffix(s string) (string, bool) {
	for _, suffix := range nameSuffixes {
		if strings.HasSuffix(s, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(s, suffix)), true
		}
	}
	return "", false
}
