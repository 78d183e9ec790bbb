// Package query classifies free-text research questions into structured queries.
package query

import (
	"regexp"
	"strings"

	"github.com/soundprediction/investorlens/pkg/persona"
	"github.com/soundprediction/investorlens/pkg/resolver"
	"github.com/soundprediction/investorlens/pkg/types"
)

// tail ends an entity capture before persona phrasing such as "through a PE lens".
const tail = `(?:\s+through|\s+from|\s+in\s+a|\s*$)`

// rankingCue must accompany an attribute phrase for the attribute rule to fire.
var rankingCue = regexp.MustCompile(`\b(?:which|strongest|best|highest|top|most|leading)\b`)

// rule is one guarded pattern/extractor pair. Patterns are tried in order and the
// first whose captures resolve wins.
type rule struct {
	name     string
	intent   types.Intent
	patterns []*regexp.Regexp
	extract  func(r *resolver.Resolver, m []string, q *types.ParsedQuery) bool
}

func resolveInto(r *resolver.Resolver, text string, dst *string) bool {
	id, ok := r.Resolve(text)
	if ok {
		*dst = id
	}
	return ok
}

var rules = []rule{
	{
		name:   "competitors_to",
		intent: types.IntentCompetitorsTo,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`competitors?\s+(?:to|of|for)\s+(.+?)` + tail),
			regexp.MustCompile(`who\s+competes?\s+with\s+(.+?)` + tail),
			regexp.MustCompile(`competition\s+(?:to|of|for)\s+(.+?)` + tail),
			regexp.MustCompile(`rivals?\s+(?:to|of|for)\s+(.+?)` + tail),
		},
		extract: func(r *resolver.Resolver, m []string, q *types.ParsedQuery) bool {
			return resolveInto(r, m[1], &q.TargetCompany)
		},
	},
	{
		name:   "compare",
		intent: types.IntentCompare,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`compare\s+(.+?)\s+(?:vs\.?|versus|and|with)\s+(.+?)` + tail),
			regexp.MustCompile(`(.+?)\s+(?:vs\.?|versus)\s+(.+?)` + tail),
		},
		extract: func(r *resolver.Resolver, m []string, q *types.ParsedQuery) bool {
			var a, b string
			if !resolveInto(r, m[1], &a) || !resolveInto(r, m[2], &b) {
				return false
			}
			q.TargetCompany, q.CompareCompany = a, b
			return true
		},
	},
	{
		name:   "acquisition_target",
		intent: types.IntentAcquisitionTarget,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`acquisition\s+target\s+for\s+(.+?)\s+to\s+compete\s+with\s+(.+?)\s*$`),
			regexp.MustCompile(`(?:what|which|best)\s+.*?acqui\w+\s+.*?for\s+(.+?)\s+.*?(?:against|compete|rival)\s+.*?(.+?)\s*$`),
			regexp.MustCompile(`(.+?)\s+should\s+acqui\w+\s+to\s+compete\s+with\s+(.+?)\s*$`),
		},
		extract: func(r *resolver.Resolver, m []string, q *types.ParsedQuery) bool {
			var acquirer, target string
			if !resolveInto(r, m[1], &acquirer) || !resolveInto(r, m[2], &target) {
				return false
			}
			q.Acquirer, q.TargetCompany = acquirer, target
			return true
		},
	},
}

// Classifier turns raw query text into a ParsedQuery. It never fails: text that
// matches no rule goes through the fallback ladder.
type Classifier struct {
	resolver *resolver.Resolver
}

// NewClassifier creates a classifier resolving company references with r.
func NewClassifier(r *resolver.Resolver) *Classifier {
	return &Classifier{resolver: r}
}

// Classify parses text.
func (c *Classifier) Classify(text string) types.ParsedQuery {
	q := strings.ToLower(strings.TrimSpace(text))
	parsed := types.ParsedQuery{
		RawQuery: text,
		Persona:  PersonaHint(q),
	}

	for _, rl := range rules {
		if c.apply(rl, q, &parsed) {
			if parsed.Intent == types.IntentAcquisitionTarget && parsed.Persona == "" {
				parsed.Persona = persona.StrategicAcquirer
			}
			return parsed
		}
	}

	attr := AttributeHint(q)
	if attr != "" && rankingCue.MatchString(q) {
		parsed.Intent = types.IntentAttributeSearch
		parsed.Attribute = attr
		return parsed
	}

	return c.fallback(q, attr, parsed)
}

// apply tries each pattern of rl in order; a match whose captures do not resolve
// falls through to the next pattern.
func (c *Classifier) apply(rl rule, q string, parsed *types.ParsedQuery) bool {
	for _, p := range rl.patterns {
		m := p.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		candidate := *parsed
		if rl.extract(c.resolver, m, &candidate) {
			candidate.Intent = rl.intent
			*parsed = candidate
			return true
		}
	}
	return false
}

func (c *Classifier) fallback(q, attr string, parsed types.ParsedQuery) types.ParsedQuery {
	ids := c.resolver.Extract(q)
	switch {
	case len(ids) >= 2:
		parsed.Intent = types.IntentCompare
		parsed.TargetCompany, parsed.CompareCompany = ids[0], ids[1]
	case len(ids) == 1:
		parsed.Intent = types.IntentCompetitorsTo
		parsed.TargetCompany = ids[0]
	case attr != "":
		parsed.Intent = types.IntentAttributeSearch
		parsed.Attribute = attr
	default:
		parsed.Intent = types.IntentAttributeSearch
		parsed.Attribute = DefaultAttribute
	}
	return parsed
}
