package query

import (
	"regexp"
	"sort"
	"strings"

	"github.com/soundprediction/investorlens/pkg/persona"
)

// DefaultAttribute is used when an attribute search names no known attribute.
const DefaultAttribute = "moat_durability"

type personaCue struct {
	persona string
	pattern *regexp.Regexp
}

// personaCues are checked in order; the first match wins.
var personaCues = []personaCue{
	{persona.ValueInvestor, regexp.MustCompile(`value\s+invest`)},
	{persona.PEFirm, regexp.MustCompile(`\bpe\b|private\s+equity`)},
	{persona.GrowthVC, regexp.MustCompile(`\bvc\b|venture\s+capital|growth\b`)},
	{persona.StrategicAcquirer, regexp.MustCompile(`strateg|acqui[rs]`)},
	{persona.EnterpriseBuyer, regexp.MustCompile(`enterprise\s+buyer|buyer`)},
}

var lensPattern = regexp.MustCompile(`(\w+)\s+lens`)

var lensWords = map[string]string{
	"pe":         persona.PEFirm,
	"private":    persona.PEFirm,
	"vc":         persona.GrowthVC,
	"growth":     persona.GrowthVC,
	"venture":    persona.GrowthVC,
	"value":      persona.ValueInvestor,
	"buyer":      persona.EnterpriseBuyer,
	"enterprise": persona.EnterpriseBuyer,
	"acquirer":   persona.StrategicAcquirer,
	"strategic":  persona.StrategicAcquirer,
}

// PersonaHint returns the persona named or implied by text, or "".
func PersonaHint(text string) string {
	q := strings.ToLower(text)
	for _, cue := range personaCues {
		if cue.pattern.MatchString(q) {
			return cue.persona
		}
	}
	if m := lensPattern.FindStringSubmatch(q); m != nil {
		return lensWords[m[1]]
	}
	return ""
}

// attributePhrases maps query phrasing to graph property names.
var attributePhrases = map[string]string{
	"moat":                    "moat_durability",
	"moats":                   "moat_durability",
	"moat durability":         "moat_durability",
	"enterprise readiness":    "enterprise_readiness_score",
	"enterprise ready":        "enterprise_readiness_score",
	"developer adoption":      "developer_adoption_score",
	"developer traction":      "developer_adoption_score",
	"product maturity":        "product_maturity_score",
	"mature":                  "product_maturity_score",
	"switching cost":          "customer_switching_cost",
	"switching costs":         "customer_switching_cost",
	"lock-in":                 "customer_switching_cost",
	"revenue predictability":  "revenue_predictability",
	"predictable revenue":     "revenue_predictability",
	"recurring revenue":       "revenue_predictability",
	"market timing":           "market_timing_score",
	"operational improvement": "operational_improvement_potential",
	"margin":                  "operating_margin",
	"growth":                  "yoy_employee_growth",
	"revenue":                 "revenue_ttm_b",
	"market cap":              "market_cap_b",
}

// phrasesByLength lists attributePhrases keys, longest first.
var phrasesByLength = func() []string {
	keys := make([]string, 0, len(attributePhrases))
	for k := range attributePhrases {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// AttributeHint returns the attribute whose longest phrase occurs in text, or "".
func AttributeHint(text string) string {
	q := strings.ToLower(text)
	for _, phrase := range phrasesByLength {
		if strings.Contains(q, phrase) {
			return attributePhrases[phrase]
		}
	}
	return ""
}
