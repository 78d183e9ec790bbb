package explain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/soundprediction/investorlens/pkg/persona"
	"github.com/soundprediction/investorlens/pkg/types"
)

// voices describe how each persona talks about companies.
var voices = map[string]string{
	persona.ValueInvestor: "You are a disciplined Value Investor. Speak in terms of margin of safety, " +
		"durable competitive advantages, free cash flow generation and intrinsic value. " +
		"You prize companies with deep moats, high switching costs and predictable revenue. " +
		"You are skeptical of hype and put downside protection ahead of upside optionality.",
	persona.PEFirm: "You are a Private Equity operating partner. Speak in terms of EBITDA margins, " +
		"operational improvement playbooks, revenue predictability and multiple expansion. " +
		"You look for underexploited pricing power and cost structures you can optimize on a " +
		"path to a 3-5x return.",
	persona.GrowthVC: "You are a Growth VC investor. Speak in terms of land-and-expand motions, " +
		"developer momentum, TAM capture and market timing. You value speed of adoption over " +
		"profitability and get excited by disruptors that can upend incumbents.",
	persona.StrategicAcquirer: "You are a Strategic Acquirer evaluating M&A targets. Speak in terms of " +
		"technology differentiation, integration fit, threat neutralization and IP or talent " +
		"acquisition. You judge whether a target fills a product gap or accelerates the roadmap.",
	persona.EnterpriseBuyer: "You are an Enterprise Technology Buyer. Speak in terms of product maturity, " +
		"enterprise readiness, ecosystem integrations, total cost of ownership and vendor lock-in. " +
		"You care whether the vendor will still exist in five years.",
}

// Voice returns the voice instructions of a persona, defaulting to the value investor.
func Voice(name string) string {
	if v, ok := voices[name]; ok {
		return v
	}
	return voices[persona.Default]
}

const outputInstructions = `Respond with a JSON object of the form {"narrative": "<2-4 paragraphs>", "highlights": ["<3-5 key takeaways>"]}.`

// buildMessages renders the system and user prompts for result.
func buildMessages(result *types.SearchResult, all map[string]*types.SearchResult, contextTopN int) (system, user string) {
	q := result.Query
	voice := Voice(result.Persona)
	weights := weightDescription(result.Persona)
	ranked := resultsContext(result.Results, contextTopN)
	contrast := crossPersonaContext(all)

	switch q.Intent {
	case types.IntentCompare:
		system = fmt.Sprintf("%s\n\nYou are comparing %s vs %s head-to-head. The scoring weights for your persona are: %s.\n\n"+
			"Provide a comparison focusing on the metrics your persona cares about. Declare a winner and explain why, "+
			"referencing specific score differences. Be opinionated.",
			voice, q.TargetCompany, q.CompareCompany, weights)
		user = fmt.Sprintf("Query: %s\n\nHead-to-head comparison data:\n\n%s\n\n%s%sCompare these two companies from your perspective.",
			q.RawQuery, ranked, compareContext(result.CompareData), contrast)

	case types.IntentAcquisitionTarget:
		system = fmt.Sprintf("%s\n\nYou are evaluating acquisition targets for %s to strengthen its position against %s. "+
			"Consider technology differentiation, integration fit, partnership synergies and competitive threat neutralization. "+
			"Reference specific scores and graph relationships.",
			voice, q.Acquirer, q.TargetCompany)
		user = fmt.Sprintf("Query: %s\n\nTop acquisition target candidates for %s (to compete with %s):\n\n%s\n\n%sExplain which acquisition would be most strategic and why.",
			q.RawQuery, q.Acquirer, q.TargetCompany, ranked, contrast)

	case types.IntentAttributeSearch:
		system = fmt.Sprintf("%s\n\nYou are analyzing companies ranked by %s. The scoring weights for your persona are: %s.\n\n"+
			"Explain what drives the top companies' scores on this attribute and why it matters from your perspective.",
			voice, q.Attribute, weights)
		user = fmt.Sprintf("Query: %s\n\nTop companies ranked by %s:\n\n%s\n\n%sExplain what makes these companies stand out.",
			q.RawQuery, q.Attribute, ranked, contrast)

	default:
		system = fmt.Sprintf("%s\n\nYou are analyzing competitors to %s. The scoring weights for your persona are: %s.\n\n"+
			"Explain why the top results rank where they do from your persona's perspective, referencing specific scores. "+
			"Do not simply describe each company.",
			voice, q.TargetCompany, weights)
		user = fmt.Sprintf("Query: %s\n\nTop ranked competitors to %s:\n\n%s\n\n%sExplain why these results are ranked this way.",
			q.RawQuery, q.TargetCompany, ranked, contrast)
	}
	return system + "\n\n" + outputInstructions, user
}

func weightDescription(name string) string {
	cfg, ok := persona.Lookup(name)
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(cfg.Weights))
	for _, w := range cfg.Weights {
		parts = append(parts, fmt.Sprintf("%s (%.0f%%)", w.Attribute, w.Weight*100))
	}
	return strings.Join(parts, ", ")
}

func resultsContext(results []types.RankedResult, n int) string {
	if n > len(results) {
		n = len(results)
	}
	blocks := make([]string, 0, n)
	for _, r := range results[:n] {
		var breakdown []string
		attrs := make([]string, 0, len(r.ScoreBreakdown))
		for attr := range r.ScoreBreakdown {
			attrs = append(attrs, attr)
		}
		slices.Sort(attrs)
		for _, attr := range attrs {
			if strings.HasPrefix(attr, "_") {
				continue
			}
			breakdown = append(breakdown, fmt.Sprintf("%s: %.3f", attr, r.ScoreBreakdown[attr]))
		}
		edges := "none"
		if len(r.GraphContext) > 0 {
			var parts []string
			for _, e := range r.GraphContext[:min(3, len(r.GraphContext))] {
				strength := "N/A"
				if e.Strength != nil {
					strength = fmt.Sprintf("%.2f", *e.Strength)
				}
				parts = append(parts, fmt.Sprintf("%s(strength=%s)", e.Type, strength))
			}
			edges = strings.Join(parts, ", ")
		}
		blocks = append(blocks, fmt.Sprintf("#%d. %s (score: %.3f)\n   Breakdown: %s\n   Graph boost: %.3f | Edges: %s",
			r.Rank, r.Name, r.CompositeScore, strings.Join(breakdown, ", "), r.ScoreBreakdown[types.GraphBoostKey], edges))
	}
	return strings.Join(blocks, "\n\n")
}

func compareContext(data *types.CompareData) string {
	if data == nil {
		return ""
	}
	var b strings.Builder
	edges := make([]string, 0, len(data.SharedEdges))
	for _, e := range data.SharedEdges {
		edges = append(edges, string(e.Type))
	}
	common := make([]string, 0, len(data.CommonCompetitors))
	for _, c := range data.CommonCompetitors {
		common = append(common, c.Name)
	}
	fmt.Fprintf(&b, "Shared edges between them: %s\n", orNone(edges))
	fmt.Fprintf(&b, "Common competitors: %s\n\n", orNone(common))
	return b.String()
}

func crossPersonaContext(all map[string]*types.SearchResult) string {
	if len(all) == 0 {
		return ""
	}
	lines := []string{"Cross-persona contrast (top 3 per persona):"}
	for _, name := range persona.Names() {
		r, ok := all[name]
		if !ok || r == nil {
			continue
		}
		var names []string
		for _, top := range r.Top(3) {
			names = append(names, top.Name)
		}
		lines = append(lines, fmt.Sprintf("  %s: %s", r.PersonaDisplay, strings.Join(names, ", ")))
	}
	return strings.Join(lines, "\n") + "\n\n"
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
