package investorlens

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	lens "github.com/soundprediction/investorlens"
	"github.com/soundprediction/investorlens/pkg/explain"
	"github.com/soundprediction/investorlens/pkg/persona"
	"github.com/soundprediction/investorlens/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a natural-language search from the command line",
	Example: `  investorlens search "Competitors to Snowflake" --persona pe_firm
  investorlens search "Compare Databricks vs Snowflake" --all-personas
  investorlens search "Who should Google acquire to compete with Palantir?" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("persona", "p", "", "Persona to rank with (default from config)")
	searchCmd.Flags().Bool("all-personas", false, "Rank under every persona and print the leaders of each")
	searchCmd.Flags().IntP("top", "n", 10, "Number of results to print")
	searchCmd.Flags().Bool("json", false, "Print the full result as JSON")
	addExplainFlags(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeTelemetry := setupLogger(cfg)
	defer closeTelemetry()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := lens.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize search client: %w", err)
	}
	defer client.Close(context.Background())

	text := strings.Join(args, " ")
	personaName, _ := cmd.Flags().GetString("persona")
	allPersonas, _ := cmd.Flags().GetBool("all-personas")
	top, _ := cmd.Flags().GetInt("top")
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	result, err := client.Search(ctx, text, personaName)
	if err != nil {
		return err
	}

	var all map[string]*types.SearchResult
	if allPersonas {
		all, err = client.SearchAllPersonas(ctx, text)
		if err != nil {
			return err
		}
	}

	var explanation *explain.Explanation
	if cfg.Explain.Enabled {
		explainer, err := explain.New(cfg.Explain, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize explainer: %w", err)
		}
		explanation, err = explainer.Explain(ctx, result, all)
		if err != nil {
			logger.Warn("explanation failed", "error", err)
		}
	}

	if asJSON {
		return writeJSON(out, result, all, explanation, cfg.Search.SummaryTopN)
	}
	printResult(out, result, top)
	if allPersonas {
		printPersonaSummary(out, lens.Summarize(all, 3))
	}
	if explanation != nil {
		fmt.Fprintf(out, "\n%s\n", explanation.Narrative)
		for _, h := range explanation.Highlights {
			fmt.Fprintf(out, "  * %s\n", h)
		}
	}
	return nil
}

func writeJSON(out io.Writer, result *types.SearchResult, all map[string]*types.SearchResult, explanation *explain.Explanation, summaryTopN int) error {
	payload := struct {
		*types.SearchResult
		Explanation *explain.Explanation            `json:"explanation,omitempty"`
		AllPersonas map[string]types.PersonaSummary `json:"all_personas,omitempty"`
	}{SearchResult: result, Explanation: explanation}
	if all != nil {
		payload.AllPersonas = lens.Summarize(all, summaryTopN)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func printResult(out io.Writer, result *types.SearchResult, top int) {
	q := result.Query
	fmt.Fprintf(out, "Intent: %s", q.Intent)
	if q.TargetCompany != "" {
		fmt.Fprintf(out, "  target: %s", q.TargetCompany)
	}
	if q.CompareCompany != "" {
		fmt.Fprintf(out, "  vs: %s", q.CompareCompany)
	}
	if q.Acquirer != "" {
		fmt.Fprintf(out, "  acquirer: %s", q.Acquirer)
	}
	if q.Attribute != "" {
		fmt.Fprintf(out, "  attribute: %s", q.Attribute)
	}
	fmt.Fprintf(out, "\nPersona: %s\n\n", result.PersonaDisplay)

	results := result.Top(top)
	if len(results) == 0 {
		fmt.Fprintln(out, "No results.")
	}
	for _, r := range results {
		edges := make([]string, 0, len(r.GraphContext))
		for _, e := range r.GraphContext {
			edges = append(edges, string(e.Type))
		}
		fmt.Fprintf(out, "%3d. %-24s %.4f  boost=%.2f  %s\n",
			r.Rank, r.Name, r.CompositeScore, r.ScoreBreakdown[types.GraphBoostKey], strings.Join(edges, ","))
	}

	if cd := result.CompareData; cd != nil {
		common := make([]string, 0, len(cd.CommonCompetitors))
		for _, c := range cd.CommonCompetitors {
			common = append(common, c.Name)
		}
		fmt.Fprintf(out, "\nShared edges: %d  common competitors: %s\n", len(cd.SharedEdges), strings.Join(common, ", "))
	}
	for _, w := range result.Metadata.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}

func printPersonaSummary(out io.Writer, summary map[string]types.PersonaSummary) {
	fmt.Fprintln(out, "\nAcross personas:")
	for _, name := range persona.Names() {
		s, ok := summary[name]
		if !ok {
			continue
		}
		leaders := make([]string, 0, len(s.TopResults))
		for _, r := range s.TopResults {
			leaders = append(leaders, r.Name)
		}
		fmt.Fprintf(out, "  %-20s %s\n", s.PersonaDisplay, strings.Join(leaders, ", "))
	}
}
