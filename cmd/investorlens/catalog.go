package investorlens

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	lens "github.com/soundprediction/investorlens"
	"github.com/soundprediction/investorlens/pkg/persona"
	"github.com/soundprediction/investorlens/pkg/types"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the investor personas and their scoring weights",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printPersonas(cmd.OutOrStdout(), persona.All())
		return nil
	},
}

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the companies in the graph",
	Args:  cobra.NoArgs,
	RunE:  runCompanies,
}

func init() {
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(companiesCmd)
}

func printPersonas(out io.Writer, personas []persona.Config) {
	for _, p := range personas {
		fmt.Fprintf(out, "%s (%s)\n  %s\n", p.DisplayName, p.Name, p.Description)
		for _, w := range p.Weights {
			fmt.Fprintf(out, "    %-36s %3.0f%%\n", w.Attribute, w.Weight*100)
		}
		priority := make([]string, 0, len(p.GraphPriority))
		for _, e := range p.GraphPriority {
			priority = append(priority, string(e))
		}
		fmt.Fprintf(out, "  graph priority: %s\n\n", strings.Join(priority, " > "))
	}
}

func runCompanies(cmd *cobra.Command, args []string) error {
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

	companies, err := client.Companies(ctx)
	if err != nil {
		return err
	}
	printCompanies(cmd.OutOrStdout(), companies)
	return nil
}

func printCompanies(out io.Writer, companies []types.CompanyProfile) {
	for _, c := range companies {
		ticker := c.Ticker
		if ticker == "" {
			ticker = "-"
		}
		fmt.Fprintf(out, "%-20s %-24s %-8s %s\n", c.CompanyID, c.Name, ticker, c.Sector)
	}
	fmt.Fprintf(out, "%d companies\n", len(companies))
}
