// Package investorlens answers natural-language investment-research questions
// against a company knowledge graph.
//
// A query such as "Competitors to Snowflake" is classified into an intent with
// resolved company identifiers, candidates are retrieved by several graph traversals
// whose evidence is merged, and the candidates are ranked under one of five investor
// personas. Every result carries a per-attribute score breakdown, the graph evidence
// that linked it to the query and a subgraph for visualization.
//
// # Basic Usage
//
// Open a client from configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := investorlens.Open(ctx, cfg, slog.Default())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close(ctx)
//
// Or assemble one from parts:
//
//	store, err := driver.NewNeo4jDriver("bolt://localhost:7687", "neo4j", "password", "neo4j")
//	if err != nil {
//		log.Fatal(err)
//	}
//	entries, err := catalog.FromStore(ctx, store)
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := investorlens.NewClient(store, resolver.New(entries), nil, nil)
//
// # Searching
//
// Search with an explicit persona. A persona named in the text ("through a PE lens")
// takes precedence, and acquisition queries always rank as the strategic acquirer:
//
//	result, err := client.Search(ctx, "Compare Databricks vs Snowflake", "value_investor")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, r := range result.Results {
//		fmt.Printf("%d. %s %.3f\n", r.Rank, r.Name, r.CompositeScore)
//	}
//
// Run every persona and keep the leaders of each:
//
//	results, err := client.SearchAllPersonas(ctx, "Competitors to Snowflake")
//	summary := investorlens.Summarize(results, investorlens.DefaultSummaryTopN)
//
// # Errors
//
// Unresolved companies, unknown personas and unknown attributes never fail a search;
// substitutions are reported in SearchMetadata.Warnings. A failing graph store fails
// the whole search with an error matching types.ErrGraphStoreUnavailable.
//
// # Graph Stores
//
// Neo4j is the production store. The in-memory driver serves YAML snapshots and the
// embedded sample universe in pkg/sampledata, which the tests and demos use.
package investorlens
