// Package types defines the core data types shared by the investorlens pipeline.
//
// This package contains the values that flow between components:
//   - CatalogEntry / CompanyProfile: companies as stored in the graph
//   - CandidateCompany / GraphEdge: companies reached during retrieval and the evidence that reached them
//   - ParsedQuery: the structured form of a natural-language query
//   - RankedResult / SearchResult: the ranked, attributed output of a search
//
// # Absent values
//
// Numeric company attributes are pointers. A nil pointer means the attribute is unknown,
// which is a valid state and is never treated as zero:
//
//	if c.MoatDurability == nil {
//	    // no LLM score for this company
//	}
//
// # JSON Serialization
//
// All types are JSON-serializable; field names follow the graph property names.
package types
