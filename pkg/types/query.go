package types

// Intent is the classified query type.
type Intent string

const (
	IntentCompetitorsTo     Intent = "competitors_to"
	IntentCompare           Intent = "compare"
	IntentAcquisitionTarget Intent = "acquisition_target"
	IntentAttributeSearch   Intent = "attribute_search"
)

// Valid reports whether i is one of the four known intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentCompetitorsTo, IntentCompare, IntentAcquisitionTarget, IntentAttributeSearch:
		return true
	}
	return false
}

// ParsedQuery is the result of classifying a raw query.
// Empty identifier fields are not applicable to the intent; an empty Persona means
// the caller-supplied persona applies.
type ParsedQuery struct {
	Intent         Intent `json:"query_type"`
	RawQuery       string `json:"raw_query"`
	TargetCompany  string `json:"target_company"`
	CompareCompany string `json:"compare_company"`
	Acquirer       string `json:"acquirer"`
	Persona        string `json:"persona,omitempty"`
	Attribute      string `json:"attribute,omitempty"`
}

// Subjects returns the identifiers the query is about, in a stable order.
func (q ParsedQuery) Subjects() []string {
	var ids []string
	for _, id := range []string{q.Acquirer, q.TargetCompany, q.CompareCompany} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
