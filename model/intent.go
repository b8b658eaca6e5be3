package model

// IntentKind discriminates the Intent tagged union.
type IntentKind string

const (
	IntentAttributeFilter IntentKind = "attribute_filter"
	IntentSimilarityQuery IntentKind = "similarity_query"
	IntentConnectionQuery IntentKind = "connection_query"
	IntentRawQuery        IntentKind = "raw_query"
)

// Intent is the structured representation of what a natural-language query
// is asking for. It is built once per incoming query and not modified
// afterwards; only the fields of the active variant are set.
type Intent struct {
	Kind IntentKind `json:"kind"`

	// AttributeFilter
	Occupation string `json:"occupation,omitempty"` // display form, quotes and whitespace trimmed
	Location   string `json:"location,omitempty"`

	// SimilarityQuery
	TargetText   string `json:"target_text,omitempty"` // full query text, embedded as-is
	TargetPerson string `json:"target_person,omitempty"`

	// ConnectionQuery
	PersonID string `json:"person_id,omitempty"`
	MaxHops  int    `json:"max_hops,omitempty"`

	// RawQuery
	Query string `json:"query,omitempty"`
}

// NewAttributeFilter creates an attribute-filter intent.
func NewAttributeFilter(occupation, location string) *Intent {
	return &Intent{Kind: IntentAttributeFilter, Occupation: occupation, Location: location}
}

// NewSimilarityQuery creates a similarity intent. targetText is the whole
// query (the semantic store embeds the full text, not just the name).
func NewSimilarityQuery(targetText, targetPerson string) *Intent {
	return &Intent{Kind: IntentSimilarityQuery, TargetText: targetText, TargetPerson: targetPerson}
}

// NewConnectionQuery creates a connection intent bounded to maxHops.
func NewConnectionQuery(personID string, maxHops int) *Intent {
	return &Intent{Kind: IntentConnectionQuery, PersonID: personID, MaxHops: maxHops}
}

// NewRawQuery creates a raw analytic intent passed through verbatim.
func NewRawQuery(query string) *Intent {
	return &Intent{Kind: IntentRawQuery, Query: query}
}
