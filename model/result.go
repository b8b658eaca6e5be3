package model

// AdapterTag identifies which store adapter produced a result.
type AdapterTag string

const (
	AdapterStructured AdapterTag = "structured"
	AdapterSemantic   AdapterTag = "semantic"
	AdapterGraph      AdapterTag = "graph"
)

// RetrievalRow is one raw backend record with provenance. Exactly one of
// Person, Edge or Raw is set depending on the originating adapter.
type RetrievalRow struct {
	Adapter AdapterTag       `json:"adapter"`
	Person  *Person          `json:"person,omitempty"`
	Score   float64          `json:"score,omitempty"` // similarity, semantic rows only
	Edge    *AffiliationEdge `json:"edge,omitempty"`
	Raw     map[string]any   `json:"raw,omitempty"` // raw analytic query rows
}

// RetrievalResult is the ordered raw output of a single routed query.
// Semantic rows are ordered by descending similarity; structured and graph
// rows keep backend return order.
type RetrievalResult struct {
	Adapter AdapterTag      `json:"adapter"`
	Rows    []*RetrievalRow `json:"rows"`
}

// Recommendation is one reconciled output entry. PersonID is never empty;
// unresolved names carry UnknownID.
type Recommendation struct {
	Line     string `json:"line"` // "Name - rationale" display line
	Name     string `json:"name"`
	PersonID string `json:"person_id"`
}

// Response is the final answer for one query: at most TopK recommendations
// plus an explicit underfill report. Shortfall is how many entries below
// top-k survived filtering (0 when the list is full); it is informational,
// not an error.
type Response struct {
	Intent          *Intent           `json:"intent"`
	Adapter         AdapterTag        `json:"adapter"`
	Recommendations []*Recommendation `json:"recommendations"`
	Shortfall       int               `json:"shortfall"`
}
