package model

// QueryConfig represents configuration for a retrieval query
type QueryConfig struct {
	// Number of final recommendations and per-adapter result cap
	TopK int `json:"top_k"`

	// Vector search parameters
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`

	// Graph traversal parameters
	MaxHops int `json:"max_hops,omitempty"`
}

// DefaultQueryConfig returns a sensible default configuration
func DefaultQueryConfig() *QueryConfig {
	return &QueryConfig{
		TopK:                3,
		SimilarityThreshold: 0,
		MaxHops:             2,
	}
}
