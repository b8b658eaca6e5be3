package model

import (
	"time"
)

// UnknownID is the sentinel identifier used when a name cannot be resolved
// to a person in the structured store. It is a terminal resolution state,
// not an error; callers must tolerate it.
const UnknownID = "unknown"

// Person represents a person record from the structured store.
// ID is the canonical identifier shared by all three stores; the semantic
// and graph stores carry the same value so results can be correlated.
type Person struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email,omitempty"`
	Location   string    `json:"location"`
	Occupation string    `json:"occupation"`
	Company    string    `json:"company,omitempty"`
	School     string    `json:"school,omitempty"`
	ResumeFile string    `json:"resume_file,omitempty"`
	BioText    string    `json:"bio_text,omitempty"`
	Sources    []string  `json:"sources,omitempty"` // upstream documents contributing to BioText
	Embedding  []float32 `json:"embedding,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	// Results
	Similarity float64 `json:"similarity,omitempty"`
}
