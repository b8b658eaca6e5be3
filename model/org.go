package model

import (
	"time"
)

// Organization represents a company or school extracted from a biography.
// Organizations are the intermediate nodes of the affiliation graph:
// two persons are connected when they share an organization.
type Organization struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
