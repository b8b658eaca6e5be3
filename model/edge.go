package model

import (
	"time"
)

// Affiliation links a person to an organization (attended, worked at).
type Affiliation struct {
	ID        int       `json:"id"`
	PersonID  string    `json:"person_id"`
	OrgID     int       `json:"org_id"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AffiliationEdge is one result row of a two-hop traversal
// person -> organization -> person. Relation is the name of the shared
// organization. ToName is a convenience join of the target person's name;
// the wire contract is the (FromID, Relation, ToID) triple.
type AffiliationEdge struct {
	FromID   string `json:"from_id"`
	Relation string `json:"relation"`
	ToID     string `json:"to_id"`
	ToName   string `json:"to_name,omitempty"`
}
