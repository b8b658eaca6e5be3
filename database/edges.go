package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/netrec/netrec/helper"
	"github.com/netrec/netrec/model"
	loadSql "github.com/netrec/netrec/sql"
)

// AffiliationsDBHandlerFunctions defines the interface for Affiliations database operations.
type AffiliationsDBHandlerFunctions interface {
	InsertAffiliation(affiliation *model.Affiliation) error
	DeleteAffiliation(id int) error
	SelectAffiliationsFromPerson(personID string) ([]*model.Affiliation, error)
	TraverseSharedAffiliations(personID string, maxHops int) ([]*model.AffiliationEdge, error)
}

// AffiliationsDBHandler handles affiliation-related database operations
type AffiliationsDBHandler struct {
	db *helper.Database
}

// NewAffiliationsDBHandler creates a new affiliations database handler.
// It initializes the database connection and loads affiliation-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewAffiliationsDBHandler(db *helper.Database, force bool) (*AffiliationsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	affiliationsDbHandler := &AffiliationsDBHandler{
		db: db,
	}

	err := loadSql.LoadAffiliationsSql(affiliationsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load affiliations sql", err)
	}

	err = affiliationsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized AffiliationsDBHandler")

	return affiliationsDbHandler, nil
}

// CreateTable creates the 'affiliations' table in the database.
// If the table already exists, it does not create it again.
// The table references persons and orgs, so both must exist first.
func (h *AffiliationsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_affiliations();`)
	if err != nil {
		log.Panicf("error initializing affiliations table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table affiliations")

	return nil
}

// InsertAffiliation inserts a new affiliation edge between a person and an
// organization. Duplicate edges merge metadata instead of failing.
func (h *AffiliationsDBHandler) InsertAffiliation(affiliation *model.Affiliation) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_affiliation($1, $2, $3)`,
		affiliation.PersonID,
		affiliation.OrgID,
		affiliation.Metadata,
	)

	err := row.Scan(
		&affiliation.ID,
		&affiliation.PersonID,
		&affiliation.OrgID,
		&affiliation.Metadata,
		&affiliation.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// DeleteAffiliation deletes an affiliation by ID
func (h *AffiliationsDBHandler) DeleteAffiliation(id int) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_affiliation($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectAffiliationsFromPerson retrieves all affiliations of a person
func (h *AffiliationsDBHandler) SelectAffiliationsFromPerson(personID string) ([]*model.Affiliation, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_affiliations_from_person($1)`,
		personID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var affiliations []*model.Affiliation
	for rows.Next() {
		affiliation := &model.Affiliation{}
		err := rows.Scan(
			&affiliation.ID,
			&affiliation.PersonID,
			&affiliation.OrgID,
			&affiliation.Metadata,
			&affiliation.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		affiliations = append(affiliations, affiliation)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return affiliations, nil
}

// TraverseSharedAffiliations walks person -> organization -> person and
// returns the edges to everyone sharing an organization with the given
// person, excluding the person themselves. Only two-hop traversal is
// supported; other values of maxHops fail inside the SQL function.
func (h *AffiliationsDBHandler) TraverseSharedAffiliations(personID string, maxHops int) ([]*model.AffiliationEdge, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM traverse_shared_affiliations($1, $2)`,
		personID,
		maxHops,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var edges []*model.AffiliationEdge
	for rows.Next() {
		edge := &model.AffiliationEdge{}
		err := rows.Scan(
			&edge.FromID,
			&edge.Relation,
			&edge.ToID,
			&edge.ToName,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		edges = append(edges, edge)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return edges, nil
}
