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

// OrgsDBHandlerFunctions defines the interface for Orgs database operations.
type OrgsDBHandlerFunctions interface {
	InsertOrg(org *model.Organization) error
	DeleteOrg(id int) error
	SelectOrg(id int) (*model.Organization, error)
	SelectOrgByName(name string) (*model.Organization, error)
}

// OrgsDBHandler handles organization-related database operations
type OrgsDBHandler struct {
	db *helper.Database
}

// NewOrgsDBHandler creates a new orgs database handler.
// It initializes the database connection and loads org-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewOrgsDBHandler(db *helper.Database, force bool) (*OrgsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	orgsDbHandler := &OrgsDBHandler{
		db: db,
	}

	err := loadSql.LoadOrgsSql(orgsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load orgs sql", err)
	}

	err = orgsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized OrgsDBHandler")

	return orgsDbHandler, nil
}

// CreateTable creates the 'orgs' table in the database.
// If the table already exists, it does not create it again.
func (h *OrgsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_orgs();`)
	if err != nil {
		log.Panicf("error initializing orgs table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table orgs")

	return nil
}

// InsertOrg inserts a new organization. Inserting an existing name merges
// metadata and returns the stored row, so repeated ingests are safe.
func (h *OrgsDBHandler) InsertOrg(org *model.Organization) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_org($1, $2)`,
		org.Name,
		org.Metadata,
	)

	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Metadata,
		&org.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// DeleteOrg deletes an organization by ID
func (h *OrgsDBHandler) DeleteOrg(id int) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_org($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectOrg retrieves an organization by ID
func (h *OrgsDBHandler) SelectOrg(id int) (*model.Organization, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_org($1)`,
		id,
	)

	org := &model.Organization{}
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Metadata,
		&org.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return org, nil
}

// SelectOrgByName retrieves an organization by exact name, case-insensitive.
func (h *OrgsDBHandler) SelectOrgByName(name string) (*model.Organization, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_org_by_name($1)`,
		name,
	)

	org := &model.Organization{}
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Metadata,
		&org.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return org, nil
}
