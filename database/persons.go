package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/netrec/netrec/helper"
	"github.com/netrec/netrec/model"
	loadSql "github.com/netrec/netrec/sql"
	"github.com/pgvector/pgvector-go"
)

// PersonsDBHandlerFunctions defines the interface for Persons database operations.
type PersonsDBHandlerFunctions interface {
	InsertPerson(person *model.Person) error
	UpdatePersonEmbedding(person *model.Person) error
	DeletePerson(id string) error
	SelectPerson(id string) (*model.Person, error)
	SelectPersonByName(fullName string) (*model.Person, error)
	SelectPersonsByOccupationAndLocation(occupation string, location string, limit int) ([]*model.Person, error)
	SelectPersonsBySimilarity(embedding []float32, limit int, threshold float64) ([]*model.Person, error)
	SelectNameIDMap() (map[string]string, error)
	RawQuery(ctx context.Context, query string) ([]map[string]any, error)
}

// PersonsDBHandler handles person-related database operations
type PersonsDBHandler struct {
	db *helper.Database
}

// NewPersonsDBHandler creates a new persons database handler.
// It initializes the database connection and loads person-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewPersonsDBHandler(db *helper.Database, embeddingDim int, force bool) (*PersonsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	personsDbHandler := &PersonsDBHandler{
		db: db,
	}

	err := loadSql.LoadPersonsSql(personsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load persons sql", err)
	}

	err = personsDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized PersonsDBHandler")

	return personsDbHandler, nil
}

// CreateTable creates the 'persons' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *PersonsDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_persons($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing persons table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table persons")

	return nil
}

// InsertPerson inserts a new person or updates an existing one with the same ID.
// A nil embedding on update leaves the stored embedding untouched.
func (h *PersonsDBHandler) InsertPerson(person *model.Person) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_person($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		person.ID,
		person.FullName,
		person.Email,
		person.Location,
		person.Occupation,
		person.Company,
		person.School,
		person.ResumeFile,
		person.BioText,
		pq.Array(person.Sources),
		pq.Array(person.Embedding),
		person.Metadata,
	)

	err := row.Scan(
		&person.ID,
		&person.FullName,
		&person.Email,
		&person.Location,
		&person.Occupation,
		&person.Company,
		&person.School,
		&person.ResumeFile,
		&person.BioText,
		pq.Array(&person.Sources),
		pq.Array(&person.Embedding),
		&person.Metadata,
		&person.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// UpdatePersonEmbedding updates the embedding of a person
func (h *PersonsDBHandler) UpdatePersonEmbedding(person *model.Person) error {
	embeddingVector := pgvector.NewVector(person.Embedding)
	row := h.db.Instance.QueryRow(
		`SELECT * FROM update_person_embedding($1, $2)`,
		person.ID,
		embeddingVector,
	)

	err := row.Scan(
		&person.ID,
		&person.FullName,
		&person.Email,
		&person.Location,
		&person.Occupation,
		&person.Company,
		&person.School,
		&person.ResumeFile,
		&person.BioText,
		pq.Array(&person.Sources),
		pq.Array(&person.Embedding),
		&person.Metadata,
		&person.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// DeletePerson deletes a person by ID
func (h *PersonsDBHandler) DeletePerson(id string) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_person($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectPerson retrieves a person by ID
func (h *PersonsDBHandler) SelectPerson(id string) (*model.Person, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_person($1)`,
		id,
	)

	person := &model.Person{}
	err := row.Scan(
		&person.ID,
		&person.FullName,
		&person.Email,
		&person.Location,
		&person.Occupation,
		&person.Company,
		&person.School,
		&person.ResumeFile,
		&person.BioText,
		pq.Array(&person.Sources),
		pq.Array(&person.Embedding),
		&person.Metadata,
		&person.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return person, nil
}

// SelectPersonByName retrieves a person by exact full name, case-insensitive.
func (h *PersonsDBHandler) SelectPersonByName(fullName string) (*model.Person, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_person_by_name($1)`,
		fullName,
	)

	person := &model.Person{}
	err := row.Scan(
		&person.ID,
		&person.FullName,
		&person.Email,
		&person.Location,
		&person.Occupation,
		&person.Company,
		&person.School,
		&person.ResumeFile,
		&person.BioText,
		pq.Array(&person.Sources),
		pq.Array(&person.Embedding),
		&person.Metadata,
		&person.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return person, nil
}

// SelectPersonsByOccupationAndLocation retrieves persons matching both fields
// by case-insensitive substring. Results are ordered by ID.
func (h *PersonsDBHandler) SelectPersonsByOccupationAndLocation(occupation string, location string, limit int) ([]*model.Person, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_persons_by_occupation_location($1, $2, $3)`,
		occupation,
		location,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var persons []*model.Person
	for rows.Next() {
		person := &model.Person{}
		err := rows.Scan(
			&person.ID,
			&person.FullName,
			&person.Email,
			&person.Location,
			&person.Occupation,
			&person.Company,
			&person.School,
			&person.ResumeFile,
			&person.BioText,
			pq.Array(&person.Sources),
			pq.Array(&person.Embedding),
			&person.Metadata,
			&person.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		persons = append(persons, person)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return persons, nil
}

// SelectPersonsBySimilarity performs vector similarity search over person embeddings.
// Persons without an embedding are skipped.
func (h *PersonsDBHandler) SelectPersonsBySimilarity(embedding []float32, limit int, threshold float64) ([]*model.Person, error) {
	embeddingVector := pgvector.NewVector(embedding)

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_persons_by_similarity($1, $2, $3)`,
		embeddingVector,
		limit,
		threshold,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*model.Person
	for rows.Next() {
		person := &model.Person{}
		err := rows.Scan(
			&person.ID,
			&person.FullName,
			&person.Email,
			&person.Location,
			&person.Occupation,
			&person.Company,
			&person.School,
			&person.ResumeFile,
			&person.BioText,
			pq.Array(&person.Sources),
			pq.Array(&person.Embedding),
			&person.Metadata,
			&person.CreatedAt,
			&person.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		results = append(results, person)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// SelectNameIDMap retrieves a map from full name to person ID for the whole
// roster. Names are stored as-is; the caller decides how to fold case.
func (h *PersonsDBHandler) SelectNameIDMap() (map[string]string, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_name_id_map()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	nameToID := map[string]string{}
	for rows.Next() {
		var id, fullName string
		err := rows.Scan(&id, &fullName)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		nameToID[fullName] = id
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return nameToID, nil
}

// RawQuery runs an arbitrary read query and returns the rows as generic maps.
// Used by the fallback adapter where the query shape is not known in advance.
func (h *PersonsDBHandler) RawQuery(ctx context.Context, query string) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := h.db.Instance.QueryContext(ctx, query)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, helper.NewError("columns", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		err := rows.Scan(pointers...)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		result := map[string]any{}
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				result[column] = string(b)
			} else {
				result[column] = values[i]
			}
		}

		results = append(results, result)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}
