package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed persons.sql
var personsSQL string

//go:embed orgs.sql
var orgsSQL string

//go:embed edges.sql
var edgesSQL string

// Function lists for verification
var PersonsFunctions = []string{
	"init_persons",
	"insert_person",
	"select_person",
	"select_person_by_name",
	"select_persons_by_occupation_location",
	"select_persons_by_similarity",
	"select_name_id_map",
	"update_person_embedding",
	"delete_person",
}

var OrgsFunctions = []string{
	"init_orgs",
	"insert_org",
	"select_org",
	"select_org_by_name",
	"delete_org",
}

var AffiliationsFunctions = []string{
	"init_affiliations",
	"insert_affiliation",
	"select_affiliations_from_person",
	"traverse_shared_affiliations",
	"delete_affiliation",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadPersonsSql loads person-related SQL functions
func LoadPersonsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, PersonsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing persons functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(personsSQL)
	if err != nil {
		return fmt.Errorf("error executing persons SQL: %w", err)
	}

	exist, err := checkFunctions(db, PersonsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL persons functions loaded successfully")
	return nil
}

// LoadOrgsSql loads organization-related SQL functions
func LoadOrgsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, OrgsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing orgs functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(orgsSQL)
	if err != nil {
		return fmt.Errorf("error executing orgs SQL: %w", err)
	}

	exist, err := checkFunctions(db, OrgsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL orgs functions loaded successfully")
	return nil
}

// LoadAffiliationsSql loads affiliation-related SQL functions
func LoadAffiliationsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, AffiliationsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing affiliations functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(edgesSQL)
	if err != nil {
		return fmt.Errorf("error executing affiliations SQL: %w", err)
	}

	exist, err := checkFunctions(db, AffiliationsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL affiliations functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadPersonsSql(db, force); err != nil {
		return err
	}

	if err := LoadOrgsSql(db, force); err != nil {
		return err
	}

	if err := LoadAffiliationsSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
