// Package ingest loads person profiles into the stores: structured row,
// bio embedding, and affiliation graph in one pass per profile.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/netrec/netrec/core/pipeline"
	"github.com/netrec/netrec/database"
	"github.com/netrec/netrec/helper"
	"github.com/netrec/netrec/model"
)

// profile CSV column layout
var expectedColumns = []string{
	"ID",
	"Full Name",
	"Email",
	"Location",
	"Occupation",
	"Company",
	"School",
	"Resume File",
	"LinkedIn Bio",
}

// LoadProfilesCSV reads person profiles from a CSV file with a header row.
// resumeDir, when non-empty, is searched for each profile's resume file;
// resume text is appended to the bio with its own source tag.
func LoadProfilesCSV(path string, resumeDir string) ([]*model.Person, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, helper.NewError("open profiles csv", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, helper.NewError("read csv header", err)
	}

	columnIndex, err := mapColumns(header)
	if err != nil {
		return nil, helper.NewError("validate csv header", err)
	}

	var persons []*model.Person
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, helper.NewError("read csv record", err)
		}

		person := personFromRecord(record, columnIndex)
		if person.ID == "" || person.FullName == "" {
			continue
		}

		attachBio(person, resumeDir)
		persons = append(persons, person)
	}

	return persons, nil
}

func mapColumns(header []string) (map[string]int, error) {
	columnIndex := map[string]int{}
	for i, name := range header {
		columnIndex[strings.TrimSpace(name)] = i
	}

	for _, required := range expectedColumns {
		if _, ok := columnIndex[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	return columnIndex, nil
}

func personFromRecord(record []string, columnIndex map[string]int) *model.Person {
	field := func(name string) string {
		idx := columnIndex[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	return &model.Person{
		ID:         field("ID"),
		FullName:   field("Full Name"),
		Email:      field("Email"),
		Location:   field("Location"),
		Occupation: field("Occupation"),
		Company:    field("Company"),
		School:     field("School"),
		ResumeFile: field("Resume File"),
		BioText:    field("LinkedIn Bio"),
		Metadata:   map[string]interface{}{},
	}
}

// attachBio assembles the biography from its upstream documents and tags
// which source contributed each part.
func attachBio(person *model.Person, resumeDir string) {
	var parts []string
	var sources []string

	if person.BioText != "" {
		parts = append(parts, fmt.Sprintf("LinkedIn: %s", person.BioText))
		sources = append(sources, "LinkedIn")
	}

	if resumeDir != "" && person.ResumeFile != "" {
		resumePath := filepath.Join(resumeDir, person.ResumeFile)
		if content, err := os.ReadFile(resumePath); err == nil {
			text := strings.TrimSpace(string(content))
			if text != "" {
				parts = append(parts, fmt.Sprintf("Resume: %s", text))
				sources = append(sources, "Resume")
			}
		}
	}

	person.BioText = strings.Join(parts, "\n")
	person.Sources = sources
}

// Ingestor writes profiles into the three stores.
type Ingestor struct {
	persons      *database.PersonsDBHandler
	orgs         *database.OrgsDBHandler
	affiliations *database.AffiliationsDBHandler
	pipeline     *pipeline.Pipeline
}

// NewIngestor creates an ingestor over the database handlers. pipeline may
// be nil; profiles are then stored without embeddings or extracted orgs.
func NewIngestor(persons *database.PersonsDBHandler, orgs *database.OrgsDBHandler, affiliations *database.AffiliationsDBHandler, p *pipeline.Pipeline) (*Ingestor, error) {
	if persons == nil || orgs == nil || affiliations == nil {
		return nil, helper.NewError("ingestor validation", fmt.Errorf("database handlers must not be nil"))
	}
	return &Ingestor{
		persons:      persons,
		orgs:         orgs,
		affiliations: affiliations,
		pipeline:     p,
	}, nil
}

// IngestPerson stores one profile: the person row, its bio embedding, and
// the affiliation edges to its company, school, and any organizations the
// extractor finds in the bio.
func (i *Ingestor) IngestPerson(person *model.Person) error {
	orgNames := explicitOrgs(person)

	if i.pipeline != nil && person.BioText != "" {
		result, err := i.pipeline.Process(person.BioText)
		if err != nil {
			return helper.NewError("process bio", err)
		}
		person.Embedding = result.Embedding
		orgNames = append(orgNames, result.Orgs...)
	}

	err := i.persons.InsertPerson(person)
	if err != nil {
		return helper.NewError("insert person", err)
	}

	seen := map[string]bool{}
	for _, name := range orgNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		org := &model.Organization{Name: name}
		err := i.orgs.InsertOrg(org)
		if err != nil {
			return helper.NewError("insert org", err)
		}

		affiliation := &model.Affiliation{PersonID: person.ID, OrgID: org.ID}
		err = i.affiliations.InsertAffiliation(affiliation)
		if err != nil {
			return helper.NewError("insert affiliation", err)
		}
	}

	return nil
}

// IngestCSV loads a profile CSV and ingests every row.
// Returns the number of profiles ingested.
func (i *Ingestor) IngestCSV(path string, resumeDir string) (int, error) {
	persons, err := LoadProfilesCSV(path, resumeDir)
	if err != nil {
		return 0, err
	}

	for idx, person := range persons {
		err := i.IngestPerson(person)
		if err != nil {
			return idx, helper.NewError(fmt.Sprintf("ingest person %s", person.ID), err)
		}
	}

	return len(persons), nil
}

func explicitOrgs(person *model.Person) []string {
	var orgs []string
	if person.Company != "" {
		orgs = append(orgs, person.Company)
	}
	if person.School != "" {
		orgs = append(orgs, person.School)
	}
	return orgs
}
