package database

import (
	"context"
	"testing"
	"time"

	"github.com/netrec/netrec/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonsNewPersonsDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewPersonsDBHandler", func(t *testing.T) {
		personsDbHandler, err := NewPersonsDBHandler(database, 384, true)
		assert.NoError(t, err, "Expected NewPersonsDBHandler to not return an error")
		require.NotNil(t, personsDbHandler, "Expected NewPersonsDBHandler to return a non-nil instance")
		require.NotNil(t, personsDbHandler.db, "Expected NewPersonsDBHandler to have a non-nil database instance")
		require.NotNil(t, personsDbHandler.db.Instance, "Expected NewPersonsDBHandler to have a non-nil database connection instance")
	})

	t.Run("Invalid call NewPersonsDBHandler with nil database", func(t *testing.T) {
		_, err := NewPersonsDBHandler(nil, 384, false)
		assert.Error(t, err, "Expected error when creating PersonsDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestPersonsInsert(t *testing.T) {
	database := initDB(t)

	personsDbHandler, err := NewPersonsDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewPersonsDBHandler to not return an error")

	t.Run("Insert person without embedding", func(t *testing.T) {
		person := &model.Person{
			ID:         "user-001",
			FullName:   "Avery Quinn",
			Email:      "avery@example.com",
			Location:   "Seattle",
			Occupation: "Engineer",
			Company:    "Acme",
			Sources:    []string{"LinkedIn"},
			Metadata:   map[string]interface{}{"batch": "test"},
		}

		err := personsDbHandler.InsertPerson(person)
		assert.NoError(t, err, "Expected Insert to not return an error")
		assert.Equal(t, "user-001", person.ID, "Expected ID to be preserved")
		assert.WithinDuration(t, person.CreatedAt, time.Now(), 2*time.Second, "Expected CreatedAt to be set")
	})

	t.Run("Insert person with embedding", func(t *testing.T) {
		person := &model.Person{
			ID:         "user-002",
			FullName:   "Blair Chen",
			Occupation: "Designer",
			Location:   "Portland",
			Embedding:  testEmbedding(384, 0),
		}

		err := personsDbHandler.InsertPerson(person)
		assert.NoError(t, err, "Expected Insert to not return an error")
		assert.Equal(t, 384, len(person.Embedding), "Expected embedding to be preserved")
	})

	t.Run("Insert with existing ID upserts", func(t *testing.T) {
		person := &model.Person{
			ID:         "user-001",
			FullName:   "Avery Quinn",
			Occupation: "Staff Engineer",
			Location:   "Seattle",
		}

		err := personsDbHandler.InsertPerson(person)
		assert.NoError(t, err, "Expected upsert to not return an error")
		assert.Equal(t, "Staff Engineer", person.Occupation, "Expected occupation to be updated")
	})

	// Cleanup
	personsDbHandler.DeletePerson("user-001")
	personsDbHandler.DeletePerson("user-002")
}

func TestPersonsGet(t *testing.T) {
	database := initDB(t)

	personsDbHandler, err := NewPersonsDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewPersonsDBHandler to not return an error")

	person := &model.Person{
		ID:         "user-010",
		FullName:   "Casey Morgan",
		Occupation: "Data Scientist",
		Location:   "Austin",
	}
	err = personsDbHandler.InsertPerson(person)
	require.NoError(t, err)

	t.Run("Get existing person by ID", func(t *testing.T) {
		got, err := personsDbHandler.SelectPerson("user-010")
		assert.NoError(t, err, "Expected Get to not return an error")
		require.NotNil(t, got)
		assert.Equal(t, "Casey Morgan", got.FullName)
		assert.Equal(t, "Data Scientist", got.Occupation)
	})

	t.Run("Get non-existing person", func(t *testing.T) {
		_, err := personsDbHandler.SelectPerson("no-such-id")
		assert.Error(t, err, "Expected error for non-existing person")
	})

	t.Run("Get person by name is case-insensitive", func(t *testing.T) {
		got, err := personsDbHandler.SelectPersonByName("casey morgan")
		assert.NoError(t, err, "Expected Get by name to not return an error")
		require.NotNil(t, got)
		assert.Equal(t, "user-010", got.ID)
	})

	// Cleanup
	personsDbHandler.DeletePerson("user-010")
}

func TestPersonsByOccupationAndLocation(t *testing.T) {
	database := initDB(t)

	personsDbHandler, err := NewPersonsDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewPersonsDBHandler to not return an error")

	persons := []*model.Person{
		{ID: "user-020", FullName: "Drew Park", Occupation: "Software Engineer", Location: "Seattle, WA"},
		{ID: "user-021", FullName: "Emery Walsh", Occupation: "Engineer", Location: "Seattle, WA"},
		{ID: "user-022", FullName: "Finley Hart", Occupation: "Nurse", Location: "Seattle, WA"},
		{ID: "user-023", FullName: "Gale Rhodes", Occupation: "Engineer", Location: "Boston, MA"},
	}
	for _, p := range persons {
		require.NoError(t, personsDbHandler.InsertPerson(p))
	}

	t.Run("Substring match on both fields", func(t *testing.T) {
		got, err := personsDbHandler.SelectPersonsByOccupationAndLocation("engineer", "seattle", 10)
		assert.NoError(t, err)
		require.Len(t, got, 2, "Expected both Seattle engineers to match")
		assert.Equal(t, "user-020", got[0].ID, "Expected results ordered by ID")
		assert.Equal(t, "user-021", got[1].ID)
	})

	t.Run("Partial occupation matches broader titles", func(t *testing.T) {
		got, err := personsDbHandler.SelectPersonsByOccupationAndLocation("software", "seattle", 10)
		assert.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Drew Park", got[0].FullName)
	})

	t.Run("No matches returns empty", func(t *testing.T) {
		got, err := personsDbHandler.SelectPersonsByOccupationAndLocation("astronaut", "seattle", 10)
		assert.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Limit caps results", func(t *testing.T) {
		got, err := personsDbHandler.SelectPersonsByOccupationAndLocation("engineer", "seattle", 1)
		assert.NoError(t, err)
		assert.Len(t, got, 1)
	})

	// Cleanup
	for _, p := range persons {
		personsDbHandler.DeletePerson(p.ID)
	}
}

func TestPersonsBySimilarity(t *testing.T) {
	database := initDB(t)

	personsDbHandler, err := NewPersonsDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewPersonsDBHandler to not return an error")

	withEmbedding := &model.Person{
		ID:        "user-030",
		FullName:  "Harper Diaz",
		Embedding: testEmbedding(384, 0),
	}
	similar := &model.Person{
		ID:        "user-031",
		FullName:  "Indigo Wells",
		Embedding: testEmbedding(384, 1),
	}
	withoutEmbedding := &model.Person{
		ID:       "user-032",
		FullName: "Jules Vance",
	}
	require.NoError(t, personsDbHandler.InsertPerson(withEmbedding))
	require.NoError(t, personsDbHandler.InsertPerson(similar))
	require.NoError(t, personsDbHandler.InsertPerson(withoutEmbedding))

	t.Run("Similarity search returns nearest persons", func(t *testing.T) {
		got, err := personsDbHandler.SelectPersonsBySimilarity(testEmbedding(384, 0), 5, 0)
		assert.NoError(t, err)
		require.NotEmpty(t, got, "Expected at least one similar person")
		assert.Equal(t, "user-030", got[0].ID, "Expected exact-match embedding first")
		assert.InDelta(t, 1.0, got[0].Similarity, 0.001, "Expected identical vectors to have similarity close to 1")
	})

	t.Run("Persons without embedding are skipped", func(t *testing.T) {
		got, err := personsDbHandler.SelectPersonsBySimilarity(testEmbedding(384, 0), 10, 0)
		assert.NoError(t, err)
		for _, p := range got {
			assert.NotEqual(t, "user-032", p.ID, "Expected person without embedding to be excluded")
		}
	})

	t.Run("Limit caps results", func(t *testing.T) {
		got, err := personsDbHandler.SelectPersonsBySimilarity(testEmbedding(384, 0), 1, 0)
		assert.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("Threshold filters weak matches", func(t *testing.T) {
		got, err := personsDbHandler.SelectPersonsBySimilarity(testEmbedding(384, 0), 10, 0.9999)
		assert.NoError(t, err)
		for _, p := range got {
			assert.GreaterOrEqual(t, p.Similarity, 0.9999)
		}
	})

	// Cleanup
	personsDbHandler.DeletePerson("user-030")
	personsDbHandler.DeletePerson("user-031")
	personsDbHandler.DeletePerson("user-032")
}

func TestPersonsUpdateEmbedding(t *testing.T) {
	database := initDB(t)

	personsDbHandler, err := NewPersonsDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewPersonsDBHandler to not return an error")

	person := &model.Person{
		ID:       "user-040",
		FullName: "Kai Brennan",
	}
	require.NoError(t, personsDbHandler.InsertPerson(person))

	t.Run("Update embedding of existing person", func(t *testing.T) {
		person.Embedding = testEmbedding(384, 2)
		err := personsDbHandler.UpdatePersonEmbedding(person)
		assert.NoError(t, err, "Expected Update to not return an error")
		assert.Equal(t, 384, len(person.Embedding))
	})

	// Cleanup
	personsDbHandler.DeletePerson("user-040")
}

func TestPersonsNameIDMap(t *testing.T) {
	database := initDB(t)

	personsDbHandler, err := NewPersonsDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewPersonsDBHandler to not return an error")

	persons := []*model.Person{
		{ID: "user-050", FullName: "Lennon Frost"},
		{ID: "user-051", FullName: "Marlow Reyes"},
	}
	for _, p := range persons {
		require.NoError(t, personsDbHandler.InsertPerson(p))
	}

	t.Run("Map contains all persons", func(t *testing.T) {
		nameToID, err := personsDbHandler.SelectNameIDMap()
		assert.NoError(t, err)
		assert.Equal(t, "user-050", nameToID["Lennon Frost"])
		assert.Equal(t, "user-051", nameToID["Marlow Reyes"])
	})

	// Cleanup
	for _, p := range persons {
		personsDbHandler.DeletePerson(p.ID)
	}
}

func TestPersonsRawQuery(t *testing.T) {
	database := initDB(t)

	personsDbHandler, err := NewPersonsDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewPersonsDBHandler to not return an error")

	person := &model.Person{
		ID:         "user-060",
		FullName:   "Noor Haddad",
		Occupation: "Architect",
	}
	require.NoError(t, personsDbHandler.InsertPerson(person))

	t.Run("Raw query returns generic rows", func(t *testing.T) {
		rows, err := personsDbHandler.RawQuery(context.Background(), `SELECT full_name, occupation FROM persons WHERE id = 'user-060'`)
		assert.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Noor Haddad", rows[0]["full_name"])
		assert.Equal(t, "Architect", rows[0]["occupation"])
	})

	t.Run("Raw query with invalid SQL returns error", func(t *testing.T) {
		_, err := personsDbHandler.RawQuery(context.Background(), `SELECT nope FROM not_a_table`)
		assert.Error(t, err)
	})

	// Cleanup
	personsDbHandler.DeletePerson("user-060")
}
