package retrieval

import (
	"context"
	"fmt"
	"testing"

	"github.com/netrec/netrec/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStructuredStore struct {
	persons     []*model.Person
	rawRows     []map[string]any
	err         error
	gotOcc      string
	gotLoc      string
	gotLimit    int
	gotRawQuery string
}

func (f *fakeStructuredStore) SelectPersonsByOccupationAndLocation(occupation, location string, limit int) ([]*model.Person, error) {
	f.gotOcc, f.gotLoc, f.gotLimit = occupation, location, limit
	return f.persons, f.err
}

func (f *fakeStructuredStore) RawQuery(ctx context.Context, query string) ([]map[string]any, error) {
	f.gotRawQuery = query
	return f.rawRows, f.err
}

type fakeSemanticStore struct {
	persons      []*model.Person
	err          error
	gotEmbedding []float32
	gotLimit     int
}

func (f *fakeSemanticStore) SelectPersonsBySimilarity(embedding []float32, limit int, threshold float64) ([]*model.Person, error) {
	f.gotEmbedding, f.gotLimit = embedding, limit
	return f.persons, f.err
}

type fakeGraphStore struct {
	edges      []*model.AffiliationEdge
	err        error
	gotPerson  string
	gotMaxHops int
}

func (f *fakeGraphStore) TraverseSharedAffiliations(personID string, maxHops int) ([]*model.AffiliationEdge, error) {
	f.gotPerson, f.gotMaxHops = personID, maxHops
	return f.edges, f.err
}

func fixedEmbedder(text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func TestRouteAttributeFilter(t *testing.T) {
	structured := &fakeStructuredStore{
		persons: []*model.Person{
			{ID: "user-1", FullName: "Avery Quinn", Occupation: "Nurse", Location: "Seattle"},
			{ID: "user-2", FullName: "Blair Chen", Occupation: "Nurse", Location: "Seattle"},
		},
	}
	router := NewRouter(structured, &fakeSemanticStore{}, &fakeGraphStore{}, fixedEmbedder, nil)

	result, err := router.Route(context.Background(), model.NewAttributeFilter("Nurse", "Seattle"))
	require.NoError(t, err)
	assert.Equal(t, model.AdapterStructured, result.Adapter)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Avery Quinn", result.Rows[0].Person.FullName)

	assert.Equal(t, "Nurse", structured.gotOcc)
	assert.Equal(t, "Seattle", structured.gotLoc)
	assert.Equal(t, 3, structured.gotLimit, "Expected default top-k cap")
}

func TestRouteSimilarity(t *testing.T) {
	semantic := &fakeSemanticStore{
		persons: []*model.Person{
			{ID: "user-3", FullName: "Casey Morgan", Similarity: 0.92},
		},
	}
	router := NewRouter(&fakeStructuredStore{}, semantic, &fakeGraphStore{}, fixedEmbedder, nil)

	result, err := router.Route(context.Background(), model.NewSimilarityQuery("find someone similar to Casey Morgan", "Casey Morgan"))
	require.NoError(t, err)
	assert.Equal(t, model.AdapterSemantic, result.Adapter)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 0.92, result.Rows[0].Score, "Expected similarity carried as score")

	assert.Equal(t, []float32{0.1, 0.2, 0.3}, semantic.gotEmbedding, "Expected the full query text to be embedded")
	assert.Equal(t, 4, semantic.gotLimit, "Expected one extra neighbor to cover self-exclusion")
}

func TestRouteConnection(t *testing.T) {
	graph := &fakeGraphStore{
		edges: []*model.AffiliationEdge{
			{FromID: "user-4", Relation: "Acme", ToID: "user-5", ToName: "Drew Park"},
		},
	}
	router := NewRouter(&fakeStructuredStore{}, &fakeSemanticStore{}, graph, fixedEmbedder, nil)

	result, err := router.Route(context.Background(), model.NewConnectionQuery("user-4", 2))
	require.NoError(t, err)
	assert.Equal(t, model.AdapterGraph, result.Adapter)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Drew Park", result.Rows[0].Edge.ToName)

	assert.Equal(t, "user-4", graph.gotPerson)
	assert.Equal(t, 2, graph.gotMaxHops)
}

func TestRouteConnectionDefaultsMaxHops(t *testing.T) {
	graph := &fakeGraphStore{}
	router := NewRouter(&fakeStructuredStore{}, &fakeSemanticStore{}, graph, fixedEmbedder, nil)

	_, err := router.Route(context.Background(), model.NewConnectionQuery("user-4", 0))
	require.NoError(t, err)
	assert.Equal(t, 2, graph.gotMaxHops, "Expected zero max hops to fall back to config default")
}

func TestRouteRaw(t *testing.T) {
	structured := &fakeStructuredStore{
		rawRows: []map[string]any{
			{"full_name": "Emery Walsh", "occupation": "Teacher"},
		},
	}
	router := NewRouter(structured, &fakeSemanticStore{}, &fakeGraphStore{}, fixedEmbedder, nil)

	result, err := router.Route(context.Background(), model.NewRawQuery("SELECT full_name, occupation FROM persons"))
	require.NoError(t, err)
	assert.Equal(t, model.AdapterStructured, result.Adapter)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Emery Walsh", result.Rows[0].Raw["full_name"])
	assert.Equal(t, "SELECT full_name, occupation FROM persons", structured.gotRawQuery)
}

func TestRouteAdapterErrors(t *testing.T) {
	t.Run("Structured store failure is tagged", func(t *testing.T) {
		structured := &fakeStructuredStore{err: fmt.Errorf("connection refused")}
		router := NewRouter(structured, &fakeSemanticStore{}, &fakeGraphStore{}, fixedEmbedder, nil)

		_, err := router.Route(context.Background(), model.NewAttributeFilter("Nurse", "Seattle"))
		require.Error(t, err)

		var adapterErr *AdapterError
		require.ErrorAs(t, err, &adapterErr)
		assert.Equal(t, model.AdapterStructured, adapterErr.Adapter)
		assert.Contains(t, adapterErr.Error(), "connection refused")
	})

	t.Run("Semantic store failure is tagged", func(t *testing.T) {
		semantic := &fakeSemanticStore{err: fmt.Errorf("index unavailable")}
		router := NewRouter(&fakeStructuredStore{}, semantic, &fakeGraphStore{}, fixedEmbedder, nil)

		_, err := router.Route(context.Background(), model.NewSimilarityQuery("similar to X", "X"))
		var adapterErr *AdapterError
		require.ErrorAs(t, err, &adapterErr)
		assert.Equal(t, model.AdapterSemantic, adapterErr.Adapter)
	})

	t.Run("Embedder failure is tagged as semantic", func(t *testing.T) {
		failingEmbedder := func(text string) ([]float32, error) {
			return nil, fmt.Errorf("model not loaded")
		}
		router := NewRouter(&fakeStructuredStore{}, &fakeSemanticStore{}, &fakeGraphStore{}, failingEmbedder, nil)

		_, err := router.Route(context.Background(), model.NewSimilarityQuery("similar to X", "X"))
		var adapterErr *AdapterError
		require.ErrorAs(t, err, &adapterErr)
		assert.Equal(t, model.AdapterSemantic, adapterErr.Adapter)
	})

	t.Run("Graph store failure is tagged", func(t *testing.T) {
		graph := &fakeGraphStore{err: fmt.Errorf("traversal failed")}
		router := NewRouter(&fakeStructuredStore{}, &fakeSemanticStore{}, graph, fixedEmbedder, nil)

		_, err := router.Route(context.Background(), model.NewConnectionQuery("user-4", 2))
		var adapterErr *AdapterError
		require.ErrorAs(t, err, &adapterErr)
		assert.Equal(t, model.AdapterGraph, adapterErr.Adapter)
	})
}

func TestRouteInvalidIntent(t *testing.T) {
	router := NewRouter(&fakeStructuredStore{}, &fakeSemanticStore{}, &fakeGraphStore{}, fixedEmbedder, nil)

	t.Run("Nil intent fails", func(t *testing.T) {
		_, err := router.Route(context.Background(), nil)
		assert.Error(t, err)
	})

	t.Run("Unknown kind fails", func(t *testing.T) {
		_, err := router.Route(context.Background(), &model.Intent{Kind: "bogus"})
		assert.Error(t, err)
	})
}
