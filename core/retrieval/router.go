// Package retrieval routes a structured intent to exactly one backing store
// and returns the store's rows in a common shape. One intent maps to one
// adapter; fan-out across adapters is left to the caller.
package retrieval

import (
	"context"
	"fmt"

	"github.com/netrec/netrec/core/pipeline"
	"github.com/netrec/netrec/model"
)

// StructuredStore answers attribute filters and raw analytic queries.
type StructuredStore interface {
	SelectPersonsByOccupationAndLocation(occupation string, location string, limit int) ([]*model.Person, error)
	RawQuery(ctx context.Context, query string) ([]map[string]any, error)
}

// SemanticStore answers nearest-neighbor searches over person embeddings.
type SemanticStore interface {
	SelectPersonsBySimilarity(embedding []float32, limit int, threshold float64) ([]*model.Person, error)
}

// GraphStore answers bounded traversals over shared affiliations.
type GraphStore interface {
	TraverseSharedAffiliations(personID string, maxHops int) ([]*model.AffiliationEdge, error)
}

// AdapterError tags a backend failure with the adapter that produced it.
// The router surfaces it verbatim; there is no retry and no fallback adapter.
type AdapterError struct {
	Adapter model.AdapterTag
	Err     error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("adapter %s: %v", e.Adapter, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// Router dispatches intents to stores. It holds no per-query state; a single
// Router is safe to share across queries.
type Router struct {
	structured StructuredStore
	semantic   SemanticStore
	graph      GraphStore
	embedder   pipeline.EmbedFunc
	config     *model.QueryConfig
}

// NewRouter creates a router over the three stores. A nil config falls back
// to the default query configuration.
func NewRouter(structured StructuredStore, semantic SemanticStore, graph GraphStore, embedder pipeline.EmbedFunc, config *model.QueryConfig) *Router {
	if config == nil {
		config = model.DefaultQueryConfig()
	}
	return &Router{
		structured: structured,
		semantic:   semantic,
		graph:      graph,
		embedder:   embedder,
		config:     config,
	}
}

// Route dispatches the intent to its adapter and returns the rows.
func (r *Router) Route(ctx context.Context, intent *model.Intent) (*model.RetrievalResult, error) {
	if intent == nil {
		return nil, fmt.Errorf("intent is nil")
	}

	switch intent.Kind {
	case model.IntentAttributeFilter:
		return r.routeAttributeFilter(intent)
	case model.IntentSimilarityQuery:
		return r.routeSimilarity(intent)
	case model.IntentConnectionQuery:
		return r.routeConnection(intent)
	case model.IntentRawQuery:
		return r.routeRaw(ctx, intent)
	default:
		return nil, fmt.Errorf("unknown intent kind: %s", intent.Kind)
	}
}

func (r *Router) routeAttributeFilter(intent *model.Intent) (*model.RetrievalResult, error) {
	persons, err := r.structured.SelectPersonsByOccupationAndLocation(intent.Occupation, intent.Location, r.config.TopK)
	if err != nil {
		return nil, &AdapterError{Adapter: model.AdapterStructured, Err: err}
	}

	result := &model.RetrievalResult{Adapter: model.AdapterStructured}
	for _, person := range persons {
		result.Rows = append(result.Rows, &model.RetrievalRow{
			Adapter: model.AdapterStructured,
			Person:  person,
		})
	}

	return result, nil
}

func (r *Router) routeSimilarity(intent *model.Intent) (*model.RetrievalResult, error) {
	embedding, err := r.embedder(intent.TargetText)
	if err != nil {
		return nil, &AdapterError{Adapter: model.AdapterSemantic, Err: err}
	}

	// Fetch one extra neighbor; the target person is usually the nearest
	// neighbor of their own embedding and gets excluded downstream.
	persons, err := r.semantic.SelectPersonsBySimilarity(embedding, r.config.TopK+1, r.config.SimilarityThreshold)
	if err != nil {
		return nil, &AdapterError{Adapter: model.AdapterSemantic, Err: err}
	}

	result := &model.RetrievalResult{Adapter: model.AdapterSemantic}
	for _, person := range persons {
		result.Rows = append(result.Rows, &model.RetrievalRow{
			Adapter: model.AdapterSemantic,
			Person:  person,
			Score:   person.Similarity,
		})
	}

	return result, nil
}

func (r *Router) routeConnection(intent *model.Intent) (*model.RetrievalResult, error) {
	maxHops := intent.MaxHops
	if maxHops == 0 {
		maxHops = r.config.MaxHops
	}

	edges, err := r.graph.TraverseSharedAffiliations(intent.PersonID, maxHops)
	if err != nil {
		return nil, &AdapterError{Adapter: model.AdapterGraph, Err: err}
	}

	result := &model.RetrievalResult{Adapter: model.AdapterGraph}
	for _, edge := range edges {
		result.Rows = append(result.Rows, &model.RetrievalRow{
			Adapter: model.AdapterGraph,
			Edge:    edge,
		})
	}

	return result, nil
}

// routeRaw executes the query text directly against the structured store.
// The text is passed through unchanged, so this path must only receive
// operator input, never untrusted users.
func (r *Router) routeRaw(ctx context.Context, intent *model.Intent) (*model.RetrievalResult, error) {
	rows, err := r.structured.RawQuery(ctx, intent.Query)
	if err != nil {
		return nil, &AdapterError{Adapter: model.AdapterStructured, Err: err}
	}

	result := &model.RetrievalResult{Adapter: model.AdapterStructured}
	for _, row := range rows {
		result.Rows = append(result.Rows, &model.RetrievalRow{
			Adapter: model.AdapterStructured,
			Raw:     row,
		})
	}

	return result, nil
}
