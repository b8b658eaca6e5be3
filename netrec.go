package netrec

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/netrec/netrec/core/interpret"
	"github.com/netrec/netrec/core/pipeline"
	"github.com/netrec/netrec/core/reconcile"
	"github.com/netrec/netrec/core/retrieval"
	"github.com/netrec/netrec/database"
	"github.com/netrec/netrec/feedback"
	"github.com/netrec/netrec/helper"
	"github.com/netrec/netrec/ingest"
	"github.com/netrec/netrec/model"
	loadSql "github.com/netrec/netrec/sql"
)

// Recommender provides a unified interface to the stores, the query
// pipeline, and the feedback log.
type Recommender struct {
	DB           *helper.Database
	Persons      *database.PersonsDBHandler
	Orgs         *database.OrgsDBHandler
	Affiliations *database.AffiliationsDBHandler
	Pipeline     *pipeline.Pipeline // Optional embedding/extraction pipeline
	Router       *retrieval.Router
	Feedback     *feedback.Recorder
	// Canonical name lookup, built once and refreshed after ingest
	reconcilerMu sync.RWMutex
	reconciler   *reconcile.Reconciler
	// Logging
	log *slog.Logger
}

// NewRecommender creates a Recommender with all handlers initialized.
// feedbackPath is the JSON-lines file feedback is appended to.
func NewRecommender(config *helper.DatabaseConfiguration, embeddingDim int, feedbackPath string) (*Recommender, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("netrec", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (persons and orgs first,
	// affiliations reference both)
	// force=false to not reload if functions already exist
	persons, err := database.NewPersonsDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create persons handler", err)
	}

	orgs, err := database.NewOrgsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create orgs handler", err)
	}

	affiliations, err := database.NewAffiliationsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create affiliations handler", err)
	}

	recorder, err := feedback.NewRecorder(feedbackPath)
	if err != nil {
		return nil, helper.NewError("create feedback recorder", err)
	}

	recommender := &Recommender{
		DB:           db,
		Persons:      persons,
		Orgs:         orgs,
		Affiliations: affiliations,
		Feedback:     recorder,
		log:          logger,
	}

	err = recommender.refreshNameIndex()
	if err != nil {
		return nil, err
	}

	return recommender, nil
}

// refreshNameIndex rebuilds the reconciler over the current full-name to
// identifier table. Called once at construction and after every ingest.
func (r *Recommender) refreshNameIndex() error {
	nameToID, err := r.Persons.SelectNameIDMap()
	if err != nil {
		return helper.NewError("build name lookup", err)
	}

	r.reconcilerMu.Lock()
	r.reconciler = reconcile.NewReconciler(nameToID)
	r.reconcilerMu.Unlock()

	return nil
}

// Close closes the database connection
func (r *Recommender) Close() error {
	if r.DB != nil && r.DB.Instance != nil {
		return r.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the embedding pipeline and rebuilds the router with its
// embedder.
func (r *Recommender) SetPipeline(p *pipeline.Pipeline) {
	r.Pipeline = p
	r.Router = retrieval.NewRouter(r.Persons, r.Persons, r.Affiliations, p.Embedder, nil)
}

// UseDefaultPipeline sets up the default embedding and extraction pipeline.
// This uses DefaultEmbedder with the all-MiniLM-L6-v2 model (384 dimensions)
// and DefaultOrgExtractor with distilbert-NER for affiliation discovery.
func (r *Recommender) UseDefaultPipeline() error {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	orgExtractor, err := pipeline.DefaultOrgExtractor()
	if err != nil {
		return helper.NewError("create default org extractor", err)
	}

	p := pipeline.NewPipeline(embedder)
	p.SetOrgExtractor(orgExtractor)
	r.SetPipeline(p)
	return nil
}

// IngestProfilesCSV loads a profile CSV and writes every profile to the
// stores. Returns the number of profiles ingested.
func (r *Recommender) IngestProfilesCSV(path string, resumeDir string) (int, error) {
	ingestor, err := ingest.NewIngestor(r.Persons, r.Orgs, r.Affiliations, r.Pipeline)
	if err != nil {
		return 0, err
	}

	count, err := ingestor.IngestCSV(path, resumeDir)
	if err != nil {
		return count, err
	}

	if err := r.refreshNameIndex(); err != nil {
		return count, err
	}

	r.log.Info("Ingested profiles", slog.Int("count", count), slog.String("path", path))

	return count, nil
}

// IngestProfile writes a single profile to the stores.
func (r *Recommender) IngestProfile(person *model.Person) error {
	ingestor, err := ingest.NewIngestor(r.Persons, r.Orgs, r.Affiliations, r.Pipeline)
	if err != nil {
		return err
	}

	if err := ingestor.IngestPerson(person); err != nil {
		return err
	}

	return r.refreshNameIndex()
}

// Ask answers a natural-language query end to end: interpret the text into
// an intent, route it to one store, and reconcile the rows into at most
// top-k recommendations. The subject of a similarity query is excluded from
// its own results.
func (r *Recommender) Ask(ctx context.Context, query string) (*model.Response, error) {
	if r.Router == nil {
		return nil, helper.NewError("ask", fmt.Errorf("pipeline not set, use SetPipeline() or UseDefaultPipeline() first"))
	}

	intent := interpret.Interpret(query)

	r.log.Info("Interpreted query", slog.String("kind", string(intent.Kind)), slog.String("query", query))

	raw, err := r.Router.Route(ctx, intent)
	if err != nil {
		return nil, err
	}

	r.reconcilerMu.RLock()
	reconciler := r.reconciler
	r.reconcilerMu.RUnlock()

	topK := model.DefaultQueryConfig().TopK
	recommendations, shortfall := reconciler.Reconcile(raw, intent.TargetPerson, topK)

	r.log.Info("Reconciled results",
		slog.String("adapter", string(raw.Adapter)),
		slog.Int("recommendations", len(recommendations)),
		slog.Int("shortfall", shortfall),
	)

	return &model.Response{
		Intent:          intent,
		Adapter:         raw.Adapter,
		Recommendations: recommendations,
		Shortfall:       shortfall,
	}, nil
}

// ChangeIndexType rebuilds the vector index on the person embeddings as
// "hnsw" or "ivfflat". Typically run once after a bulk ingest; exact search
// keeps working in the meantime.
func (r *Recommender) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return r.Persons.ChangeIndexType(ctx, indexType, params)
}

// RecordFeedback appends one judgement on a recommendation to the log.
func (r *Recommender) RecordFeedback(query, recommendedID string, rating model.Rating, reason, comment string) error {
	entry := model.NewFeedbackEntry(query, recommendedID, rating, reason, comment)
	return r.Feedback.Record(entry)
}

// RecentFeedback returns the last n feedback entries, most recent last.
func (r *Recommender) RecentFeedback(n int) ([]*model.FeedbackEntry, error) {
	return r.Feedback.Recent(n)
}
