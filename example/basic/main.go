package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/netrec/netrec"
	"github.com/netrec/netrec/core/reconcile"
	"github.com/netrec/netrec/helper"
	"github.com/netrec/netrec/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	r, err := netrec.NewRecommender(dbConfig, 384, filepath.Join(".", "feedback_log.jsonl"))
	if err != nil {
		log.Fatalf("Failed to create recommender: %v", err)
	}
	defer r.Close()

	// Set up the default pipeline (embeddings + organization extraction)
	if err := r.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	// Seed a small roster
	profiles := []*model.Person{
		{
			ID: "user-1", FullName: "Avery Quinn",
			Occupation: "Nurse", Location: "Seattle, WA",
			Company: "Harborview Medical Center",
			BioText: "Pediatric nurse with ten years in intensive care at Harborview Medical Center.",
		},
		{
			ID: "user-2", FullName: "Blair Chen",
			Occupation: "Nurse", Location: "Seattle, WA",
			Company: "Harborview Medical Center",
			BioText: "ER nurse and team lead, previously at Swedish Medical Center.",
		},
		{
			ID: "user-3", FullName: "Drew Park",
			Occupation: "Software Engineer", Location: "San Jose, CA",
			Company: "Acme", School: "Stanford University",
			BioText: "Backend engineer at Acme working on search infrastructure, Stanford graduate.",
		},
	}
	for _, p := range profiles {
		if err := r.IngestProfile(p); err != nil {
			log.Fatalf("Failed to ingest %s: %v", p.ID, err)
		}
	}

	queries := []string{
		"find nurses in Seattle",
		"find someone similar to Avery Quinn",
		"who is connected to user-1",
	}

	for _, query := range queries {
		response, err := r.Ask(context.Background(), query)
		if err != nil {
			log.Fatalf("Query failed: %v", err)
		}

		// Second defensive filter pass before anything is shown
		recommendations := reconcile.FilterRecommendations(response.Recommendations, response.Intent.TargetPerson)
		shortfall := response.Shortfall + len(response.Recommendations) - len(recommendations)

		fmt.Printf("\nQuery: %s (adapter: %s)\n", query, response.Adapter)
		for i, rec := range recommendations {
			fmt.Printf("  %d. %s\n", i+1, rec.Line)
		}
		if shortfall > 0 {
			fmt.Printf("  (%d short of requested)\n", shortfall)
		}
	}

	// Record a judgement on the first answer
	if err := r.RecordFeedback(queries[0], "user-1", model.RatingPositive, "Nurse in Seattle, WA", "good match"); err != nil {
		log.Fatalf("Failed to record feedback: %v", err)
	}

	entries, err := r.RecentFeedback(5)
	if err != nil {
		log.Fatalf("Failed to read feedback: %v", err)
	}
	fmt.Printf("\nFeedback entries: %d\n", len(entries))
}
