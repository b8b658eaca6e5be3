package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/netrec/netrec"
	"github.com/netrec/netrec/core/reconcile"
	"github.com/netrec/netrec/feedback"
	"github.com/netrec/netrec/helper"
	"github.com/netrec/netrec/model"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "netrec",
		Usage: "People recommendations over structured, semantic, and graph retrieval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to .env file with NETREC_DB_* settings",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "feedback-file",
				Aliases: []string{"f"},
				Usage:   "Path to the feedback JSON-lines log",
				Value:   "feedback_log.jsonl",
			},
			&cli.IntFlag{
				Name:  "embedding-dim",
				Usage: "Dimension of the person embedding vectors",
				Value: 384,
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "ask",
				Usage:  "Interactive query prompt with feedback capture",
				Action: askCommand,
			},
			{
				Name:   "seed",
				Usage:  "Ingest person profiles from a CSV file",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "csv",
						Usage:    "Path to the profiles CSV file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "resumes",
						Usage: "Directory containing resume text files",
					},
					&cli.StringFlag{
						Name:  "index",
						Usage: "Rebuild the embedding index after ingest (hnsw or ivfflat)",
					},
				},
			},
			{
				Name:   "feedback",
				Usage:  "Show the most recent feedback entries",
				Action: feedbackCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of entries to show",
						Value:   10,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) error {
	// .env is optional; explicit environment wins either way
	_ = godotenv.Load(c.String("env-file"))

	var level slog.Level
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("unknown log level: %s", c.String("log-level"))
	}

	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: level},
	}
	slog.SetDefault(slog.New(helper.NewPrettyHandler(os.Stderr, opts)))

	return nil
}

func newRecommender(c *cli.Context) (*netrec.Recommender, error) {
	config, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return nil, err
	}

	return netrec.NewRecommender(config, c.Int("embedding-dim"), c.String("feedback-file"))
}

func askCommand(c *cli.Context) error {
	recommender, err := newRecommender(c)
	if err != nil {
		return err
	}
	defer recommender.Close()

	if err := recommender.UseDefaultPipeline(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Enter query (or 'quit' to exit): ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "quit") {
			break
		}

		response, err := recommender.Ask(c.Context, query)
		if err != nil {
			fmt.Printf("Error: %v\n\n", err)
			continue
		}

		recommendations := renderRecommendations(os.Stdout, response)
		captureFeedback(scanner, recommender, query, recommendations)
		fmt.Println()
	}

	return scanner.Err()
}

// renderRecommendations prints numbered recommendation lines and the
// underfill notice. Filtering runs again here so the subject and meta lines
// never reach the terminal even if an upstream pass missed them; the
// returned slice is what was actually shown, in display order.
func renderRecommendations(w io.Writer, response *model.Response) []*model.Recommendation {
	recommendations := reconcile.FilterRecommendations(response.Recommendations, response.Intent.TargetPerson)
	shortfall := response.Shortfall + len(response.Recommendations) - len(recommendations)

	if len(recommendations) == 0 {
		fmt.Fprintln(w, "No recommendations found.")
		return nil
	}

	for i, rec := range recommendations {
		fmt.Fprintf(w, "%d. %s\n", i+1, rec.Line)
	}
	if shortfall > 0 {
		fmt.Fprintf(w, "(only %d of %d requested matches found)\n",
			len(recommendations), len(recommendations)+shortfall)
	}
	return recommendations
}

// captureFeedback reads an optional judgement like "+2" or "-1 too junior"
// referencing a numbered recommendation.
func captureFeedback(scanner *bufio.Scanner, recommender *netrec.Recommender, query string, recommendations []*model.Recommendation) {
	if len(recommendations) == 0 {
		return
	}

	fmt.Print("Feedback (+N/-N [comment], or enter to skip): ")
	if !scanner.Scan() {
		return
	}

	input := strings.TrimSpace(scanner.Text())
	if input == "" {
		return
	}

	rating := model.RatingPositive
	switch input[0] {
	case '+':
	case '-':
		rating = model.RatingNegative
	default:
		fmt.Println("Skipping feedback: expected +N or -N.")
		return
	}

	numberAndComment := strings.SplitN(input[1:], " ", 2)
	index, err := strconv.Atoi(numberAndComment[0])
	if err != nil || index < 1 || index > len(recommendations) {
		fmt.Println("Skipping feedback: no such recommendation number.")
		return
	}

	comment := ""
	if len(numberAndComment) == 2 {
		comment = strings.TrimSpace(numberAndComment[1])
	}

	rec := recommendations[index-1]
	err = recommender.RecordFeedback(query, rec.PersonID, rating, rec.Line, comment)
	if err != nil {
		fmt.Printf("Could not save feedback: %v\n", err)
		return
	}
	fmt.Println("Feedback saved.")
}

func seedCommand(c *cli.Context) error {
	recommender, err := newRecommender(c)
	if err != nil {
		return err
	}
	defer recommender.Close()

	if err := recommender.UseDefaultPipeline(); err != nil {
		return err
	}

	count, err := recommender.IngestProfilesCSV(c.String("csv"), c.String("resumes"))
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %d profiles.\n", count)

	if indexType := c.String("index"); indexType != "" {
		if err := recommender.ChangeIndexType(c.Context, indexType, nil); err != nil {
			return err
		}
		fmt.Printf("Rebuilt embedding index as %s.\n", indexType)
	}

	return nil
}

func feedbackCommand(c *cli.Context) error {
	// Reading the log needs no database connection
	recorder, err := feedback.NewRecorder(c.String("feedback-file"))
	if err != nil {
		return err
	}

	entries, err := recorder.Recent(c.Int("count"))
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No feedback recorded yet.")
		return nil
	}

	for _, entry := range entries {
		sign := "+"
		if entry.Rating < 0 {
			sign = "-"
		}
		fmt.Printf("%s [%s1] %q -> %s", entry.Timestamp.Format("2006-01-02 15:04:05"), sign, entry.Query, entry.RecommendedID)
		if entry.Comment != "" {
			fmt.Printf(" (%s)", entry.Comment)
		}
		fmt.Println()
	}

	return nil
}
