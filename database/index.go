package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/netrec/netrec/helper"
)

const vectorIndexName = "idx_persons_embedding"

// ChangeIndexType rebuilds the index on persons.embedding as "hnsw" or
// "ivfflat". Exact search keeps working while no index exists, so this is an
// operator action typically run once after a bulk ingest, when an
// approximate index starts to pay off.
// Recognized params: "m" and "ef_construction" for hnsw, "lists" for
// ivfflat; unknown keys are ignored and missing ones use pgvector defaults.
func (h *PersonsDBHandler) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	createSQL, err := vectorIndexSQL(indexType, params)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	_, err = h.db.Instance.ExecContext(ctx, fmt.Sprintf(`DROP INDEX IF EXISTS %v;`, vectorIndexName))
	if err != nil {
		return helper.NewError("drop index", err)
	}

	_, err = h.db.Instance.ExecContext(ctx, createSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	h.db.Logger.Info("Rebuilt vector index", slog.String("type", indexType))

	return nil
}

func vectorIndexSQL(indexType string, params map[string]interface{}) (string, error) {
	switch indexType {
	case "hnsw":
		return fmt.Sprintf(
			`CREATE INDEX %v ON persons USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			vectorIndexName,
			intParam(params, "m", 16),
			intParam(params, "ef_construction", 64),
		), nil
	case "ivfflat":
		return fmt.Sprintf(
			`CREATE INDEX %v ON persons USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			vectorIndexName,
			intParam(params, "lists", 100),
		), nil
	default:
		return "", helper.NewError("change index type", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", indexType))
	}
}

func intParam(params map[string]interface{}, key string, fallback int) int {
	if value, ok := params[key].(int); ok {
		return value
	}
	return fallback
}
