package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/tacit-sh/tacit/internal/db"
	"github.com/tacit-sh/tacit/internal/rank"
	"github.com/tacit-sh/tacit/internal/vector"
)

// RankInput contains parameters for the Rank operation.
type RankInput struct {
	// Query is optional free text (the user's prompt, the current edit).
	// When present and a vector store is available, semantic similarity
	// joins the score.
	Query string
	Limit int // default: 10, max: 50
}

// RankOutput contains the result of the Rank operation.
type RankOutput struct {
	Items []rank.Ranked `json:"items"`
	Query string        `json:"query,omitempty"`
}

// Rank orders tracked paths by predicted relevance. Interaction aggregates
// come from the database; similarity to the query comes from the workspace
// vector store when one is provided. A missing or failing vector store
// degrades to activity-only ranking rather than erroring.
func Rank(ctx context.Context, database *sql.DB, store *vector.Store, ranker *rank.Ranker, input RankInput) (*RankOutput, error) {
	limit := clampLimit(input.Limit, DefaultRankLimit, MaxRankLimit)

	rows, err := db.ListInteractions(database, MaxRankLimit*4, 0)
	if err != nil {
		return nil, err
	}

	similarity := map[string]float64{}
	if store != nil && input.Query != "" {
		matches, err := store.Query(ctx, input.Query, len(rows)+limit)
		if err == nil {
			for _, m := range matches {
				similarity[m.ID] = m.Similarity
			}
		}
	}

	signals := make([]rank.Signal, 0, len(rows))
	for _, r := range rows {
		signals = append(signals, rank.Signal{
			Path:           r.Path,
			Visits:         r.Visits,
			Strokes:        r.Strokes,
			SessionSeconds: r.SessionSeconds,
			LastActive:     time.Unix(r.UpdatedAt, 0),
			Similarity:     similarity[r.Path],
		})
	}

	items := ranker.Top(signals, limit)
	if items == nil {
		items = []rank.Ranked{}
	}

	return &RankOutput{Items: items, Query: input.Query}, nil
}
