package ops

import (
	"context"
	"testing"

	"github.com/tacit-sh/tacit/internal/config"
	"github.com/tacit-sh/tacit/internal/rank"
	"github.com/tacit-sh/tacit/internal/vector"
)

func TestRank_ActivityOnly(t *testing.T) {
	database := newTestDB(t)

	addInteraction(t, database, "busy.go", 20, 500, 3600)
	addInteraction(t, database, "quiet.go", 1, 2, 10)

	ranker := rank.FromConfig(config.DefaultConfig())
	output, err := Rank(context.Background(), database, nil, ranker, RankInput{})
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}

	if len(output.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(output.Items))
	}
	if output.Items[0].Path != "busy.go" {
		t.Errorf("top = %s, want busy.go", output.Items[0].Path)
	}
}

func TestRank_WithSimilarity(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	// Equal activity; only the query similarity separates them.
	addInteraction(t, database, "config.go", 5, 50, 100)
	addInteraction(t, database, "render.go", 5, 50, 100)

	store, err := vector.Open(t.TempDir(), "/ws", vector.NewHashEmbedder(0))
	if err != nil {
		t.Fatalf("vector.Open failed: %v", err)
	}
	defer store.Close()
	if err := store.Upsert(ctx, "config.go", "parse the json configuration file"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, "render.go", "render the html template"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	ranker := rank.FromConfig(config.DefaultConfig())
	output, err := Rank(ctx, database, store, ranker, RankInput{Query: "json configuration parsing"})
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}

	if output.Items[0].Path != "config.go" {
		t.Errorf("top = %s, want config.go", output.Items[0].Path)
	}
	if output.Items[0].Similarity == 0 {
		t.Error("similarity component missing from the score")
	}
}

func TestRank_LimitApplied(t *testing.T) {
	database := newTestDB(t)

	for _, path := range []string{"a.go", "b.go", "c.go"} {
		addInteraction(t, database, path, 1, 10, 60)
	}

	ranker := rank.FromConfig(config.DefaultConfig())
	output, err := Rank(context.Background(), database, nil, ranker, RankInput{Limit: 2})
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if len(output.Items) != 2 {
		t.Errorf("items = %d, want 2", len(output.Items))
	}
}

func TestRank_EmptyDatabase(t *testing.T) {
	database := newTestDB(t)

	ranker := rank.FromConfig(config.DefaultConfig())
	output, err := Rank(context.Background(), database, nil, ranker, RankInput{})
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if output.Items == nil {
		t.Error("Items = nil, want empty slice")
	}
}
