package ops

import (
	"database/sql"
	"testing"

	"github.com/tacit-sh/tacit/internal/db"
	"github.com/tacit-sh/tacit/internal/track"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func insertFeedback(t *testing.T, database *sql.DB, path string, accepted bool, createdAt int64) {
	t.Helper()
	entry := &db.FeedbackEntry{
		ID:           track.MustNewID(),
		CompletionID: track.MustNewID(),
		Path:         path,
		Accepted:     accepted,
		CreatedAt:    createdAt,
	}
	if err := db.InsertFeedback(database, entry); err != nil {
		t.Fatalf("InsertFeedback failed: %v", err)
	}
}

func addInteraction(t *testing.T, database *sql.DB, path string, visits, strokes int64, seconds float64) {
	t.Helper()
	err := db.AddInteraction(database, track.SessionDelta{
		Path:    path,
		Visits:  visits,
		Strokes: strokes,
		Seconds: seconds,
	})
	if err != nil {
		t.Fatalf("AddInteraction failed: %v", err)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		limit, want int
	}{
		{0, DefaultListLimit},
		{-5, DefaultListLimit},
		{7, 7},
		{MaxListLimit + 1, MaxListLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.limit, DefaultListLimit, MaxListLimit); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}
