package ops

import (
	"database/sql"
	"strings"

	"github.com/tacit-sh/tacit/internal/db"
	"github.com/tacit-sh/tacit/internal/errors"
	"github.com/tacit-sh/tacit/internal/track"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	Path string // required
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Path            string `json:"path"`
	FeedbackRemoved int64  `json:"feedback_removed"`
	StatsRemoved    bool   `json:"stats_removed"`
}

// Delete discards everything recorded for a path: the durable interaction
// aggregate, the feedback log, and any in-memory session state held by the
// engine. Succeeds even when only some of those exist.
func Delete(database *sql.DB, engine *track.Engine, input DeleteInput) (*DeleteOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		return nil, errors.NewInvalidRequest("path must not be empty")
	}

	statsRemoved := true
	err := db.DeleteInteraction(database, path)
	if errors.Is(err, errors.ErrNotFound) {
		statsRemoved = false
	} else if err != nil {
		return nil, err
	}

	removed, err := db.DeleteFeedbackForPath(database, path)
	if err != nil {
		return nil, err
	}

	if engine != nil {
		engine.Forget(path)
	}

	if !statsRemoved && removed == 0 {
		return nil, errors.NewNotFound(path)
	}

	return &DeleteOutput{
		Path:            path,
		FeedbackRemoved: removed,
		StatsRemoved:    statsRemoved,
	}, nil
}
