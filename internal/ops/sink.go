package ops

import (
	"database/sql"

	"github.com/tacit-sh/tacit/internal/db"
	"github.com/tacit-sh/tacit/internal/track"
)

// FeedbackSink persists the engine's feedback records. It implements
// track.Sink.
type FeedbackSink struct {
	db *sql.DB
}

// NewFeedbackSink creates a sink writing to database.
func NewFeedbackSink(database *sql.DB) *FeedbackSink {
	return &FeedbackSink{db: database}
}

// Append stores one feedback record. Minting failures are returned so the
// recorder's bounded retry gets a chance at them like any other persistence
// error.
func (s *FeedbackSink) Append(rec track.FeedbackRecord) error {
	id, err := track.NewID()
	if err != nil {
		return err
	}
	entry := &db.FeedbackEntry{
		ID:           id,
		CompletionID: rec.CompletionID,
		Path:         rec.Path,
		Accepted:     rec.Accepted,
		UserText:     rec.UserText,
		Multiline:    rec.Multiline,
	}
	return db.InsertFeedback(s.db, entry)
}

// SessionSink persists closed-session deltas. It implements
// track.SessionSink.
type SessionSink struct {
	db *sql.DB
}

// NewSessionSink creates a sink writing to database.
func NewSessionSink(database *sql.DB) *SessionSink {
	return &SessionSink{db: database}
}

// SessionClosed folds one session's delta into the durable aggregate.
func (s *SessionSink) SessionClosed(delta track.SessionDelta) error {
	return db.AddInteraction(s.db, delta)
}
