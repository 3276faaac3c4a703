package db

import (
	"database/sql"
	"time"

	"github.com/tacit-sh/tacit/internal/errors"
	"github.com/tacit-sh/tacit/internal/track"
)

// FeedbackEntry is one persisted completion-feedback record.
type FeedbackEntry struct {
	ID           string
	CompletionID string
	Path         string
	Accepted     bool
	UserText     *string
	Multiline    bool
	CreatedAt    int64
}

// InteractionRow is the durable per-path interaction aggregate.
type InteractionRow struct {
	Path           string
	Visits         int64
	Strokes        int64
	SessionSeconds float64
	LastLine       int
	LastChar       int
	UpdatedAt      int64
}

// AcceptanceStat is the per-path acceptance summary.
type AcceptanceStat struct {
	Path     string
	Total    int64
	Accepted int64
}

func (e *FeedbackEntry) normalize() {
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
}

// InsertFeedback appends a feedback record. The log is append-only; records
// are never updated in place.
func InsertFeedback(db *sql.DB, e *FeedbackEntry) error {
	e.normalize()

	userText := toNullString(e.UserText)

	query := `
		INSERT INTO feedback (
			id, completion_id, path, accepted, user_text, multiline, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		e.ID, e.CompletionID, e.Path, boolToInt(e.Accepted),
		userText, boolToInt(e.Multiline), e.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// ListFeedback returns feedback records, newest first. An empty path lists
// across all paths.
func ListFeedback(db *sql.DB, path string, limit, offset int) ([]FeedbackEntry, error) {
	query := `
		SELECT id, completion_id, path, accepted, user_text, multiline, created_at
		FROM feedback
	`
	args := []any{}
	if path != "" {
		query += " WHERE path = ?"
		args = append(args, path)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var entries []FeedbackEntry
	for rows.Next() {
		var (
			e        FeedbackEntry
			accepted int
			userText sql.NullString
			multi    int
		)
		if err := rows.Scan(&e.ID, &e.CompletionID, &e.Path, &accepted, &userText, &multi, &e.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.Accepted = accepted != 0
		e.Multiline = multi != 0
		e.UserText = fromNullString(userText)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return entries, nil
}

// CountFeedback returns the number of feedback records, optionally filtered
// by path.
func CountFeedback(db *sql.DB, path string) (int64, error) {
	query := "SELECT COUNT(*) FROM feedback"
	args := []any{}
	if path != "" {
		query += " WHERE path = ?"
		args = append(args, path)
	}

	var count int64
	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.NewInternal(err)
	}
	return count, nil
}

// PurgeFeedback deletes feedback records created before the cutoff and
// returns the number removed.
func PurgeFeedback(db *sql.DB, before int64) (int64, error) {
	result, err := db.Exec("DELETE FROM feedback WHERE created_at < ?", before)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return removed, nil
}

// DeleteFeedbackForPath removes all feedback records for a path and returns
// the number removed.
func DeleteFeedbackForPath(db *sql.DB, path string) (int64, error) {
	result, err := db.Exec("DELETE FROM feedback WHERE path = ?", path)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return removed, nil
}

// Acceptance returns per-path acceptance counts, highest-volume paths first.
func Acceptance(db *sql.DB, limit int) ([]AcceptanceStat, error) {
	query := `
		SELECT path, COUNT(*), SUM(accepted)
		FROM feedback
		GROUP BY path
		ORDER BY COUNT(*) DESC, path ASC
		LIMIT ?
	`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var stats []AcceptanceStat
	for rows.Next() {
		var s AcceptanceStat
		if err := rows.Scan(&s.Path, &s.Total, &s.Accepted); err != nil {
			return nil, errors.NewInternal(err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return stats, nil
}

// AddInteraction folds one closed session's delta into the per-path
// aggregate. The upsert is additive: restarts never clobber history.
func AddInteraction(db *sql.DB, delta track.SessionDelta) error {
	now := time.Now().Unix()

	query := `
		INSERT INTO interactions (
			path, visits, strokes, session_seconds, last_line, last_char, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			visits          = visits + excluded.visits,
			strokes         = strokes + excluded.strokes,
			session_seconds = session_seconds + excluded.session_seconds,
			last_line       = excluded.last_line,
			last_char       = excluded.last_char,
			updated_at      = excluded.updated_at
	`

	_, err := db.Exec(query,
		delta.Path, delta.Visits, delta.Strokes, delta.Seconds,
		delta.LastStroke.Line, delta.LastStroke.Character, now,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// GetInteraction retrieves the aggregate for a single path.
func GetInteraction(db *sql.DB, path string) (*InteractionRow, error) {
	query := `
		SELECT path, visits, strokes, session_seconds, last_line, last_char, updated_at
		FROM interactions
		WHERE path = ?
	`

	var r InteractionRow
	err := db.QueryRow(query, path).Scan(
		&r.Path, &r.Visits, &r.Strokes, &r.SessionSeconds,
		&r.LastLine, &r.LastChar, &r.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(path)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return &r, nil
}

// ListInteractions returns per-path aggregates, most recently active first.
func ListInteractions(db *sql.DB, limit, offset int) ([]InteractionRow, error) {
	query := `
		SELECT path, visits, strokes, session_seconds, last_line, last_char, updated_at
		FROM interactions
		ORDER BY updated_at DESC, path ASC
		LIMIT ? OFFSET ?
	`

	rows, err := db.Query(query, limit, offset)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var list []InteractionRow
	for rows.Next() {
		var r InteractionRow
		if err := rows.Scan(
			&r.Path, &r.Visits, &r.Strokes, &r.SessionSeconds,
			&r.LastLine, &r.LastChar, &r.UpdatedAt,
		); err != nil {
			return nil, errors.NewInternal(err)
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return list, nil
}

// CountInteractions returns the number of tracked paths.
func CountInteractions(db *sql.DB) (int64, error) {
	var count int64
	if err := db.QueryRow("SELECT COUNT(*) FROM interactions").Scan(&count); err != nil {
		return 0, errors.NewInternal(err)
	}
	return count, nil
}

// DeleteInteraction removes the aggregate for a path.
func DeleteInteraction(db *sql.DB, path string) error {
	result, err := db.Exec("DELETE FROM interactions WHERE path = ?", path)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(path)
	}

	return nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// boolToInt maps Go bools onto SQLite's integer storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
