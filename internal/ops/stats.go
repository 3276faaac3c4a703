package ops

import (
	"database/sql"

	"github.com/tacit-sh/tacit/internal/db"
)

// StatsInput contains parameters for the Stats operation.
type StatsInput struct {
	Limit int // per-path rows, default: 20, max: 100
}

// PathFeedback summarizes completion feedback for one path.
type PathFeedback struct {
	Path           string  `json:"path"`
	Total          int64   `json:"total"`
	Accepted       int64   `json:"accepted"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

// PathActivity summarizes interaction volume for one path.
type PathActivity struct {
	Path           string  `json:"path"`
	Visits         int64   `json:"visits"`
	Strokes        int64   `json:"strokes"`
	SessionSeconds float64 `json:"session_seconds"`
	UpdatedAt      int64   `json:"updated_at"`
}

// StatsOutput contains the result of the Stats operation.
type StatsOutput struct {
	TotalFeedback int64          `json:"total_feedback"`
	TrackedPaths  int64          `json:"tracked_paths"`
	Feedback      []PathFeedback `json:"feedback"`
	Activity      []PathActivity `json:"activity"`
}

// Stats summarizes recorded feedback and interaction volume across paths.
func Stats(database *sql.DB, input StatsInput) (*StatsOutput, error) {
	limit := clampLimit(input.Limit, DefaultListLimit, MaxListLimit)

	totalFeedback, err := db.CountFeedback(database, "")
	if err != nil {
		return nil, err
	}
	trackedPaths, err := db.CountInteractions(database)
	if err != nil {
		return nil, err
	}

	acceptance, err := db.Acceptance(database, limit)
	if err != nil {
		return nil, err
	}
	feedback := make([]PathFeedback, 0, len(acceptance))
	for _, a := range acceptance {
		rate := 0.0
		if a.Total > 0 {
			rate = float64(a.Accepted) / float64(a.Total)
		}
		feedback = append(feedback, PathFeedback{
			Path:           a.Path,
			Total:          a.Total,
			Accepted:       a.Accepted,
			AcceptanceRate: rate,
		})
	}

	interactions, err := db.ListInteractions(database, limit, 0)
	if err != nil {
		return nil, err
	}
	activity := make([]PathActivity, 0, len(interactions))
	for _, r := range interactions {
		activity = append(activity, PathActivity{
			Path:           r.Path,
			Visits:         r.Visits,
			Strokes:        r.Strokes,
			SessionSeconds: r.SessionSeconds,
			UpdatedAt:      r.UpdatedAt,
		})
	}

	return &StatsOutput{
		TotalFeedback: totalFeedback,
		TrackedPaths:  trackedPaths,
		Feedback:      feedback,
		Activity:      activity,
	}, nil
}
