package ops

import (
	"database/sql"
	"time"

	"github.com/tacit-sh/tacit/internal/config"
	"github.com/tacit-sh/tacit/internal/db"
	"github.com/tacit-sh/tacit/internal/errors"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	// RetentionDays overrides the configured retention when positive.
	RetentionDays int
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	RetentionDays int   `json:"retention_days"`
	Cutoff        int64 `json:"cutoff"`
	Removed       int64 `json:"removed"`
}

// Purge deletes feedback records older than the retention window.
// Interaction aggregates are kept; they are bounded by path count, not by
// time, and feed the ranker indefinitely.
func Purge(database *sql.DB, cfg *config.Config, input PurgeInput) (*PurgeOutput, error) {
	retention := input.RetentionDays
	if retention <= 0 && cfg != nil {
		retention = cfg.RetentionDays
	}
	if retention <= 0 {
		return nil, errors.NewInvalidRequest("retention_days must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -retention).Unix()
	removed, err := db.PurgeFeedback(database, cutoff)
	if err != nil {
		return nil, err
	}

	return &PurgeOutput{
		RetentionDays: retention,
		Cutoff:        cutoff,
		Removed:       removed,
	}, nil
}
