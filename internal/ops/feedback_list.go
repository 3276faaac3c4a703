package ops

import (
	"database/sql"

	"github.com/tacit-sh/tacit/internal/db"
)

// FeedbackListInput contains parameters for the FeedbackList operation.
type FeedbackListInput struct {
	Path   string // optional filter; empty lists across all paths
	Limit  int    // default: 20, max: 100
	Offset int    // default: 0
}

// FeedbackItem is one feedback record in list output.
type FeedbackItem struct {
	ID           string  `json:"id"`
	CompletionID string  `json:"completion_id"`
	Path         string  `json:"path"`
	Accepted     bool    `json:"accepted"`
	UserText     *string `json:"user_text,omitempty"`
	Multiline    bool    `json:"multiline"`
	CreatedAt    int64   `json:"created_at"`
}

// FeedbackListOutput contains the result of the FeedbackList operation.
type FeedbackListOutput struct {
	Items      []FeedbackItem `json:"items"`
	Pagination Pagination     `json:"pagination"`
	Sort       string         `json:"sort"`
}

// FeedbackList retrieves feedback records, newest first, with pagination.
func FeedbackList(database *sql.DB, input FeedbackListInput) (*FeedbackListOutput, error) {
	limit := clampLimit(input.Limit, DefaultListLimit, MaxListLimit)
	offset := max(input.Offset, 0)

	entries, err := db.ListFeedback(database, input.Path, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := db.CountFeedback(database, input.Path)
	if err != nil {
		return nil, err
	}

	items := make([]FeedbackItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, FeedbackItem{
			ID:           e.ID,
			CompletionID: e.CompletionID,
			Path:         e.Path,
			Accepted:     e.Accepted,
			UserText:     e.UserText,
			Multiline:    e.Multiline,
			CreatedAt:    e.CreatedAt,
		})
	}

	hasMore := int64(offset+len(items)) < total

	return &FeedbackListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: hasMore,
			Total:   int(total),
		},
		Sort: "created_at_desc",
	}, nil
}
