package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tacit-sh/tacit/internal/rank"
)

// ReportInput contains parameters for the Report operation.
type ReportInput struct {
	Limit int // per-section rows, default: 20, max: 100
}

// ReportOutput contains the generated markdown report.
type ReportOutput struct {
	Markdown    string `json:"markdown"`
	GeneratedAt int64  `json:"generated_at"`
}

// Report renders a markdown summary of feedback and activity, suitable for
// the web dashboard or for pasting into a discussion.
func Report(database *sql.DB, ranker *rank.Ranker, input ReportInput) (*ReportOutput, error) {
	stats, err := Stats(database, StatsInput{Limit: input.Limit})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var b strings.Builder

	b.WriteString("# Completion Feedback Report\n\n")
	fmt.Fprintf(&b, "Generated %s\n\n", now.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "- **Feedback records:** %d\n", stats.TotalFeedback)
	fmt.Fprintf(&b, "- **Tracked paths:** %d\n\n", stats.TrackedPaths)

	if len(stats.Feedback) > 0 {
		b.WriteString("## Acceptance by path\n\n")
		b.WriteString("| Path | Completions | Accepted | Rate |\n")
		b.WriteString("|------|------------:|---------:|-----:|\n")
		for _, f := range stats.Feedback {
			fmt.Fprintf(&b, "| %s | %d | %d | %.0f%% |\n", f.Path, f.Total, f.Accepted, f.AcceptanceRate*100)
		}
		b.WriteString("\n")
	}

	if len(stats.Activity) > 0 {
		b.WriteString("## Activity by path\n\n")
		b.WriteString("| Path | Visits | Strokes | Time |\n")
		b.WriteString("|------|-------:|--------:|-----:|\n")
		for _, a := range stats.Activity {
			fmt.Fprintf(&b, "| %s | %d | %d | %s |\n", a.Path, a.Visits, a.Strokes, formatDuration(a.SessionSeconds))
		}
		b.WriteString("\n")
	}

	if ranker != nil {
		ranked, err := Rank(context.Background(), database, nil, ranker, RankInput{Limit: input.Limit})
		if err == nil && len(ranked.Items) > 0 {
			b.WriteString("## Predicted relevance\n\n")
			for i, item := range ranked.Items {
				fmt.Fprintf(&b, "%d. `%s` (%.2f)\n", i+1, item.Path, item.Score)
			}
			b.WriteString("\n")
		}
	}

	return &ReportOutput{
		Markdown:    b.String(),
		GeneratedAt: now.Unix(),
	}, nil
}

// formatDuration renders accumulated seconds compactly (45s, 12m, 3h05m).
func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
