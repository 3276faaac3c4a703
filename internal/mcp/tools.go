package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. Grouped by family: editor_* mirrors editor
// notifications, completion_* manages completion lifecycle and feedback,
// context_* manages the context item registry, insight_* reads and
// maintains the recorded data.

var documentOpenedToolDef = mcp.NewTool("editor_document_opened",
	mcp.WithDescription("Notify that a document gained focus. Starts an interaction session for the path and counts a visit."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Workspace-relative path of the document")),
)

var documentClosedToolDef = mcp.NewTool("editor_document_closed",
	mcp.WithDescription("Notify that a document lost focus or was closed. Ends its interaction session; accumulated counters survive."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Workspace-relative path of the document")),
)

var documentChangedToolDef = mcp.NewTool("editor_document_changed",
	mcp.WithDescription("Notify that the user edited a document. Classifies the edit against the last issued completion and counts a keystroke."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Workspace-relative path of the edited document")),
	mcp.WithString("text", mcp.Description("Text inserted by the edit; empty for deletions")),
	mcp.WithNumber("line", mcp.Description("Zero-based line of the edit")),
	mcp.WithNumber("character", mcp.Description("Zero-based character of the edit")),
)

var selectionChangedToolDef = mcp.NewTool("editor_selection_changed",
	mcp.WithDescription("Notify that the cursor or selection moved. Schedules the multiline acceptance flag to clear shortly after."),
)

var completionIssuedToolDef = mcp.NewTool("completion_issued",
	mcp.WithDescription("Register a completion shown to the user. Returns the completion id used to match later feedback."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path the completion targets")),
	mcp.WithString("text", mcp.Required(), mcp.Description("Full completion text")),
)

var completionAbortedToolDef = mcp.NewTool("completion_aborted",
	mcp.WithDescription("Discard an in-flight completion that was dismissed before any edit, so no feedback is recorded for it."),
	mcp.WithString("completion_id", mcp.Required(), mcp.Description("Id returned by completion_issued")),
)

var completionStateToolDef = mcp.NewTool("completion_accept_state",
	mcp.WithDescription("Read whether a multiline completion was just accepted. The flag clears shortly after the selection next moves."),
)

var feedbackListToolDef = mcp.NewTool("completion_feedback_list",
	mcp.WithDescription("List recorded completion feedback, newest first."),
	mcp.WithString("path", mcp.Description("Only records for this path")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Pagination offset")),
)

var contextAddFileToolDef = mcp.NewTool("context_add_file",
	mcp.WithDescription("Pin a file as a context item. Re-adding the same file updates it in place instead of duplicating."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Workspace-relative path of the file")),
	mcp.WithString("content", mcp.Description("File content to index for semantic ranking")),
)

var contextAddSelectionToolDef = mcp.NewTool("context_add_selection",
	mcp.WithDescription("Pin a text selection as a context item. Every call creates a distinct item, even for identical ranges."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path of the file the selection is from")),
	mcp.WithString("content", mcp.Required(), mcp.Description("Selected text; must not be empty")),
	mcp.WithNumber("start_line", mcp.Description("Zero-based first line of the selection")),
	mcp.WithNumber("start_character", mcp.Description("Zero-based start character")),
	mcp.WithNumber("end_line", mcp.Description("Zero-based last line of the selection")),
	mcp.WithNumber("end_character", mcp.Description("Zero-based end character")),
)

var contextRemoveToolDef = mcp.NewTool("context_remove",
	mcp.WithDescription("Remove a context item by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id: the path for files, the minted id for selections")),
)

var contextListToolDef = mcp.NewTool("context_list",
	mcp.WithDescription("List pinned context items in insertion order."),
)

var statsToolDef = mcp.NewTool("insight_stats",
	mcp.WithDescription("Summarize recorded feedback and interaction volume per path."),
	mcp.WithNumber("limit", mcp.Description("Per-path rows (default 20, max 100)")),
)

var rankToolDef = mcp.NewTool("insight_rank",
	mcp.WithDescription("Rank tracked paths by predicted relevance from activity, recency, dwell time, and optional query similarity."),
	mcp.WithString("query", mcp.Description("Free text to match semantically against indexed context")),
	mcp.WithNumber("limit", mcp.Description("Result count (default 10, max 50)")),
)

var reportToolDef = mcp.NewTool("insight_report",
	mcp.WithDescription("Render a markdown report of feedback, activity, and predicted relevance."),
	mcp.WithNumber("limit", mcp.Description("Per-section rows (default 20, max 100)")),
)

var purgeToolDef = mcp.NewTool("insight_purge",
	mcp.WithDescription("Delete feedback records older than the retention window."),
	mcp.WithNumber("retention_days", mcp.Description("Override the configured retention")),
)

var deleteToolDef = mcp.NewTool("insight_delete",
	mcp.WithDescription("Discard everything recorded for a path: feedback, interaction stats, and in-memory session state."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Workspace-relative path to forget")),
)
