package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tacit-sh/tacit/internal/config"
	"github.com/tacit-sh/tacit/internal/errors"
	"github.com/tacit-sh/tacit/internal/ops"
	"github.com/tacit-sh/tacit/internal/rank"
	"github.com/tacit-sh/tacit/internal/track"
	"github.com/tacit-sh/tacit/internal/vector"
)

// Handlers holds dependencies for MCP tool handlers. The engine carries the
// in-memory tracking state; vectors may be nil when no workspace store is
// open.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	engine  *track.Engine
	vectors *vector.Store
	ranker  *rank.Ranker
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, engine *track.Engine, vectors *vector.Store) *Handlers {
	return &Handlers{
		db:      db,
		cfg:     cfg,
		engine:  engine,
		vectors: vectors,
		ranker:  rank.FromConfig(cfg),
	}
}

// Request types for each tool

// DocumentRequest represents the arguments for document open/close.
type DocumentRequest struct {
	Path string `json:"path"`
}

// DocumentChangedRequest represents the arguments for document_changed.
type DocumentChangedRequest struct {
	Path      string `json:"path"`
	Text      string `json:"text,omitempty"`
	Line      int    `json:"line,omitempty"`
	Character int    `json:"character,omitempty"`
}

// CompletionIssuedRequest represents the arguments for completion_issued.
type CompletionIssuedRequest struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// CompletionAbortedRequest represents the arguments for completion_aborted.
type CompletionAbortedRequest struct {
	CompletionID string `json:"completion_id"`
}

// FeedbackListRequest represents the arguments for feedback_list.
type FeedbackListRequest struct {
	Path   string `json:"path,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// ContextAddFileRequest represents the arguments for context_add_file.
type ContextAddFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
}

// ContextAddSelectionRequest represents the arguments for
// context_add_selection.
type ContextAddSelectionRequest struct {
	Path           string `json:"path"`
	Content        string `json:"content"`
	StartLine      int    `json:"start_line,omitempty"`
	StartCharacter int    `json:"start_character,omitempty"`
	EndLine        int    `json:"end_line,omitempty"`
	EndCharacter   int    `json:"end_character,omitempty"`
}

// ContextRemoveRequest represents the arguments for context_remove.
type ContextRemoveRequest struct {
	ID string `json:"id"`
}

// StatsRequest represents the arguments for stats.
type StatsRequest struct {
	Limit int `json:"limit,omitempty"`
}

// RankRequest represents the arguments for rank.
type RankRequest struct {
	Query string `json:"query,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// PurgeRequest represents the arguments for purge.
type PurgeRequest struct {
	RetentionDays int `json:"retention_days,omitempty"`
}

// Handler implementations

// HandleDocumentOpened handles the editor_document_opened tool call.
func (h *Handlers) HandleDocumentOpened(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DocumentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path must not be empty")), nil
	}

	h.engine.DocumentOpened(input.Path)

	return successResult(map[string]any{"path": input.Path, "open": true})
}

// HandleDocumentClosed handles the editor_document_closed tool call.
func (h *Handlers) HandleDocumentClosed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DocumentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path must not be empty")), nil
	}

	h.engine.DocumentClosed(input.Path)

	return successResult(map[string]any{"path": input.Path, "open": false})
}

// HandleDocumentChanged handles the editor_document_changed tool call.
func (h *Handlers) HandleDocumentChanged(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DocumentChangedRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path must not be empty")), nil
	}

	h.engine.DocumentChanged(input.Path, input.Text, input.Line, input.Character)

	return successResult(map[string]any{
		"path":                    input.Path,
		"multiline_accept_active": h.engine.Flag.Active(),
	})
}

// HandleSelectionChanged handles the editor_selection_changed tool call.
func (h *Handlers) HandleSelectionChanged(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.engine.SelectionChanged()

	return successResult(map[string]any{
		"multiline_accept_active": h.engine.Flag.Active(),
	})
}

// HandleCompletionIssued handles the completion_issued tool call.
func (h *Handlers) HandleCompletionIssued(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CompletionIssuedRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" || input.Text == "" {
		return errorResult(errors.NewInvalidRequest("path and text must not be empty")), nil
	}

	rec, err := h.engine.CompletionIssued(input.Path, input.Text)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"completion_id": rec.ID,
		"path":          rec.Path,
		"multiline":     rec.Multiline,
	})
}

// HandleCompletionAborted handles the completion_aborted tool call.
func (h *Handlers) HandleCompletionAborted(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CompletionAbortedRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.CompletionID == "" {
		return errorResult(errors.NewInvalidRequest("completion_id must not be empty")), nil
	}

	h.engine.CompletionAborted(input.CompletionID)

	return successResult(map[string]any{"completion_id": input.CompletionID, "aborted": true})
}

// HandleCompletionState handles the completion_accept_state tool call.
func (h *Handlers) HandleCompletionState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(map[string]any{
		"multiline_accept_active": h.engine.Flag.Active(),
	})
}

// HandleFeedbackList handles the completion_feedback_list tool call.
func (h *Handlers) HandleFeedbackList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FeedbackListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.FeedbackList(h.db, ops.FeedbackListInput{
		Path:   input.Path,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleContextAddFile handles the context_add_file tool call.
func (h *Handlers) HandleContextAddFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ContextAddFileRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	item, err := h.engine.Registry.AddFile(input.Path)
	if err != nil {
		return errorResult(err), nil
	}

	h.index(ctx, item.ID, input.Content, item.Name)

	return successResult(item)
}

// HandleContextAddSelection handles the context_add_selection tool call.
func (h *Handlers) HandleContextAddSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ContextAddSelectionRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	item, err := h.engine.Registry.AddSelection(input.Path, input.Content, track.SelectionRange{
		StartLine:      input.StartLine,
		StartCharacter: input.StartCharacter,
		EndLine:        input.EndLine,
		EndCharacter:   input.EndCharacter,
	})
	if err != nil {
		return errorResult(err), nil
	}

	h.index(ctx, item.ID, item.Content, item.Name)

	return successResult(item)
}

// HandleContextRemove handles the context_remove tool call.
func (h *Handlers) HandleContextRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ContextRemoveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id must not be empty")), nil
	}

	if err := h.engine.Registry.Remove(input.ID); err != nil {
		return errorResult(err), nil
	}
	if h.vectors != nil {
		_ = h.vectors.Delete(input.ID)
	}

	return successResult(map[string]any{"id": input.ID, "removed": true})
}

// HandleContextList handles the context_list tool call.
func (h *Handlers) HandleContextList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(map[string]any{
		"items": h.engine.Registry.List(),
	})
}

// HandleStats handles the insight_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StatsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Stats(h.db, ops.StatsInput{Limit: input.Limit})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRank handles the insight_rank tool call.
func (h *Handlers) HandleRank(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RankRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Rank(ctx, h.db, h.vectors, h.ranker, ops.RankInput{
		Query: input.Query,
		Limit: input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleReport handles the insight_report tool call.
func (h *Handlers) HandleReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StatsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Report(h.db, h.ranker, ops.ReportInput{Limit: input.Limit})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePurge handles the insight_purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Purge(h.db, h.cfg, ops.PurgeInput{RetentionDays: input.RetentionDays})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the insight_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DocumentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(h.db, h.engine, ops.DeleteInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	if h.vectors != nil {
		_ = h.vectors.Delete(input.Path)
	}

	return successResult(result)
}

// index stores a context item's text in the vector store, best-effort.
// Missing content falls back to the item's label so the entry still ranks
// on name matches.
func (h *Handlers) index(ctx context.Context, id, content, fallback string) {
	if h.vectors == nil {
		return
	}
	text := content
	if text == "" {
		text = fallback
	}
	_ = h.vectors.Upsert(ctx, id, text)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed to avoid leaking file paths or
// SQL errors to clients.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tacitErr, ok := err.(*errors.TacitError); ok {
		errorObj := map[string]any{
			"code":    tacitErr.Code,
			"message": tacitErr.Message,
			"status":  tacitErr.Status,
		}
		if tacitErr.Code != errors.ErrInternal && tacitErr.Details != nil {
			errorObj["details"] = tacitErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
