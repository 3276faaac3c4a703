package mcp

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tacit-sh/tacit/internal/config"
	"github.com/tacit-sh/tacit/internal/track"
	"github.com/tacit-sh/tacit/internal/vector"
)

// KnownTypes lists all valid tool family names.
var KnownTypes = []string{"editor", "completion", "context", "insight"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"editor_document_opened": {
		def:     documentOpenedToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDocumentOpened },
	},
	"editor_document_closed": {
		def:     documentClosedToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDocumentClosed },
	},
	"editor_document_changed": {
		def:     documentChangedToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDocumentChanged },
	},
	"editor_selection_changed": {
		def:     selectionChangedToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSelectionChanged },
	},
	"completion_issued": {
		def:     completionIssuedToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCompletionIssued },
	},
	"completion_aborted": {
		def:     completionAbortedToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCompletionAborted },
	},
	"completion_accept_state": {
		def:     completionStateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCompletionState },
	},
	"completion_feedback_list": {
		def:     feedbackListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFeedbackList },
	},
	"context_add_file": {
		def:     contextAddFileToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleContextAddFile },
	},
	"context_add_selection": {
		def:     contextAddSelectionToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleContextAddSelection },
	},
	"context_remove": {
		def:     contextRemoveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleContextRemove },
	},
	"context_list": {
		def:     contextListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleContextList },
	},
	"insight_stats": {
		def:     statsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStats },
	},
	"insight_rank": {
		def:     rankToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRank },
	},
	"insight_report": {
		def:     reportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReport },
	},
	"insight_purge": {
		def:     purgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePurge },
	},
	"insight_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the family name from a tool name.
// Tool names follow the pattern "family_action" (e.g. "insight_rank" → "insight").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given families.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with tacit tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes are
// excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, engine *track.Engine, vectors *vector.Store, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tacit",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, engine, vectors)

	// Expand disabled families first, then add individually disabled tools.
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, engine *track.Engine, vectors *vector.Store, version string) error {
	s := NewServer(db, cfg, engine, vectors, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
