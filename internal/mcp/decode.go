package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// decode maps a call's argument object onto the tool's request struct.
// Editor notifications arrive as loosely typed JSON, so the round trip
// through encoding/json is what enforces each request shape; the tool name
// is folded into the error so a misbehaving client can tell which
// notification it got wrong.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var in T
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return in, fmt.Errorf("%s: encode arguments: %w", req.Params.Name, err)
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("%s: decode arguments: %w", req.Params.Name, err)
	}
	return in, nil
}
