// Package ops implements the operations exposed over MCP, the CLI, and the
// web dashboard. Each operation takes explicit inputs, validates them, and
// works against the database and tracking engine; transport concerns stay
// in the callers.
package ops

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	DefaultRankLimit = 10
	MaxRankLimit     = 50
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// clampLimit applies default and maximum bounds to a requested page size.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
