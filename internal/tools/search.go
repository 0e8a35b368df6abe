package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mrodal/crmbase/internal/crm"
	"github.com/mrodal/crmbase/internal/storage"
)

// SearchTool is a case-insensitive substring search over an entity's text
// columns, with a bounded result count. Entities with a searchFallback retry
// a narrower column set when the full one references a missing column.
type SearchTool struct {
	store storage.Client
	ent   Entity
}

// NewSearchTool creates the search_<entity plural> tool.
func NewSearchTool(store storage.Client, ent Entity) *SearchTool {
	return &SearchTool{store: store, ent: ent}
}

// Definition returns the MCP tool definition.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("search_"+t.ent.table,
		mcp.WithDescription(fmt.Sprintf(
			"Search %s by case-insensitive substring match across %v.",
			t.ent.table, t.ent.searchColumns,
		)),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Substring to search for"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum results (default %d, max %d)", t.ent.searchLimit, maxSearchLimit)),
		),
	)
}

// Handle processes the tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	limit, err := searchLimitArg(req, t.ent.searchLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rows, err := t.store.SelectMatch(ctx, t.ent.table, nil, query, t.ent.searchColumns, limit)
	if err != nil && t.ent.searchFallback != nil && recoverableSearch(err) {
		rows, err = t.store.SelectMatch(ctx, t.ent.table, nil, query, t.ent.searchFallback, limit)
	}
	if err != nil {
		return mcp.NewToolResultError(crm.Classify(t.ent.table, err).Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No %s match %q.", t.ent.table, query)), nil
	}
	return envelope(fmt.Sprintf("Found %d %s matching %q", len(rows), t.ent.table, query), rows), nil
}

// recoverableSearch reports whether a failed match query can be retried on a
// narrower column set: the full set referenced a column or relation this
// deployment does not have.
func recoverableSearch(err error) bool {
	switch storage.Translate(err).Kind {
	case storage.FailureUndefinedColumn, storage.FailureUndefinedTable:
		return true
	}
	return false
}
