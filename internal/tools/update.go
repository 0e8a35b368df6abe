package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mrodal/crmbase/internal/crm"
	"github.com/mrodal/crmbase/internal/storage"
)

// UpdateTool is the generic entity update: sanitize the caller's updates
// down to the entity's allow-list, short-circuit when nothing survives, and
// otherwise issue a single update by id.
type UpdateTool struct {
	store storage.Client
	ent   Entity
}

// NewUpdateTool creates the update_<entity> tool.
func NewUpdateTool(store storage.Client, ent Entity) *UpdateTool {
	return &UpdateTool{store: store, ent: ent}
}

// Definition returns the MCP tool definition.
func (t *UpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("update_"+t.ent.name,
		mcp.WithDescription(fmt.Sprintf(
			"Update a %s. Only these fields are writable: %s. Immutable fields (id, created_at) are always ignored.",
			t.ent.name, strings.Join(t.ent.updateFields, ", "),
		)),
		mcp.WithString(t.ent.idParam,
			mcp.Required(),
			mcp.Description(fmt.Sprintf("UUID of the %s to update", t.ent.name)),
		),
		mcp.WithObject("updates",
			mcp.Required(),
			mcp.Description("Object mapping field names to new values"),
		),
	)
}

// Handle processes the tool call.
func (t *UpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, t.ent.idParam)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	updates, err := updatesArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sanitized := crm.SanitizeUpdate(updates, t.ent.updateFields, nil)
	if len(sanitized) == 0 {
		// No permitted fields survived sanitizing; skip the write entirely.
		return mcp.NewToolResultText(fmt.Sprintf(
			"Nothing to update for %s %s: no permitted fields in 'updates'.", t.ent.name, id,
		)), nil
	}

	rows, err := t.store.Update(ctx, t.ent.table, storage.Filter{"id": id}, sanitized)
	if err != nil {
		return mcp.NewToolResultError(crm.Classify(t.ent.table, err).Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no %s found with id %s", t.ent.name, id)), nil
	}

	fields := make([]string, 0, len(sanitized))
	for k := range sanitized {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	summary := fmt.Sprintf("Updated %s %s (%s)", t.ent.name, id, strings.Join(fields, ", "))
	return envelope(summary, rows[0]), nil
}
