package tools

import (
	"context"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mrodal/crmbase/internal/crm"
	"github.com/mrodal/crmbase/internal/storage"
)

// CancelDealTool marks a deal as cancelled/lost with an optional reason.
type CancelDealTool struct {
	store storage.Client
}

// NewCancelDealTool creates the cancel_deal tool.
func NewCancelDealTool(store storage.Client) *CancelDealTool {
	return &CancelDealTool{store: store}
}

var cancelStatuses = []string{"cancelled", "lost", "closed_lost"}

// Definition returns the MCP tool definition.
func (t *CancelDealTool) Definition() mcp.Tool {
	return mcp.NewTool("cancel_deal",
		mcp.WithDescription("Cancel a deal, optionally recording why."),
		mcp.WithString("deal_id",
			mcp.Required(),
			mcp.Description("UUID of the deal to cancel"),
		),
		mcp.WithString("status",
			mcp.Description("Terminal status to set (default cancelled)"),
			mcp.Enum("cancelled", "lost", "closed_lost"),
		),
		mcp.WithString("reason",
			mcp.Description("Why the deal was cancelled"),
		),
	)
}

// Handle processes the tool call.
func (t *CancelDealTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "deal_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status := req.GetString("status", "cancelled")
	if !slices.Contains(cancelStatuses, status) {
		return mcp.NewToolResultError(fmt.Sprintf("'status' must be one of cancelled, lost, closed_lost; got %q", status)), nil
	}

	changes := storage.Row{"status": status}
	if reason := req.GetString("reason", ""); reason != "" {
		changes["cancellation_reason"] = reason
	}

	rows, err := t.store.Update(ctx, tableDeals, storage.Filter{"id": id}, changes)
	if err != nil {
		return mcp.NewToolResultError(crm.Classify(tableDeals, err).Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no deal found with id %s", id)), nil
	}
	return envelope(fmt.Sprintf("Deal %s marked %s", id, status), rows[0]), nil
}

// ─── DealsByContactTool ──────────────────────────────────────────────────────

// DealsByContactTool returns every deal associated with a contact: the union
// of direct foreign-key matches and junction-table matches, deduplicated by
// deal id with the direct row preferred. Deployments without the junction
// table fall back to direct matches alone.
type DealsByContactTool struct {
	store storage.Client
}

// NewDealsByContactTool creates the get_deals_by_contact tool.
func NewDealsByContactTool(store storage.Client) *DealsByContactTool {
	return &DealsByContactTool{store: store}
}

// Definition returns the MCP tool definition.
func (t *DealsByContactTool) Definition() mcp.Tool {
	return mcp.NewTool("get_deals_by_contact",
		mcp.WithDescription("List all deals associated with a contact, merging direct and junction-table associations."),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("UUID of the contact"),
		),
	)
}

// Handle processes the tool call.
func (t *DealsByContactTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID, err := requireID(req, "contact_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	direct, err := t.store.Select(ctx, tableDeals, nil, storage.Filter{"contact_id": contactID}, 0)
	if err != nil {
		return mcp.NewToolResultError(crm.Classify(tableDeals, err).Error()), nil
	}

	seen := make(map[string]bool, len(direct))
	merged := make([]storage.Row, 0, len(direct))
	for _, row := range direct {
		if id := rowID(row); id != "" && !seen[id] {
			seen[id] = true
			merged = append(merged, row)
		}
	}

	junctionMissing := false
	links, err := t.store.Select(ctx, tableDealContacts, []string{"deal_id"}, storage.Filter{"contact_id": contactID}, 0)
	if err != nil {
		if storage.Translate(err).Kind != storage.FailureUndefinedTable {
			return mcp.NewToolResultError(crm.Classify(tableDealContacts, err).Error()), nil
		}
		junctionMissing = true
	}

	var extra []string
	for _, link := range links {
		id, _ := link["deal_id"].(string)
		if id != "" && !seen[id] {
			seen[id] = true
			extra = append(extra, id)
		}
	}
	if len(extra) > 0 {
		rows, err := t.store.Select(ctx, tableDeals, nil, storage.Filter{"id": extra}, 0)
		if err != nil {
			return mcp.NewToolResultError(crm.Classify(tableDeals, err).Error()), nil
		}
		merged = append(merged, rows...)
	}

	summary := fmt.Sprintf("Found %d deal(s) for contact %s", len(merged), contactID)
	if junctionMissing {
		summary += " (junction table unavailable; direct matches only)"
	}
	if len(merged) == 0 {
		return mcp.NewToolResultText(summary), nil
	}
	return envelope(summary, merged), nil
}

// ─── ContactDealAssociationsTool ─────────────────────────────────────────────

// ContactDealAssociationsTool lists a contact's junction-table rows with
// their role metadata, reporting the direct-FK fallback when the junction
// relation does not exist.
type ContactDealAssociationsTool struct {
	store storage.Client
}

// NewContactDealAssociationsTool creates the get_contact_deal_associations tool.
func NewContactDealAssociationsTool(store storage.Client) *ContactDealAssociationsTool {
	return &ContactDealAssociationsTool{store: store}
}

// Definition returns the MCP tool definition.
func (t *ContactDealAssociationsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_contact_deal_associations",
		mcp.WithDescription("List a contact's deal associations with role metadata."),
		mcp.WithString("contact_id",
			mcp.Required(),
			mcp.Description("UUID of the contact"),
		),
	)
}

// Handle processes the tool call.
func (t *ContactDealAssociationsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID, err := requireID(req, "contact_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	links, err := t.store.Select(ctx, tableDealContacts, nil, storage.Filter{"contact_id": contactID}, 0)
	if err == nil {
		if len(links) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("Contact %s has no deal associations.", contactID)), nil
		}
		return envelope(fmt.Sprintf("Found %d deal association(s) for contact %s", len(links), contactID), links), nil
	}
	if storage.Translate(err).Kind != storage.FailureUndefinedTable {
		return mcp.NewToolResultError(crm.Classify(tableDealContacts, err).Error()), nil
	}

	// No junction relation in this deployment; report direct links instead.
	deals, err := t.store.Select(ctx, tableDeals, []string{"id", "name", "contact_id"}, storage.Filter{"contact_id": contactID}, 0)
	if err != nil {
		return mcp.NewToolResultError(crm.Classify(tableDeals, err).Error()), nil
	}
	summary := fmt.Sprintf("Found %d direct deal link(s) for contact %s (junction table unavailable)", len(deals), contactID)
	if len(deals) == 0 {
		return mcp.NewToolResultText(summary), nil
	}
	return envelope(summary, deals), nil
}
