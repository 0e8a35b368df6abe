package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mrodal/crmbase/internal/crm"
	"github.com/mrodal/crmbase/internal/storage"
)

// LinkContactDealTool associates a contact with a deal. It prefers a
// junction-table row (which carries role metadata); when the junction
// relation does not exist it falls back to setting the deal's direct
// contact_id field, and the summary names which strategy was used.
type LinkContactDealTool struct {
	store storage.Client
}

// NewLinkContactDealTool creates the link_contact_deal tool.
func NewLinkContactDealTool(store storage.Client) *LinkContactDealTool {
	return &LinkContactDealTool{store: store}
}

// Definition returns the MCP tool definition.
func (t *LinkContactDealTool) Definition() mcp.Tool {
	return mcp.NewTool("link_contact_deal",
		mcp.WithDescription("Associate a contact with a deal, with an optional role."),
		mcp.WithString("contact_id", mcp.Required(), mcp.Description("UUID of the contact")),
		mcp.WithString("deal_id", mcp.Required(), mcp.Description("UUID of the deal")),
		mcp.WithString("role", mcp.Description("Role of the contact on this deal (e.g. decision maker)")),
	)
}

// Handle processes the tool call.
func (t *LinkContactDealTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID, err := requireID(req, "contact_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dealID, err := requireID(req, "deal_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	link := storage.Row{"contact_id": contactID, "deal_id": dealID}
	if role := req.GetString("role", ""); role != "" {
		link["role"] = role
	}

	row, err := t.store.Insert(ctx, tableDealContacts, link)
	if err == nil {
		return envelope(fmt.Sprintf("Linked contact %s to deal %s via junction table", contactID, dealID), row), nil
	}
	if storage.Translate(err).Kind != storage.FailureUndefinedTable {
		return mcp.NewToolResultError(crm.Classify(tableDealContacts, err).Error()), nil
	}

	rows, err := t.store.Update(ctx, tableDeals, storage.Filter{"id": dealID}, storage.Row{"contact_id": contactID})
	if err != nil {
		return mcp.NewToolResultError(crm.Classify(tableDeals, err).Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no deal found with id %s", dealID)), nil
	}
	return envelope(fmt.Sprintf("Linked contact %s to deal %s via the deal's direct contact field (junction table unavailable)", contactID, dealID), rows[0]), nil
}

// ─── UnlinkContactDealTool ───────────────────────────────────────────────────

// UnlinkContactDealTool removes a contact↔deal association, using the same
// junction-first strategy as linking.
type UnlinkContactDealTool struct {
	store storage.Client
}

// NewUnlinkContactDealTool creates the unlink_contact_deal tool.
func NewUnlinkContactDealTool(store storage.Client) *UnlinkContactDealTool {
	return &UnlinkContactDealTool{store: store}
}

// Definition returns the MCP tool definition.
func (t *UnlinkContactDealTool) Definition() mcp.Tool {
	return mcp.NewTool("unlink_contact_deal",
		mcp.WithDescription("Remove the association between a contact and a deal."),
		mcp.WithString("contact_id", mcp.Required(), mcp.Description("UUID of the contact")),
		mcp.WithString("deal_id", mcp.Required(), mcp.Description("UUID of the deal")),
	)
}

// Handle processes the tool call.
func (t *UnlinkContactDealTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contactID, err := requireID(req, "contact_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dealID, err := requireID(req, "deal_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	n, err := t.store.Delete(ctx, tableDealContacts, storage.Filter{"contact_id": contactID, "deal_id": dealID})
	if err == nil {
		if n == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No association between contact %s and deal %s was found.", contactID, dealID)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Unlinked contact %s from deal %s (removed %d junction row(s)).", contactID, dealID, n)), nil
	}
	if storage.Translate(err).Kind != storage.FailureUndefinedTable {
		return mcp.NewToolResultError(crm.Classify(tableDealContacts, err).Error()), nil
	}

	rows, err := t.store.Update(ctx, tableDeals,
		storage.Filter{"id": dealID, "contact_id": contactID},
		storage.Row{"contact_id": nil})
	if err != nil {
		return mcp.NewToolResultError(crm.Classify(tableDeals, err).Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No association between contact %s and deal %s was found.", contactID, dealID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Unlinked contact %s from deal %s by clearing the deal's direct contact field (junction table unavailable).", contactID, dealID)), nil
}

// ─── Direct-field links ──────────────────────────────────────────────────────

// LinkSpec describes a link pair realized as a single foreign-key field
// on the subject table: contact↔company (contacts.company_id) and
// company↔deal (deals.company_id).
type LinkSpec struct {
	linkName     string // e.g. "link_contact_company"
	unlinkName   string
	desc         string
	table        string
	subjectName  string // entity whose row is updated
	subjectParam string
	objectParam  string // value written into column
	column       string
}

var contactCompanyLink = LinkSpec{
	linkName:     "link_contact_company",
	unlinkName:   "unlink_contact_company",
	desc:         "a contact with its owning company",
	table:        tableContacts,
	subjectName:  "contact",
	subjectParam: "contact_id",
	objectParam:  "company_id",
	column:       "company_id",
}

// LinkSpecs returns the direct-field link pairs in registration order.
func LinkSpecs() []LinkSpec {
	return []LinkSpec{contactCompanyLink, companyDealLink}
}

var companyDealLink = LinkSpec{
	linkName:     "link_company_deal",
	unlinkName:   "unlink_company_deal",
	desc:         "a deal with its owning company",
	table:        tableDeals,
	subjectName:  "deal",
	subjectParam: "deal_id",
	objectParam:  "company_id",
	column:       "company_id",
}

// LinkFieldTool sets (or clears, for the unlink variant) a direct
// foreign-key field on the subject row.
type LinkFieldTool struct {
	store storage.Client
	spec  LinkSpec
	clear bool
}

// NewLinkFieldTool creates the link variant for spec.
func NewLinkFieldTool(store storage.Client, spec LinkSpec) *LinkFieldTool {
	return &LinkFieldTool{store: store, spec: spec}
}

// NewUnlinkFieldTool creates the unlink variant for spec.
func NewUnlinkFieldTool(store storage.Client, spec LinkSpec) *LinkFieldTool {
	return &LinkFieldTool{store: store, spec: spec, clear: true}
}

// Definition returns the MCP tool definition.
func (t *LinkFieldTool) Definition() mcp.Tool {
	name, verb := t.spec.linkName, "Associate"
	if t.clear {
		name, verb = t.spec.unlinkName, "Disassociate"
	}
	return mcp.NewTool(name,
		mcp.WithDescription(verb+" "+t.spec.desc+"."),
		mcp.WithString(t.spec.subjectParam, mcp.Required(), mcp.Description("UUID of the "+t.spec.subjectName)),
		mcp.WithString(t.spec.objectParam, mcp.Required(), mcp.Description("UUID of the company")),
	)
}

// Handle processes the tool call.
func (t *LinkFieldTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subject, err := requireID(req, t.spec.subjectParam)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	object, err := requireID(req, t.spec.objectParam)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if t.clear {
		// Clear only when the field currently points at the named company,
		// so an unlink can't silently detach someone else's association.
		rows, err := t.store.Update(ctx, t.spec.table,
			storage.Filter{"id": subject, t.spec.column: object},
			storage.Row{t.spec.column: nil})
		if err != nil {
			return mcp.NewToolResultError(crm.Classify(t.spec.table, err).Error()), nil
		}
		if len(rows) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No association between %s %s and company %s was found.", t.spec.subjectName, subject, object)), nil
		}
		return envelope(fmt.Sprintf("Unlinked %s %s from company %s", t.spec.subjectName, subject, object), rows[0]), nil
	}

	rows, err := t.store.Update(ctx, t.spec.table,
		storage.Filter{"id": subject},
		storage.Row{t.spec.column: object})
	if err != nil {
		return mcp.NewToolResultError(crm.Classify(t.spec.table, err).Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no %s found with id %s", t.spec.subjectName, subject)), nil
	}
	return envelope(fmt.Sprintf("Linked %s %s to company %s", t.spec.subjectName, subject, object), rows[0]), nil
}
