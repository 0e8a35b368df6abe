package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mrodal/crmbase/internal/crm"
	"github.com/mrodal/crmbase/internal/storage"
)

// now is a package-level var to allow test injection of note timestamps.
var now = time.Now

// NoteTool attaches a note to one entity kind (add_contact_note,
// add_company_note, add_deal_note, add_lead_note).
type NoteTool struct {
	writer *crm.Writer
	ent    Entity
}

// NewNoteTool creates the add_<entity>_note tool.
func NewNoteTool(writer *crm.Writer, ent Entity) *NoteTool {
	return &NoteTool{writer: writer, ent: ent}
}

// Definition returns the MCP tool definition.
func (t *NoteTool) Definition() mcp.Tool {
	return mcp.NewTool("add_"+t.ent.name+"_note",
		mcp.WithDescription(fmt.Sprintf(
			"Attach a note to a %s. The insert adapts to the deployment's notes schema automatically.", t.ent.name,
		)),
		mcp.WithString(t.ent.idParam,
			mcp.Required(),
			mcp.Description(fmt.Sprintf("UUID of the %s the note belongs to", t.ent.name)),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Note text"),
		),
		mcp.WithString("author",
			mcp.Description("Note author (defaults to the configured author)"),
		),
	)
}

// Handle processes the tool call.
func (t *NoteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handleNote(ctx, req, t.writer, t.ent, t.ent.idParam)
}

// handleNote is the shared note-creation path: validate, resolve the owning
// company (unless the entity is itself a company), build the initial payload,
// and hand it to the adaptive inserter.
func handleNote(ctx context.Context, req mcp.CallToolRequest, writer *crm.Writer, ent Entity, idParam string) (*mcp.CallToolResult, error) {
	id, err := requireID(req, idParam)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if body == "" {
		return mcp.NewToolResultError("'body' is required"), nil
	}
	author := req.GetString("author", writer.DefaultAuthor())

	payload := storage.Row{
		ent.noteColumn:  id,
		"body":          body,
		"author":        author,
		"type":          "note",
		"activity_date": now().UTC().Format(time.RFC3339),
	}
	if ent.hasOwner {
		owner, err := writer.ResolveOwner(ctx, ent.table, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if owner != "" {
			payload[crm.OwnerColumn] = owner
		}
	}

	row, err := writer.InsertAdaptive(ctx, tableNotes, payload)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return envelope(fmt.Sprintf("Added note to %s %s", ent.name, id), row), nil
}

// ─── AddNoteTool ─────────────────────────────────────────────────────────────

// AddNoteTool is the generic note dispatcher keyed by an entity-type enum.
type AddNoteTool struct {
	writer *crm.Writer
}

// NewAddNoteTool creates the add_note tool.
func NewAddNoteTool(writer *crm.Writer) *AddNoteTool {
	return &AddNoteTool{writer: writer}
}

// Definition returns the MCP tool definition.
func (t *AddNoteTool) Definition() mcp.Tool {
	return mcp.NewTool("add_note",
		mcp.WithDescription("Attach a note to any entity by type."),
		mcp.WithString("entity_type",
			mcp.Required(),
			mcp.Description("Kind of entity the note belongs to"),
			mcp.Enum("contact", "company", "deal", "lead"),
		),
		mcp.WithString("entity_id",
			mcp.Required(),
			mcp.Description("UUID of the entity"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Note text"),
		),
		mcp.WithString("author",
			mcp.Description("Note author (defaults to the configured author)"),
		),
	)
}

// Handle processes the tool call.
func (t *AddNoteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entityType, err := req.RequireString("entity_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ent, ok := entityByType(entityType)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("'entity_type' must be one of contact, company, deal, lead; got %q", entityType)), nil
	}
	return handleNote(ctx, req, t.writer, ent, "entity_id")
}
