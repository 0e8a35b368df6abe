package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mrodal/crmbase/internal/crm"
	"github.com/mrodal/crmbase/internal/storage"
)

// CreateTool inserts one entity row. It is parameterized by Entity so
// create_contact, create_company, create_deal and create_lead share one
// implementation with per-entity field sets.
type CreateTool struct {
	store storage.Client
	ent   Entity
}

// NewCreateTool creates the create_<entity> tool.
func NewCreateTool(store storage.Client, ent Entity) *CreateTool {
	return &CreateTool{store: store, ent: ent}
}

// Definition returns the MCP tool definition.
func (t *CreateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(fmt.Sprintf("Create a new %s in the CRM.", t.ent.name)),
	}
	for _, f := range t.ent.createFields {
		fieldOpts := []mcp.PropertyOption{mcp.Description(f.desc)}
		if f.required {
			fieldOpts = append(fieldOpts, mcp.Required())
		}
		if f.isNumber {
			opts = append(opts, mcp.WithNumber(f.name, fieldOpts...))
			continue
		}
		opts = append(opts, mcp.WithString(f.name, fieldOpts...))
	}
	return mcp.NewTool("create_"+t.ent.name, opts...)
}

// Handle processes the tool call.
func (t *CreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload := storage.Row{}
	args := req.GetArguments()
	for _, f := range t.ent.createFields {
		switch {
		case f.isNumber:
			if _, present := args[f.name]; present {
				payload[f.name] = req.GetFloat(f.name, 0)
			}
		case f.isUUID:
			v, err := optionalID(req, f.name)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if v != "" {
				payload[f.name] = v
			}
		default:
			v := req.GetString(f.name, "")
			if f.required && v == "" {
				return mcp.NewToolResultError(fmt.Sprintf("'%s' is required", f.name)), nil
			}
			if v != "" {
				payload[f.name] = v
			}
		}
	}

	row, err := t.store.Insert(ctx, t.ent.table, payload)
	if err != nil {
		return mcp.NewToolResultError(crm.Classify(t.ent.table, err).Error()), nil
	}
	return envelope(fmt.Sprintf("Created %s %s", t.ent.name, rowID(row)), row), nil
}

// ─── UpsertCompanyTool ───────────────────────────────────────────────────────

// UpsertCompanyTool inserts a company or updates the existing one with the
// same name (the conflict key).
type UpsertCompanyTool struct {
	store storage.Client
}

// NewUpsertCompanyTool creates the upsert_company tool.
func NewUpsertCompanyTool(store storage.Client) *UpsertCompanyTool {
	return &UpsertCompanyTool{store: store}
}

// Definition returns the MCP tool definition.
func (t *UpsertCompanyTool) Definition() mcp.Tool {
	return mcp.NewTool("upsert_company",
		mcp.WithDescription("Create a company, or update the existing company with the same name."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Company name (conflict key)"),
		),
		mcp.WithString("domain", mcp.Description("Primary web domain")),
		mcp.WithString("industry", mcp.Description("Industry label")),
		mcp.WithString("website", mcp.Description("Website URL")),
	)
}

// Handle processes the tool call.
func (t *UpsertCompanyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	row := storage.Row{"name": name}
	for _, key := range []string{"domain", "industry", "website"} {
		if v := req.GetString(key, ""); v != "" {
			row[key] = v
		}
	}

	persisted, err := t.store.Upsert(ctx, tableCompanies, row, "name")
	if err != nil {
		return mcp.NewToolResultError(crm.Classify(tableCompanies, err).Error()), nil
	}
	return envelope(fmt.Sprintf("Upserted company %q (%s)", name, rowID(persisted)), persisted), nil
}
