// Package server wires the storage client, the adaptive writer, and every
// tool into an MCP server instance. No business logic lives here, only
// composition.
package server

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/mrodal/crmbase/internal/crm"
	"github.com/mrodal/crmbase/internal/storage"
	"github.com/mrodal/crmbase/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with the full tool catalog registered over the
// given storage client. defaultAuthor is recorded on notes when the caller
// supplies none.
func New(store storage.Client, defaultAuthor string) *server.MCPServer {
	s := server.NewMCPServer(
		"crmbase",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	writer := crm.NewWriter(store, defaultAuthor)

	// --- CRUD + search, per entity ---

	for _, ent := range tools.Entities() {
		create := tools.NewCreateTool(store, ent)
		s.AddTool(create.Definition(), create.Handle)

		update := tools.NewUpdateTool(store, ent)
		s.AddTool(update.Definition(), update.Handle)

		search := tools.NewSearchTool(store, ent)
		s.AddTool(search.Definition(), search.Handle)

		note := tools.NewNoteTool(writer, ent)
		s.AddTool(note.Definition(), note.Handle)
	}

	upsertCompany := tools.NewUpsertCompanyTool(store)
	s.AddTool(upsertCompany.Definition(), upsertCompany.Handle)

	// --- Notes: generic dispatcher ---

	addNote := tools.NewAddNoteTool(writer)
	s.AddTool(addNote.Definition(), addNote.Handle)

	// --- Deal queries ---

	dealsByContact := tools.NewDealsByContactTool(store)
	s.AddTool(dealsByContact.Definition(), dealsByContact.Handle)

	associations := tools.NewContactDealAssociationsTool(store)
	s.AddTool(associations.Definition(), associations.Handle)

	cancelDeal := tools.NewCancelDealTool(store)
	s.AddTool(cancelDeal.Definition(), cancelDeal.Handle)

	// --- Links ---

	linkCD := tools.NewLinkContactDealTool(store)
	s.AddTool(linkCD.Definition(), linkCD.Handle)

	unlinkCD := tools.NewUnlinkContactDealTool(store)
	s.AddTool(unlinkCD.Definition(), unlinkCD.Handle)

	for _, spec := range tools.LinkSpecs() {
		link := tools.NewLinkFieldTool(store, spec)
		s.AddTool(link.Definition(), link.Handle)

		unlink := tools.NewUnlinkFieldTool(store, spec)
		s.AddTool(unlink.Definition(), unlink.Handle)
	}

	return s
}

// serverInstructions tells the AI client how to use the catalog.
func serverInstructions() string {
	return `You have access to crmbase, a CRM MCP server over contacts, companies, deals, and leads.

## Searching and reading
- search_contacts / search_companies / search_deals / search_leads do case-insensitive
  substring matching. Pass a limit (max 100) to control result size.
- get_deals_by_contact merges direct and junction-table associations into one
  deduplicated list. get_contact_deal_associations shows the raw association rows
  with role metadata.

## Writing
- create_* tools insert new entities; upsert_company updates the company with the
  same name instead of duplicating it.
- update_* tools take an 'updates' object. Only whitelisted fields are applied;
  id and created_at are always ignored. If nothing in your updates object is
  writable, the tool reports that without touching the database.
- add_note / add_<entity>_note attach notes. The server adapts to the deployment's
  notes schema automatically, so do not worry about exact column names.
- cancel_deal sets a terminal status (cancelled, lost, or closed_lost) with an
  optional reason.

## Linking
- link_contact_deal / unlink_contact_deal manage contact-deal associations,
  preferring the junction table and falling back to the deal's direct contact
  field when the deployment has no junction table. The response says which
  strategy was used.
- link_contact_company and link_company_deal set the owning-company reference.

All ids are UUIDs. Tool failures carry a human-readable reason naming the table
involved; validation problems are reported before anything touches the database.`
}
