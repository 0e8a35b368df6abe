// Package tools implements the MCP tool catalog over the CRM schema.
//
// Each tool is a struct that receives its dependencies (storage client,
// adaptive writer) and exposes a Definition/Handle pair for registration.
// Tools validate their input shape before any storage access; the clever
// write behavior lives in internal/crm, not here.
package tools

// Table names of the CRM schema. The notes and junction tables are the ones
// whose exact shape is allowed to vary per deployment.
const (
	tableContacts     = "contacts"
	tableCompanies    = "companies"
	tableDeals        = "deals"
	tableLeads        = "leads"
	tableNotes        = "notes"
	tableDealContacts = "deal_contacts"
)

const (
	defaultSearchLimit = 10
	dealSearchLimit    = 50
	maxSearchLimit     = 100
)

// fieldSpec describes one create-tool input field.
type fieldSpec struct {
	name     string
	desc     string
	required bool
	isUUID   bool
	isNumber bool
}

// Entity carries everything the parameterized tools need to know about
// one entity kind: its table, id parameter name, create/update/search field
// sets, and how its notes attach.
type Entity struct {
	name           string // singular, e.g. "contact"
	table          string
	idParam        string // e.g. "contact_id"
	createFields   []fieldSpec
	updateFields   []string // allow-list for sanitized updates
	searchColumns  []string
	searchFallback []string // retried when a search column is missing; nil = no fallback
	searchLimit    int
	noteColumn     string // FK column a note uses to reference this entity
	hasOwner       bool   // whether notes resolve an owning company first
}

var contactEntity = Entity{
	name:    "contact",
	table:   tableContacts,
	idParam: "contact_id",
	createFields: []fieldSpec{
		{name: "first_name", desc: "Contact first name", required: true},
		{name: "last_name", desc: "Contact last name"},
		{name: "email", desc: "Email address"},
		{name: "phone", desc: "Phone number"},
		{name: "title", desc: "Job title"},
		{name: "company_id", desc: "Owning company id", isUUID: true},
	},
	updateFields:  []string{"first_name", "last_name", "email", "phone", "title", "company_id", "status"},
	searchColumns: []string{"first_name", "last_name", "email"},
	searchLimit:   defaultSearchLimit,
	noteColumn:    "contact_id",
	hasOwner:      true,
}

var companyEntity = Entity{
	name:    "company",
	table:   tableCompanies,
	idParam: "company_id",
	createFields: []fieldSpec{
		{name: "name", desc: "Company name", required: true},
		{name: "domain", desc: "Primary web domain"},
		{name: "industry", desc: "Industry label"},
		{name: "website", desc: "Website URL"},
	},
	updateFields:  []string{"name", "domain", "industry", "website", "phone", "address"},
	searchColumns: []string{"name", "domain", "industry"},
	searchLimit:   defaultSearchLimit,
	noteColumn:    "company_id",
	hasOwner:      false, // a company note has no further owner to resolve
}

var dealEntity = Entity{
	name:    "deal",
	table:   tableDeals,
	idParam: "deal_id",
	createFields: []fieldSpec{
		{name: "name", desc: "Deal name", required: true},
		{name: "amount", desc: "Deal value", isNumber: true},
		{name: "stage", desc: "Pipeline stage"},
		{name: "contact_id", desc: "Primary contact id", isUUID: true},
		{name: "company_id", desc: "Owning company id", isUUID: true},
	},
	updateFields:   []string{"name", "amount", "stage", "status", "contact_id", "company_id", "close_date"},
	searchColumns:  []string{"name", "stage"},
	searchFallback: []string{"name"},
	searchLimit:    dealSearchLimit,
	noteColumn:     "deal_id",
	hasOwner:       true,
}

var leadEntity = Entity{
	name:    "lead",
	table:   tableLeads,
	idParam: "lead_id",
	createFields: []fieldSpec{
		{name: "name", desc: "Lead name", required: true},
		{name: "email", desc: "Email address"},
		{name: "phone", desc: "Phone number"},
		{name: "source", desc: "Acquisition source"},
		{name: "status", desc: "Lead status"},
		{name: "company_id", desc: "Owning company id", isUUID: true},
	},
	updateFields:  []string{"name", "email", "phone", "status", "source", "company_id"},
	searchColumns: []string{"name", "email", "source"},
	searchLimit:   defaultSearchLimit,
	noteColumn:    "lead_id",
	hasOwner:      true,
}

// Entities returns the catalog's entity specs in registration order.
func Entities() []Entity {
	return []Entity{contactEntity, companyEntity, dealEntity, leadEntity}
}

// entityByType resolves the entity_type enum used by the generic note tool.
func entityByType(t string) (Entity, bool) {
	switch t {
	case "contact":
		return contactEntity, true
	case "company":
		return companyEntity, true
	case "deal":
		return dealEntity, true
	case "lead":
		return leadEntity, true
	}
	return Entity{}, false
}
