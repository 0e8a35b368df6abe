// Package storage provides a generic relational client for the CRM schema.
//
// Tables are addressed by name and rows travel as plain maps, so callers
// never depend on a compiled-in schema — the whole point of the bridge is
// that the backing database's exact shape is unknown and may drift per
// deployment. Two dialects are supported: Postgres (production) and SQLite
// (local/dev). Everything dialect-specific — placeholder style, match
// operator, error wording — is confined to this package.
package storage

import "context"

// Row is a single database row keyed by column name.
type Row map[string]any

// Filter is a set of column conditions, ANDed together. A nil value matches
// NULL; a slice value becomes an IN clause; anything else is an equality.
type Filter map[string]any

// Client is the generic relational interface consumed by the core and the
// tool catalog. Every method issues exactly one statement; errors carry the
// backend's message for Translate to pattern-match.
type Client interface {
	// Select returns up to limit rows matching filter. Empty columns means
	// all columns; limit <= 0 means no limit.
	Select(ctx context.Context, table string, columns []string, filter Filter, limit int) ([]Row, error)

	// SelectMatch returns rows where any of searchColumns contains query as
	// a case-insensitive substring. LIKE metacharacters in query are escaped.
	SelectMatch(ctx context.Context, table string, columns []string, query string, searchColumns []string, limit int) ([]Row, error)

	// Insert adds one row and returns it as persisted.
	Insert(ctx context.Context, table string, row Row) (Row, error)

	// Update modifies matching rows and returns them as persisted.
	Update(ctx context.Context, table string, filter Filter, changes Row) ([]Row, error)

	// Upsert inserts one row, updating the existing row on a conflict over
	// conflictColumn, and returns the persisted row.
	Upsert(ctx context.Context, table string, row Row, conflictColumn string) (Row, error)

	// Delete removes matching rows and returns how many were removed.
	Delete(ctx context.Context, table string, filter Filter) (int64, error)
}
