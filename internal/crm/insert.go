package crm

import (
	"context"

	"github.com/mrodal/crmbase/internal/storage"
)

// maxInsertAttempts bounds the adaptive retry loop. Every rewrite removes or
// renames a field, so eight attempts is more than the rule table can consume,
// but the bound guarantees termination even against a pathological backend.
const maxInsertAttempts = 8

// rewriteRule maps an unknown-column failure on column to a payload change:
// drop the field, or (when renameTo is set) move its value to renameTo.
type rewriteRule struct {
	column   string
	renameTo string
}

// noteRewrites is consulted in order. Each rule is self-guarded: it fires
// only when the named field is still present in the payload, so a column the
// backend keeps rejecting can never loop.
//
// The pairs encode the schema variants seen in the wild: author/created_by,
// activity_date/created_at, body/content, and an optional type tag. The
// owning-company reference is simply dropped when the table has no such
// column — its NOT NULL case is handled separately in InsertAdaptive.
var noteRewrites = []rewriteRule{
	{column: OwnerColumn},
	{column: "author", renameTo: "created_by"},
	{column: "created_by"},
	{column: "activity_date", renameTo: "created_at"},
	{column: "created_at"},
	{column: "body", renameTo: "content"},
	{column: "content"},
	{column: "type"},
}

// InsertAdaptive inserts payload into table, treating the first write as a
// probe of the table's shape. On an unknown-column failure it rewrites the
// payload per noteRewrites and retries; a NOT NULL violation on the
// owning-company column is terminal (the caller must supply it); any other
// failure is classified terminally. The loop never issues more than
// maxInsertAttempts storage calls.
func (w *Writer) InsertAdaptive(ctx context.Context, table string, payload storage.Row) (storage.Row, error) {
	// Work on a copy: the caller's payload is not mutated by retries.
	current := make(storage.Row, len(payload))
	for k, v := range payload {
		current[k] = v
	}

	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		row, err := w.store.Insert(ctx, table, current)
		if err == nil {
			return row, nil
		}

		f := storage.Translate(err)
		if f.Kind == storage.FailureNotNull && f.Column == OwnerColumn {
			return nil, &MissingRelationshipError{Table: table, Column: OwnerColumn}
		}
		if f.Kind == storage.FailureUndefinedColumn && w.rewrite(current, f.Column) {
			continue
		}
		return nil, Classify(table, err)
	}
	return nil, &InsertExhaustedError{Table: table, Attempts: maxInsertAttempts}
}

// rewrite applies the first matching rule for column. It reports false when
// no rule matches or the field is already gone, in which case the failure is
// not recoverable by payload mutation.
func (w *Writer) rewrite(payload storage.Row, column string) bool {
	for _, r := range noteRewrites {
		if r.column != column {
			continue
		}
		v, ok := payload[column]
		if !ok {
			return false
		}
		delete(payload, column)
		if r.renameTo != "" {
			if r.column == "author" {
				if s, _ := v.(string); s == "" {
					v = w.author
				}
			}
			payload[r.renameTo] = v
		}
		return true
	}
	return false
}
